package models

// Response is one user's stored answer to one question. The composite unique
// index backs the insert-or-update submission path, so concurrent identical
// submissions cannot produce duplicate rows.
type Response struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     uint   `gorm:"column:user_id;not null;uniqueIndex:idx_response_user_question" json:"user_id"`
	QuestionID uint   `gorm:"column:question_id;not null;uniqueIndex:idx_response_user_question" json:"question_id"`
	Answer     string `gorm:"column:answer;type:text;not null" json:"answer"`
}

func (Response) TableName() string {
	return "response"
}
