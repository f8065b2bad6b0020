package models

// Question is one entry of a criteria form. Answers holds the codec-encoded
// option list for radio/checkbox questions and is NULL for free text.
type Question struct {
	ID      uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Content string  `gorm:"column:question_content;type:text;not null" json:"question_content"`
	Type    string  `gorm:"column:type;size:20;not null" json:"type"`
	Answers *string `gorm:"column:answers;type:text" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "question"
}
