package models

// Criteria is the ordered question set of one post. Questions is a
// comma-joined list of question ids; the stored order is the index space
// submissions and statistics refer to.
type Criteria struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Questions string `gorm:"column:questions;type:text;not null" json:"questions"`
}

func (Criteria) TableName() string {
	return "criteria"
}
