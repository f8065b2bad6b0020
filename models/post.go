package models

import "time"

// Post is a piece of work published into a cohort together with its feedback
// criteria and uploaded files (comma-joined stored file names).
type Post struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RegistrationID uint      `gorm:"column:registration_id;not null" json:"registration_id"`
	CriteriaID     uint      `gorm:"column:criteria_id;not null" json:"criteria_id"`
	Title          string    `gorm:"column:title;size:128;not null" json:"title"`
	Description    string    `gorm:"column:description;type:text;not null" json:"description"`
	Files          string    `gorm:"column:files;type:text" json:"files"`
	TimeCreated    time.Time `gorm:"column:time_created;autoCreateTime" json:"time_created"`

	Registration Registration `gorm:"foreignKey:RegistrationID" json:"-"`
}

func (Post) TableName() string {
	return "post"
}
