package models

import "time"

type Cohort struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;size:32;not null" json:"name"`
	Description string    `gorm:"column:description;size:128" json:"description"`
	Picture     string    `gorm:"column:picture;size:255" json:"picture"`
	IsPrivate   bool      `gorm:"column:is_private;not null;default:false" json:"is_private"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Registrations []Registration `gorm:"foreignKey:CohortID" json:"-"`
}

func (Cohort) TableName() string {
	return "cohort"
}
