package models

import "time"

type User struct {
	ID       uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GoogleID *string `gorm:"column:google_id;size:64;uniqueIndex" json:"-"`
	Username string  `gorm:"column:username;size:32;unique;not null" json:"username"`
	Name     string  `gorm:"column:name;size:100;not null" json:"name"`
	Email    string  `gorm:"column:email;size:100;unique;not null" json:"email"`
	Password string  `gorm:"column:password;size:255" json:"-"` // empty for Google-only accounts
	Picture  string  `gorm:"column:picture;size:255" json:"picture"`
	// Comma-joined question ids the user flagged for reuse. Append-only.
	SavedQuestions string    `gorm:"column:saved_questions;type:text" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Registrations []Registration `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
