package models

import "time"

// Invite is a pending invitation into a cohort. Joining or declining removes it.
type Invite struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CohortID  uint      `gorm:"column:cohort_id;not null" json:"cohort_id"`
	UserID    uint      `gorm:"column:user_id;not null" json:"user_id"`
	Message   string    `gorm:"column:message;size:255" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Cohort Cohort `gorm:"foreignKey:CohortID;constraint:OnDelete:CASCADE" json:"cohort"`
}

func (Invite) TableName() string {
	return "invite"
}
