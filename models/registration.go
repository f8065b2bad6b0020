package models

import "time"

const (
	RankOwner  = "owner"
	RankMember = "member"
)

// Registration is one user's membership in one cohort.
type Registration struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID   uint      `gorm:"column:user_id;not null;uniqueIndex:idx_registration_member" json:"user_id"`
	CohortID uint      `gorm:"column:cohort_id;not null;uniqueIndex:idx_registration_member" json:"cohort_id"`
	Rank     string    `gorm:"column:rank;size:20;not null;default:'member'" json:"rank"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Cohort Cohort `gorm:"foreignKey:CohortID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Registration) TableName() string {
	return "registration"
}
