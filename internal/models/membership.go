package models

import "time"

// Application statuses.
const (
	ApplicationStatusPending  = "Pending"
	ApplicationStatusApproved = "Approved"
	ApplicationStatusRejected = "Rejected"
)

// MembershipApplication is an outsider's request to join the group.
type MembershipApplication struct {
	ID               uint      `gorm:"primaryKey"`
	FullName         string    `gorm:"size:100;not null"`
	Email            string    `gorm:"size:120;not null"`
	Phone            string    `gorm:"size:20;not null"`
	IDNumber         string    `gorm:"size:10;not null"`
	Location         string    `gorm:"size:200;not null"`
	Occupation       string    `gorm:"size:100;not null"`
	ReasonForJoining string    `gorm:"type:text;not null"`
	Status           string    `gorm:"size:20;index;default:Pending"`
	ApplicationDate  time.Time `gorm:"index"`
	ReviewedByID     *uint
	ReviewDate       *time.Time
	ReviewNotes      string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Reviewer *User `gorm:"foreignKey:ReviewedByID"`
}
