package models

import "time"

// Contribution is a member's savings deposit.
// Amounts are stored in cents to avoid float drift.
type Contribution struct {
	ID           uint      `gorm:"primaryKey"`
	MemberID     uint      `gorm:"index;not null"`
	AmountCents  int64     `gorm:"not null"`
	Type         string    `gorm:"size:50;default:Regular"` // Regular, Special
	DateRecorded time.Time `gorm:"index"`
	RecordedByID uint      `gorm:"not null"`
	Notes        string    `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	SoftDelete

	Member   User `gorm:"foreignKey:MemberID"`
	Recorder User `gorm:"foreignKey:RecordedByID"`
}
