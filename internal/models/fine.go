package models

import "time"

// Fine is a penalty issued against a member. Lifecycle: issued (unpaid) ->
// paid (terminal) or soft-deleted with a reason.
type Fine struct {
	ID           uint      `gorm:"primaryKey"`
	MemberID     uint      `gorm:"index;not null"`
	AmountCents  int64     `gorm:"not null"`
	Type         string    `gorm:"size:50;not null"` // Absence, Lateness, Misconduct, Late Payment, Other
	Reason       string    `gorm:"size:100"`         // With Apology, Without Apology, Repeat Offense, Other
	DateIssued   time.Time `gorm:"index"`
	IsPaid       bool      `gorm:"index;default:false"`
	DatePaid     *time.Time
	PaymentNotes string `gorm:"type:text"`
	RecordedByID uint   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	SoftDelete

	Member   User `gorm:"foreignKey:MemberID"`
	Recorder User `gorm:"foreignKey:RecordedByID"`
}
