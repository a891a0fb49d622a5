package models

import "time"

// MeetingRecord holds the secretary's minutes for one meeting.
type MeetingRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"size:200;not null"`
	DateHeld     time.Time `gorm:"index;not null"`
	Agenda       string    `gorm:"type:text"`
	Minutes      string    `gorm:"type:text;not null"`
	Attendees    string    `gorm:"type:text"` // free-text list of attendee names
	Decisions    string    `gorm:"type:text"`
	DateRecorded time.Time
	RecordedByID uint `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	SoftDelete

	Recorder User `gorm:"foreignKey:RecordedByID"`
}
