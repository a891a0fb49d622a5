package models

import "time"

// Announcement is a notice posted to the whole group.
type Announcement struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Content     string `gorm:"type:text;not null"`
	DateCreated time.Time
	CreatedByID uint `gorm:"not null"`
	IsUrgent    bool `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	SoftDelete

	Creator User `gorm:"foreignKey:CreatedByID"`
}
