package models

import "time"

// User represents a group member or official.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	FullName     string `gorm:"size:100;not null"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	Phone        string `gorm:"size:20;not null"`
	Role         string `gorm:"size:20;index;not null"` // Admin, Chairman, Treasurer, Secretary, Member
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"index;default:true"`
	DateJoined   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Financial children (contributions, loans, fines) reference the user by
// plain foreign key with no cascade: deactivating or removing a member never
// destroys the group's financial history.
