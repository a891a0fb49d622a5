package models

import "time"

// Notification is an in-app message for one user. Delivery is best-effort:
// failures never block the financial operation that produced it.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"size:200;not null"`
	Message   string `gorm:"type:text;not null"`
	Type      string `gorm:"size:50;not null"` // loan_application, loan_decision, reminder, ...
	IsRead    bool   `gorm:"index;default:false"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}
