package models

import "time"

// SoftDelete is the shared delete-with-reason shape used by financial and
// record-keeping models. Rows are never physically removed; they are flagged,
// stamped and excluded from default listings.
type SoftDelete struct {
	IsDeleted      bool   `gorm:"index;default:false"`
	DeletionReason string `gorm:"type:text"`
	DeletedByID    *uint  `gorm:"index"`
	DeletedAt      *time.Time
}
