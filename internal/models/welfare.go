package models

import "time"

// WelfareContribution is a deposit into the group's welfare fund.
type WelfareContribution struct {
	ID           uint  `gorm:"primaryKey"`
	MemberID     uint  `gorm:"index;not null"`
	AmountCents  int64 `gorm:"not null"`
	DateRecorded time.Time
	RecordedByID uint   `gorm:"not null"`
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	SoftDelete

	Member   User `gorm:"foreignKey:MemberID"`
	Recorder User `gorm:"foreignKey:RecordedByID"`
}

// WelfareExpense is a disbursement from the welfare fund to a beneficiary.
type WelfareExpense struct {
	ID            uint   `gorm:"primaryKey"`
	BeneficiaryID uint   `gorm:"index;not null"`
	AmountCents   int64  `gorm:"not null"`
	Type          string `gorm:"size:50;not null"` // funeral, emergency, medical, other
	Description   string `gorm:"type:text;not null"`
	DateDisbursed time.Time
	ApprovedByID  uint `gorm:"not null"`
	CreatedAt     time.Time

	Beneficiary User `gorm:"foreignKey:BeneficiaryID"`
	Approver    User `gorm:"foreignKey:ApprovedByID"`
}
