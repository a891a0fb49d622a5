package models

import "time"

// Receipt kinds map to receipt number prefixes.
const (
	ReceiptKindContribution = "contribution"
	ReceiptKindRepayment    = "loan_repayment"
	ReceiptKindSettlement   = "loan_settlement"
	ReceiptKindWelfare      = "welfare"
	ReceiptKindFine         = "fine_payment"
)

// DigitalReceipt is minted once per financial transaction.
// ReceiptNumber format: {PREFIX}{YYYYMMDD}{zero-padded id}.
type DigitalReceipt struct {
	ID            uint   `gorm:"primaryKey"`
	Kind          string `gorm:"size:20;index;not null"`
	ReferenceID   uint   `gorm:"index;not null"` // id of the contribution/repayment/fine/welfare row
	AmountCents   int64  `gorm:"not null"`
	MemberName    string `gorm:"size:100"`
	ReceiptNumber string `gorm:"size:50;uniqueIndex;not null"`
	TransactionID string `gorm:"size:64"` // uuid for external reconciliation
	GeneratedAt   time.Time
	DownloadCount int `gorm:"default:0"`
}
