// Package receipt mints digital receipts for financial transactions.
// Receipt numbers follow {PREFIX}{YYYYMMDD}{zero-padded reference id},
// e.g. CTR20260830000042 for contribution #42 recorded on 2026-08-30.
package receipt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pamoja-connect/Chama-manager/internal/models"
)

var prefixes = map[string]string{
	models.ReceiptKindContribution: "CTR",
	models.ReceiptKindRepayment:    "LRP",
	models.ReceiptKindSettlement:   "LST",
	models.ReceiptKindWelfare:      "WLF",
	models.ReceiptKindFine:         "FPY",
}

// Issuer persists one DigitalReceipt row per transaction.
type Issuer struct {
	DB *gorm.DB

	// now is swappable in tests.
	now func() time.Time
}

func NewIssuer(db *gorm.DB) *Issuer {
	return &Issuer{DB: db, now: time.Now}
}

func (i *Issuer) IssueReceipt(kind string, referenceID uint, amountCents int64, memberName string) (string, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown receipt kind %q", kind)
	}
	now := i.now()
	number := fmt.Sprintf("%s%s%06d", prefix, now.Format("20060102"), referenceID)

	rec := models.DigitalReceipt{
		Kind:          kind,
		ReferenceID:   referenceID,
		AmountCents:   amountCents,
		MemberName:    memberName,
		ReceiptNumber: number,
		TransactionID: uuid.NewString(),
		GeneratedAt:   now,
	}
	if err := i.DB.Create(&rec).Error; err != nil {
		return "", err
	}
	return number, nil
}

// Get looks a receipt up by its number and bumps the download counter.
func (i *Issuer) Get(number string) (*models.DigitalReceipt, error) {
	var rec models.DigitalReceipt
	if err := i.DB.Where("receipt_number = ?", number).First(&rec).Error; err != nil {
		return nil, err
	}
	i.DB.Model(&rec).Update("download_count", gorm.Expr("download_count + 1"))
	return &rec, nil
}

// ListForReference returns all receipts minted for one transaction row.
func (i *Issuer) ListForReference(kind string, referenceID uint) ([]models.DigitalReceipt, error) {
	var recs []models.DigitalReceipt
	err := i.DB.Where("kind = ? AND reference_id = ?", kind, referenceID).
		Order("generated_at DESC").Find(&recs).Error
	return recs, err
}
