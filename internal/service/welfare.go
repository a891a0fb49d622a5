package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WelfareService manages the welfare fund: member deposits in, approved
// expenses out.
type WelfareService struct {
	effects
	validate *validator.Validate
}

func NewWelfareService(db *gorm.DB, receipts ReceiptIssuer, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *WelfareService {
	return &WelfareService{
		effects:  effects{db: db, receipts: receipts, notifier: notifier, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// WelfareContributionInput is the validated input for RecordContribution.
type WelfareContributionInput struct {
	MemberID    uint   `validate:"gt=0"`
	AmountCents int64  `validate:"gt=0"`
	Notes       string `validate:"max=200"`
}

// RecordContribution stores a welfare deposit and issues a receipt.
func (s *WelfareService) RecordContribution(actor *models.User, in WelfareContributionInput) (*models.WelfareContribution, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid welfare contribution: %v", err)
	}

	wc := models.WelfareContribution{
		MemberID:     in.MemberID,
		AmountCents:  in.AmountCents,
		DateRecorded: time.Now(),
		RecordedByID: actor.ID,
		Notes:        in.Notes,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var member models.User
		if err := tx.First(&member, in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "member", ID: in.MemberID}
			}
			return err
		}
		return tx.Create(&wc).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.issueReceipt(warnings, models.ReceiptKindWelfare, wc.ID, wc.AmountCents, s.memberName(wc.MemberID))
	warnings = s.record(warnings, actor, "recorded", "welfare_contribution", wc.ID, util.FormatCurrency(wc.AmountCents))
	return &wc, warnings, nil
}

// WelfareExpenseInput is the validated input for RecordExpense.
type WelfareExpenseInput struct {
	BeneficiaryID uint   `validate:"gt=0"`
	AmountCents   int64  `validate:"gt=0"`
	Type          string `validate:"required,oneof=funeral emergency medical other"`
	Description   string `validate:"required,max=500"`
}

// RecordExpense disburses from the welfare fund to a beneficiary. The fund
// may not be overdrawn.
func (s *WelfareService) RecordExpense(actor *models.User, in WelfareExpenseInput) (*models.WelfareExpense, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid welfare expense: %v", err)
	}

	we := models.WelfareExpense{
		BeneficiaryID: in.BeneficiaryID,
		AmountCents:   in.AmountCents,
		Type:          in.Type,
		Description:   in.Description,
		DateDisbursed: time.Now(),
		ApprovedByID:  actor.ID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var beneficiary models.User
		if err := tx.First(&beneficiary, in.BeneficiaryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "member", ID: in.BeneficiaryID}
			}
			return err
		}

		balance, err := welfareBalance(tx)
		if err != nil {
			return err
		}
		if in.AmountCents > balance {
			return validationf("expense %s exceeds welfare fund balance %s",
				util.FormatCurrency(in.AmountCents), util.FormatCurrency(balance))
		}
		return tx.Create(&we).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.notify(warnings, []uint{we.BeneficiaryID},
		"Welfare disbursement",
		fmt.Sprintf("A welfare payment of %s (%s) has been disbursed to you.", util.FormatCurrency(we.AmountCents), we.Type),
		"welfare")
	warnings = s.record(warnings, actor, "disbursed", "welfare_expense", we.ID, util.FormatCurrency(we.AmountCents))
	return &we, warnings, nil
}

// Balance is the welfare fund's current balance: deposits minus expenses.
func (s *WelfareService) Balance() (int64, error) {
	return welfareBalance(s.db)
}

func welfareBalance(tx *gorm.DB) (int64, error) {
	var in, out int64
	if err := tx.Model(&models.WelfareContribution{}).
		Where("is_deleted = ?", false).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&in).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.WelfareExpense{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&out).Error; err != nil {
		return 0, err
	}
	return in - out, nil
}
