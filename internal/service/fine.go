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

// FineService is the fine ledger: issue, settle, delete-with-reason.
type FineService struct {
	effects
	validate *validator.Validate
}

func NewFineService(db *gorm.DB, receipts ReceiptIssuer, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *FineService {
	return &FineService{
		effects:  effects{db: db, receipts: receipts, notifier: notifier, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// FineInput is the validated input for Issue.
type FineInput struct {
	MemberID    uint   `validate:"gt=0"`
	AmountCents int64  `validate:"gt=0"`
	Type        string `validate:"required,oneof=Absence Lateness Misconduct 'Late Payment' Other"`
	Reason      string `validate:"max=100"`
}

// Issue creates an unpaid fine against an active member.
func (s *FineService) Issue(actor *models.User, in FineInput) (*models.Fine, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionIssueFines) {
		return nil, nil, &PermissionError{Action: string(permission.ActionIssueFines)}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid fine: %v", err)
	}

	fine := models.Fine{
		MemberID:     in.MemberID,
		AmountCents:  in.AmountCents,
		Type:         in.Type,
		Reason:       in.Reason,
		DateIssued:   time.Now(),
		RecordedByID: actor.ID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var member models.User
		if err := tx.First(&member, in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "member", ID: in.MemberID}
			}
			return err
		}
		return tx.Create(&fine).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.notify(warnings, []uint{fine.MemberID},
		"Fine issued",
		fmt.Sprintf("A %s fine of %s has been issued against you.", fine.Type, util.FormatCurrency(fine.AmountCents)),
		"fine_issued")
	warnings = s.record(warnings, actor, "issued", "fine", fine.ID,
		fmt.Sprintf("%s %s", fine.Type, util.FormatCurrency(fine.AmountCents)))
	return &fine, warnings, nil
}

// Settle marks a fine paid. Settling an already-paid fine is a no-op reported
// as "already paid"; the original payment date is untouched.
func (s *FineService) Settle(actor *models.User, fineID uint, notes string) (*models.Fine, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionPayFine) {
		return nil, nil, &PermissionError{Action: string(permission.ActionPayFine)}
	}

	var fine models.Fine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockFine(tx, fineID, &fine); err != nil {
			return err
		}
		if fine.IsPaid {
			return alreadyDonef("fine is already paid")
		}
		now := time.Now()
		fine.IsPaid = true
		fine.DatePaid = &now
		fine.PaymentNotes = notes
		return tx.Save(&fine).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.issueReceipt(warnings, models.ReceiptKindFine, fine.ID, fine.AmountCents, s.memberName(fine.MemberID))
	warnings = s.notify(warnings, []uint{fine.MemberID},
		"Fine settled",
		fmt.Sprintf("Your %s fine of %s has been marked as paid.", fine.Type, util.FormatCurrency(fine.AmountCents)),
		"fine_settled")
	warnings = s.record(warnings, actor, "settled", "fine", fine.ID, util.FormatCurrency(fine.AmountCents))
	return &fine, warnings, nil
}

// Delete soft-deletes a fine with a mandatory reason.
func (s *FineService) Delete(actor *models.User, fineID uint, reason string) ([]string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionIssueFines) {
		return nil, &PermissionError{Action: string(permission.ActionIssueFines)}
	}
	if err := validateDeletionReason(reason); err != nil {
		return nil, err
	}

	var fine models.Fine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockFine(tx, fineID, &fine); err != nil {
			return err
		}
		markDeleted(&fine.SoftDelete, reason, actor.ID)
		return tx.Save(&fine).Error
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "deleted", "fine", fine.ID, reason)
	return warnings, nil
}

func (s *FineService) lockFine(tx *gorm.DB, fineID uint, out *models.Fine) error {
	if err := tx.First(out, fineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "fine", ID: fineID}
		}
		return err
	}
	if out.IsDeleted {
		return &NotFoundError{Entity: "fine", ID: fineID}
	}
	return nil
}
