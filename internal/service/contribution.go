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

// ContributionService records member savings deposits.
type ContributionService struct {
	effects
	validate *validator.Validate
}

func NewContributionService(db *gorm.DB, receipts ReceiptIssuer, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *ContributionService {
	return &ContributionService{
		effects:  effects{db: db, receipts: receipts, notifier: notifier, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// ContributionInput is the validated input for Record.
type ContributionInput struct {
	MemberID    uint   `validate:"gt=0"`
	AmountCents int64  `validate:"gt=0"`
	Type        string `validate:"required,oneof=Regular Special"`
	Notes       string `validate:"max=200"`
}

// Record stores a contribution and issues a receipt for it.
func (s *ContributionService) Record(actor *models.User, in ContributionInput) (*models.Contribution, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionRecordContributions) {
		return nil, nil, &PermissionError{Action: string(permission.ActionRecordContributions)}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid contribution: %v", err)
	}

	c := models.Contribution{
		MemberID:     in.MemberID,
		AmountCents:  in.AmountCents,
		Type:         in.Type,
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
		if !member.IsActive {
			return validationf("member %s is not active", member.FullName)
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.issueReceipt(warnings, models.ReceiptKindContribution, c.ID, c.AmountCents, s.memberName(c.MemberID))
	warnings = s.notify(warnings, []uint{c.MemberID},
		"Contribution recorded",
		fmt.Sprintf("Your %s contribution of %s has been recorded.", c.Type, util.FormatCurrency(c.AmountCents)),
		"contribution")
	warnings = s.record(warnings, actor, "recorded", "contribution", c.ID, util.FormatCurrency(c.AmountCents))
	return &c, warnings, nil
}

// Delete soft-deletes a contribution with a mandatory reason.
func (s *ContributionService) Delete(actor *models.User, contributionID uint, reason string) ([]string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}
	if err := validateDeletionReason(reason); err != nil {
		return nil, err
	}

	var c models.Contribution
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, contributionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "contribution", ID: contributionID}
			}
			return err
		}
		if c.IsDeleted {
			return &NotFoundError{Entity: "contribution", ID: contributionID}
		}
		markDeleted(&c.SoftDelete, reason, actor.ID)
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "deleted", "contribution", c.ID, reason)
	return warnings, nil
}

// TotalForMember sums a member's lifetime contributions, deleted rows
// excluded. This is the base of the loan limit.
func (s *ContributionService) TotalForMember(memberID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.Contribution{}).
		Where("member_id = ? AND is_deleted = ?", memberID, false).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	return total, err
}
