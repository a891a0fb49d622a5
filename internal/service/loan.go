package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/config"
	"github.com/pamoja-connect/Chama-manager/internal/loan"
	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoanService owns the loan lifecycle: application, approval, repayment
// ledger, overdue handling and settlement. Every mutation runs inside one
// transaction with its precondition re-checked inside that transaction.
type LoanService struct {
	effects
	cfg      config.LoanConfig
	validate *validator.Validate
}

func NewLoanService(db *gorm.DB, cfg config.LoanConfig, receipts ReceiptIssuer, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *LoanService {
	return &LoanService{
		effects:  effects{db: db, receipts: receipts, notifier: notifier, activity: activity, logger: logger},
		cfg:      cfg,
		validate: validator.New(),
	}
}

// LoanApplication is the validated input for Apply.
type LoanApplication struct {
	AmountCents        int64  `validate:"gt=0"`
	Purpose            string `validate:"required,min=10,max=500"`
	DurationMonths     int    `validate:"gt=0,lte=24"`
	Type               string `validate:"oneof=Internal External"`
	Category           string `validate:"oneof=Short-term Long-term Emergency"`
	EmergencyType      string `validate:"max=50"`
	RepaymentMode      string `validate:"omitempty,oneof=weekly monthly lump_sum"`
	Occupation         string `validate:"max=100"`
	MonthlyIncomeCents int64  `validate:"gte=0"`

	// external borrower details
	BorrowerName    string `validate:"max=100"`
	BorrowerAddress string
	BorrowerPhone   string `validate:"max=15"`
	IDNumber        string `validate:"max=10"`
	KRAPin          string `validate:"max=11"`
	GuarantorID     *uint
}

// Apply creates a Pending loan for the requester. Internal applicants must
// have no Active loan and may borrow at most LimitRatio times their lifetime
// contributions (boundary inclusive). External applications need an active
// member as guarantor.
func (s *LoanService) Apply(actor *models.User, app LoanApplication) (*models.Loan, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionApplyLoan) {
		return nil, nil, &PermissionError{Action: string(permission.ActionApplyLoan)}
	}
	if err := s.validate.Struct(app); err != nil {
		return nil, nil, validationf("invalid loan application: %v", err)
	}
	if app.RepaymentMode == "" {
		app.RepaymentMode = "monthly"
	}

	rate := s.defaultRate(app.Type)
	now := time.Now()

	l := &models.Loan{
		AmountCents:        app.AmountCents,
		InterestRate:       rate,
		Status:             models.LoanStatusPending,
		ApplicationDate:    now,
		Purpose:            app.Purpose,
		DurationMonths:     app.DurationMonths,
		Category:           app.Category,
		EmergencyType:      app.EmergencyType,
		RepaymentMode:      app.RepaymentMode,
		GracePeriodDays:    s.cfg.GracePeriodDays,
		LateFeePercent:     s.cfg.LateFeePercent,
		Occupation:         app.Occupation,
		MonthlyIncomeCents: app.MonthlyIncomeCents,
		Type:               app.Type,
	}
	total := loan.TotalRepayment(app.AmountCents, rate, app.DurationMonths)
	l.TotalRepayCents = total
	l.RemainingCents = total

	err := s.db.Transaction(func(tx *gorm.DB) error {
		switch app.Type {
		case models.LoanTypeInternal:
			var active int64
			if err := tx.Model(&models.Loan{}).
				Where("member_id = ? AND status = ? AND is_deleted = ?", actor.ID, models.LoanStatusActive, false).
				Count(&active).Error; err != nil {
				return err
			}
			if active > 0 {
				return validationf("you already have an active loan; repay it before applying again")
			}

			var contributed int64
			if err := tx.Model(&models.Contribution{}).
				Where("member_id = ? AND is_deleted = ?", actor.ID, false).
				Select("COALESCE(SUM(amount_cents), 0)").
				Scan(&contributed).Error; err != nil {
				return err
			}
			limit := decimal.NewFromInt(contributed).
				Mul(decimal.NewFromFloat(s.cfg.LimitRatio)).
				Round(0).IntPart()
			if app.AmountCents > limit {
				return validationf("requested amount %s exceeds your loan limit of %s",
					util.FormatCurrency(app.AmountCents), util.FormatCurrency(limit))
			}
			memberID := actor.ID
			l.MemberID = &memberID

		case models.LoanTypeExternal:
			if app.BorrowerName == "" || app.GuarantorID == nil {
				return validationf("external loans require borrower details and a guarantor")
			}
			var guarantor models.User
			if err := tx.First(&guarantor, *app.GuarantorID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "guarantor", ID: *app.GuarantorID}
				}
				return err
			}
			if !guarantor.IsActive {
				return validationf("guarantor %s is not an active member", guarantor.FullName)
			}
			l.GuarantorID = app.GuarantorID
			l.BorrowerName = app.BorrowerName
			l.BorrowerAddress = app.BorrowerAddress
			l.BorrowerPhone = app.BorrowerPhone
			l.IDNumber = app.IDNumber
			l.KRAPin = app.KRAPin
		}

		return tx.Create(l).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.notifyRole(warnings, permission.ActionApproveLoans,
		"New loan application",
		fmt.Sprintf("%s applied for a %s loan of %s over %d months.",
			actor.FullName, l.Type, util.FormatCurrency(l.AmountCents), l.DurationMonths),
		"loan_application")
	warnings = s.record(warnings, actor, "applied", "loan", l.ID,
		fmt.Sprintf("%s loan of %s", l.Type, util.FormatCurrency(l.AmountCents)))
	return l, warnings, nil
}

// LoanDecision is the approver's final terms and verdict.
type LoanDecision struct {
	AmountCents    int64   `validate:"gt=0"`
	InterestRate   float64 `validate:"gte=0,lte=50"`
	DurationMonths int     `validate:"gt=0,lte=24"`
	Approve        bool
	Notes          string `validate:"max=500"`
}

// Decide approves or rejects a Pending loan. Approval recomputes the total
// repayment from the possibly revised terms and opens the repayment ledger;
// the due date uses a fixed 30-day month, a documented simplification.
// Deciding an already-resolved loan the same way is a no-op.
func (s *LoanService) Decide(actor *models.User, loanID uint, d LoanDecision) (*models.Loan, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionApproveLoans) {
		return nil, nil, &PermissionError{Action: string(permission.ActionApproveLoans)}
	}
	if err := s.validate.Struct(d); err != nil {
		return nil, nil, validationf("invalid loan decision: %v", err)
	}

	var l models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockLoan(tx, loanID, &l); err != nil {
			return err
		}
		if l.Status != models.LoanStatusPending {
			if (d.Approve && l.Status == models.LoanStatusActive) ||
				(!d.Approve && l.Status == models.LoanStatusRejected) {
				return alreadyDonef("loan is already %s", l.Status)
			}
			return conflictf("loan is %s, not Pending", l.Status)
		}

		now := time.Now()
		approverID := actor.ID
		l.ApprovedByID = &approverID
		l.ApprovalNotes = d.Notes

		if !d.Approve {
			l.Status = models.LoanStatusRejected
			return tx.Save(&l).Error
		}

		l.AmountCents = d.AmountCents
		l.InterestRate = d.InterestRate
		l.DurationMonths = d.DurationMonths
		total := loan.TotalRepayment(d.AmountCents, d.InterestRate, d.DurationMonths)
		l.TotalRepayCents = total
		l.RemainingCents = total
		l.Status = models.LoanStatusActive
		l.ApprovalDate = &now
		due := now.AddDate(0, 0, d.DurationMonths*30)
		l.DueDate = &due
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, nil, err
	}

	verdict := "rejected"
	if d.Approve {
		verdict = "approved"
	}
	var warnings []string
	if l.MemberID != nil {
		warnings = s.notify(warnings, []uint{*l.MemberID},
			"Loan "+verdict,
			fmt.Sprintf("Your loan application of %s has been %s.", util.FormatCurrency(l.AmountCents), verdict),
			"loan_decision")
	}
	warnings = s.record(warnings, actor, verdict, "loan", l.ID, l.Purpose)
	return &l, warnings, nil
}

// Repay appends an immutable repayment to an Active loan and decrements the
// remaining balance. A repayment may not exceed the remaining balance. A loan
// whose balance reaches zero is Completed and a settlement receipt is issued.
func (s *LoanService) Repay(actor *models.User, loanID uint, amountCents int64) (*models.Loan, *models.LoanRepayment, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, nil, nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}
	if amountCents <= 0 {
		return nil, nil, nil, validationf("repayment amount must be positive")
	}

	var (
		l         models.Loan
		repayment models.LoanRepayment
		settled   bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockLoan(tx, loanID, &l); err != nil {
			return err
		}
		if l.Status != models.LoanStatusActive {
			if l.Status == models.LoanStatusCompleted {
				return alreadyDonef("loan is already fully repaid")
			}
			return conflictf("loan is %s; only Active loans accept repayments", l.Status)
		}
		if amountCents > l.RemainingCents {
			return validationf("repayment %s exceeds remaining balance %s",
				util.FormatCurrency(amountCents), util.FormatCurrency(l.RemainingCents))
		}

		repayment = models.LoanRepayment{
			LoanID:       l.ID,
			AmountCents:  amountCents,
			DatePaid:     time.Now(),
			RecordedByID: actor.ID,
		}
		if err := tx.Create(&repayment).Error; err != nil {
			return err
		}

		l.RemainingCents -= amountCents
		if l.RemainingCents == 0 {
			l.Status = models.LoanStatusCompleted
			settled = true
		}
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, nil, nil, err
	}

	var warnings []string
	kind := models.ReceiptKindRepayment
	if settled {
		kind = models.ReceiptKindSettlement
	}
	warnings = s.issueReceipt(warnings, kind, repayment.ID, amountCents, s.borrowerName(&l))
	if l.MemberID != nil {
		msg := fmt.Sprintf("Repayment of %s received. Remaining balance: %s.",
			util.FormatCurrency(amountCents), util.FormatCurrency(l.RemainingCents))
		if settled {
			msg = fmt.Sprintf("Repayment of %s received. Your loan is now fully settled.", util.FormatCurrency(amountCents))
		}
		warnings = s.notify(warnings, []uint{*l.MemberID}, "Loan repayment recorded", msg, "loan_repayment")
	}
	warnings = s.record(warnings, actor, "repaid", "loan", l.ID, util.FormatCurrency(amountCents))
	return &l, &repayment, warnings, nil
}

// CheckOverdue flags Active loans past their due date. The Active status is
// untouched: a loan can be Active and overdue at the same time. Returns the
// number of loans newly flagged.
func (s *LoanService) CheckOverdue(now time.Time) (int, error) {
	var flagged int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var due []models.Loan
		if err := tx.
			Where("status = ? AND is_deleted = ? AND is_overdue = ? AND due_date IS NOT NULL AND due_date < ?",
				models.LoanStatusActive, false, false, now).
			Find(&due).Error; err != nil {
			return err
		}
		for i := range due {
			since := now
			due[i].IsOverdue = true
			due[i].OverdueSince = &since
			if err := tx.Save(&due[i]).Error; err != nil {
				return err
			}
			flagged++
		}
		return nil
	})
	return flagged, err
}

// ApplyLateFee issues the automatic late-payment fine for an overdue internal
// loan past its grace period. At most one auto-fine per loan.
func (s *LoanService) ApplyLateFee(actor *models.User, loanID uint, now time.Time) (*models.Fine, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionIssueFines) {
		return nil, nil, &PermissionError{Action: string(permission.ActionIssueFines)}
	}

	var fine models.Fine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var l models.Loan
		if err := s.lockLoan(tx, loanID, &l); err != nil {
			return err
		}
		if l.AutoFineApplied {
			return alreadyDonef("late fee already applied to this loan")
		}
		if l.Status != models.LoanStatusActive || !l.IsOverdue {
			return conflictf("loan is not overdue")
		}
		if l.MemberID == nil {
			return validationf("late fees apply to internal loans only")
		}
		fee := loan.LateFee(l.RemainingCents, l.LateFeePercent, l.OverdueSince, l.GracePeriodDays, now)
		if fee == 0 {
			return conflictf("loan is within its grace period")
		}

		fine = models.Fine{
			MemberID:     *l.MemberID,
			AmountCents:  fee,
			Type:         "Late Payment",
			Reason:       fmt.Sprintf("Overdue loan #%d", l.ID),
			DateIssued:   now,
			RecordedByID: actor.ID,
		}
		if err := tx.Create(&fine).Error; err != nil {
			return err
		}
		l.AutoFineApplied = true
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.notify(warnings, []uint{fine.MemberID},
		"Late fee applied",
		fmt.Sprintf("A late fee of %s has been applied to your overdue loan.", util.FormatCurrency(fine.AmountCents)),
		"fine_issued")
	warnings = s.record(warnings, actor, "issued", "fine", fine.ID, "automatic late fee")
	return &fine, warnings, nil
}

// Expire closes out an Active, overdue loan administratively. The outstanding
// balance stays on record.
func (s *LoanService) Expire(actor *models.User, loanID uint) (*models.Loan, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}

	var l models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockLoan(tx, loanID, &l); err != nil {
			return err
		}
		if l.Status == models.LoanStatusExpired {
			return alreadyDonef("loan is already expired")
		}
		if l.Status != models.LoanStatusActive || !l.IsOverdue {
			return conflictf("only overdue active loans can be expired")
		}
		l.Status = models.LoanStatusExpired
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "expired", "loan", l.ID,
		fmt.Sprintf("outstanding balance %s", util.FormatCurrency(l.RemainingCents)))
	return &l, warnings, nil
}

// Delete soft-deletes a loan with a mandatory reason. The row, and any
// repayments it owns, are preserved for audit.
func (s *LoanService) Delete(actor *models.User, loanID uint, reason string) ([]string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}
	if err := validateDeletionReason(reason); err != nil {
		return nil, err
	}

	var l models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockLoan(tx, loanID, &l); err != nil {
			return err
		}
		markDeleted(&l.SoftDelete, reason, actor.ID)
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "deleted", "loan", l.ID, reason)
	return warnings, nil
}

// Get returns one loan by id, deleted or not (deleted rows stay addressable
// for audit).
func (s *LoanService) Get(loanID uint) (*models.Loan, error) {
	var l models.Loan
	if err := s.db.Preload("Repayments").First(&l, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "loan", ID: loanID}
		}
		return nil, err
	}
	return &l, nil
}

func (s *LoanService) lockLoan(tx *gorm.DB, loanID uint, out *models.Loan) error {
	if err := tx.First(out, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "loan", ID: loanID}
		}
		return err
	}
	if out.IsDeleted {
		return &NotFoundError{Entity: "loan", ID: loanID}
	}
	return nil
}

func (s *LoanService) defaultRate(loanType string) float64 {
	if loanType == models.LoanTypeExternal {
		if s.cfg.ExternalRatePercent > 0 {
			return s.cfg.ExternalRatePercent
		}
	} else if s.cfg.InternalRatePercent > 0 {
		return s.cfg.InternalRatePercent
	}
	return loan.DefaultRate(loanType)
}

func (s *LoanService) borrowerName(l *models.Loan) string {
	if l.BorrowerName != "" {
		return l.BorrowerName
	}
	if l.MemberID == nil {
		return ""
	}
	return s.memberName(*l.MemberID)
}
