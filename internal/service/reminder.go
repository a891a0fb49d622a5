package service

import (
	"fmt"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderService nudges members about loans coming due and unpaid fines.
// Run on demand (or from a cron hitting the endpoint); each run is
// best-effort fan-out only, no financial state changes.
type ReminderService struct {
	effects
}

func NewReminderService(db *gorm.DB, notifier NotificationSink, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		effects: effects{db: db, notifier: notifier, logger: logger},
	}
}

// ReminderRun summarises one reminder sweep.
type ReminderRun struct {
	LoanReminders int      `json:"loan_reminders"`
	FineReminders int      `json:"fine_reminders"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Run notifies members whose loans fall due within the next seven days and
// members with unpaid fines.
func (s *ReminderService) Run(actor *models.User, now time.Time) (*ReminderRun, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageFinances) {
		return nil, &PermissionError{Action: string(permission.ActionManageFinances)}
	}

	out := &ReminderRun{}

	horizon := now.AddDate(0, 0, 7)
	var loans []models.Loan
	if err := s.db.
		Where("status = ? AND is_deleted = ? AND member_id IS NOT NULL AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?",
			models.LoanStatusActive, false, now, horizon).
		Find(&loans).Error; err != nil {
		return nil, err
	}
	for _, l := range loans {
		days := int(l.DueDate.Sub(now).Hours() / 24)
		msg := fmt.Sprintf("Your loan balance of %s is due in %d days. Please arrange for repayment.",
			util.FormatCurrency(l.RemainingCents), days)
		out.Warnings = s.notify(out.Warnings, []uint{*l.MemberID}, "Loan repayment due", msg, "reminder")
		out.LoanReminders++
	}

	var fines []models.Fine
	if err := s.db.
		Where("is_paid = ? AND is_deleted = ?", false, false).
		Find(&fines).Error; err != nil {
		return nil, err
	}
	for _, f := range fines {
		msg := fmt.Sprintf("You have an unpaid %s fine of %s. Please settle this amount.",
			f.Type, util.FormatCurrency(f.AmountCents))
		out.Warnings = s.notify(out.Warnings, []uint{f.MemberID}, "Unpaid fine", msg, "reminder")
		out.FineReminders++
	}

	return out, nil
}
