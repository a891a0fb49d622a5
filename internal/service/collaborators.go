package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"
)

// Collaborator interfaces. All three are best-effort: a failure is returned
// to the service, appended to the operation's warnings and logged, but never
// rolls back or blocks the financial mutation that triggered it.

// NotificationSink fans a message out to a set of users.
type NotificationSink interface {
	Notify(userIDs []uint, title, message, notificationType string) error
}

// ReceiptIssuer mints a unique receipt number for one financial transaction.
type ReceiptIssuer interface {
	IssueReceipt(kind string, referenceID uint, amountCents int64, memberName string) (string, error)
}

// ActivityLogger appends one line to the group's append-only activity trail.
type ActivityLogger interface {
	Record(actor string, action string, entityType string, entityID uint, details string) error
}

// effects bundles the best-effort collaborators shared by the services.
// Each helper turns a collaborator failure into a warning string.
type effects struct {
	db       *gorm.DB
	receipts ReceiptIssuer
	notifier NotificationSink
	activity ActivityLogger
	logger   *zap.Logger
}

func (e *effects) notify(warnings []string, userIDs []uint, title, message, notificationType string) []string {
	if len(userIDs) == 0 {
		return warnings
	}
	if err := e.notifier.Notify(userIDs, title, message, notificationType); err != nil {
		e.logger.Warn("notification failed", zap.Error(err))
		warnings = append(warnings, "notification failed: "+err.Error())
	}
	return warnings
}

// notifyRole fans out to every active user whose role may perform action.
func (e *effects) notifyRole(warnings []string, action permission.Action, title, message, notificationType string) []string {
	roles := permission.Holders(action)
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, string(r))
	}

	var ids []uint
	if err := e.db.Model(&models.User{}).
		Where("role IN ? AND is_active = ?", roleNames, true).
		Pluck("id", &ids).Error; err != nil {
		e.logger.Warn("role holder lookup failed", zap.Error(err))
		return append(warnings, "notification skipped: "+err.Error())
	}
	return e.notify(warnings, ids, title, message, notificationType)
}

func (e *effects) issueReceipt(warnings []string, kind string, referenceID uint, amountCents int64, memberName string) []string {
	if _, err := e.receipts.IssueReceipt(kind, referenceID, amountCents, memberName); err != nil {
		e.logger.Warn("receipt issuance failed", zap.String("kind", kind), zap.Error(err))
		warnings = append(warnings, "receipt issuance failed: "+err.Error())
	}
	return warnings
}

func (e *effects) record(warnings []string, actor *models.User, action, entityType string, entityID uint, details string) []string {
	if err := e.activity.Record(actor.FullName, action, entityType, entityID, details); err != nil {
		e.logger.Warn("activity log failed", zap.Error(err))
		warnings = append(warnings, "activity log failed: "+err.Error())
	}
	return warnings
}

func (e *effects) memberName(id uint) string {
	var member models.User
	if err := e.db.First(&member, id).Error; err != nil {
		return ""
	}
	return member.FullName
}
