package service

import (
	"errors"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"
	"github.com/pamoja-connect/Chama-manager/internal/permission"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnnouncementService posts and retires group notices.
type AnnouncementService struct {
	effects
	validate *validator.Validate
}

func NewAnnouncementService(db *gorm.DB, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *AnnouncementService {
	return &AnnouncementService{
		effects:  effects{db: db, notifier: notifier, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// AnnouncementInput is the validated input for Post.
type AnnouncementInput struct {
	Title    string `validate:"required,min=5,max=200"`
	Content  string `validate:"required,min=10,max=2000"`
	IsUrgent bool
}

// Post publishes an announcement; urgent ones are fanned out as
// notifications to every active member.
func (s *AnnouncementService) Post(actor *models.User, in AnnouncementInput) (*models.Announcement, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageAnnouncements) {
		return nil, nil, &PermissionError{Action: string(permission.ActionManageAnnouncements)}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid announcement: %v", err)
	}

	a := models.Announcement{
		Title:       in.Title,
		Content:     in.Content,
		DateCreated: time.Now(),
		CreatedByID: actor.ID,
		IsUrgent:    in.IsUrgent,
	}
	if err := s.db.Create(&a).Error; err != nil {
		return nil, nil, err
	}

	var warnings []string
	if a.IsUrgent {
		var ids []uint
		if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Pluck("id", &ids).Error; err == nil {
			warnings = s.notify(warnings, ids, "Urgent: "+a.Title, a.Content, "announcement")
		}
	}
	warnings = s.record(warnings, actor, "posted", "announcement", a.ID, a.Title)
	return &a, warnings, nil
}

// Delete soft-deletes an announcement with a mandatory reason.
func (s *AnnouncementService) Delete(actor *models.User, announcementID uint, reason string) ([]string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionManageAnnouncements) {
		return nil, &PermissionError{Action: string(permission.ActionManageAnnouncements)}
	}
	if err := validateDeletionReason(reason); err != nil {
		return nil, err
	}

	var a models.Announcement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, announcementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "announcement", ID: announcementID}
			}
			return err
		}
		if a.IsDeleted {
			return &NotFoundError{Entity: "announcement", ID: announcementID}
		}
		markDeleted(&a.SoftDelete, reason, actor.ID)
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "deleted", "announcement", a.ID, reason)
	return warnings, nil
}
