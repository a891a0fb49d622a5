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

// MembershipService handles join requests from outsiders.
type MembershipService struct {
	effects
	validate *validator.Validate
}

func NewMembershipService(db *gorm.DB, notifier NotificationSink, activity ActivityLogger, logger *zap.Logger) *MembershipService {
	return &MembershipService{
		effects:  effects{db: db, notifier: notifier, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// ApplicationInput is the validated input for Apply. No authentication is
// required; applicants are not yet members.
type ApplicationInput struct {
	FullName         string `validate:"required,min=2,max=100"`
	Email            string `validate:"required,email"`
	Phone            string `validate:"required,min=10,max=20"`
	IDNumber         string `validate:"required,min=7,max=10"`
	Location         string `validate:"required,min=5,max=200"`
	Occupation       string `validate:"required,min=2,max=100"`
	ReasonForJoining string `validate:"required,min=20,max=500"`
}

// Apply files a membership application and alerts the reviewers.
func (s *MembershipService) Apply(in ApplicationInput) (*models.MembershipApplication, []string, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid application: %v", err)
	}

	app := models.MembershipApplication{
		FullName:         in.FullName,
		Email:            in.Email,
		Phone:            in.Phone,
		IDNumber:         in.IDNumber,
		Location:         in.Location,
		Occupation:       in.Occupation,
		ReasonForJoining: in.ReasonForJoining,
		Status:           models.ApplicationStatusPending,
		ApplicationDate:  time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.MembershipApplication{}).
			Where("email = ? AND status = ?", app.Email, models.ApplicationStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return validationf("an application for this email is already pending")
		}
		return tx.Create(&app).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.notifyRole(warnings, permission.ActionReviewMembership,
		"New membership application",
		app.FullName+" has applied to join the group.",
		"membership_application")
	return &app, warnings, nil
}

// Review approves or rejects a pending application. Reviewing an application
// already resolved the same way is a no-op.
func (s *MembershipService) Review(actor *models.User, applicationID uint, approve bool, notes string) (*models.MembershipApplication, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionReviewMembership) {
		return nil, nil, &PermissionError{Action: string(permission.ActionReviewMembership)}
	}

	var app models.MembershipApplication
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "membership application", ID: applicationID}
			}
			return err
		}
		if app.Status != models.ApplicationStatusPending {
			if (approve && app.Status == models.ApplicationStatusApproved) ||
				(!approve && app.Status == models.ApplicationStatusRejected) {
				return alreadyDonef("application is already %s", app.Status)
			}
			return conflictf("application is %s, not Pending", app.Status)
		}

		now := time.Now()
		reviewerID := actor.ID
		app.ReviewedByID = &reviewerID
		app.ReviewDate = &now
		app.ReviewNotes = notes
		if approve {
			app.Status = models.ApplicationStatusApproved
		} else {
			app.Status = models.ApplicationStatusRejected
		}
		return tx.Save(&app).Error
	})
	if err != nil {
		return nil, nil, err
	}

	verdict := "rejected"
	if approve {
		verdict = "approved"
	}
	var warnings []string
	warnings = s.record(warnings, actor, verdict, "membership_application", app.ID, app.FullName)
	return &app, warnings, nil
}
