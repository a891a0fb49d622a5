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

// MeetingService records meeting minutes.
type MeetingService struct {
	effects
	validate *validator.Validate
}

func NewMeetingService(db *gorm.DB, activity ActivityLogger, logger *zap.Logger) *MeetingService {
	return &MeetingService{
		effects:  effects{db: db, activity: activity, logger: logger},
		validate: validator.New(),
	}
}

// MeetingInput is the validated input for Record.
type MeetingInput struct {
	Title     string    `validate:"required,min=5,max=200"`
	DateHeld  time.Time `validate:"required"`
	Agenda    string    `validate:"max=1000"`
	Minutes   string    `validate:"required,min=20,max=2000"`
	Attendees string    `validate:"max=1000"`
	Decisions string    `validate:"max=1000"`
}

// Record stores the minutes of one meeting.
func (s *MeetingService) Record(actor *models.User, in MeetingInput) (*models.MeetingRecord, []string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionRecordMeetings) {
		return nil, nil, &PermissionError{Action: string(permission.ActionRecordMeetings)}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationf("invalid meeting record: %v", err)
	}

	m := models.MeetingRecord{
		Title:        in.Title,
		DateHeld:     in.DateHeld,
		Agenda:       in.Agenda,
		Minutes:      in.Minutes,
		Attendees:    in.Attendees,
		Decisions:    in.Decisions,
		DateRecorded: time.Now(),
		RecordedByID: actor.ID,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "recorded", "meeting", m.ID, m.Title)
	return &m, warnings, nil
}

// Delete soft-deletes a meeting record with a mandatory reason.
func (s *MeetingService) Delete(actor *models.User, meetingID uint, reason string) ([]string, error) {
	if !permission.Has(permission.Role(actor.Role), permission.ActionRecordMeetings) {
		return nil, &PermissionError{Action: string(permission.ActionRecordMeetings)}
	}
	if err := validateDeletionReason(reason); err != nil {
		return nil, err
	}

	var m models.MeetingRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, meetingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "meeting record", ID: meetingID}
			}
			return err
		}
		if m.IsDeleted {
			return &NotFoundError{Entity: "meeting record", ID: meetingID}
		}
		markDeleted(&m.SoftDelete, reason, actor.ID)
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	warnings = s.record(warnings, actor, "deleted", "meeting", m.ID, reason)
	return warnings, nil
}
