// Package notify delivers in-app notifications by inserting rows the
// notification endpoints serve back to each user.
package notify

import (
	"gorm.io/gorm"

	"github.com/pamoja-connect/Chama-manager/internal/models"
)

// Store writes one models.Notification row per recipient.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Notify(userIDs []uint, title, message, notificationType string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.Notification{
			UserID:  id,
			Title:   title,
			Message: message,
			Type:    notificationType,
		})
	}
	return s.DB.Create(&rows).Error
}

// ListForUser returns a user's notifications, newest first.
func (s *Store) ListForUser(userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := s.DB.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Notification
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// MarkRead marks one notification read; only the owner may do so.
func (s *Store) MarkRead(userID, notificationID uint) error {
	res := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user read and returns
// how many were flipped.
func (s *Store) MarkAllRead(userID uint) (int64, error) {
	res := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// UnreadCount powers the badge in the client.
func (s *Store) UnreadCount(userID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
