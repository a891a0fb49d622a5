package service

import (
	"strings"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"
)

// Shared delete-with-reason contract: loans, contributions, fines,
// announcements and meeting records are flagged, never physically removed, so
// the financial audit trail survives. A blank reason aborts the deletion.

func validateDeletionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return validationf("a deletion reason is required")
	}
	return nil
}

func markDeleted(sd *models.SoftDelete, reason string, deleterID uint) {
	now := time.Now()
	sd.IsDeleted = true
	sd.DeletionReason = reason
	sd.DeletedByID = &deleterID
	sd.DeletedAt = &now
}
