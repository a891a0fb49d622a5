package database

import (
	"fmt"

	"github.com/pamoja-connect/Chama-manager/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Contribution{},
		&models.Loan{},
		&models.LoanRepayment{},
		&models.Fine{},
		&models.Announcement{},
		&models.MeetingRecord{},
		&models.WelfareContribution{},
		&models.WelfareExpense{},
		&models.VotingProposal{},
		&models.Vote{},
		&models.Notification{},
		&models.DigitalReceipt{},
		&models.MembershipApplication{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
