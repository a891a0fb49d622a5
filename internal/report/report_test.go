package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/database"
	"github.com/pamoja-connect/Chama-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:rpt%d?mode=memory&cache=shared", time.Now().UnixNano())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	users := []models.User{
		{Username: "a", FullName: "Asha Mwita", Email: "a@x.com", Phone: "1", Role: "Member", PasswordHash: "x", IsActive: true},
		{Username: "b", FullName: "Brian Koech", Email: "b@x.com", Phone: "2", Role: "Member", PasswordHash: "x", IsActive: false},
	}
	require.NoError(t, db.Create(&users).Error)

	require.NoError(t, db.Create(&models.Contribution{
		MemberID: users[0].ID, AmountCents: 500_000, Type: "Regular", RecordedByID: users[0].ID,
	}).Error)
	// a deleted contribution must not count
	require.NoError(t, db.Create(&models.Contribution{
		MemberID: users[0].ID, AmountCents: 100_000, Type: "Regular", RecordedByID: users[0].ID,
		SoftDelete: models.SoftDelete{IsDeleted: true, DeletionReason: "duplicate"},
	}).Error)

	memberID := users[0].ID
	require.NoError(t, db.Create(&models.Loan{
		MemberID: &memberID, AmountCents: 300_000, RemainingCents: 200_000, TotalRepayCents: 330_000,
		Status: models.LoanStatusActive, Purpose: "stock", DurationMonths: 6, IsOverdue: true,
	}).Error)

	require.NoError(t, db.Create(&models.Fine{
		MemberID: users[0].ID, AmountCents: 20_000, Type: "Lateness", IsPaid: true, RecordedByID: users[0].ID,
	}).Error)
	require.NoError(t, db.Create(&models.WelfareContribution{
		MemberID: users[0].ID, AmountCents: 50_000, RecordedByID: users[0].ID,
	}).Error)
	require.NoError(t, db.Create(&models.WelfareExpense{
		BeneficiaryID: users[0].ID, AmountCents: 30_000, Type: "medical", Description: "clinic", ApprovedByID: users[0].ID,
	}).Error)

	return NewService(db)
}

func TestStatistics(t *testing.T) {
	s := seededService(t)

	st, err := s.Statistics()
	require.NoError(t, err)

	assert.Equal(t, int64(2), st.TotalMembers)
	assert.Equal(t, int64(1), st.ActiveMembers)
	assert.Equal(t, int64(500_000), st.TotalContributions, "deleted rows excluded")
	assert.Equal(t, int64(300_000), st.TotalLoansIssued)
	assert.Equal(t, int64(200_000), st.OutstandingLoans)
	assert.Equal(t, int64(1), st.ActiveLoanCount)
	assert.Equal(t, int64(1), st.OverdueLoanCount)
	assert.Equal(t, int64(20_000), st.TotalFinesCollected)
	assert.Equal(t, int64(20_000), st.WelfareBalance)
	// savings + fines collected - money out on loan
	assert.Equal(t, int64(320_000), st.AvailableFunds)
}

func TestWriteCSV(t *testing.T) {
	s := seededService(t)

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two members
	assert.Equal(t, "Member", rows[0][0])

	// sorted by name: Asha first
	assert.Equal(t, "Asha Mwita", rows[1][0])
	assert.Equal(t, "5000.00", rows[1][3])
	assert.Equal(t, "2000.00", rows[1][4])
	assert.Equal(t, "Brian Koech", rows[2][0])
	assert.Equal(t, "Inactive", rows[2][2])
}
