package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/config"
	"github.com/pamoja-connect/Chama-manager/internal/database"
	"github.com/pamoja-connect/Chama-manager/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testLoanConfig() config.LoanConfig {
	return config.LoanConfig{
		InternalRatePercent: 20,
		ExternalRatePercent: 30,
		LimitRatio:          0.75,
		GracePeriodDays:     7,
		LateFeePercent:      5,
	}
}

// fakeSink records notification fan-outs in memory.
type fakeSink struct {
	sent []fakeNotification
	err  error
}

type fakeNotification struct {
	UserIDs []uint
	Title   string
	Type    string
}

func (f *fakeSink) Notify(userIDs []uint, title, message, notificationType string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, fakeNotification{UserIDs: userIDs, Title: title, Type: notificationType})
	return nil
}

// fakeIssuer records receipt requests.
type fakeIssuer struct {
	issued []fakeReceipt
	err    error
}

type fakeReceipt struct {
	Kind        string
	ReferenceID uint
	AmountCents int64
}

func (f *fakeIssuer) IssueReceipt(kind string, referenceID uint, amountCents int64, memberName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, fakeReceipt{Kind: kind, ReferenceID: referenceID, AmountCents: amountCents})
	return fmt.Sprintf("TST%06d", referenceID), nil
}

// fakeTrail records activity lines.
type fakeTrail struct {
	lines []string
	err   error
}

func (f *fakeTrail) Record(actor, action, entityType string, entityID uint, details string) error {
	if f.err != nil {
		return f.err
	}
	f.lines = append(f.lines, fmt.Sprintf("%s %s %s#%d %s", actor, action, entityType, entityID, details))
	return nil
}

type testEnv struct {
	db      *gorm.DB
	sink    *fakeSink
	issuer  *fakeIssuer
	trail   *fakeTrail
	loans   *LoanService
	fines   *FineService
	contrib *ContributionService
	members *MemberService
	welfare *WelfareService
	voting  *VotingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	sink := &fakeSink{}
	issuer := &fakeIssuer{}
	trail := &fakeTrail{}
	log := zap.NewNop()
	return &testEnv{
		db:      db,
		sink:    sink,
		issuer:  issuer,
		trail:   trail,
		loans:   NewLoanService(db, testLoanConfig(), issuer, sink, trail, log),
		fines:   NewFineService(db, issuer, sink, trail, log),
		contrib: NewContributionService(db, issuer, sink, trail, log),
		members: NewMemberService(db, 4, trail, log),
		welfare: NewWelfareService(db, issuer, sink, trail, log),
		voting:  NewVotingService(db, sink, trail, log),
	}
}

func (e *testEnv) user(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     name,
		FullName:     name,
		Email:        name + "@example.com",
		Phone:        "0700000000",
		Role:         role,
		PasswordHash: "x",
		IsActive:     true,
		DateJoined:   time.Now(),
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) contribute(t *testing.T, treasurer *models.User, member *models.User, cents int64) {
	t.Helper()
	_, _, err := e.contrib.Record(treasurer, ContributionInput{
		MemberID:    member.ID,
		AmountCents: cents,
		Type:        "Regular",
	})
	require.NoError(t, err)
}
