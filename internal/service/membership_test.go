package service

import (
	"testing"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMembershipApplicationFlow(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	treasurer := env.user(t, "treasurer", "Treasurer")
	memberships := NewMembershipService(env.db, env.sink, env.trail, zap.NewNop())

	in := ApplicationInput{
		FullName:         "Grace Atieno",
		Email:            "grace@example.com",
		Phone:            "0733000000",
		IDNumber:         "12345678",
		Location:         "Kisumu West, Holo market",
		Occupation:       "Greengrocer",
		ReasonForJoining: "I want to save towards expanding my market stall.",
	}
	app, _, err := memberships.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)

	// reviewers were alerted
	require.NotEmpty(t, env.sink.sent)
	assert.Equal(t, "membership_application", env.sink.sent[len(env.sink.sent)-1].Type)

	// a second pending application for the same email is refused
	_, _, err = memberships.Apply(in)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	// the treasurer does not review membership
	_, _, err = memberships.Review(treasurer, app.ID, true, "")
	var pErr *PermissionError
	require.ErrorAs(t, err, &pErr)

	app, _, err = memberships.Review(chairman, app.ID, true, "vouched for by two members")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	require.NotNil(t, app.ReviewedByID)
	assert.Equal(t, chairman.ID, *app.ReviewedByID)

	// approving again is a reported no-op; rejecting now is a conflict
	_, _, err = memberships.Review(chairman, app.ID, true, "")
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	_, _, err = memberships.Review(chairman, app.ID, false, "")
	require.ErrorAs(t, err, &cErr)
	assert.False(t, cErr.AlreadyDone)

	// once resolved, the same email may apply again
	_, _, err = memberships.Apply(in)
	assert.NoError(t, err)
}

func TestDebtReminders(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "owino", "Member")
	reminders := NewReminderService(env.db, env.sink, zap.NewNop())

	env.contribute(t, treasurer, member, 2_000_000)
	l, _, err := env.loans.Apply(member, LoanApplication{
		AmountCents:    1_000_000,
		Purpose:        "working capital for the kiosk",
		DurationMonths: 3,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	require.NoError(t, err)
	_, _, err = env.loans.Decide(chairman, l.ID, LoanDecision{
		AmountCents: 1_000_000, InterestRate: 20, DurationMonths: 3, Approve: true,
	})
	require.NoError(t, err)

	// due in 3 days
	due := time.Now().AddDate(0, 0, 3)
	require.NoError(t, env.db.Model(&models.Loan{}).Where("id = ?", l.ID).Update("due_date", due).Error)

	_, _, err = env.fines.Issue(chairman, FineInput{
		MemberID:    member.ID,
		AmountCents: 20_000,
		Type:        "Absence",
	})
	require.NoError(t, err)

	before := len(env.sink.sent)
	run, err := reminders.Run(treasurer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, run.LoanReminders)
	assert.Equal(t, 1, run.FineReminders)
	assert.Len(t, env.sink.sent, before+2)

	// members cannot trigger the sweep
	_, err = reminders.Run(member, time.Now())
	var pErr *PermissionError
	assert.ErrorAs(t, err, &pErr)
}
