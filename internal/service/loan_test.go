package service

import (
	"testing"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanWorkflow(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "wanjiku", "Member")

	// lifetime savings of KSh 50,000
	env.contribute(t, treasurer, member, 5_000_000)

	l, _, err := env.loans.Apply(member, LoanApplication{
		AmountCents:    3_000_000,
		Purpose:        "expand the family shop",
		DurationMonths: 12,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPending, l.Status)
	assert.Equal(t, 20.0, l.InterestRate)
	// 30,000 at 20% over 12 months: interest 6,000, total 36,000
	assert.Equal(t, int64(3_600_000), l.TotalRepayCents)
	require.NotNil(t, l.MemberID)
	assert.Equal(t, member.ID, *l.MemberID)

	// approvers were notified of the application
	require.NotEmpty(t, env.sink.sent)
	assert.Equal(t, "loan_application", env.sink.sent[len(env.sink.sent)-1].Type)

	l, _, err = env.loans.Decide(chairman, l.ID, LoanDecision{
		AmountCents:    l.AmountCents,
		InterestRate:   l.InterestRate,
		DurationMonths: l.DurationMonths,
		Approve:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, l.Status)
	assert.Equal(t, int64(3_600_000), l.RemainingCents)
	require.NotNil(t, l.DueDate)
	wantDue := time.Now().AddDate(0, 0, 12*30)
	assert.WithinDuration(t, wantDue, *l.DueDate, time.Minute)

	// partial repayment
	l, rep, _, err := env.loans.Repay(treasurer, l.ID, 1_600_000)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), l.RemainingCents)
	assert.Equal(t, models.LoanStatusActive, l.Status)
	require.NotEmpty(t, env.issuer.issued)
	last := env.issuer.issued[len(env.issuer.issued)-1]
	assert.Equal(t, models.ReceiptKindRepayment, last.Kind)
	assert.Equal(t, rep.ID, last.ReferenceID)

	// overpayment is rejected, not capped
	_, _, _, err = env.loans.Repay(treasurer, l.ID, 2_000_001)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	// settling the balance completes the loan with a settlement receipt
	l, _, _, err = env.loans.Repay(treasurer, l.ID, 2_000_000)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusCompleted, l.Status)
	assert.Equal(t, int64(0), l.RemainingCents)
	last = env.issuer.issued[len(env.issuer.issued)-1]
	assert.Equal(t, models.ReceiptKindSettlement, last.Kind)

	// repaying a completed loan reports "already done"
	_, _, _, err = env.loans.Repay(treasurer, l.ID, 100)
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	// the ledger holds both repayments
	got, err := env.loans.Get(l.ID)
	require.NoError(t, err)
	assert.Len(t, got.Repayments, 2)
}

func TestLoanLimitInclusiveBoundary(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")

	atLimit := env.user(t, "at-limit", "Member")
	env.contribute(t, treasurer, atLimit, 4_000_000) // limit = 30,000 exactly
	_, _, err := env.loans.Apply(atLimit, LoanApplication{
		AmountCents:    3_000_000,
		Purpose:        "buy a water pump",
		DurationMonths: 6,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	assert.NoError(t, err, "borrowing exactly the limit is allowed")

	over := env.user(t, "over-limit", "Member")
	env.contribute(t, treasurer, over, 4_000_000)
	_, _, err = env.loans.Apply(over, LoanApplication{
		AmountCents:    3_000_001,
		Purpose:        "buy a water pump",
		DurationMonths: 6,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Msg, "loan limit")
}

func TestOneActiveLoanPerMember(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "otieno", "Member")
	env.contribute(t, treasurer, member, 10_000_000)

	l, _, err := env.loans.Apply(member, LoanApplication{
		AmountCents:    1_000_000,
		Purpose:        "school fees for term two",
		DurationMonths: 6,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	require.NoError(t, err)
	_, _, err = env.loans.Decide(chairman, l.ID, LoanDecision{
		AmountCents: 1_000_000, InterestRate: 20, DurationMonths: 6, Approve: true,
	})
	require.NoError(t, err)

	_, _, err = env.loans.Apply(member, LoanApplication{
		AmountCents:    500_000,
		Purpose:        "school fees for term three",
		DurationMonths: 6,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Msg, "active loan")
}

func TestExternalLoanNeedsActiveGuarantor(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	guarantor := env.user(t, "guarantor", "Member")

	app := LoanApplication{
		AmountCents:    2_000_000,
		Purpose:        "stock for hardware store",
		DurationMonths: 12,
		Type:           models.LoanTypeExternal,
		Category:       models.LoanCategoryLongTerm,
		BorrowerName:   "James Mwangi",
		BorrowerPhone:  "0711000000",
		GuarantorID:    &guarantor.ID,
	}
	l, _, err := env.loans.Apply(chairman, app)
	require.NoError(t, err)
	assert.Equal(t, 30.0, l.InterestRate, "external loans carry the external rate")
	assert.Nil(t, l.MemberID)
	assert.Equal(t, "James Mwangi", l.BorrowerName)

	// deactivated guarantor is rejected
	require.NoError(t, env.db.Model(guarantor).Update("is_active", false).Error)
	_, _, err = env.loans.Apply(chairman, app)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Msg, "guarantor")
}

func TestLoanDecisionPermissionsAndIdempotency(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")
	chairman := env.user(t, "chairman", "Chairman")
	secretary := env.user(t, "secretary", "Secretary")
	member := env.user(t, "njeri", "Member")
	env.contribute(t, treasurer, member, 2_000_000)

	l, _, err := env.loans.Apply(member, LoanApplication{
		AmountCents:    1_000_000,
		Purpose:        "repair the family house roof",
		DurationMonths: 6,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryEmergency,
		EmergencyType:  "home repair",
	})
	require.NoError(t, err)

	d := LoanDecision{AmountCents: 1_000_000, InterestRate: 20, DurationMonths: 6, Approve: true}

	_, _, err = env.loans.Decide(secretary, l.ID, d)
	var pErr *PermissionError
	require.ErrorAs(t, err, &pErr, "secretaries cannot approve loans")

	_, _, err = env.loans.Decide(chairman, l.ID, d)
	require.NoError(t, err)

	// approving again the same way is a reported no-op
	_, _, err = env.loans.Decide(chairman, l.ID, d)
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	// rejecting an active loan is a hard conflict
	d.Approve = false
	_, _, err = env.loans.Decide(chairman, l.ID, d)
	require.ErrorAs(t, err, &cErr)
	assert.False(t, cErr.AlreadyDone)
}

func TestOverdueLifecycle(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "kamau", "Member")
	env.contribute(t, treasurer, member, 2_000_000)

	l, _, err := env.loans.Apply(member, LoanApplication{
		AmountCents:    1_000_000,
		Purpose:        "buy seed and fertiliser",
		DurationMonths: 3,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	require.NoError(t, err)
	l, _, err = env.loans.Decide(chairman, l.ID, LoanDecision{
		AmountCents: 1_000_000, InterestRate: 20, DurationMonths: 3, Approve: true,
	})
	require.NoError(t, err)

	// push the due date into the past
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, env.db.Model(&models.Loan{}).Where("id = ?", l.ID).Update("due_date", past).Error)

	now := time.Now()
	flagged, err := env.loans.CheckOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	// a second sweep flags nothing new
	flagged, err = env.loans.CheckOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)

	got, err := env.loans.Get(l.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOverdue)
	assert.Equal(t, models.LoanStatusActive, got.Status, "overdue does not change status")

	// within the grace period no fee can be applied
	_, _, err = env.loans.ApplyLateFee(chairman, l.ID, now.AddDate(0, 0, 3))
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)

	// past grace: 5% of the remaining 10,500 -> 525
	fine, _, err := env.loans.ApplyLateFee(chairman, l.ID, now.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, "Late Payment", fine.Type)
	assert.Equal(t, int64(52_500), fine.AmountCents)

	// one auto fine per loan
	_, _, err = env.loans.ApplyLateFee(chairman, l.ID, now.AddDate(0, 0, 9))
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	// administrative expiry keeps the balance on record
	l, _, err = env.loans.Expire(treasurer, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusExpired, l.Status)
	assert.Equal(t, int64(1_050_000), l.RemainingCents)

	_, _, err = env.loans.Expire(treasurer, l.ID)
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)
}

func TestLoanDeleteNeedsReason(t *testing.T) {
	env := newTestEnv(t)
	treasurer := env.user(t, "treasurer", "Treasurer")
	member := env.user(t, "akinyi", "Member")
	env.contribute(t, treasurer, member, 2_000_000)

	l, _, err := env.loans.Apply(member, LoanApplication{
		AmountCents:    500_000,
		Purpose:        "duplicate entry to be removed",
		DurationMonths: 3,
		Type:           models.LoanTypeInternal,
		Category:       models.LoanCategoryShortTerm,
	})
	require.NoError(t, err)

	_, err = env.loans.Delete(treasurer, l.ID, "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = env.loans.Delete(treasurer, l.ID, "entered twice by mistake")
	require.NoError(t, err)

	// deleted rows stay addressable for audit
	got, err := env.loans.Get(l.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, "entered twice by mistake", got.DeletionReason)

	// but cannot be mutated
	_, _, _, err = env.loans.Repay(treasurer, l.ID, 100)
	var nErr *NotFoundError
	require.ErrorAs(t, err, &nErr)
}

func TestCollaboratorFailuresBecomeWarnings(t *testing.T) {
	env := newTestEnv(t)
	env.issuer.err = assert.AnError
	env.sink.err = assert.AnError

	treasurer := env.user(t, "treasurer", "Treasurer")
	member := env.user(t, "moraa", "Member")

	c, warnings, err := env.contrib.Record(treasurer, ContributionInput{
		MemberID:    member.ID,
		AmountCents: 100_000,
		Type:        "Regular",
	})
	require.NoError(t, err, "receipt and notification failures never block the mutation")
	assert.NotZero(t, c.ID)
	assert.NotEmpty(t, warnings)

	var saved models.Contribution
	require.NoError(t, env.db.First(&saved, c.ID).Error)
	assert.Equal(t, int64(100_000), saved.AmountCents)
}
