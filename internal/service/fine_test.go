package service

import (
	"testing"

	"github.com/pamoja-connect/Chama-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFineIssueAndSettle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin", "Admin")
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "nyambura", "Member")

	fine, _, err := env.fines.Issue(chairman, FineInput{
		MemberID:    member.ID,
		AmountCents: 20_000,
		Type:        "Lateness",
		Reason:      "Without Apology",
	})
	require.NoError(t, err)
	assert.False(t, fine.IsPaid)

	// the member was told
	require.NotEmpty(t, env.sink.sent)
	assert.Equal(t, []uint{member.ID}, env.sink.sent[len(env.sink.sent)-1].UserIDs)

	// settlement is reserved for admins
	_, _, err = env.fines.Settle(chairman, fine.ID, "")
	var pErr *PermissionError
	require.ErrorAs(t, err, &pErr)

	fine, _, err = env.fines.Settle(admin, fine.ID, "paid cash at the meeting")
	require.NoError(t, err)
	assert.True(t, fine.IsPaid)
	require.NotNil(t, fine.DatePaid)
	firstPaid := *fine.DatePaid

	// a fine-payment receipt was minted
	last := env.issuer.issued[len(env.issuer.issued)-1]
	assert.Equal(t, models.ReceiptKindFine, last.Kind)
	assert.Equal(t, fine.ID, last.ReferenceID)

	// settling again is a no-op and the payment date is untouched
	_, _, err = env.fines.Settle(admin, fine.ID, "again")
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	var saved models.Fine
	require.NoError(t, env.db.First(&saved, fine.ID).Error)
	assert.Equal(t, firstPaid.Unix(), saved.DatePaid.Unix())
	assert.Equal(t, "paid cash at the meeting", saved.PaymentNotes)
}

func TestFineValidation(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "baraka", "Member")

	cases := []struct {
		name string
		in   FineInput
	}{
		{"zero amount", FineInput{MemberID: member.ID, AmountCents: 0, Type: "Absence"}},
		{"negative amount", FineInput{MemberID: member.ID, AmountCents: -500, Type: "Absence"}},
		{"unknown type", FineInput{MemberID: member.ID, AmountCents: 1000, Type: "Vandalism"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.fines.Issue(chairman, tc.in)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}

	// members cannot issue fines at all
	_, _, err := env.fines.Issue(member, FineInput{MemberID: member.ID, AmountCents: 1000, Type: "Absence"})
	var pErr *PermissionError
	assert.ErrorAs(t, err, &pErr)

	// unknown member
	_, _, err = env.fines.Issue(chairman, FineInput{MemberID: 9999, AmountCents: 1000, Type: "Absence"})
	var nErr *NotFoundError
	assert.ErrorAs(t, err, &nErr)
}

func TestFineDelete(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "zawadi", "Member")

	fine, _, err := env.fines.Issue(chairman, FineInput{
		MemberID:    member.ID,
		AmountCents: 10_000,
		Type:        "Misconduct",
	})
	require.NoError(t, err)

	_, err = env.fines.Delete(chairman, fine.ID, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = env.fines.Delete(chairman, fine.ID, "issued against the wrong member")
	require.NoError(t, err)

	// a deleted fine cannot be settled
	admin := env.user(t, "admin", "Admin")
	_, _, err = env.fines.Settle(admin, fine.ID, "")
	var nErr *NotFoundError
	require.ErrorAs(t, err, &nErr)
}
