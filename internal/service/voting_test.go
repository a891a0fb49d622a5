package service

import (
	"testing"
	"time"

	"github.com/pamoja-connect/Chama-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openProposal(t *testing.T, env *testEnv, creator *models.User) *models.VotingProposal {
	t.Helper()
	p, _, err := env.voting.CreateProposal(creator, ProposalInput{
		Title:                "Raise the monthly contribution",
		Description:          "Increase the monthly contribution from KSh 500 to KSh 700.",
		Type:                 "financial",
		VotingStart:          time.Now().Add(-time.Hour),
		VotingEnd:            time.Now().Add(time.Hour),
		MinimumParticipation: 50,
	})
	require.NoError(t, err)

	chairman := &models.User{}
	require.NoError(t, env.db.Where("role = ?", "Chairman").First(chairman).Error)
	p, _, err = env.voting.Activate(chairman, p.ID)
	require.NoError(t, err)
	return p
}

func TestVoteOncePerMember(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "chairman", "Chairman")
	a := env.user(t, "amina", "Member")
	b := env.user(t, "barasa", "Member")

	p := openProposal(t, env, a)

	_, _, err := env.voting.CastVote(a, p.ID, models.VoteYes, "long overdue")
	require.NoError(t, err)

	// same member, even with a different choice: refused as already voted
	_, _, err = env.voting.CastVote(a, p.ID, models.VoteNo, "")
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	_, _, err = env.voting.CastVote(b, p.ID, models.VoteAbstain, "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.Vote{}).Where("proposal_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestVoteWindowAndChoices(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	member := env.user(t, "dalila", "Member")

	// window entirely in the future
	p, _, err := env.voting.CreateProposal(member, ProposalInput{
		Title:                "Buy a tent for meetings",
		Description:          "Purchase a tent so meetings continue through the rains.",
		Type:                 "project",
		VotingStart:          time.Now().Add(time.Hour),
		VotingEnd:            time.Now().Add(2 * time.Hour),
		MinimumParticipation: 50,
	})
	require.NoError(t, err)
	_, _, err = env.voting.Activate(chairman, p.ID)
	require.NoError(t, err)

	_, _, err = env.voting.CastVote(member, p.ID, models.VoteYes, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr, "voting before the window opens is refused")

	_, _, err = env.voting.CastVote(member, p.ID, "maybe", "")
	require.ErrorAs(t, err, &vErr)

	// end precedes start
	_, _, err = env.voting.CreateProposal(member, ProposalInput{
		Title:                "Backwards window",
		Description:          "A proposal whose voting window is inverted on purpose.",
		Type:                 "policy",
		VotingStart:          time.Now().Add(2 * time.Hour),
		VotingEnd:            time.Now().Add(time.Hour),
		MinimumParticipation: 50,
	})
	require.ErrorAs(t, err, &vErr)
}

func TestCloseTallies(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	a := env.user(t, "auma", "Member")
	b := env.user(t, "bakari", "Member")
	c := env.user(t, "cherono", "Member")

	p := openProposal(t, env, a)

	_, _, err := env.voting.CastVote(a, p.ID, models.VoteYes, "")
	require.NoError(t, err)
	_, _, err = env.voting.CastVote(b, p.ID, models.VoteYes, "")
	require.NoError(t, err)
	_, _, err = env.voting.CastVote(c, p.ID, models.VoteNo, "")
	require.NoError(t, err)

	// closing before the window ends is refused
	_, _, _, err = env.voting.Close(chairman, p.ID, time.Now())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	after := time.Now().Add(2 * time.Hour)
	closed, tally, _, err := env.voting.Close(chairman, p.ID, after)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusClosed, closed.Status)
	assert.Equal(t, 2, tally.Yes)
	assert.Equal(t, 1, tally.No)
	assert.Equal(t, 4, tally.Eligible) // chairman plus three members
	assert.InDelta(t, 75.0, tally.Participation, 0.01)
	assert.True(t, tally.Passed)

	// closing twice is a reported no-op
	_, _, _, err = env.voting.Close(chairman, p.ID, after)
	var cErr *StateConflictError
	require.ErrorAs(t, err, &cErr)
	assert.True(t, cErr.AlreadyDone)

	impl, _, err := env.voting.MarkImplemented(chairman, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusImplemented, impl.Status)
}
