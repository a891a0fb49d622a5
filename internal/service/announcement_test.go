package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUrgentAnnouncementFansOut(t *testing.T) {
	env := newTestEnv(t)
	chairman := env.user(t, "chairman", "Chairman")
	env.user(t, "member-a", "Member")
	env.user(t, "member-b", "Member")
	announcements := NewAnnouncementService(env.db, env.sink, env.trail, zap.NewNop())

	_, _, err := announcements.Post(chairman, AnnouncementInput{
		Title:   "Routine notice",
		Content: "Next meeting moves to the community hall.",
	})
	require.NoError(t, err)
	routine := len(env.sink.sent)

	_, _, err = announcements.Post(chairman, AnnouncementInput{
		Title:    "Emergency meeting tomorrow",
		Content:  "All members must attend, we vote on the land purchase.",
		IsUrgent: true,
	})
	require.NoError(t, err)
	require.Greater(t, len(env.sink.sent), routine, "urgent notices are pushed to everyone")
	last := env.sink.sent[len(env.sink.sent)-1]
	assert.Len(t, last.UserIDs, 3)

	// members do not post announcements
	m := env.user(t, "member-c", "Member")
	_, _, err = announcements.Post(m, AnnouncementInput{
		Title:   "My own notice",
		Content: "This should not be allowed to go out.",
	})
	var pErr *PermissionError
	assert.ErrorAs(t, err, &pErr)
}
