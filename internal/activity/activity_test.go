package activity

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrail(t *testing.T) *Logger {
	t.Helper()
	l := NewLogger(filepath.Join(t.TempDir(), "activity.log"))
	l.now = func() time.Time { return time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC) }
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := newTrail(t)

	require.NoError(t, l.Record("Jane Wambui", "recorded", "contribution", 1, "KSh 5,000.00"))
	require.NoError(t, l.Record("Jane Wambui", "approved", "loan", 2, ""))

	lines, err := l.Recent(0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	// newest first
	assert.Equal(t, "[2026-08-30 14:30:00] Jane Wambui approved loan#2", lines[0])
	assert.Equal(t, "[2026-08-30 14:30:00] Jane Wambui recorded contribution#1: KSh 5,000.00", lines[1])

	lines, err = l.Recent(1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "approved loan#2")
}

func TestRecentOnMissingFile(t *testing.T) {
	l := NewLogger(filepath.Join(t.TempDir(), "never-written.log"))
	lines, err := l.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestClear(t *testing.T) {
	l := newTrail(t)
	require.NoError(t, l.Record("Admin", "cleared", "test", 1, ""))
	require.NoError(t, l.Clear())

	lines, err := l.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// clearing a missing file is fine
	missing := NewLogger(filepath.Join(t.TempDir(), "missing.log"))
	assert.NoError(t, missing.Clear())
}

func TestConcurrentAppends(t *testing.T) {
	l := newTrail(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = l.Record("Worker", "recorded", "contribution", uint(n), "")
		}(i)
	}
	wg.Wait()

	lines, err := l.Recent(0)
	require.NoError(t, err)
	assert.Len(t, lines, 20)
}
