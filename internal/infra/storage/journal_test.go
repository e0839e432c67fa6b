package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrokodileDandy/quarantine-server/internal/platform/optimization"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path, optimization.LoadTestConfig())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendAndCount(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, j.Append(ctx, Record{
		ID:        "evt-1",
		Timestamp: time.Now(),
		EventType: "DAY_CLOSED",
		Actor:     "SYSTEM_CLOCK",
		Payload:   `{"day":1}`,
		GameDay:   1,
	}))
	require.NoError(t, j.Append(ctx, Record{
		ID:        "evt-2",
		Timestamp: time.Now(),
		EventType: "PURCHASE",
		Actor:     "PLAYER",
		Payload:   `{"kind":"POLICE_OFFICERS"}`,
		GameDay:   1,
	}))

	n, err = j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJournalRejectsDuplicateIDs(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	rec := Record{
		ID:        "evt-dup",
		Timestamp: time.Now(),
		EventType: "DAY_CLOSED",
		Actor:     "SYSTEM_CLOCK",
		Payload:   "{}",
		GameDay:   2,
	}
	require.NoError(t, j.Append(ctx, rec))
	assert.Error(t, j.Append(ctx, rec), "the event ID is the primary key")
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	tuning := optimization.LoadTestConfig()

	j, err := OpenJournal(path, tuning)
	require.NoError(t, err)
	require.NoError(t, j.Append(context.Background(), Record{
		ID:        "evt-persist",
		Timestamp: time.Now(),
		EventType: "WEEK_CLOSED",
		Actor:     "SYSTEM_CLOCK",
		Payload:   "{}",
		GameDay:   7,
	}))
	require.NoError(t, j.Close())

	j2, err := OpenJournal(path, tuning)
	require.NoError(t, err)
	defer j2.Close()

	n, err := j2.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
