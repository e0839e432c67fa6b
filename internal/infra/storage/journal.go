// Package storage provides the append-only SQLite event journal. The
// journal exists for post-game analysis and balance tuning; it is never
// read back to restore a session.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/KrokodileDandy/quarantine-server/internal/platform/optimization"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_events (
	id         TEXT PRIMARY KEY,
	timestamp  DATETIME NOT NULL,
	event_type TEXT NOT NULL,
	actor      TEXT NOT NULL,
	payload    TEXT NOT NULL,
	game_day   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_events_day ON game_events(game_day);
CREATE INDEX IF NOT EXISTS idx_game_events_type ON game_events(event_type);
`

// Record is the journal's row shape: one serialized game event.
type Record struct {
	ID        string    `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	EventType string    `db:"event_type"`
	Actor     string    `db:"actor"`
	Payload   string    `db:"payload"`
	GameDay   int       `db:"game_day"`
}

// Journal is an append-only SQLite log of game events.
type Journal struct {
	db *sqlx.DB
}

// OpenJournal opens or creates the journal database at the given path.
func OpenJournal(path string, tuning *optimization.Config) (*Journal, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if tuning != nil {
		db.SetMaxOpenConns(tuning.DBMaxOpenConns)
		db.SetMaxIdleConns(tuning.DBMaxIdleConns)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Append writes one event record. Records are immutable once written.
func (j *Journal) Append(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO game_events (id, timestamp, event_type, actor, payload, game_day)
		VALUES (:id, :timestamp, :event_type, :actor, :payload, :game_day)`
	if _, err := j.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

// Count returns the number of journaled events, for operational checks.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM game_events`); err != nil {
		return 0, fmt.Errorf("count journal records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
