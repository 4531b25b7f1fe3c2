package spool

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Queue manages a persistent spool of play events using SQLite. Events
// accumulate while the server is unreachable and are drained by the
// Submitter once it comes back.
type Queue struct {
	db *sql.DB
}

// PlayEvent is one listened track waiting to be reported to the server.
type PlayEvent struct {
	ID        int64
	TrackID   string
	Title     string
	Artist    string
	PlayedAt  time.Time
	Submitted bool
	Error     string
}

// NewQueue creates a new play-event queue backed by SQLite
func NewQueue(dbPath string) (*Queue, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool size to 1 for in-memory databases to ensure consistency
	// For file-based databases, this still works well for our use case
	db.SetMaxOpenConns(1)

	// Configure SQLite for optimal performance and safety
	pragmas := []string{
		"PRAGMA foreign_keys = ON",    // Enforce foreign key constraints
		"PRAGMA busy_timeout = 10000", // Wait up to 10 seconds on lock
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for concurrent access
		"PRAGMA temp_store = MEMORY",  // Use memory for temp tables
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	// Create the schema
	schema := `
		CREATE TABLE IF NOT EXISTS play_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			played_at INTEGER NOT NULL,
			submitted BOOLEAN DEFAULT 0,
			error TEXT,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_submitted ON play_events(submitted, played_at);
		CREATE INDEX IF NOT EXISTS idx_played_at ON play_events(played_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Queue{db: db}, nil
}

// Close closes the database connection
func (q *Queue) Close() error {
	if q.db != nil {
		return q.db.Close()
	}
	return nil
}

// Add records a new play event in the spool
func (q *Queue) Add(ctx context.Context, event PlayEvent) (int64, error) {
	query := `
		INSERT INTO play_events (track_id, title, artist, played_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := q.db.ExecContext(ctx, query,
		event.TrackID,
		event.Title,
		event.Artist,
		event.PlayedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert play event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// MarkSubmitted marks a play event as successfully reported to the server
func (q *Queue) MarkSubmitted(ctx context.Context, id int64) error {
	query := `
		UPDATE play_events
		SET submitted = 1, error = NULL
		WHERE id = ?
	`

	result, err := q.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark play event as submitted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("play event with id %d not found", id)
	}

	return nil
}

// MarkDropped takes a play event out of future passes while keeping the
// reason it could not be submitted
func (q *Queue) MarkDropped(ctx context.Context, id int64, reason string) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE play_events SET submitted = 1, error = ? WHERE id = ?",
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to drop play event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("play event with id %d not found", id)
	}

	return nil
}

// MarkError marks a play event as failed with an error message
func (q *Queue) MarkError(ctx context.Context, id int64, errMsg string) error {
	query := `
		UPDATE play_events
		SET error = ?
		WHERE id = ?
	`

	result, err := q.db.ExecContext(ctx, query, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to mark play event error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("play event with id %d not found", id)
	}

	return nil
}

// GetPending retrieves all unsubmitted play events, oldest first.
// Optionally limits the number of results
func (q *Queue) GetPending(ctx context.Context, limit int) ([]PlayEvent, error) {
	query := `
		SELECT id, track_id, title, artist, played_at, submitted, COALESCE(error, '')
		FROM play_events
		WHERE submitted = 0
		ORDER BY played_at ASC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending play events: %w", err)
	}
	defer rows.Close()

	var events []PlayEvent
	for rows.Next() {
		var e PlayEvent
		var playedAt int64
		if err := rows.Scan(&e.ID, &e.TrackID, &e.Title, &e.Artist, &playedAt, &e.Submitted, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan play event: %w", err)
		}
		e.PlayedAt = time.Unix(playedAt, 0)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play events: %w", err)
	}

	return events, nil
}

// PruneSubmitted deletes submitted play events older than the cutoff
func (q *Queue) PruneSubmitted(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		"DELETE FROM play_events WHERE submitted = 1 AND played_at < ?",
		olderThan.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune play events: %w", err)
	}
	return result.RowsAffected()
}
