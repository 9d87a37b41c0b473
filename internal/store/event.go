package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event is a fired click persisted for a session.
type Event struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Kind      string        `json:"kind"`
	Offset    time.Duration `json:"offset"` // Since session start
	CreatedAt time.Time     `json:"created_at"`
}

// EventRepository records fired clicks.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append inserts e and bumps the click count of its session.
// An empty ID is filled with a new UUID.
func (r *EventRepository) Append(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE sessions SET clicks = clicks + 1 WHERE id = ?`, e.SessionID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(
		`INSERT INTO gesture_events (id, session_id, kind, offset_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Kind, e.Offset.Milliseconds(), e.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListBySession returns the events of a session in firing order.
func (r *EventRepository) ListBySession(sessionID string) ([]*Event, error) {
	return r.query(
		`SELECT id, session_id, kind, offset_ms, created_at
		 FROM gesture_events WHERE session_id = ? ORDER BY offset_ms ASC, created_at ASC`,
		sessionID,
	)
}

// Recent returns up to limit events across sessions, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	return r.query(
		`SELECT id, session_id, kind, offset_ms, created_at
		 FROM gesture_events ORDER BY created_at DESC, offset_ms DESC LIMIT ?`,
		limit,
	)
}

func (r *EventRepository) query(q string, args ...any) ([]*Event, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var offsetMs int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &offsetMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Offset = time.Duration(offsetMs) * time.Millisecond
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
