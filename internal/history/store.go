package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/proposal-engine/internal/db"
)

// ErrSessionNotFound is returned for an unregistered session id.
var ErrSessionNotFound = errors.New("session not found")

// Store provides access to sessions and edits.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

func formatTime(t time.Time) string { return t.UTC().Format(db.TimeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(db.TimeLayout, s)
	return t
}

// Record inserts an edit. Empty ID and zero Timestamp are filled in.
func (s *Store) Record(ctx context.Context, e Edit) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edits (id, session_id, timestamp, action, target, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, formatTime(e.Timestamp), e.Action, e.Target, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting edit: %w", err)
	}
	return nil
}

// List returns edits matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Edit, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, formatTime(*filter.Until))
	}

	query := "SELECT id, session_id, timestamp, action, target, detail FROM edits"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying edits: %w", err)
	}
	defer rows.Close()

	var edits []Edit
	for rows.Next() {
		var (
			e  Edit
			ts string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &ts, &e.Action, &e.Target, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning edit: %w", err)
		}
		e.Timestamp = parseTime(ts)
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

// DeleteBefore removes all edits older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM edits WHERE timestamp < ?", formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("deleting old edits: %w", err)
	}
	return res.RowsAffected()
}

// Touch registers a session or updates its last_seen time.
func (s *Store) Touch(ctx context.Context, id, dir string) error {
	now := formatTime(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, dir, created_at, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
		id, dir, now, now,
	)
	if err != nil {
		return fmt.Errorf("registering session: %w", err)
	}
	return nil
}

// Session returns a registered session.
func (s *Store) Session(ctx context.Context, id string) (*Session, error) {
	var (
		sess             Session
		created, lastSee string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, dir, created_at, last_seen FROM sessions WHERE id = ?", id,
	).Scan(&sess.ID, &sess.Dir, &created, &lastSee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.CreatedAt = parseTime(created)
	sess.LastSeen = parseTime(lastSee)
	return &sess, nil
}

// StaleSessions returns the sessions not seen since before.
func (s *Store) StaleSessions(ctx context.Context, before time.Time) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, dir, created_at, last_seen FROM sessions WHERE last_seen < ? ORDER BY last_seen",
		formatTime(before),
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess             Session
			created, lastSee string
		)
		if err := rows.Scan(&sess.ID, &sess.Dir, &created, &lastSee); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.CreatedAt = parseTime(created)
		sess.LastSeen = parseTime(lastSee)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its edits.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM edits WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("deleting session edits: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Recorder returns a session.Recorder that logs edits of one session.
// Failures are logged and otherwise ignored so an edit never fails because
// its history could not be written.
func (s *Store) Recorder(sessionID string) *Recorder {
	return &Recorder{store: s, sessionID: sessionID}
}

// Recorder records the edits of one session.
type Recorder struct {
	store     *Store
	sessionID string
}

// RecordEdit implements session.Recorder.
func (r *Recorder) RecordEdit(action, target, detail string) {
	err := r.store.Record(context.Background(), Edit{
		SessionID: r.sessionID,
		Action:    action,
		Target:    target,
		Detail:    detail,
	})
	if err != nil {
		log.Printf("history: %v", err)
	}
}
