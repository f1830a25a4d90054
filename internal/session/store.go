// Package session provides SQLite-backed persistence for per-user session
// state: tone profile, bounded deliverable history, and turn count.
// All engine access goes through Load and Save under a per-session lock,
// so concurrent runs against the same session serialize their state updates.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskflowr/taskflowr/pkg/models"
)

// Store wraps an SQLite database holding session state.
type Store struct {
	conn         *sql.DB
	path         string
	historyLimit int

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is one session's exclusive lock plus the number of holders and
// waiters, so idle entries can be pruned from the map.
type sessionLock struct {
	mu      sync.Mutex
	waiters int
}

// DefaultDBPath returns the session database path under the XDG data
// directory.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskflowr", "sessions.db")
}

// Open opens the session database at the given path, creating parent
// directories and applying migrations. WAL mode is enabled for concurrent
// reads. historyLimit bounds how many deliverable summaries a session keeps.
func Open(path string, historyLimit int) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{
		conn:         conn,
		path:         path,
		historyLimit: historyLimit,
		locks:        make(map[string]*sessionLock),
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies pending schema migrations, tracked in schema_version.
func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Sessions},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Sessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	tone_profile TEXT NOT NULL DEFAULT '',
	history TEXT NOT NULL DEFAULT '[]',
	turn_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// Acquire takes the exclusive lock for a session and returns its release
// function. The engine holds this lock across its full load-run-save cycle
// so two runs on the same session never interleave state updates.
// The entry is dropped from the map once the last holder releases, so the
// map stays bounded by the number of sessions with an active run.
func (s *Store) Acquire(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.waiters++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.waiters--
		if lock.waiters == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// Load fetches a session by ID. An unknown ID yields a fresh session with
// defaults rather than an error; it is not persisted until the first Save.
// Undecodable stored state returns a CorruptionError.
func (s *Store) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	row := s.conn.QueryRowContext(ctx, `
		SELECT tone_profile, history, turn_count, created_at, updated_at
		FROM sessions WHERE id = ?
	`, sessionID)

	var (
		tone      string
		history   string
		turnCount int
		createdAt string
		updatedAt string
	)
	err := row.Scan(&tone, &history, &turnCount, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		now := time.Now()
		return &models.Session{
			ID:        sessionID,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	sess := &models.Session{
		ID:          sessionID,
		ToneProfile: tone,
		TurnCount:   turnCount,
	}
	if err := json.Unmarshal([]byte(history), &sess.History); err != nil {
		return nil, &CorruptionError{SessionID: sessionID, Reason: "history is not valid JSON", Err: err}
	}
	if turnCount < 0 {
		return nil, &CorruptionError{SessionID: sessionID, Reason: fmt.Sprintf("negative turn count %d", turnCount)}
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, &CorruptionError{SessionID: sessionID, Reason: "unparseable created_at", Err: err}
	}
	if sess.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, &CorruptionError{SessionID: sessionID, Reason: "unparseable updated_at", Err: err}
	}
	return sess, nil
}

// Save upserts a session as-is. Callers that record a completed run should
// use SaveRun, which also appends history and advances the turn count.
func (s *Store) Save(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		return errors.New("session id is required")
	}

	history, err := json.Marshal(sess.History)
	if err != nil {
		return fmt.Errorf("encode history for session %s: %w", sess.ID, err)
	}

	sess.UpdatedAt = time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = sess.UpdatedAt
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, tone_profile, history, turn_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tone_profile = excluded.tone_profile,
			history = excluded.history,
			turn_count = excluded.turn_count,
			updated_at = excluded.updated_at
	`, sess.ID, sess.ToneProfile, string(history), sess.TurnCount,
		formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// SaveRun records one completed run on the session: the deliverable summary
// is appended to history (trimmed to the retention limit, oldest first out)
// and the turn count advances by one.
func (s *Store) SaveRun(ctx context.Context, sess *models.Session, summary models.DeliverableSummary) error {
	sess.History = append(sess.History, summary)
	if s.historyLimit > 0 && len(sess.History) > s.historyLimit {
		sess.History = sess.History[len(sess.History)-s.historyLimit:]
	}
	sess.TurnCount++
	return s.Save(ctx, sess)
}

// SetTone updates just the tone profile of a session, creating it if needed.
func (s *Store) SetTone(ctx context.Context, sessionID, tone string) error {
	release := s.Acquire(sessionID)
	defer release()

	sess, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.ToneProfile = tone
	return s.Save(ctx, sess)
}

// List returns all persisted sessions ordered by most recent update.
func (s *Store) List(ctx context.Context) ([]models.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, tone_profile, history, turn_count, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var (
			sess      models.Session
			history   string
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&sess.ID, &sess.ToneProfile, &history, &sess.TurnCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if err := json.Unmarshal([]byte(history), &sess.History); err != nil {
			return nil, &CorruptionError{SessionID: sess.ID, Reason: "history is not valid JSON", Err: err}
		}
		if sess.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, &CorruptionError{SessionID: sess.ID, Reason: "unparseable created_at", Err: err}
		}
		if sess.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, &CorruptionError{SessionID: sess.ID, Reason: "unparseable updated_at", Err: err}
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.conn.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
