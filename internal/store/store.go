// Package store manages all DuckDB persistence for pane-keyed session state.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"steward/internal/id"
	"steward/internal/model"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Store wraps a DuckDB connection and exposes session-state persistence.
// The hook opens one fresh per invocation; the indexer never writes here.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the given DuckDB file, creating the
// parent directory as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", dbPath, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the tables and indexes if they don't exist.
func (s *Store) Init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Upsert inserts or updates the record for a pane. On update, first_seen is
// preserved, last_updated refreshed, and last_session_id captures the prior
// session id only when the incoming id differs from it.
func (s *Store) Upsert(rec model.PaneSession) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (
			pane_id, tmux_session, tmux_window, tmux_pane, tmux_location,
			session_id, cwd, transcript_path, state,
			first_seen, last_updated, last_session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (pane_id) DO UPDATE SET
			tmux_session    = excluded.tmux_session,
			tmux_window     = excluded.tmux_window,
			tmux_pane       = excluded.tmux_pane,
			tmux_location   = excluded.tmux_location,
			last_session_id = CASE
				WHEN session_id != excluded.session_id THEN session_id
				ELSE last_session_id
			END,
			session_id      = excluded.session_id,
			cwd             = excluded.cwd,
			transcript_path = excluded.transcript_path,
			state           = excluded.state,
			last_updated    = excluded.last_updated
	`,
		string(rec.PaneID), rec.TmuxSession, rec.TmuxWindow, rec.TmuxPane,
		rec.TmuxLocation, string(rec.SessionID), nullStr(rec.CWD),
		nullStr(rec.TranscriptPath), rec.State.Encode(),
		rec.FirstSeen, rec.LastUpdated,
	)
	return err
}

// Delete removes the record for a pane.
func (s *Store) Delete(pane id.Pane) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE pane_id = ?`, string(pane))
	return err
}

const sessionCols = `pane_id, tmux_session, tmux_window, tmux_pane,
	tmux_location, session_id, cwd, transcript_path, state,
	first_seen, last_updated, last_session_id`

// FindBySessionID returns the pane record for a session id, matching either
// the current or the last seen id so search joins survive resumes.
// Returns nil when no pane is running that session.
func (s *Store) FindBySessionID(sid id.Session) (*model.PaneSession, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
		SELECT %s FROM sessions
		WHERE session_id = ? OR last_session_id = ?
		LIMIT 1
	`, sessionCols), string(sid), string(sid))

	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns all pane records, most recently updated first.
func (s *Store) List() ([]model.PaneSession, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s FROM sessions ORDER BY last_updated DESC
	`, sessionCols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PaneSession
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertEvent appends one row to the audit log. Best effort; callers in the
// hook path discard the error after logging.
func (s *Store) InsertEvent(pane id.Pane, sid id.Session, eventType, detail string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO events (pane_id, session_id, event_type, detail, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, string(pane), string(sid), eventType, nullStr(detail), ts)
	return err
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(rs rowScanner) (model.PaneSession, error) {
	var (
		rec           model.PaneSession
		paneID        string
		sessionID     string
		cwd           sql.NullString
		transcript    sql.NullString
		stateRaw      string
		lastSessionID sql.NullString
	)
	err := rs.Scan(
		&paneID, &rec.TmuxSession, &rec.TmuxWindow, &rec.TmuxPane,
		&rec.TmuxLocation, &sessionID, &cwd, &transcript, &stateRaw,
		&rec.FirstSeen, &rec.LastUpdated, &lastSessionID,
	)
	if err != nil {
		return model.PaneSession{}, err
	}

	state, err := model.DecodeState(stateRaw)
	if err != nil {
		return model.PaneSession{}, fmt.Errorf("pane %s: %w", paneID, err)
	}

	rec.PaneID = id.Pane(paneID)
	rec.SessionID = id.Session(sessionID)
	rec.CWD = cwd.String
	rec.TranscriptPath = transcript.String
	rec.State = state
	rec.LastSessionID = id.Session(lastSessionID.String)
	return rec, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
