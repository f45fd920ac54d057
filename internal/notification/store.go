package notification

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"

	"github.com/pozitronik/wayle/internal/log"
)

// Store persists non-transient notifications to a local SQLite
// database, grounded on the migrate-on-open / graceful-disable shape of
// the teacher's fact store: open, migrate, and if either step fails,
// the daemon runs with persistence off rather than refusing to start.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenStore opens (creating if absent) the SQLite database at dbPath
// and runs its migration. A nil *Store with a non-nil error means the
// caller should log a warning and continue without persistence — per
// §4.4, disabled persistence has no in-memory impact.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("notification: open store: %w", err)
	}
	db.SetMaxOpenConns(1) // one connection behind a mutex-equivalent; writes are small and serialized

	s := &Store{db: db, logger: log.WithComponent("notification.store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("notification: migrate store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY,
			replaces_id INTEGER NOT NULL DEFAULT 0,
			app_name TEXT NOT NULL,
			icon TEXT,
			summary TEXT NOT NULL,
			body TEXT,
			actions TEXT,
			hints TEXT,
			expire_timeout INTEGER NOT NULL DEFAULT -1,
			timestamp TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// MaxID returns the highest persisted id, or 0 if the table is empty,
// used to seed the id allocator at startup.
func (s *Store) MaxID() (uint32, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(id) FROM notifications`).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return uint32(max.Int64), nil
}

// Insert upserts a notification row keyed by id (an insert-or-replace,
// matching Add's "insert-or-replace by id" semantics for the persisted
// list).
func (s *Store) Insert(n Notification) error {
	actionsJSON, err := json.Marshal(n.Actions)
	if err != nil {
		return err
	}
	hintsJSON, err := json.Marshal(n.Hints)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO notifications (id, replaces_id, app_name, icon, summary, body, actions, hints, expire_timeout, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			replaces_id = excluded.replaces_id,
			app_name = excluded.app_name,
			icon = excluded.icon,
			summary = excluded.summary,
			body = excluded.body,
			actions = excluded.actions,
			hints = excluded.hints,
			expire_timeout = excluded.expire_timeout,
			timestamp = excluded.timestamp
	`, n.ID, n.ReplacesID, n.AppName, n.Icon, n.Summary, n.Body,
		string(actionsJSON), string(hintsJSON), n.ExpireTimeout, n.Timestamp.Format(time.RFC3339Nano))
	return err
}

// Delete removes the row for id. Deleting a non-existent id is not an
// error.
func (s *Store) Delete(id uint32) error {
	_, err := s.db.Exec(`DELETE FROM notifications WHERE id = ?`, id)
	return err
}

// LoadAll returns every persisted notification, highest id first. The
// daemon's startup path does not call it; it only reads MaxID.
func (s *Store) LoadAll() ([]Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, replaces_id, app_name, icon, summary, body, actions, hints, expire_timeout, timestamp
		FROM notifications ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var actionsJSON, hintsJSON, timestamp string
		if err := rows.Scan(&n.ID, &n.ReplacesID, &n.AppName, &n.Icon, &n.Summary, &n.Body,
			&actionsJSON, &hintsJSON, &n.ExpireTimeout, &timestamp); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(actionsJSON), &n.Actions)
		_ = json.Unmarshal([]byte(hintsJSON), &n.Hints)
		n.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		n.RemoveExpired = true
		out = append(out, n)
	}
	return out, rows.Err()
}
