// Package state persists the playback session between runs.
package state

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "murn"
	dbFileName   = "murn.db"
	saveDebounce = 500 * time.Millisecond
)

// Session is the state restored on startup and written back while the
// player runs.
type Session struct {
	Volume    int
	Muted     bool
	Shuffle   bool
	QueuePath string // last queued directory
	TrackPath string // last playing track
	Elapsed   time.Duration
}

// defaultSession matches first-run behavior: half volume, shuffle on,
// nothing queued.
func defaultSession() Session {
	return Session{Volume: 50, Shuffle: true}
}

// Manager owns the state database. Saves are debounced so the periodic
// UI tick can call Save freely without hammering the disk; Close
// flushes whatever is pending.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Session
}

func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return openAt(dbPath)
}

func openAt(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = saveSession(m.db, *pending)
	}

	return m.db.Close()
}

// Load returns the persisted session, or defaults on first run.
func (m *Manager) Load() (Session, error) {
	var s Session
	var elapsed int64

	row := m.db.QueryRow(`
		SELECT volume, muted, shuffle, queue_path, track_path, elapsed_seconds
		FROM session WHERE id = 1
	`)
	err := row.Scan(&s.Volume, &s.Muted, &s.Shuffle, &s.QueuePath, &s.TrackPath, &elapsed)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultSession(), nil
	}
	if err != nil {
		return defaultSession(), err
	}

	s.Elapsed = time.Duration(elapsed) * time.Second
	return s, nil
}

// Save schedules a debounced write of the session.
func (m *Manager) Save(s Session) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveSession(m.db, *pending)
		}
	})
}

func saveSession(db *sql.DB, s Session) error {
	_, err := db.Exec(`
		INSERT INTO session (id, volume, muted, shuffle, queue_path, track_path, elapsed_seconds)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			shuffle = excluded.shuffle,
			queue_path = excluded.queue_path,
			track_path = excluded.track_path,
			elapsed_seconds = excluded.elapsed_seconds
	`, s.Volume, s.Muted, s.Shuffle, s.QueuePath, s.TrackPath, int64(s.Elapsed.Seconds()))
	return err
}
