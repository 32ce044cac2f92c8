package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := openAt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManager_Load_FirstRun(t *testing.T) {
	m := openTestManager(t)

	s, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, 50, s.Volume)
	require.False(t, s.Muted)
	require.True(t, s.Shuffle)
	require.Empty(t, s.QueuePath)
	require.Empty(t, s.TrackPath)
	require.Zero(t, s.Elapsed)
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	m := openTestManager(t)

	saved := Session{
		Volume:    80,
		Muted:     true,
		Shuffle:   false,
		QueuePath: "/music/album",
		TrackPath: "/music/album/03.flac",
		Elapsed:   95 * time.Second,
	}
	require.NoError(t, saveSession(m.db, saved))

	got, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, saved, got)
}

func TestManager_SaveOverwrites(t *testing.T) {
	m := openTestManager(t)

	require.NoError(t, saveSession(m.db, Session{Volume: 30}))
	require.NoError(t, saveSession(m.db, Session{Volume: 70, Shuffle: true}))

	got, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, 70, got.Volume)
	require.True(t, got.Shuffle)
}

func TestManager_DebouncedSave(t *testing.T) {
	m := openTestManager(t)

	// Rapid saves collapse into one write of the latest session.
	m.Save(Session{Volume: 10})
	m.Save(Session{Volume: 20})
	m.Save(Session{Volume: 33})

	require.Eventually(t, func() bool {
		s, err := m.Load()
		return err == nil && s.Volume == 33
	}, 2*time.Second, 20*time.Millisecond)
}

func TestManager_CloseFlushesPendingSave(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	m, err := openAt(dbPath)
	require.NoError(t, err)

	m.Save(Session{Volume: 61, QueuePath: "/music"})
	require.NoError(t, m.Close())

	reopened, err := openAt(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	s, err := reopened.Load()
	require.NoError(t, err)
	require.Equal(t, 61, s.Volume)
	require.Equal(t, "/music", s.QueuePath)
}

func TestManager_SessionSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	m, err := openAt(dbPath)
	require.NoError(t, err)
	require.NoError(t, saveSession(m.db, Session{Volume: 42, TrackPath: "/a.mp3"}))
	require.NoError(t, m.Close())

	m2, err := openAt(dbPath)
	require.NoError(t, err)
	defer m2.Close()

	s, err := m2.Load()
	require.NoError(t, err)
	require.Equal(t, 42, s.Volume)
	require.Equal(t, "/a.mp3", s.TrackPath)
}
