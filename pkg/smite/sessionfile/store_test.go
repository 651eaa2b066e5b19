package sessionfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamestats/smite-stats/pkg/smite"
)

func testSession() smite.Session {
	return smite.Session{
		Status:    "Approved",
		ID:        "ABC123",
		StartedAt: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "session"))
	sess := testSession()

	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)
}

func TestSaveLoad_TruncatesToSeconds(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "session"))
	sess := testSession()
	sess.StartedAt = sess.StartedAt.Add(250 * time.Millisecond)

	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.StartedAt.Truncate(time.Second), loaded.StartedAt)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "no-such-session"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, smite.Session{}, loaded)
}

func TestLoad_CorruptBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("Approved\nABC123\n"), 0o600))

	_, err := New(path).Load()
	assert.Error(t, err)
}

func TestLoad_BadTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("Approved\nABC123\nnot-a-time\n"), 0o600))

	_, err := New(path).Load()
	assert.Error(t, err)
}

func TestSave_IncompleteSession(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "session"))

	tests := []struct {
		name string
		mut  func(*smite.Session)
	}{
		{"empty status", func(s *smite.Session) { s.Status = "" }},
		{"empty id", func(s *smite.Session) { s.ID = "" }},
		{"zero start", func(s *smite.Session) { s.StartedAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := testSession()
			tt.mut(&sess)
			assert.ErrorIs(t, store.Save(sess), ErrIncompleteSession)
		})
	}
}

func TestSave_ReplacesPrevious(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "session"))
	first := testSession()
	require.NoError(t, store.Save(first))

	second := testSession()
	second.ID = "XYZ789"
	second.StartedAt = first.StartedAt.Add(20 * time.Minute)
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestSave_UnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	// The path itself is a directory, so the write must fail.
	store := New(dir)

	assert.Error(t, store.Save(testSession()))
}
