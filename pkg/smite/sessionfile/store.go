// Package sessionfile persists API sessions between runs as a small
// three-line text file: status, session id, and start timestamp in the
// compact YYYYMMDDHHMMSS form. A missing file is the normal first-run
// state, not an error.
package sessionfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gamestats/smite-stats/pkg/smite"
)

// ErrIncompleteSession is returned by Save when the session is missing a
// field. Persisting a partial session would produce a blob that can never
// round-trip.
var ErrIncompleteSession = errors.New("session is missing required fields")

// sessionFileMode keeps the blob private to the owner; the session id is
// a live credential for the developer's quota.
const sessionFileMode = 0o600

// Store reads and writes the session blob at a fixed path.
type Store struct {
	Path string
}

// New creates a Store for the given path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Save writes the session to the store's path, replacing any previous
// blob. The file is written in one shot so it is closed on every exit
// path. Saving a session with an empty status, empty id, or zero start
// time fails with ErrIncompleteSession.
func (s *Store) Save(sess smite.Session) error {
	if sess.Status == "" || sess.ID == "" || sess.StartedAt.IsZero() {
		return ErrIncompleteSession
	}

	blob := sess.Status + "\n" + sess.ID + "\n" +
		sess.StartedAt.UTC().Format(smite.TimestampLayout) + "\n"
	if err := os.WriteFile(s.Path, []byte(blob), sessionFileMode); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load reads the session blob. A missing file yields the zero Session and
// no error; any other read or parse failure is returned.
func (s *Store) Load() (smite.Session, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return smite.Session{}, nil
		}
		return smite.Session{}, fmt.Errorf("reading session file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		return smite.Session{}, fmt.Errorf("session file %s: expected 3 lines, found %d", s.Path, len(lines))
	}

	startedAt, err := time.Parse(smite.TimestampLayout, lines[2])
	if err != nil {
		return smite.Session{}, fmt.Errorf("session file %s: parsing timestamp: %w", s.Path, err)
	}

	return smite.Session{
		Status:    lines[0],
		ID:        lines[1],
		StartedAt: startedAt,
	}, nil
}
