// Package matchstore defines archival storage for harvested matches.
package matchstore

import (
	"context"
	"time"

	"github.com/gamestats/smite-stats/pkg/smite"
)

// Store archives normalized match data.
type Store interface {
	// SaveMatch persists a normalized match. Saving the same match id
	// again replaces the stored details and players.
	SaveMatch(ctx context.Context, m smite.Match) error

	// SaveMatchIDs records which match ids a queue listing returned for a
	// queue/date/hour slot, before details are fetched. Re-recording a
	// slot is idempotent.
	SaveMatchIDs(ctx context.Context, queue int, date time.Time, hour int, ids []int64) error

	// RecentMatches returns the most recently archived matches, newest
	// first, up to limit.
	RecentMatches(ctx context.Context, limit int) ([]ArchivedMatch, error)

	// Close releases resources.
	Close() error
}

// ArchivedMatch summarizes a stored match.
type ArchivedMatch struct {
	ID          int64
	Details     map[string]any
	PlayerCount int
	ArchivedAt  time.Time
}

// NoopStore discards everything. Used when no database is configured.
type NoopStore struct{}

// SaveMatch implements Store.
func (NoopStore) SaveMatch(context.Context, smite.Match) error { return nil }

// SaveMatchIDs implements Store.
func (NoopStore) SaveMatchIDs(context.Context, int, time.Time, int, []int64) error { return nil }

// RecentMatches implements Store.
func (NoopStore) RecentMatches(context.Context, int) ([]ArchivedMatch, error) { return nil, nil }

// Close implements Store.
func (NoopStore) Close() error { return nil }
