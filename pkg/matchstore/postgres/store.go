// Package postgres provides PostgreSQL match archival.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/gamestats/smite-stats/pkg/matchstore"
	"github.com/gamestats/smite-stats/pkg/smite"
)

const defaultRecentLimit = 50

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store implements matchstore.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open database handle. The caller owns the
// handle's lifetime except through Close.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveMatch persists a match and its player records in one transaction.
// An existing match with the same id is replaced.
func (s *Store) SaveMatch(ctx context.Context, m smite.Match) error {
	details, err := json.Marshal(m.Details)
	if err != nil {
		return fmt.Errorf("encoding match details: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertMatch := psq.Insert("matches").
		Columns("id", "details", "player_count", "archived_at").
		Values(m.ID, details, len(m.Players), time.Now().UTC()).
		Suffix("ON CONFLICT (id) DO UPDATE SET details = EXCLUDED.details, " +
			"player_count = EXCLUDED.player_count, archived_at = EXCLUDED.archived_at")
	query, args, err := insertMatch.ToSql()
	if err != nil {
		return fmt.Errorf("building match insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}

	query, args, err = psq.Delete("match_players").Where(sq.Eq{"match_id": m.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("building player delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing player rows: %w", err)
	}

	for i, player := range m.Players {
		fields, err := json.Marshal(player)
		if err != nil {
			return fmt.Errorf("encoding player %d: %w", i, err)
		}
		query, args, err = psq.Insert("match_players").
			Columns("match_id", "player_index", "fields").
			Values(m.ID, i, fields).
			ToSql()
		if err != nil {
			return fmt.Errorf("building player insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting player %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing match: %w", err)
	}
	return nil
}

// SaveMatchIDs records the ids a queue listing returned for a slot.
// Already-recorded ids are left untouched.
func (s *Store) SaveMatchIDs(ctx context.Context, queue int, date time.Time, hour int, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	insert := psq.Insert("harvest_slots").
		Columns("queue", "match_date", "hour", "match_id")
	for _, id := range ids {
		insert = insert.Values(queue, date.Format("2006-01-02"), hour, id)
	}
	insert = insert.Suffix("ON CONFLICT DO NOTHING")

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("building slot insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting harvest slot: %w", err)
	}
	return nil
}

// RecentMatches returns the most recently archived matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]matchstore.ArchivedMatch, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query, args, err := psq.Select("id", "details", "player_count", "archived_at").
		From("matches").
		OrderBy("archived_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building recent query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []matchstore.ArchivedMatch
	for rows.Next() {
		var (
			m       matchstore.ArchivedMatch
			details []byte
		)
		if err := rows.Scan(&m.ID, &details, &m.PlayerCount, &m.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		if err := json.Unmarshal(details, &m.Details); err != nil {
			return nil, fmt.Errorf("decoding details for match %d: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match rows: %w", err)
	}
	return matches, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
