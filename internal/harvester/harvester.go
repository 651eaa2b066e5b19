// Package harvester drives bulk collection: list completed matches for a
// queue and time slot, fetch each match's details, and archive them.
package harvester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamestats/smite-stats/pkg/matchstore"
	"github.com/gamestats/smite-stats/pkg/smite"
)

// wholeDayHour is the API's hour argument for a full-day listing.
const wholeDayHour = -1

// Harvester fetches and archives matches through a single API client.
type Harvester struct {
	client *smite.Client
	store  matchstore.Store
	logger *slog.Logger
}

// Result summarizes one harvesting run.
type Result struct {
	// Listed is how many completed match ids the queue listing returned.
	Listed int

	// Archived is how many matches were fetched and stored.
	Archived int

	// Failed is how many matches could not be fetched or stored.
	Failed int
}

// New creates a Harvester. A nil logger uses slog.Default().
func New(client *smite.Client, store matchstore.Store, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{client: client, store: store, logger: logger}
}

// HarvestHour lists and archives the completed matches of one queue, date,
// and hour slot. Individual match failures are logged and counted, not
// fatal; an overuse report aborts the run immediately since every further
// request would burn rejected quota.
func (h *Harvester) HarvestHour(ctx context.Context, queue int, date time.Time, hour int) (Result, error) {
	var res Result

	ids, err := h.client.GetQueueMatches(ctx, queue, date, hour)
	if err != nil {
		return res, fmt.Errorf("listing queue %d matches: %w", queue, err)
	}
	res.Listed = len(ids)

	if err := h.store.SaveMatchIDs(ctx, queue, date, hour, ids); err != nil {
		return res, fmt.Errorf("recording harvest slot: %w", err)
	}

	for _, id := range ids {
		match, err := h.client.GetMatch(ctx, id)
		if err != nil {
			if errors.Is(err, smite.ErrOveruse) {
				return res, err
			}
			h.logger.Error("fetching match", "match", id, "error", err)
			res.Failed++
			continue
		}

		if err := h.store.SaveMatch(ctx, match); err != nil {
			h.logger.Error("archiving match", "match", id, "error", err)
			res.Failed++
			continue
		}
		res.Archived++
	}

	h.logger.Info("harvest slot complete",
		"queue", queue, "date", date.Format("2006-01-02"), "hour", hour,
		"listed", res.Listed, "archived", res.Archived, "failed", res.Failed)
	return res, nil
}

// HarvestDay harvests a whole date. With no hours configured it issues a
// single full-day listing; otherwise it walks the configured hours in
// order, accumulating results.
func (h *Harvester) HarvestDay(ctx context.Context, queue int, date time.Time, hours []int) (Result, error) {
	if len(hours) == 0 {
		return h.HarvestHour(ctx, queue, date, wholeDayHour)
	}

	var total Result
	for _, hour := range hours {
		res, err := h.HarvestHour(ctx, queue, date, hour)
		total.Listed += res.Listed
		total.Archived += res.Archived
		total.Failed += res.Failed
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
