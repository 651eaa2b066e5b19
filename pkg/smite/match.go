package smite

import "strconv"

// matchIDField is the per-record field carrying the match identifier.
const matchIDField = "Match"

// matchScopedFields are the getmatchdetails fields that describe the match
// itself rather than an individual player: start time, ban sequence,
// duration, replay flag, and the map name. Everything else on a record is
// player-scoped.
var matchScopedFields = buildMatchScopedFields()

func buildMatchScopedFields() map[string]struct{} {
	names := []string{"Entry_Datetime", "First_Ban_Side", "Minutes", "hasReplay", "name"}
	for i := 1; i <= 9; i++ {
		n := strconv.Itoa(i)
		names = append(names, "Ban"+n, "Ban"+n+"Id")
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Match is the normalized result of a getmatchdetails call. The API
// returns one record per player, all sharing one match id; normalization
// partitions each record into match-scoped details and per-player fields.
type Match struct {
	// ID is the match identifier shared by every player record.
	ID int64

	// Details holds the match-scoped fields keyed by API field name.
	Details map[string]any

	// Players holds the player-scoped fields of each record, in response
	// order.
	Players []map[string]any
}

// matchIDValue extracts a match id from a raw JSON field value. The API is
// inconsistent about the type: getmatchidsbyqueue returns it as a string,
// getmatchdetails as a number.
func matchIDValue(v any) (int64, bool) {
	switch id := v.(type) {
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int64(id), true
	default:
		return 0, false
	}
}
