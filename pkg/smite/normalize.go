package smite

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// createSessionTimestampLayout is the timestamp format the API uses in
// createsession responses, distinct from the compact layout used in URLs.
const createSessionTimestampLayout = "01/02/2006 03:04:05 PM"

// Queue-match Active_Flag vocabulary. Completed matches are flagged "n"
// (no longer active); anything other than "n" or "y" is unexpected.
const (
	flagCompleted   = "n"
	flagStillActive = "y"
)

// normalizer reshapes raw transport responses into domain records. The
// API habitually returns HTTP 200 with per-record soft errors embedded in
// the JSON body, so normalization tolerates record-level noise by skipping
// and logging rather than failing a whole batch. Transport failures and
// structurally broken JSON always fail loudly.
type normalizer struct {
	logger *slog.Logger
}

// decode applies the checks common to every call: the status code must be
// 200, and the body must be valid JSON for the target shape.
func (n normalizer) decode(method string, status int, body []byte, into any) error {
	if status != http.StatusOK {
		n.logger.Error("api responded with non-200 status",
			"method", method, "status", status, "body", string(body))
		return &TransportError{StatusCode: status, Body: string(body)}
	}
	if err := json.Unmarshal(body, into); err != nil {
		return &ParseError{Method: method, Err: err}
	}
	return nil
}

type createSessionResponse struct {
	RetMsg    string `json:"ret_msg"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// createSession parses a createsession response into a Session. An
// unparsable timestamp yields the zero Session without an error: session
// creation is retried on next use, so an unrecognized response is treated
// as "no session" rather than a hard failure.
func (n normalizer) createSession(status int, body []byte) (Session, error) {
	var resp createSessionResponse
	if err := n.decode(createSessionMethod, status, body, &resp); err != nil {
		return Session{}, err
	}
	if resp.RetMsg == overuseMessage {
		return Session{}, fmt.Errorf("%s: %w", createSessionMethod, ErrOveruse)
	}

	started, err := time.Parse(createSessionTimestampLayout, resp.Timestamp)
	if err != nil {
		n.logger.Error("unrecognized createsession response",
			"body", string(body), "error", err)
		return Session{}, nil
	}
	return Session{
		Status:    resp.RetMsg,
		ID:        resp.SessionID,
		StartedAt: started.UTC(),
	}, nil
}

type queueMatchEntry struct {
	RetMsg     *string `json:"ret_msg"`
	ActiveFlag string  `json:"Active_Flag"`
	MatchID    string  `json:"Match"`
}

// queueMatches extracts completed match ids from a getmatchidsbyqueue
// response. Still-active matches are skipped silently, unknown flag values
// and per-record messages are logged and skipped, and unparsable ids drop
// the record rather than the batch.
func (n normalizer) queueMatches(status int, body []byte) ([]int64, error) {
	var entries []queueMatchEntry
	if err := n.decode(methodGetQueueMatches, status, body, &entries); err != nil {
		return nil, err
	}

	var ids []int64
	for _, e := range entries {
		if e.RetMsg != nil && *e.RetMsg == overuseMessage {
			return nil, fmt.Errorf("%s: %w", methodGetQueueMatches, ErrOveruse)
		}
		if e.ActiveFlag != flagCompleted {
			if e.ActiveFlag != flagStillActive {
				n.logger.Info("unexpected match active flag",
					"flag", e.ActiveFlag, "match", e.MatchID)
			}
			continue
		}
		if e.RetMsg != nil {
			n.logger.Info("skipping match with api message",
				"ret_msg", *e.RetMsg, "match", e.MatchID)
			continue
		}
		id, err := strconv.ParseInt(e.MatchID, 10, 64)
		if err != nil {
			n.logger.Error("unparsable match id", "match", e.MatchID, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// matchDetails normalizes a getmatchdetails response: a list of per-player
// records sharing one match id. Fields in the known match-scoped set land
// in Details, the rest in the per-player map. The match id is taken from
// each record in turn, last seen wins; a disagreement is logged but not
// treated as an error, matching the API's observed behavior.
func (n normalizer) matchDetails(status int, body []byte) (Match, error) {
	var records []map[string]any
	if err := n.decode(methodGetMatch, status, body, &records); err != nil {
		return Match{}, err
	}

	match := Match{Details: map[string]any{}}
	for _, rec := range records {
		if msg, ok := rec["ret_msg"].(string); ok && msg == overuseMessage {
			return Match{}, fmt.Errorf("%s: %w", methodGetMatch, ErrOveruse)
		}

		details := make(map[string]any)
		player := make(map[string]any)
		for k, v := range rec {
			if k == matchIDField {
				continue
			}
			if _, scoped := matchScopedFields[k]; scoped {
				details[k] = v
			} else {
				player[k] = v
			}
		}

		if id, ok := matchIDValue(rec[matchIDField]); ok {
			if match.ID != 0 && match.ID != id {
				n.logger.Warn("match id disagreement across player records",
					"previous", match.ID, "current", id)
			}
			match.ID = id
		}
		match.Details = details
		match.Players = append(match.Players, player)
	}
	return match, nil
}

// rawJSON applies the transport and JSON checks plus the overuse check,
// then hands the body back unreshaped. Used for static game data whose
// structure the client does not interpret.
func (n normalizer) rawJSON(method string, status int, body []byte) (json.RawMessage, error) {
	var doc any
	if err := n.decode(method, status, body, &doc); err != nil {
		return nil, err
	}
	if err := overuseIn(method, doc); err != nil {
		return nil, err
	}
	raw := make(json.RawMessage, len(body))
	copy(raw, body)
	return raw, nil
}

// overuseIn scans a decoded document, object or list of objects, for the
// overuse soft error.
func overuseIn(method string, doc any) error {
	check := func(rec map[string]any) error {
		if msg, ok := rec["ret_msg"].(string); ok && msg == overuseMessage {
			return fmt.Errorf("%s: %w", method, ErrOveruse)
		}
		return nil
	}
	switch v := doc.(type) {
	case map[string]any:
		return check(v)
	case []any:
		for _, item := range v {
			if rec, ok := item.(map[string]any); ok {
				if err := check(rec); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
