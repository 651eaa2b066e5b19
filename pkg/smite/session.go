// Package smite provides a client for the Hi-Rez Smite game-statistics
// REST API. The API is session-authenticated: a short-lived session token
// is obtained with an unauthenticated createsession call, every request is
// signed with an MD5 digest over the developer credentials, and responses
// are JSON with API-level soft errors embedded in otherwise-200 bodies.
package smite

import "time"

const (
	// TimestampLayout is the compact UTC timestamp format used in signed
	// request URLs and in the persisted session blob.
	TimestampLayout = "20060102150405"

	// statusApproved is the session status the API reports on success.
	statusApproved = "Approved"

	// sessionMaxAge is how long the API honors a session after creation.
	sessionMaxAge = 15 * time.Minute

	// expiryMargin is subtracted from the expiry boundary. The API has no
	// defined response for a request signed with an expired session id, so
	// a session is treated as dead slightly before the server would.
	expiryMargin = 2 * time.Second
)

// Session is a time-boxed authentication credential issued by the API.
// The zero value is the "no session" state; a populated Session is only
// ever produced by a successful createsession response and is replaced
// wholesale when it expires.
type Session struct {
	// Status is the API-reported session state, "Approved" on success.
	Status string

	// ID is the opaque session token included in signed URLs.
	ID string

	// StartedAt is the session creation time per the API's clock, UTC.
	StartedAt time.Time
}

// Active reports whether the session can still authenticate a request at
// the given instant. A session is active iff its status is "Approved", its
// id is non-empty, and less than 15 minutes minus a 2 second margin have
// elapsed since it started. Instants before StartedAt count as zero
// elapsed time rather than failing, tolerating minor clock skew between
// the API and the local host.
func (s Session) Active(now time.Time) bool {
	if s.Status != statusApproved {
		return false
	}
	if s.ID == "" {
		return false
	}
	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return sessionMaxAge-elapsed > expiryMargin
}

// Reset clears the session back to the zero "no session" state.
func (s *Session) Reset() {
	*s = Session{}
}
