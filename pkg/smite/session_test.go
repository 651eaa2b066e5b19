package smite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var sessionTestStart = time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)

func approvedSession() Session {
	return Session{Status: statusApproved, ID: "ABC123", StartedAt: sessionTestStart}
}

func TestSessionActive_Fresh(t *testing.T) {
	sess := approvedSession()
	assert.True(t, sess.Active(sessionTestStart))
	assert.True(t, sess.Active(sessionTestStart.Add(time.Minute)))
}

func TestSessionActive_ExpiryBoundary(t *testing.T) {
	sess := approvedSession()

	// Active strictly below 15*60-2 seconds of elapsed time.
	boundary := 15*time.Minute - expiryMargin

	assert.True(t, sess.Active(sessionTestStart.Add(boundary-time.Second)))
	assert.True(t, sess.Active(sessionTestStart.Add(boundary-time.Millisecond)))
	assert.False(t, sess.Active(sessionTestStart.Add(boundary)))
	assert.False(t, sess.Active(sessionTestStart.Add(15*time.Minute)))
	assert.False(t, sess.Active(sessionTestStart.Add(time.Hour)))
}

func TestSessionActive_ClockBehindStart(t *testing.T) {
	// A local clock behind the API's counts as zero elapsed time.
	sess := approvedSession()
	assert.True(t, sess.Active(sessionTestStart.Add(-time.Minute)))
}

func TestSessionActive_NotApproved(t *testing.T) {
	sess := approvedSession()
	sess.Status = "Invalid Developer Id"
	assert.False(t, sess.Active(sessionTestStart))
}

func TestSessionActive_EmptyID(t *testing.T) {
	sess := approvedSession()
	sess.ID = ""
	assert.False(t, sess.Active(sessionTestStart))
}

func TestSessionActive_Zero(t *testing.T) {
	assert.False(t, Session{}.Active(sessionTestStart))
}

func TestSessionReset(t *testing.T) {
	sess := approvedSession()
	sess.Reset()
	assert.Equal(t, Session{}, sess)
}
