// Package display owns the visible lifetime of the active attendance token:
// one live code at a time, a countdown, and an explicit regeneration step
// once it expires.
package display

import (
	"time"

	"classmark/internal/token"
)

// State is the board's lifecycle position.
type State int

const (
	// StateIdle means no token has been generated yet.
	StateIdle State = iota
	// StateActive means a token is displayed and counting down.
	StateActive
	// StateExpired means the last token ran out; a new explicit Generate
	// is required — the board never regenerates on its own.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "idle"
	}
}

// Board holds at most one active token for a lecture. Ticks are driven
// externally: a real ticker in the console, a manual clock in tests.
type Board struct {
	issuer      *token.Issuer
	lectureID   string
	lectureName string
	teacherID   string

	state   State
	uri     string
	payload token.Payload
}

// NewBoard creates an idle board for one lecture session.
func NewBoard(issuer *token.Issuer, lectureID, lectureName, teacherID string) *Board {
	return &Board{
		issuer:      issuer,
		lectureID:   lectureID,
		lectureName: lectureName,
		teacherID:   teacherID,
	}
}

// State returns the current lifecycle state.
func (b *Board) State() State { return b.state }

// Generate mints a fresh token at now and activates it. Generating while a
// token is still active simply replaces it and restarts the countdown.
func (b *Board) Generate(now time.Time) (string, error) {
	uri, payload, err := b.issuer.Issue(b.lectureID, b.lectureName, b.teacherID, now)
	if err != nil {
		return "", err
	}
	b.uri = uri
	b.payload = payload
	b.state = StateActive
	return uri, nil
}

// Tick advances the board's clock. Once now passes the active token's
// expiry the board clears the displayed code and goes to StateExpired.
func (b *Board) Tick(now time.Time) {
	if b.state != StateActive {
		return
	}
	if !b.payload.Fresh(now.UnixMilli()) {
		b.state = StateExpired
		b.uri = ""
	}
}

// URI returns the displayed transport string and whether one is live.
func (b *Board) URI() (string, bool) {
	return b.uri, b.state == StateActive
}

// Remaining reports how long the active token stays valid from now,
// clamped at zero. Idle and expired boards have no remaining time.
func (b *Board) Remaining(now time.Time) time.Duration {
	if b.state != StateActive {
		return 0
	}
	left := time.Duration(b.payload.ExpiresAt-now.UnixMilli()) * time.Millisecond
	if left < 0 {
		return 0
	}
	return left
}
