package domain

import (
	"fmt"
	"time"
)

// TurnRole identifies the author of a turn within a session.
type TurnRole string

const (
	RoleAsker     TurnRole = "asker"
	RoleResponder TurnRole = "responder"
)

// IsValidTurnRole checks if a TurnRole is one of the known roles
func IsValidTurnRole(r TurnRole) bool {
	switch r {
	case RoleAsker, RoleResponder:
		return true
	}
	return false
}

// Turn is one message within a session's ordered history. Turns are
// immutable once appended; append order is the conversational timeline.
type Turn struct {
	Role      TurnRole
	Text      string
	Timestamp time.Time
}

// NewTurn creates a Turn stamped with the current time.
func NewTurn(role TurnRole, text string) Turn {
	return Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// ValidateTurn validates a Turn instance
func ValidateTurn(t Turn) error {
	if !IsValidTurnRole(t.Role) {
		return fmt.Errorf("turn role is invalid: %s", t.Role)
	}
	if t.Text == "" {
		return fmt.Errorf("turn text is required")
	}
	return nil
}

// SessionState is the conversation engine state for a session.
type SessionState string

const (
	SessionIdle               SessionState = "idle"
	SessionAwaitingGeneration SessionState = "awaiting_generation"
	SessionReady              SessionState = "ready"
	SessionFailed             SessionState = "failed"
)

// Session is a conversational context identified by an opaque id. The
// owning engine serializes mutation; Session itself carries no locking.
type Session struct {
	ID         string
	Turns      []Turn
	CreatedAt  time.Time
	LastAccess time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		LastAccess: now,
	}
}

// Append adds a turn to the end of the timeline.
func (s *Session) Append(t Turn) {
	s.Turns = append(s.Turns, t)
}

// Recent returns at most the n most recent turns in chronological order.
// n <= 0 returns all turns.
func (s *Session) Recent(n int) []Turn {
	if n <= 0 || n >= len(s.Turns) {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Clear drops all turns. The session id and creation time survive a clear.
func (s *Session) Clear() {
	s.Turns = nil
}
