package domain

import (
	"time"
)

// SessionPhase is the derived state of the text-entry session tracker.
type SessionPhase int

const (
	// PhaseIdle means no session has been started.
	PhaseIdle SessionPhase = iota
	// PhaseActive means a session was started but no activity has arrived yet.
	PhaseActive
	// PhaseTimedRunning means the session clock is running.
	PhaseTimedRunning
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseTimedRunning:
		return "timed_running"
	default:
		return "idle"
	}
}

// SessionState is the canonical shared state held by the relay.
// It is not safe for concurrent use; a single owner mutates it.
type SessionState struct {
	InputMode          InputMode
	Positioning        Positioning
	SuggestionsEnabled bool
	TimerEnabled       bool
	ParticipantID      string
	SessionActive      bool
	SessionStart       *time.Time
}

// NewSessionState returns the process start defaults.
func NewSessionState() *SessionState {
	return &SessionState{
		InputMode:   InputSingle,
		Positioning: PositioningRelative,
	}
}

// Phase derives the tracker phase from the session fields.
func (s *SessionState) Phase() SessionPhase {
	switch {
	case s.SessionActive && s.SessionStart != nil:
		return PhaseTimedRunning
	case s.SessionActive:
		return PhaseActive
	default:
		return PhaseIdle
	}
}

// StartSession marks a session active. A previous unfinished session is
// overwritten and its start timestamp discarded.
func (s *SessionState) StartSession() {
	s.SessionActive = true
	s.SessionStart = nil
}

// MarkActivity starts the session clock on the first activity event of an
// active session. It reports whether the clock was started by this call.
func (s *SessionState) MarkActivity(now time.Time) bool {
	if !s.SessionActive || s.SessionStart != nil {
		return false
	}
	start := now
	s.SessionStart = &start
	return true
}

// EndSession clears the session and returns the elapsed time since the
// clock started. timed is false when the clock never started, in which case
// elapsed is zero.
func (s *SessionState) EndSession(now time.Time) (elapsed time.Duration, timed bool) {
	if s.SessionStart != nil {
		elapsed = now.Sub(*s.SessionStart)
		timed = true
	}
	s.SessionActive = false
	s.SessionStart = nil
	return elapsed, timed
}

// Clone returns a deep copy safe to hand outside the owner.
func (s *SessionState) Clone() SessionState {
	c := *s
	if s.SessionStart != nil {
		ts := *s.SessionStart
		c.SessionStart = &ts
	}
	return c
}
