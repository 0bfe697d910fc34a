package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionStateDefaults(t *testing.T) {
	s := NewSessionState()

	assert.Equal(t, InputSingle, s.InputMode)
	assert.Equal(t, PositioningRelative, s.Positioning)
	assert.False(t, s.SuggestionsEnabled)
	assert.False(t, s.TimerEnabled)
	assert.Empty(t, s.ParticipantID)
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Nil(t, s.SessionStart)
}

func TestMarkActivityWithoutSessionLeavesClockStopped(t *testing.T) {
	s := NewSessionState()

	assert.False(t, s.MarkActivity(time.Now()))
	assert.Nil(t, s.SessionStart)
}

func TestMarkActivityStartsClockOnce(t *testing.T) {
	s := NewSessionState()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.StartSession()
	require.Equal(t, PhaseActive, s.Phase())

	assert.True(t, s.MarkActivity(base))
	assert.False(t, s.MarkActivity(base.Add(time.Second)))
	require.NotNil(t, s.SessionStart)
	assert.Equal(t, base, *s.SessionStart)
	assert.Equal(t, PhaseTimedRunning, s.Phase())
}

func TestEndSessionComputesElapsed(t *testing.T) {
	s := NewSessionState()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.StartSession()
	s.MarkActivity(base)
	elapsed, timed := s.EndSession(base.Add(1200 * time.Millisecond))

	assert.True(t, timed)
	assert.Equal(t, 1200*time.Millisecond, elapsed)
	assert.False(t, s.SessionActive)
	assert.Nil(t, s.SessionStart)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestEndSessionWithoutActivityIsUntimed(t *testing.T) {
	s := NewSessionState()
	s.StartSession()

	elapsed, timed := s.EndSession(time.Now())

	assert.False(t, timed)
	assert.Zero(t, elapsed)
	assert.False(t, s.SessionActive)
}

func TestStartSessionOverwritesRunningClock(t *testing.T) {
	s := NewSessionState()
	s.StartSession()
	s.MarkActivity(time.Now())

	s.StartSession()

	assert.Equal(t, PhaseActive, s.Phase())
}

func TestCloneDoesNotAliasTimestamp(t *testing.T) {
	s := NewSessionState()
	s.StartSession()
	s.MarkActivity(time.Unix(100, 0))

	c := s.Clone()
	*c.SessionStart = time.Unix(200, 0)

	assert.Equal(t, time.Unix(100, 0), *s.SessionStart)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("remote")
	require.NoError(t, err)
	assert.Equal(t, RoleRemote, r)

	r, err = ParseRole("web-interface")
	require.NoError(t, err)
	assert.Equal(t, RoleInterface, r)

	_, err = ParseRole("printer")
	assert.Error(t, err)
}
