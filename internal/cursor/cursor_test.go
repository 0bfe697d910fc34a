package cursor

import (
	"testing"

	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewPairDefaults(t *testing.T) {
	p := NewPair()

	assert.Equal(t, DefaultLeft, p.Get(domain.HandLeft))
	assert.Equal(t, DefaultRight, p.Get(domain.HandRight))
	assert.False(t, p.Left.Visible)
}

func TestMoveClamps(t *testing.T) {
	p := NewPair()

	got := p.Move(domain.HandLeft, -500, 500)

	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 100.0, got.Y)
	assert.True(t, got.Visible)
	assert.Equal(t, DefaultRight, p.Right, "right cursor untouched")
}

func TestSetClampsAndClearsClick(t *testing.T) {
	p := NewPair()
	p.Click(domain.HandRight, false)

	got := p.Set(domain.HandRight, 120, 40)

	assert.Equal(t, 100.0, got.X)
	assert.Equal(t, 40.0, got.Y)
	assert.False(t, got.PendingClick)
}

func TestClickVisibilityFollowsPositioning(t *testing.T) {
	p := NewPair()
	p.Move(domain.HandLeft, 1, 1)

	got := p.Click(domain.HandLeft, true)
	assert.True(t, got.PendingClick)
	assert.False(t, got.Visible)

	got = p.Click(domain.HandLeft, false)
	assert.True(t, got.Visible)
}

func TestConsumeClick(t *testing.T) {
	p := NewPair()
	p.Click(domain.HandLeft, false)

	assert.True(t, p.ConsumeClick(domain.HandLeft))
	assert.False(t, p.ConsumeClick(domain.HandLeft))
}

func TestReset(t *testing.T) {
	p := NewPair()
	p.Move(domain.HandLeft, 10, 10)
	p.Set(domain.HandRight, 5, 5)

	p.Reset()

	assert.Equal(t, DefaultLeft, p.Left)
	assert.Equal(t, DefaultRight, p.Right)
}
