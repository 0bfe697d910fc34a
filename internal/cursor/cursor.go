// Package cursor models the two interface-side cursors driven by relayed
// remote events.
//
// This is the only place coordinates are clamped. The relay forwards deltas
// and absolute positions untouched.
package cursor

import (
	"github.com/ashureev/keyrelay/internal/domain"
)

// State is one cursor. X and Y are percentages from the keyboard's top-left.
type State struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Visible      bool    `json:"visible"`
	PendingClick bool    `json:"pending_click"`
}

// Default resting positions.
var (
	DefaultLeft  = State{X: 31.5, Y: 55.0}
	DefaultRight = State{X: 68.5, Y: 55.0}
)

func clamp(v float64) float64 {
	return min(100, max(0, v))
}

// Pair holds the left and right cursors.
type Pair struct {
	Left  State
	Right State
}

// NewPair returns both cursors at their defaults.
func NewPair() *Pair {
	return &Pair{Left: DefaultLeft, Right: DefaultRight}
}

func (p *Pair) get(h domain.Hand) *State {
	if h == domain.HandLeft {
		return &p.Left
	}
	return &p.Right
}

// Get returns a copy of the cursor for hand.
func (p *Pair) Get(h domain.Hand) State {
	return *p.get(h)
}

// Move applies a relative delta.
func (p *Pair) Move(h domain.Hand, dx, dy float64) State {
	c := p.get(h)
	c.X = clamp(c.X + dx)
	c.Y = clamp(c.Y + dy)
	c.PendingClick = false
	c.Visible = true
	return *c
}

// Set places the cursor at an absolute position.
func (p *Pair) Set(h domain.Hand, x, y float64) State {
	c := p.get(h)
	c.X = clamp(x)
	c.Y = clamp(y)
	c.PendingClick = false
	c.Visible = true
	return *c
}

// Click marks a pending click. In absolute positioning the cursor hides
// after a click, since the next touch places it anew.
func (p *Pair) Click(h domain.Hand, absolute bool) State {
	c := p.get(h)
	c.PendingClick = true
	c.Visible = !absolute
	return *c
}

// ConsumeClick clears the pending click and reports whether one was set.
func (p *Pair) ConsumeClick(h domain.Hand) bool {
	c := p.get(h)
	was := c.PendingClick
	c.PendingClick = false
	return was
}

// Reset restores both cursors to their defaults.
func (p *Pair) Reset() {
	p.Left = DefaultLeft
	p.Right = DefaultRight
}
