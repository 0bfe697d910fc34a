package hittest

import (
	"github.com/ashureev/keyrelay/internal/layout"
)

// DefaultStripWidth is the rendered suggestion strip width in pixels.
const DefaultStripWidth = 1030.0

// SuggestionMeasurer reports the on-screen geometry of the rendered
// suggestion strip. Text measurement belongs to the renderer.
type SuggestionMeasurer interface {
	// SuggestionWidths returns the pixel width of each rendered suggestion,
	// left to right.
	SuggestionWidths() []float64
	// StripWidth returns the pixel width of the whole strip.
	StripWidth() float64
}

// FixedWidths is a SuggestionMeasurer over precomputed widths.
type FixedWidths struct {
	Widths []float64
	Strip  float64
}

func (f FixedWidths) SuggestionWidths() []float64 { return f.Widths }

func (f FixedWidths) StripWidth() float64 {
	if f.Strip <= 0 {
		return DefaultStripWidth
	}
	return f.Strip
}

// TargetKind says what a cursor is over.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetKey
	TargetSuggestion
)

func (k TargetKind) String() string {
	switch k {
	case TargetKey:
		return "key"
	case TargetSuggestion:
		return "suggestion"
	default:
		return "none"
	}
}

// Target is the resolved hit for one cursor position.
type Target struct {
	Kind   TargetKind
	Row    int
	Column int
	Token  layout.Token
}

// Board resolves cursor positions against a layout.
type Board struct {
	Geometry    *layout.Geometry
	Suggestions bool
	Measurer    SuggestionMeasurer
}

// Resolve returns the key or suggestion under (x, y).
func (b Board) Resolve(x, y float64) Target {
	row, inStrip := Row(y, b.Geometry.RowCount(), b.Suggestions)
	if inStrip {
		if b.Measurer == nil {
			return Target{Kind: TargetNone, Row: -1, Column: -1}
		}
		col, ok := SuggestionColumn(b.Measurer.SuggestionWidths(), b.Measurer.StripWidth(), x)
		if !ok {
			return Target{Kind: TargetNone, Row: -1, Column: -1}
		}
		return Target{Kind: TargetSuggestion, Row: -1, Column: col}
	}

	keys := b.Geometry.Row(row)
	col := Column(keys, b.Geometry.KeysPerRow(), x)
	if col < 0 {
		return Target{Kind: TargetNone, Row: row, Column: -1}
	}
	return Target{Kind: TargetKey, Row: row, Column: col, Token: keys[col]}
}
