// Package hittest converts normalized cursor positions into keyboard keys or
// suggestion-strip entries.
//
// All positions are percentages in [0, 100] measured from the top-left of the
// keyboard area, suggestion strip included. Callers clamp before calling;
// see package cursor.
package hittest

import (
	"math"

	"github.com/ashureev/keyrelay/internal/layout"
)

// SuggestionBandHeight is the height of the suggestion strip as a percentage
// of the whole keyboard area (36px of 326px).
const SuggestionBandHeight = 36.0 / 326.0 * 100.0

// SuggestionGap is the fixed spacing, in pixels, added after each suggestion.
const SuggestionGap = 4.0

// Widths returns the width of each key in row as a percentage of the row.
func Widths(row layout.Row, keysPerRow int) []float64 {
	keyWidth := 100.0 / float64(keysPerRow)

	var normal, units int
	for _, tok := range row {
		switch tok.Kind() {
		case layout.KindNormal:
			normal++
		case layout.KindStretch:
			units++
		case layout.KindSpace:
			units += layout.SpaceUnits
		}
	}

	var unit float64
	if units > 0 {
		unit = (100.0 - float64(normal)*keyWidth) / float64(units)
	}

	widths := make([]float64, len(row))
	for i, tok := range row {
		switch tok.Kind() {
		case layout.KindNormal:
			widths[i] = keyWidth
		case layout.KindStretch:
			widths[i] = unit
		case layout.KindSpace:
			widths[i] = unit * layout.SpaceUnits
		}
	}
	return widths
}

// Starts returns the left edge of each key. The row is centered, except that
// the first key is pinned to 0 so the leading edge stays flush left.
func Starts(row layout.Row, keysPerRow int) []float64 {
	widths := Widths(row, keysPerRow)

	var total float64
	for _, w := range widths {
		total += w
	}

	starts := make([]float64, len(widths))
	next := (100.0 - total) / 2
	for i, w := range widths {
		starts[i] = next
		next += w
	}
	if len(starts) > 0 {
		starts[0] = 0
	}
	return starts
}

// Column returns the greatest key index whose start offset is <= posX.
// It returns -1 only for an empty row.
func Column(row layout.Row, keysPerRow int, posX float64) int {
	starts := Starts(row, keysPerRow)
	if len(starts) == 0 {
		return -1
	}
	col := 0
	for i, s := range starts {
		if s <= posX {
			col = i
		}
	}
	return col
}

// Row returns the keyboard row under posY. inStrip is true when suggestions
// are shown and posY falls in the strip above the keys, in which case row is
// -1.
func Row(posY float64, rowCount int, suggestions bool) (row int, inStrip bool) {
	height := 100.0
	y := posY
	if suggestions {
		height -= SuggestionBandHeight
		y -= SuggestionBandHeight
		if y < 0 {
			return -1, true
		}
	}
	rowHeight := height / float64(rowCount)
	row = int(math.Floor(y / rowHeight))
	if row > rowCount-1 {
		row = rowCount - 1
	}
	if row < 0 {
		row = 0
	}
	return row, false
}

// SuggestionColumn walks the rendered suggestion widths (pixels) left to
// right, converting each to the percentage scale of a strip stripWidth pixels
// wide, until the running total reaches posX. An entry that would overflow the
// strip resolves to its predecessor. ok is false when nothing is under posX.
func SuggestionColumn(widths []float64, stripWidth, posX float64) (col int, ok bool) {
	if stripWidth <= 0 {
		return -1, false
	}
	var current float64
	for i, w := range widths {
		current += (w + SuggestionGap) / stripWidth * 100
		if current > 100 {
			if i == 0 {
				return -1, false
			}
			return i - 1, true
		}
		if current >= posX {
			return i, true
		}
	}
	return -1, false
}
