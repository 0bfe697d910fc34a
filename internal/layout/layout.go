// Package layout holds the keyboard geometry model: ordered rows of key
// tokens and the built-in simplified and standard layouts.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Token is a single key. Literal keys hold their character; control keys use
// the reserved spellings below.
type Token string

// Control tokens.
const (
	Backspace     Token = "*bs"
	Shift         Token = "*sh"
	Tab           Token = "*tb"
	CapsLock      Token = "*cps"
	Enter         Token = "*e"
	Space         Token = "*sp"
	NavigateLeft  Token = "*l"
	NavigateRight Token = "*r"
	Backslash     Token = "\\"
)

// Kind is the width class of a token.
type Kind int

const (
	// KindNormal keys have the fixed width 100/KeysPerRow.
	KindNormal Kind = iota
	// KindStretch keys share the row's leftover width.
	KindStretch
	// KindSpace is the space bar, worth three stretch units.
	KindSpace
)

// SpaceUnits is the number of stretch units a space bar occupies.
const SpaceUnits = 3

// IsControl reports whether the token belongs to the control vocabulary.
func (t Token) IsControl() bool {
	switch t {
	case Backspace, Shift, Tab, CapsLock, Enter, Space, NavigateLeft, NavigateRight, Backslash:
		return true
	}
	return false
}

// Kind classifies the token. Every control token stretches except the two
// navigation arrows, which keep the fixed width.
func (t Token) Kind() Kind {
	switch {
	case t == Space:
		return KindSpace
	case t == NavigateLeft || t == NavigateRight:
		return KindNormal
	case t.IsControl():
		return KindStretch
	default:
		return KindNormal
	}
}

// Text returns what typing the key inserts, honoring shift or caps lock.
// Control keys other than tab and space insert nothing.
func (t Token) Text(upper bool) string {
	switch t {
	case Space:
		return " "
	case Tab:
		return "\t"
	case Backslash:
		return "\\"
	}
	if t.IsControl() {
		return ""
	}
	if upper {
		return strings.ToUpper(string(t))
	}
	return strings.ToLower(string(t))
}

// Row is an ordered sequence of tokens.
type Row []Token

// Geometry is an immutable keyboard layout.
type Geometry struct {
	name       string
	keysPerRow int
	rows       []Row
}

// New validates rows and builds a Geometry. The rows are copied.
func New(name string, keysPerRow int, rows []Row) (*Geometry, error) {
	if keysPerRow <= 0 {
		return nil, fmt.Errorf("layout %q: keys per row must be > 0", name)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("layout %q: %w", name, ErrNoRows)
	}
	copied := make([]Row, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return nil, fmt.Errorf("layout %q row %d: %w", name, i, ErrEmptyRow)
		}
		normal := 0
		for _, tok := range row {
			if tok == "" {
				return nil, fmt.Errorf("layout %q row %d: empty token", name, i)
			}
			if tok.Kind() == KindNormal {
				normal++
			}
		}
		if normal > keysPerRow {
			return nil, fmt.Errorf("layout %q row %d: %d fixed-width keys exceed %d per row", name, i, normal, keysPerRow)
		}
		copied[i] = append(Row(nil), row...)
	}
	return &Geometry{name: name, keysPerRow: keysPerRow, rows: copied}, nil
}

var (
	ErrNoRows        = errors.New("layout has no rows")
	ErrEmptyRow      = errors.New("layout row is empty")
	ErrUnknownLayout = errors.New("unknown layout")
)

// Name returns the layout name.
func (g *Geometry) Name() string { return g.name }

// KeysPerRow returns the number of fixed-width keys that fill a row.
func (g *Geometry) KeysPerRow() int { return g.keysPerRow }

// RowCount returns the number of rows.
func (g *Geometry) RowCount() int { return len(g.rows) }

// Row returns a copy of row i.
func (g *Geometry) Row(i int) Row {
	return append(Row(nil), g.rows[i]...)
}

// Rows returns a copy of all rows.
func (g *Geometry) Rows() []Row {
	out := make([]Row, len(g.rows))
	for i := range g.rows {
		out[i] = g.Row(i)
	}
	return out
}

// Token returns the token at row, column.
func (g *Geometry) Token(row, col int) (Token, bool) {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.rows[row]) {
		return "", false
	}
	return g.rows[row][col], true
}

// Names of the built-in layouts.
const (
	Simplified = "simplified"
	Standard   = "standard"
)

// Builtin returns a built-in layout by name.
func Builtin(name string) (*Geometry, error) {
	switch name {
	case Simplified:
		return New(Simplified, 11, simplifiedRows)
	case Standard:
		return New(Standard, 14, standardRows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
}

var simplifiedRows = []Row{
	{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p", Backspace},
	{"a", "s", "d", "f", "g", "h", "j", "k", "l", "'", Enter},
	{Shift, "z", "x", "c", "v", "b", "n", "m", ",", ".", "?"},
	{NavigateLeft, Space, NavigateRight},
}

var standardRows = []Row{
	{"`", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=", Backspace},
	{Tab, "q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]", Backslash},
	{CapsLock, "a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'", Enter},
	{Shift, "z", "x", "c", "v", "b", "n", "m", ",", ".", "/", Shift},
	{NavigateLeft, Space, NavigateRight},
}
