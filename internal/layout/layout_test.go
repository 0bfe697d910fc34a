package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenKind(t *testing.T) {
	tests := []struct {
		tok  Token
		want Kind
	}{
		{"q", KindNormal},
		{",", KindNormal},
		{NavigateLeft, KindNormal},
		{NavigateRight, KindNormal},
		{Space, KindSpace},
		{Backspace, KindStretch},
		{Shift, KindStretch},
		{Tab, KindStretch},
		{CapsLock, KindStretch},
		{Enter, KindStretch},
		{Backslash, KindStretch},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.tok.Kind(), "token %q", tc.tok)
	}
}

func TestTokenText(t *testing.T) {
	assert.Equal(t, "q", Token("q").Text(false))
	assert.Equal(t, "Q", Token("q").Text(true))
	assert.Equal(t, " ", Space.Text(true))
	assert.Equal(t, "\t", Tab.Text(false))
	assert.Equal(t, "", Backspace.Text(false))
	assert.Equal(t, "\\", Backslash.Text(false))
}

func TestBuiltinLayouts(t *testing.T) {
	simple, err := Builtin(Simplified)
	require.NoError(t, err)
	assert.Equal(t, 11, simple.KeysPerRow())
	assert.Equal(t, 4, simple.RowCount())

	std, err := Builtin(Standard)
	require.NoError(t, err)
	assert.Equal(t, 14, std.KeysPerRow())

	_, err = Builtin("dvorak")
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestRowReturnsCopy(t *testing.T) {
	g, err := Builtin(Simplified)
	require.NoError(t, err)

	row := g.Row(0)
	row[0] = "z"

	tok, ok := g.Token(0, 0)
	require.True(t, ok)
	assert.Equal(t, Token("q"), tok)
}

func TestNewRejectsOverfullRow(t *testing.T) {
	_, err := New("tiny", 2, []Row{{"a", "b", "c"}})
	assert.ErrorContains(t, err, "exceed")

	_, err = New("empty", 2, []Row{{}})
	assert.ErrorIs(t, err, ErrEmptyRow)

	_, err = New("none", 2, nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compact.yaml")
	doc := "name: compact\nkeys_per_row: 4\nrows:\n  - [a, b, \"*bs\"]\n  - [\"*l\", \"*sp\", \"*r\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	g, err := Resolve(Simplified, path)
	require.NoError(t, err)
	assert.Equal(t, "compact", g.Name())
	assert.Equal(t, 4, g.KeysPerRow())
	assert.Equal(t, Row{"a", "b", Backspace}, g.Row(0))
}
