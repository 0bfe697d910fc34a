package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/keyrelay/internal/hittest"
	"github.com/ashureev/keyrelay/internal/layout"
)

type rowView struct {
	Keys   []layout.Token `json:"keys"`
	Widths []float64      `json:"widths"`
	Starts []float64      `json:"starts"`
}

type layoutView struct {
	Name       string    `json:"name"`
	KeysPerRow int       `json:"keys_per_row"`
	Rows       []rowView `json:"rows"`
}

// GetLayout returns the active layout with computed key widths and starts,
// all as percentages of the keyboard width.
func (h *Handler) GetLayout(w http.ResponseWriter, _ *http.Request) {
	g := h.geometry
	view := layoutView{Name: g.Name(), KeysPerRow: g.KeysPerRow()}
	for _, row := range g.Rows() {
		view.Rows = append(view.Rows, rowView{
			Keys:   row,
			Widths: hittest.Widths(row, g.KeysPerRow()),
			Starts: hittest.Starts(row, g.KeysPerRow()),
		})
	}
	JSON(w, http.StatusOK, view)
}

type hitView struct {
	Kind   string       `json:"kind"`
	Row    int          `json:"row"`
	Column int          `json:"column"`
	Token  layout.Token `json:"token,omitempty"`
}

// GetHit resolves x and y against the active layout. The optional widths
// parameter is a comma-separated list of rendered suggestion pixel widths;
// when present the suggestion strip is shown.
func (h *Handler) GetHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, err := parseCoord(q.Get("x"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid x")
		return
	}
	y, err := parseCoord(q.Get("y"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid y")
		return
	}

	board := hittest.Board{Geometry: h.geometry}
	if raw := q.Get("widths"); raw != "" {
		widths, err := parseWidths(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid widths")
			return
		}
		board.Suggestions = true
		board.Measurer = hittest.FixedWidths{Widths: widths, Strip: h.stripWidth}
	}

	t := board.Resolve(x, y)
	JSON(w, http.StatusOK, hitView{Kind: t.Kind.String(), Row: t.Row, Column: t.Column, Token: t.Token})
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return math.Max(0, math.Min(100, v)), nil
}

func parseWidths(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, strconv.ErrSyntax
		}
		out = append(out, v)
	}
	return out, nil
}

// GetSuggestions returns completions for the q parameter.
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	results := h.index.Suggest(r.URL.Query().Get("q"))
	if results == nil {
		results = []string{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"suggestions": results})
}
