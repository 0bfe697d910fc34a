package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/ashureev/keyrelay/internal/layout"
	"github.com/ashureev/keyrelay/internal/relay"
	"github.com/ashureev/keyrelay/internal/store"
	"github.com/ashureev/keyrelay/internal/suggest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct{ pingErr error }

func (f *fakeRepo) Append(context.Context, domain.SessionLogRecord) error { return nil }
func (f *fakeRepo) Ping(context.Context) error                          { return f.pingErr }
func (f *fakeRepo) Close() error                                        { return nil }

type fakeState struct {
	snap relay.Snapshot
	err  error
}

func (f fakeState) Snapshot(context.Context) (relay.Snapshot, error) { return f.snap, f.err }

type fakeLister struct {
	recs []domain.SessionLogRecord
	err  error
	got  string
}

func (f *fakeLister) List(_ context.Context, participantID string) ([]domain.SessionLogRecord, error) {
	f.got = participantID
	return f.recs, f.err
}

type fakeStats struct{ stats store.RecorderStats }

func (f fakeStats) Stats() store.RecorderStats { return f.stats }

func newTestRouter(t *testing.T, d Deps) http.Handler {
	t.Helper()
	if d.Geometry == nil {
		g, err := layout.Builtin(layout.Simplified)
		require.NoError(t, err)
		d.Geometry = g
	}
	r := chi.NewRouter()
	NewHandler(d).RegisterRoutes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string, v interface{}) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	if v != nil {
		require.NoError(t, json.NewDecoder(w.Body).Decode(v), w.Body.String())
	}
	return w.Code
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "bar", got["foo"])
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	code := get(t, newTestRouter(t, Deps{Repo: &fakeRepo{}}), "/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Checks["session_log"])

	code = get(t, newTestRouter(t, Deps{Repo: &fakeRepo{pingErr: errors.New("gone")}}), "/health", &body)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unreachable", body.Checks["session_log"])
}

func TestGetLayout(t *testing.T) {
	var body layoutView
	code := get(t, newTestRouter(t, Deps{}), "/api/layout", &body)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, layout.Simplified, body.Name)
	assert.Equal(t, 11, body.KeysPerRow)
	require.Len(t, body.Rows, 4)
	assert.Equal(t, layout.Token("q"), body.Rows[0].Keys[0])
	assert.Len(t, body.Rows[0].Widths, len(body.Rows[0].Keys))
	assert.InDelta(t, 0, body.Rows[0].Starts[0], 1e-9)

	space := body.Rows[3]
	assert.Equal(t, []layout.Token{layout.NavigateLeft, layout.Space, layout.NavigateRight}, space.Keys)
	assert.InDelta(t, 100-2*100.0/11, space.Widths[1], 1e-9)
}

func TestGetHit(t *testing.T) {
	h := newTestRouter(t, Deps{})

	var body hitView
	require.Equal(t, http.StatusOK, get(t, h, "/api/hit?x=0&y=0", &body))
	assert.Equal(t, hitView{Kind: "key", Row: 0, Column: 0, Token: "q"}, body)

	require.Equal(t, http.StatusOK, get(t, h, "/api/hit?x=50&y=99", &body))
	assert.Equal(t, hitView{Kind: "key", Row: 3, Column: 1, Token: layout.Space}, body)

	body = hitView{}
	require.Equal(t, http.StatusOK, get(t, h, "/api/hit?x=20&y=5&widths=100,200", &body))
	assert.Equal(t, hitView{Kind: "suggestion", Row: -1, Column: 1}, body)

	body = hitView{}
	require.Equal(t, http.StatusOK, get(t, h, "/api/hit?x=50&y=5&widths=100,200", &body))
	assert.Equal(t, "none", body.Kind)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/hit?x=abc&y=1", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/hit?x=1&y=1&widths=1,x", nil))
}

func TestGetSuggestions(t *testing.T) {
	idx := suggest.New([]string{"Alien", "Aliens", "Amadeus"})
	h := newTestRouter(t, Deps{Index: idx})

	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	require.Equal(t, http.StatusOK, get(t, h, "/api/suggestions?q=ali", &body))
	assert.Equal(t, []string{"Alien", "Aliens"}, body.Suggestions)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/suggestions?q=", nil))
	assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())

	// No dataset loaded.
	w = httptest.NewRecorder()
	newTestRouter(t, Deps{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/suggestions?q=a", nil))
	assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())
}

func TestGetState(t *testing.T) {
	h := newTestRouter(t, Deps{
		State: fakeState{snap: relay.Snapshot{SingleInput: true, ParticipantID: "P03", Phase: "idle", RemoteConnected: true}},
		Stats: fakeStats{stats: store.RecorderStats{Written: 4}},
	})

	var body struct {
		Session    relay.Snapshot      `json:"session"`
		SessionLog store.RecorderStats `json:"session_log"`
	}
	require.Equal(t, http.StatusOK, get(t, h, "/api/state", &body))
	assert.Equal(t, "P03", body.Session.ParticipantID)
	assert.True(t, body.Session.RemoteConnected)
	assert.Equal(t, int64(4), body.SessionLog.Written)

	h = newTestRouter(t, Deps{State: fakeState{err: relay.ErrHubClosed}})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/state", nil))
}

func TestListSessions(t *testing.T) {
	lister := &fakeLister{recs: []domain.SessionLogRecord{{ID: "r1", ParticipantID: "P01", ElapsedMillis: 1200}}}
	h := newTestRouter(t, Deps{Sessions: lister})

	var body struct {
		Sessions []domain.SessionLogRecord `json:"sessions"`
	}
	require.Equal(t, http.StatusOK, get(t, h, "/api/sessions?participant=P01", &body))
	assert.Equal(t, "P01", lister.got)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, int64(1200), body.Sessions[0].ElapsedMillis)

	lister.recs = nil
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	assert.JSONEq(t, `{"sessions":[]}`, w.Body.String())

	lister.err = errors.New("disk")
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/api/sessions", nil))

	assert.Equal(t, http.StatusNotImplemented, get(t, newTestRouter(t, Deps{}), "/api/sessions", nil))
}
