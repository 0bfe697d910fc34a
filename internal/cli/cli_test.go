package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/keyrelay/internal/config"
	"github.com/ashureev/keyrelay/internal/layout"
	"github.com/ashureev/keyrelay/internal/relay"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestHitKey(t *testing.T) {
	stdout, _, err := executeCLI(t, "hit", "--x", "0", "--y", "0")
	require.NoError(t, err)
	assert.Equal(t, "key row=0 col=0 token=q\n", stdout)

	stdout, _, err = executeCLI(t, "hit", "--x", "50", "--y", "99", "--layout", "standard")
	require.NoError(t, err)
	assert.Contains(t, stdout, "row=4 col=1 token=*sp")
}

func TestHitSuggestionJSON(t *testing.T) {
	stdout, _, err := executeCLI(t, "hit", "--x", "5", "--y", "2", "--suggestions", "100,200", "--json")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "suggestion", got["kind"])
	assert.Equal(t, float64(0), got["column"])
}

func TestHitRequiresPosition(t *testing.T) {
	_, _, err := executeCLI(t, "hit", "--x", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "y" not set`)
}

func TestHitUnknownLayout(t *testing.T) {
	_, _, err := executeCLI(t, "hit", "--x", "1", "--y", "1", "--layout", "dvorak")
	require.Error(t, err)
	assert.ErrorIs(t, err, layout.ErrUnknownLayout)
}

func TestLayoutCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, "layout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "layout simplified, 11 keys per row")
	assert.Contains(t, stdout, "ROW")
	// Row 3 is the navigation and space row.
	assert.Regexp(t, `3\s+1\s+\*sp\s+9\.09\s+81\.82`, stdout)
}

func newTestProbe(t *testing.T) (*probe, *bytes.Buffer) {
	t.Helper()
	g, err := layout.Builtin(layout.Simplified)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return newProbe(g, []float64{100, 200}, out), out
}

func TestProbeAppliesCursorEvents(t *testing.T) {
	p, out := newTestProbe(t)

	require.NoError(t, p.apply(relay.NewMessage(relay.EventCursorSet, true, 0, 0)))
	assert.Contains(t, out.String(), "hover left key row=0 col=0 token=q (0.0, 0.0)")

	// Deltas clamp at the edge and do not repeat an unchanged target.
	out.Reset()
	require.NoError(t, p.apply(relay.NewMessage(relay.EventCursorMove, true, -5, -5)))
	assert.Empty(t, out.String())

	require.NoError(t, p.apply(relay.NewMessage(relay.EventCursorMove, true, 0, 99.0)))
	assert.Contains(t, out.String(), "hover left key row=3 col=0 token=*l")

	out.Reset()
	require.NoError(t, p.apply(relay.NewMessage(relay.EventClick, true)))
	assert.Equal(t, "click left key row=3 col=0 token=*l\n", out.String())
	assert.False(t, p.cursors.Left.PendingClick)
	assert.True(t, p.cursors.Left.Visible)
}

func TestProbeSuggestionsAndReset(t *testing.T) {
	p, out := newTestProbe(t)

	require.NoError(t, p.apply(relay.NewMessage(relay.EventSetAbsolute, true)))
	require.NoError(t, p.apply(relay.NewMessage(relay.EventSetSuggestions, true)))
	require.NoError(t, p.apply(relay.NewMessage(relay.EventCursorSet, false, 20, 2)))
	assert.Contains(t, out.String(), "hover right suggestion col=1")

	require.NoError(t, p.apply(relay.NewMessage(relay.EventClick, false)))
	assert.Contains(t, out.String(), "click right suggestion col=1")
	assert.False(t, p.cursors.Right.Visible)

	require.NoError(t, p.apply(relay.NewMessage(relay.EventCursorReset)))
	assert.Equal(t, 68.5, p.cursors.Right.X)
	assert.Contains(t, out.String(), "cursors reset")
}

func TestProbeRejectsMalformedFrames(t *testing.T) {
	p, out := newTestProbe(t)
	assert.ErrorIs(t, p.apply(relay.NewMessage(relay.EventCursorMove, true, "x", 1)), relay.ErrMalformedPayload)
	assert.ErrorIs(t, p.apply(relay.NewMessage(relay.EventClick)), relay.ErrMalformedPayload)
	assert.Empty(t, out.String())
}

func TestProbeDisplayIP(t *testing.T) {
	p, out := newTestProbe(t)
	require.NoError(t, p.apply(relay.NewMessage(relay.EventDisplayIP, "10.1.1.1")))
	require.NoError(t, p.apply(relay.NewMessage(relay.EventDisplayIP, nil)))
	assert.Equal(t, "waiting for remote, relay address 10.1.1.1\nremote connected\n", out.String())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:          "0",
		AdvertiseAddr: "10.9.9.9",
		AllowedOrigin: "*",
		Layout:        layout.Simplified,
		StripWidth:    1030,
		LogLevel:      slog.LevelInfo,
		SessionLog: config.SessionLogConfig{
			Backend:      "both",
			CSVPath:      filepath.Join(dir, "participant_data.csv"),
			DBPath:       filepath.Join(dir, "sessions.db"),
			QueueSize:    8,
			WriteTimeout: time.Second,
		},
		Peer: config.PeerConfig{SendQueueSize: 16, WriteTimeout: time.Second},
	}
}

func TestServerRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := newServer(testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.repo.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)
	t.Cleanup(cancel)

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/layout")
	require.NoError(t, err)
	var lv struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lv))
	_ = resp.Body.Close()
	assert.Equal(t, layout.Simplified, lv.Name)

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?client-type=web-interface"
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	var msg relay.Message
	require.NoError(t, wsjson.Read(dialCtx, conn, &msg))
	assert.Equal(t, relay.EventDisplayIP, msg.Event)
	assert.JSONEq(t, `"10.9.9.9"`, string(msg.Args[0]))

	// The both backend can read sessions back.
	resp, err = http.Get(srv.URL + "/api/sessions")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
