package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/keyrelay/internal/cursor"
	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/ashureev/keyrelay/internal/hittest"
	"github.com/ashureev/keyrelay/internal/layout"
	"github.com/ashureev/keyrelay/internal/relay"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	var (
		url    string
		widths string
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Connect as the keyboard interface and print what each cursor hits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			geometry, err := lf.resolve()
			if err != nil {
				return err
			}
			w, err := parseWidths(widths)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := newProbe(geometry, w, cmd.OutOrStdout())
			return p.run(ctx, url)
		},
	}

	cmd.Flags().StringVar(&url, "url", "ws://localhost:10942/ws", "relay websocket URL")
	cmd.Flags().StringVar(&widths, "widths", "", "comma-separated rendered suggestion widths in pixels")
	lf.bind(cmd)

	return cmd
}

// probe is a headless keyboard interface. It applies relayed cursor events
// to a cursor pair and reports the targets under each cursor.
type probe struct {
	board    hittest.Board
	cursors  *cursor.Pair
	absolute bool
	single   bool
	hovered  map[domain.Hand]hittest.Target
	out      io.Writer
}

func newProbe(g *layout.Geometry, widths []float64, out io.Writer) *probe {
	return &probe{
		board: hittest.Board{
			Geometry: g,
			Measurer: hittest.FixedWidths{Widths: widths},
		},
		cursors: cursor.NewPair(),
		single:  true,
		hovered: make(map[domain.Hand]hittest.Target),
		out:     out,
	}
}

func (p *probe) run(ctx context.Context, url string) error {
	header := http.Header{}
	header.Set(relay.RoleHeader, domain.InterfaceTag)
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()

	p.printf("connected to %s", url)
	for {
		var msg relay.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "probe stopped")
				return nil
			}
			if status := websocket.CloseStatus(err); status != -1 {
				return fmt.Errorf("relay closed connection: %s", status)
			}
			return fmt.Errorf("read relay frame: %w", err)
		}
		if err := p.apply(msg); err != nil {
			slog.Debug("Ignoring frame", "event", msg.Event, "error", err)
		}
	}
}

func (p *probe) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// apply updates the probe's view from one relayed frame.
func (p *probe) apply(msg relay.Message) error {
	switch msg.Event {
	case relay.EventSetMode:
		single, err := msg.Bool(0)
		if err != nil {
			return err
		}
		p.single = single
		p.printf("mode %s", modeLabel(single))
	case relay.EventSetAbsolute:
		abs, err := msg.Bool(0)
		if err != nil {
			return err
		}
		p.absolute = abs
	case relay.EventSetSuggestions:
		on, err := msg.Bool(0)
		if err != nil {
			return err
		}
		p.board.Suggestions = on
	case relay.EventDisplayIP:
		addr, err := msg.OptionalString(0)
		if err != nil {
			return err
		}
		if addr == nil {
			p.printf("remote connected")
		} else {
			p.printf("waiting for remote, relay address %s", *addr)
		}
	case relay.EventCursorMove, relay.EventCursorSet:
		return p.applyCursor(msg)
	case relay.EventActivate:
		left, err := msg.Bool(0)
		if err != nil {
			return err
		}
		p.printf("activate %s", domain.Hand(left))
	case relay.EventClick:
		left, err := msg.Bool(0)
		if err != nil {
			return err
		}
		p.click(domain.Hand(left))
	case relay.EventCursorReset:
		p.cursors.Reset()
		p.hovered = make(map[domain.Hand]hittest.Target)
		p.printf("cursors reset")
	case relay.EventResetInput:
		p.printf("input reset")
	}
	return nil
}

func (p *probe) applyCursor(msg relay.Message) error {
	left, err := msg.Bool(0)
	if err != nil {
		return err
	}
	a, err := msg.Number(1)
	if err != nil {
		return err
	}
	b, err := msg.Number(2)
	if err != nil {
		return err
	}

	hand := domain.Hand(left)
	var c cursor.State
	if msg.Event == relay.EventCursorMove {
		c = p.cursors.Move(hand, a, b)
	} else {
		c = p.cursors.Set(hand, a, b)
	}

	t := p.board.Resolve(c.X, c.Y)
	if prev, ok := p.hovered[hand]; ok && prev == t {
		return nil
	}
	p.hovered[hand] = t
	p.printf("hover %s %s (%.1f, %.1f)", hand, describe(t), c.X, c.Y)
	return nil
}

func (p *probe) click(hand domain.Hand) {
	c := p.cursors.Click(hand, p.absolute)
	if !p.cursors.ConsumeClick(hand) {
		return
	}
	p.printf("click %s %s", hand, describe(p.board.Resolve(c.X, c.Y)))
}

func modeLabel(single bool) string {
	if single {
		return domain.InputSingle.Label()
	}
	return domain.InputDual.Label()
}

func describe(t hittest.Target) string {
	switch t.Kind {
	case hittest.TargetKey:
		return fmt.Sprintf("key row=%d col=%d token=%s", t.Row, t.Column, t.Token)
	case hittest.TargetSuggestion:
		return fmt.Sprintf("suggestion col=%d", t.Column)
	default:
		return "none"
	}
}
