package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsPeer queues outbound frames for one websocket and writes them from a
// single goroutine, so the hub never waits on the network.
type wsPeer struct {
	conn         *websocket.Conn
	role         domain.Role
	out          chan Message
	writeTimeout time.Duration
	ctx          context.Context
	logger       *slog.Logger
}

func newWSPeer(ctx context.Context, conn *websocket.Conn, role domain.Role, queueSize int, writeTimeout time.Duration, logger *slog.Logger) *wsPeer {
	return &wsPeer{
		conn:         conn,
		role:         role,
		out:          make(chan Message, queueSize),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		logger:       logger,
	}
}

// Send implements Peer.
func (p *wsPeer) Send(msg Message) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.out <- msg:
		return true
	default:
		p.logger.Warn("Send queue full, dropping frame",
			"role", p.role.String(),
			"event", msg.Event,
			"queue_len", len(p.out),
		)
		return false
	}
}

// writeLoop drains the queue until ctx ends or a write fails.
func (p *wsPeer) writeLoop(cancel context.CancelFunc) {
	defer cancel()
	for {
		select {
		case <-p.ctx.Done():
			return
		case msg := <-p.out:
			ctx, done := context.WithTimeout(p.ctx, p.writeTimeout)
			err := wsjson.Write(ctx, p.conn, msg)
			done()
			if err != nil {
				if p.ctx.Err() == nil {
					p.logger.Debug("WebSocket write error", "role", p.role.String(), "error", err)
				}
				return
			}
		}
	}
}
