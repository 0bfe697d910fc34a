// Package relay admits one remote and one interface connection, owns the
// shared session state, and forwards events between the two.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/google/uuid"
)

// Peer is an admitted connection. Send must not block; a frame that cannot
// be queued is dropped.
type Peer interface {
	Send(msg Message) bool
}

// Recorder receives completed session records. Record must not block.
type Recorder interface {
	Record(rec domain.SessionLogRecord) bool
}

type handlerFunc func(h *Hub, msg Message) error

// Options configures a Hub.
type Options struct {
	Recorder Recorder
	// AdvertiseAddr is shown to the interface while no remote is connected.
	AdvertiseAddr string
	Now           func() time.Time
	NewID         func() string
	Logger        *slog.Logger
	InboxSize     int
}

// Hub is the single owner of the shared session state. Every admission,
// departure and inbound event runs on the Run goroutine, one at a time.
type Hub struct {
	state     *domain.SessionState
	remote    Peer
	iface     Peer
	recorder  Recorder
	advertise string
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	handlers  map[domain.Role]map[string]handlerFunc

	inbox chan func()
	done  chan struct{}
}

// NewHub creates a hub with default session state. Call Run to start it.
func NewHub(opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 256
	}
	return &Hub{
		state:     domain.NewSessionState(),
		recorder:  opts.Recorder,
		advertise: opts.AdvertiseAddr,
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    opts.Logger,
		handlers:  dispatchTable(),
		inbox:     make(chan func(), opts.InboxSize),
		done:      make(chan struct{}),
	}
}

// Run processes hub work until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.logger.Info("Relay hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Relay hub stopping", "reason", ctx.Err())
			return
		case fn := <-h.inbox:
			fn()
		}
	}
}

func (h *Hub) enqueue(ctx context.Context, fn func()) error {
	select {
	case h.inbox <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) await(ctx context.Context, result <-chan error) error {
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubClosed
	}
}

// Admit claims the slot for role. It returns ErrRoleOccupied when another
// connection holds it.
func (h *Hub) Admit(ctx context.Context, role domain.Role, peer Peer) error {
	result := make(chan error, 1)
	if err := h.enqueue(ctx, func() { result <- h.admit(role, peer) }); err != nil {
		return err
	}
	return h.await(ctx, result)
}

// Leave releases the slot for role if peer still holds it.
func (h *Hub) Leave(role domain.Role, peer Peer) {
	if err := h.enqueue(context.Background(), func() { h.leave(role, peer) }); err != nil {
		h.logger.Debug("Leave after hub stopped", "role", role.String())
	}
}

// Deliver queues an inbound event from peer. Events are handled in arrival
// order.
func (h *Hub) Deliver(ctx context.Context, role domain.Role, peer Peer, msg Message) error {
	return h.enqueue(ctx, func() { h.dispatch(role, peer, msg) })
}

// Snapshot is a point-in-time copy of the hub state.
type Snapshot struct {
	SingleInput        bool       `json:"single_input"`
	Absolute           bool       `json:"absolute"`
	SuggestionsEnabled bool       `json:"suggestions_enabled"`
	TimerEnabled       bool       `json:"timer_enabled"`
	ParticipantID      string     `json:"participant_id"`
	SessionActive      bool       `json:"session_active"`
	SessionStart       *time.Time `json:"session_start,omitempty"`
	Phase              string     `json:"phase"`
	RemoteConnected    bool       `json:"remote_connected"`
	InterfaceConnected bool       `json:"interface_connected"`
}

// Snapshot returns the current state. It is ordered after every event
// delivered before the call.
func (h *Hub) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	result := make(chan error, 1)
	err := h.enqueue(ctx, func() {
		s := h.state.Clone()
		snap = Snapshot{
			SingleInput:        s.InputMode == domain.InputSingle,
			Absolute:           s.Positioning == domain.PositioningAbsolute,
			SuggestionsEnabled: s.SuggestionsEnabled,
			TimerEnabled:       s.TimerEnabled,
			ParticipantID:      s.ParticipantID,
			SessionActive:      s.SessionActive,
			SessionStart:       s.SessionStart,
			Phase:              h.state.Phase().String(),
			RemoteConnected:    h.remote != nil,
			InterfaceConnected: h.iface != nil,
		}
		result <- nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	if err := h.await(ctx, result); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (h *Hub) admit(role domain.Role, peer Peer) error {
	switch role {
	case domain.RoleInterface:
		if h.iface != nil {
			h.logger.Warn("Rejecting duplicate connection", "role", role.String())
			return ErrRoleOccupied
		}
		h.iface = peer
		h.logger.Info("Web interface connected")
		h.sendInterfaceSnapshot()
	case domain.RoleRemote:
		if h.remote != nil {
			h.logger.Warn("Rejecting duplicate connection", "role", role.String())
			return ErrRoleOccupied
		}
		h.remote = peer
		h.logger.Info("Remote connected")
		h.sendRemoteSnapshot()
		h.toInterface(NewMessage(EventDisplayIP, nil))
	default:
		return ErrUnknownRole
	}
	return nil
}

func (h *Hub) leave(role domain.Role, peer Peer) {
	switch role {
	case domain.RoleInterface:
		if h.iface != peer {
			return
		}
		h.iface = nil
		h.logger.Info("Web interface disconnected")
	case domain.RoleRemote:
		if h.remote != peer {
			return
		}
		h.remote = nil
		h.logger.Info("Remote disconnected")
		h.toInterface(h.displayIP())
	}
}

func (h *Hub) dispatch(role domain.Role, peer Peer, msg Message) {
	if h.slot(role) != peer {
		h.logger.Debug("Dropping event from unadmitted connection", "role", role.String(), "event", msg.Event)
		return
	}
	handler, ok := h.handlers[role][msg.Event]
	if !ok {
		h.logger.Debug("Dropping event", "role", role.String(), "event", msg.Event, "error", ErrUnrouted)
		return
	}
	if err := handler(h, msg); err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			h.logger.Debug("Dropping malformed event", "role", role.String(), "event", msg.Event, "error", err)
			return
		}
		h.logger.Warn("Event handler failed", "role", role.String(), "event", msg.Event, "error", err)
	}
}

func (h *Hub) slot(role domain.Role) Peer {
	switch role {
	case domain.RoleRemote:
		return h.remote
	case domain.RoleInterface:
		return h.iface
	}
	return nil
}

func (h *Hub) send(peer Peer, msg Message) {
	if peer == nil {
		return
	}
	if !peer.Send(msg) {
		h.logger.Debug("Outbound frame dropped", "event", msg.Event)
	}
}

func (h *Hub) toInterface(msg Message) { h.send(h.iface, msg) }
func (h *Hub) toRemote(msg Message)    { h.send(h.remote, msg) }

func (h *Hub) displayIP() Message {
	if h.advertise == "" {
		return NewMessage(EventDisplayIP, nil)
	}
	return NewMessage(EventDisplayIP, h.advertise)
}

func (h *Hub) sendInterfaceSnapshot() {
	s := h.state
	if h.remote == nil {
		h.toInterface(h.displayIP())
	} else {
		h.toInterface(NewMessage(EventDisplayIP, nil))
	}
	h.toInterface(NewMessage(EventSetMode, s.InputMode == domain.InputSingle))
	h.toInterface(NewMessage(EventSetAbsolute, s.Positioning == domain.PositioningAbsolute))
	h.toInterface(NewMessage(EventSetSuggestions, s.SuggestionsEnabled))
	h.toInterface(NewMessage(EventSetTimer, s.TimerEnabled))
	h.toInterface(NewMessage(EventSetParticipant, s.ParticipantID))
}

func (h *Hub) sendRemoteSnapshot() {
	s := h.state
	h.toRemote(NewMessage(EventSetMode, s.InputMode == domain.InputSingle))
	h.toRemote(NewMessage(EventSetAbsolute, s.Positioning == domain.PositioningAbsolute))
	h.toRemote(NewMessage(EventHideTimerButton, !s.TimerEnabled))
}
