package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Event names.
const (
	EventSetMode         = "set-mode"
	EventSetAbsolute     = "set-absolute"
	EventSetSuggestions  = "set-suggestions"
	EventSetTimer        = "set-timer"
	EventSetParticipant  = "set-participant"
	EventDisplayIP       = "display-ip"
	EventActivate        = "activate"
	EventClick           = "click"
	EventCursorMove      = "cursor-move"
	EventCursorSet       = "cursor-set"
	EventCursorReset     = "cursor-reset"
	EventResetInput      = "reset-input"
	EventHideTimerButton = "hide-timer-button"
	EventStartSession    = "start-session"
	EventEnterPressed    = "enter-pressed"
)

// Message is one websocket frame: an event name with positional arguments.
//
//	{"event": "cursor-move", "args": [true, 1.5, -2]}
type Message struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args,omitempty"`
}

// NewMessage builds a message, JSON-encoding each argument.
func NewMessage(event string, args ...any) Message {
	msg := Message{Event: event}
	if len(args) == 0 {
		return msg
	}
	msg.Args = make([]json.RawMessage, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			b = []byte("null")
		}
		msg.Args[i] = b
	}
	return msg
}

var jsonNull = []byte("null")

func (m Message) arg(i int, v any) error {
	if i >= len(m.Args) {
		return fmt.Errorf("%w: %s: missing argument %d", ErrMalformedPayload, m.Event, i)
	}
	raw := bytes.TrimSpace(m.Args[i])
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return fmt.Errorf("%w: %s: argument %d is null", ErrMalformedPayload, m.Event, i)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: argument %d: %v", ErrMalformedPayload, m.Event, i, err)
	}
	return nil
}

// Bool decodes argument i as a boolean.
func (m Message) Bool(i int) (bool, error) {
	var v bool
	err := m.arg(i, &v)
	return v, err
}

// Number decodes argument i as a finite number.
func (m Message) Number(i int) (float64, error) {
	var v float64
	if err := m.arg(i, &v); err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s: argument %d is not finite", ErrMalformedPayload, m.Event, i)
	}
	return v, nil
}

// String decodes argument i as a string.
func (m Message) String(i int) (string, error) {
	var v string
	err := m.arg(i, &v)
	return v, err
}

// OptionalString decodes argument i as a string that may be null.
func (m Message) OptionalString(i int) (*string, error) {
	if i < len(m.Args) && bytes.Equal(bytes.TrimSpace(m.Args[i]), jsonNull) {
		return nil, nil
	}
	s, err := m.String(i)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
