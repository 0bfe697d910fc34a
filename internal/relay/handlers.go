package relay

import (
	"fmt"
	"math"

	"github.com/ashureev/keyrelay/internal/domain"
)

// dispatchTable maps each role's permitted events to their handlers.
// Settings originate from the interface; pointer activity and session start
// originate from the remote.
func dispatchTable() map[domain.Role]map[string]handlerFunc {
	return map[domain.Role]map[string]handlerFunc{
		domain.RoleInterface: {
			EventSetMode:        (*Hub).onSetMode,
			EventSetAbsolute:    (*Hub).onSetAbsolute,
			EventSetSuggestions: (*Hub).onSetSuggestions,
			EventSetTimer:       (*Hub).onSetTimer,
			EventSetParticipant: (*Hub).onSetParticipant,
			EventEnterPressed:   (*Hub).onEnterPressed,
		},
		domain.RoleRemote: {
			EventActivate:     (*Hub).onHandEvent,
			EventClick:        (*Hub).onHandEvent,
			EventCursorMove:   (*Hub).onCursorEvent,
			EventCursorSet:    (*Hub).onCursorEvent,
			EventStartSession: (*Hub).onStartSession,
		},
	}
}

func (h *Hub) onSetMode(msg Message) error {
	single, err := msg.Bool(0)
	if err != nil {
		return err
	}
	if single {
		h.state.InputMode = domain.InputSingle
	} else {
		h.state.InputMode = domain.InputDual
	}
	out := NewMessage(EventSetMode, single)
	h.toInterface(out)
	h.toRemote(out)
	return nil
}

func (h *Hub) onSetAbsolute(msg Message) error {
	absolute, err := msg.Bool(0)
	if err != nil {
		return err
	}
	if absolute {
		h.state.Positioning = domain.PositioningAbsolute
	} else {
		h.state.Positioning = domain.PositioningRelative
	}
	out := NewMessage(EventSetAbsolute, absolute)
	h.toInterface(out)
	h.toRemote(out)
	return nil
}

func (h *Hub) onSetSuggestions(msg Message) error {
	enabled, err := msg.Bool(0)
	if err != nil {
		return err
	}
	h.state.SuggestionsEnabled = enabled
	h.toInterface(NewMessage(EventSetSuggestions, enabled))
	return nil
}

func (h *Hub) onSetTimer(msg Message) error {
	enabled, err := msg.Bool(0)
	if err != nil {
		return err
	}
	h.state.TimerEnabled = enabled
	h.toInterface(NewMessage(EventSetTimer, enabled))
	h.toInterface(NewMessage(EventCursorReset))
	h.toRemote(NewMessage(EventHideTimerButton, !enabled))
	return nil
}

func (h *Hub) onSetParticipant(msg Message) error {
	id, err := msg.String(0)
	if err != nil {
		return err
	}
	h.state.ParticipantID = id
	h.toInterface(NewMessage(EventSetParticipant, id))
	h.logger.Info("Participant set", "participant_id", id)
	return nil
}

// onHandEvent handles activate and click.
func (h *Hub) onHandEvent(msg Message) error {
	if _, err := msg.Bool(0); err != nil {
		return err
	}
	h.toInterface(msg)
	h.markActivity()
	return nil
}

// onCursorEvent handles cursor-move and cursor-set. Coordinates are
// forwarded untouched; the interface clamps.
func (h *Hub) onCursorEvent(msg Message) error {
	if _, err := msg.Bool(0); err != nil {
		return err
	}
	if _, err := msg.Number(1); err != nil {
		return err
	}
	if _, err := msg.Number(2); err != nil {
		return err
	}
	h.toInterface(msg)
	h.markActivity()
	return nil
}

func (h *Hub) markActivity() {
	if h.state.MarkActivity(h.now()) {
		h.logger.Info("Session clock started", "participant_id", h.state.ParticipantID)
	}
}

func (h *Hub) onStartSession(_ Message) error {
	h.state.StartSession()
	h.toRemote(NewMessage(EventHideTimerButton, true))
	h.toInterface(NewMessage(EventResetInput))
	h.logger.Info("Session started", "participant_id", h.state.ParticipantID)
	return nil
}

// MaxCharactersEntered bounds the character count accepted from
// enter-pressed.
const MaxCharactersEntered = math.MaxInt32

func (h *Hub) onEnterPressed(msg Message) error {
	text, err := msg.String(0)
	if err != nil {
		return err
	}
	chars, err := msg.Number(1)
	if err != nil {
		return err
	}
	if chars < 0 || chars > MaxCharactersEntered {
		return fmt.Errorf("%w: %s: character count %v out of range", ErrMalformedPayload, msg.Event, chars)
	}
	usedSuggestion, err := msg.Bool(2)
	if err != nil {
		return err
	}

	now := h.now()
	elapsed, timed := h.state.EndSession(now)
	if !timed {
		h.logger.Warn("Session ended without a start timestamp, recording zero duration",
			"participant_id", h.state.ParticipantID)
	}

	rec := domain.SessionLogRecord{
		ID:                h.newID(),
		ParticipantID:     h.state.ParticipantID,
		InputModeLabel:    h.state.InputMode.Label(),
		SuggestionsLabel:  domain.SuggestionsLabel(h.state.SuggestionsEnabled),
		CommittedText:     text,
		CharactersEntered: int(math.Round(chars)),
		UsedSuggestion:    usedSuggestion,
		ElapsedMillis:     elapsed.Milliseconds(),
		Timed:             timed,
		CompletedAt:       now,
	}
	h.logger.Info("Session ended",
		"participant_id", rec.ParticipantID,
		"elapsed_ms", rec.ElapsedMillis,
		"characters_entered", rec.CharactersEntered,
		"used_suggestion", rec.UsedSuggestion,
	)

	switch {
	case rec.ParticipantID == "":
		h.logger.Debug("No participant set, session not persisted")
	case h.recorder != nil:
		h.recorder.Record(rec)
	}

	h.toInterface(NewMessage(EventCursorReset))
	h.toRemote(NewMessage(EventHideTimerButton, !h.state.TimerEnabled))
	return nil
}
