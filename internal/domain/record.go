package domain

import "time"

// SessionLogRecord is the append-only result of one completed session.
type SessionLogRecord struct {
	ID                string    `json:"id"`
	ParticipantID     string    `json:"participant_id"`
	InputModeLabel    string    `json:"input_mode"`
	SuggestionsLabel  string    `json:"suggestions"`
	CommittedText     string    `json:"committed_text"`
	CharactersEntered int       `json:"characters_entered"`
	UsedSuggestion    bool      `json:"used_suggestion"`
	ElapsedMillis     int64     `json:"elapsed_ms"`
	Timed             bool      `json:"timed"`
	CompletedAt       time.Time `json:"completed_at"`
}

// SuggestionsLabel returns the log label for the suggestions flag.
func SuggestionsLabel(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

// YesNo renders a boolean the way the session log expects.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
