package relay

import "errors"

var (
	// ErrRoleOccupied is returned when a second connection claims a role
	// that already has a live connection.
	ErrRoleOccupied = errors.New("role already connected")
	// ErrUnknownRole is returned for a missing or unrecognized client type.
	ErrUnknownRole = errors.New("unknown client role")
	// ErrMalformedPayload is returned when an event's arguments do not match
	// what the event expects.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUnrouted is returned for events the sending role may not emit.
	ErrUnrouted = errors.New("unrouted event")
	// ErrHubClosed is returned once the hub has stopped.
	ErrHubClosed = errors.New("hub closed")
)
