// Package domain contains core domain types for the keyrelay application.
package domain

import "fmt"

// Role is the fixed category a connection declares at admission.
type Role int

const (
	RoleUnknown Role = iota
	RoleRemote
	RoleInterface
)

// Handshake tags sent by clients in the client-type header.
const (
	RemoteTag    = "remote"
	InterfaceTag = "web-interface"
)

// ParseRole maps a handshake tag to a Role.
func ParseRole(tag string) (Role, error) {
	switch tag {
	case RemoteTag:
		return RoleRemote, nil
	case InterfaceTag:
		return RoleInterface, nil
	default:
		return RoleUnknown, fmt.Errorf("unrecognized client type %q", tag)
	}
}

// String returns the handshake tag for the role.
func (r Role) String() string {
	switch r {
	case RoleRemote:
		return RemoteTag
	case RoleInterface:
		return InterfaceTag
	default:
		return "unknown"
	}
}

// Hand identifies one of the two independent cursors.
// On the wire a hand is a boolean where true means left.
type Hand bool

const (
	HandLeft  Hand = true
	HandRight Hand = false
)

func (h Hand) String() string {
	if h == HandLeft {
		return "left"
	}
	return "right"
}

// InputMode selects single or dual cursor input.
type InputMode int

const (
	InputSingle InputMode = iota
	InputDual
)

// Label returns the log label for the mode.
func (m InputMode) Label() string {
	if m == InputDual {
		return "Dual-cursor"
	}
	return "Single-cursor"
}

// Positioning selects how remote gestures map to cursor positions.
type Positioning int

const (
	PositioningRelative Positioning = iota
	PositioningAbsolute
)
