package arrow

import (
	"fmt"

	"github.com/gstoney/arrow/packet"
)

// InvalidTransitionError is returned when a connection is asked to move to
// a state it cannot reach from where it is. Value is the requested state in
// Handshake numbering (1 status, 2 login, 3 play).
type InvalidTransitionError struct {
	From  packet.State
	Value int32
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %d", e.From, e.Value)
}

// ConnState is the protocol phase and version of one connection.
// The zero value is a fresh connection in the Handshake state.
type ConnState struct {
	state    packet.State
	protocol int32
}

func (s ConnState) State() packet.State { return s.state }

// Protocol is the version announced in the Handshake, or 0 before it.
func (s ConnState) Protocol() int32 { return s.protocol }

// Advance applies a Handshake: it fixes the protocol version and moves to
// Status or Login. Any other next state, or a second Handshake, fails and
// leaves s unchanged.
func (s *ConnState) Advance(h *packet.Handshake) error {
	if s.state != packet.StateHandshake {
		return &InvalidTransitionError{From: s.state, Value: h.NextState}
	}
	var next packet.State
	switch h.NextState {
	case packet.NextStateStatus:
		next = packet.StateStatus
	case packet.NextStateLogin:
		next = packet.StateLogin
	default:
		return &InvalidTransitionError{From: s.state, Value: h.NextState}
	}
	s.state = next
	s.protocol = h.ProtocolVersion
	return nil
}

// EnterPlay moves a connection that finished logging in to Play.
func (s *ConnState) EnterPlay() error {
	if s.state != packet.StateLogin {
		return &InvalidTransitionError{From: s.state, Value: int32(packet.StatePlay)}
	}
	s.state = packet.StatePlay
	return nil
}
