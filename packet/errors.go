package packet

import (
	"errors"
	"fmt"
)

var (
	ErrNotExhausted   = errors.New("payload not exhausted")
	ErrNegativeLength = errors.New("negative length")
	ErrStringTooLong  = errors.New("string exceeds maximum length")
	ErrInvalidBoolean = errors.New("invalid byte for Boolean field")
	ErrPacketTooBig   = errors.New("packet too big")
)

// FormatError reports bytes that do not form a valid frame or packet.
// It is always fatal to the connection that produced it.
type FormatError struct {
	// What names the thing being decoded, e.g. "frame length" or a packet kind.
	What string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.What, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// InvalidOpcodeError is returned when no catalog entry matches an opcode in
// the connection's current state and protocol version.
type InvalidOpcodeError struct {
	Opcode    int32
	State     State
	Direction Direction
	Protocol  int32
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode 0x%02X for %s %s packet (protocol %d)",
		e.Opcode, e.Direction, e.State, e.Protocol)
}
