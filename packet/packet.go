package packet

import "fmt"

// Packet is a decoded protocol packet. The set of implementations is closed:
// every packet type lives in this package, and session code switches on the
// concrete pointer types. Opcodes and version-specific layouts are resolved
// by the catalog and never appear on a Packet.
type Packet interface {
	Kind() Kind
	sealed()
}

type Kind uint8

const (
	KindUnknown Kind = iota
	KindHandshake
	KindStatusRequest
	KindStatusResponse
	KindStatusPing
	KindStatusPong
	KindLoginStart
	KindLoginSuccess
	KindSetCompression
	KindDisconnect
	KindJoinGame
	KindServerDifficulty
	KindHeldItemChange
	KindKeepAlive
	KindClientSettings
)

var kindNames = [...]string{
	KindUnknown:          "Unknown",
	KindHandshake:        "Handshake",
	KindStatusRequest:    "StatusRequest",
	KindStatusResponse:   "StatusResponse",
	KindStatusPing:       "StatusPing",
	KindStatusPong:       "StatusPong",
	KindLoginStart:       "LoginStart",
	KindLoginSuccess:     "LoginSuccess",
	KindSetCompression:   "SetCompression",
	KindDisconnect:       "Disconnect",
	KindJoinGame:         "JoinGame",
	KindServerDifficulty: "ServerDifficulty",
	KindHeldItemChange:   "HeldItemChange",
	KindKeepAlive:        "KeepAlive",
	KindClientSettings:   "ClientSettings",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// State is the protocol phase of a connection.
type State uint8

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateStatus:
		return "Status"
	case StateLogin:
		return "Login"
	case StatePlay:
		return "Play"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Direction is the direction a packet travels in.
type Direction uint8

const (
	Serverbound Direction = iota
	Clientbound
)

func (d Direction) String() string {
	if d == Serverbound {
		return "serverbound"
	}
	return "clientbound"
}

// Opposite returns the direction packets flow back in.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

// Unknown carries a packet the catalog has no layout for. It is only
// produced when a codec is configured to pass unrecognized Play packets
// through instead of failing.
type Unknown struct {
	Opcode int32
	Data   []byte
}

func (*Unknown) Kind() Kind { return KindUnknown }
func (*Unknown) sealed()    {}
