package packet

import (
	"github.com/google/uuid"
)

const MaxUsernameLen = 16

type LoginStart struct {
	Name string
}

func (*LoginStart) Kind() Kind { return KindLoginStart }
func (*LoginStart) sealed()    {}

type LoginSuccess struct {
	UUID     uuid.UUID
	Username string
}

func (*LoginSuccess) Kind() Kind { return KindLoginSuccess }
func (*LoginSuccess) sealed()    {}

// SetCompression enables compressed framing for every later packet in both
// directions. A negative threshold disables it.
type SetCompression struct {
	Threshold int32
}

func (*SetCompression) Kind() Kind { return KindSetCompression }
func (*SetCompression) sealed()    {}

// Disconnect is sent in Login and Play. Reason is a JSON text component.
type Disconnect struct {
	Reason string
}

func (*Disconnect) Kind() Kind { return KindDisconnect }
func (*Disconnect) sealed()    {}
