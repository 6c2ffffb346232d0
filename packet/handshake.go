package packet

const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)

// Handshake is the first packet of every framed connection.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (*Handshake) Kind() Kind { return KindHandshake }
func (*Handshake) sealed()    {}
