package server

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

const (
	legacyPingID     = 0xFE
	legacyKickID     = 0xFF
	legacyPayloadTag = 0x01

	// What 1.4+ clients see in the server list for legacy pings.
	legacyProtocol    = 127
	legacyVersionName = "1.8.9"

	// How long to wait for the byte after 0xFE.
	legacyFollowUpWait = 100 * time.Millisecond
)

// legacyPing answers the server list ping of clients that predate framing.
// buffered holds the bytes read so far; clients from 1.4 on follow 0xFE
// with 0x01 and get the extended reply.
func (s *session) legacyPing(buffered []byte) error {
	extended := len(buffered) > 1 && buffered[1] == legacyPayloadTag
	s.log.V(1).Info("legacy ping", "extended", extended)
	return s.conn.WriteRaw(s.server.legacyResponse(extended))
}

func (s *Server) legacyResponse(extended bool) []byte {
	motd := marshalLegacy(s.motd)
	online := strconv.Itoa(s.players.Len())
	maxPlayers := strconv.Itoa(s.cfg.Server.MaxPlayers)

	var text string
	if extended {
		text = strings.Join([]string{
			"§1",
			strconv.Itoa(legacyProtocol),
			legacyVersionName,
			motd,
			online,
			maxPlayers,
		}, "\x00")
	} else {
		// '§' separates the fields here, so the MOTD goes without codes.
		text = stripCodes(motd) + "§" + online + "§" + maxPlayers
	}
	return encodeLegacyKick(text)
}

// encodeLegacyKick frames text as a kick packet: 0xFF, a UTF-16 code unit
// count and the UTF-16BE text.
func encodeLegacyKick(text string) []byte {
	units := utf16.Encode([]rune(text))
	b := make([]byte, 3, 3+2*len(units))
	b[0] = legacyKickID
	binary.BigEndian.PutUint16(b[1:], uint16(len(units)))
	for _, u := range units {
		b = binary.BigEndian.AppendUint16(b, u)
	}
	return b
}

func stripCodes(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case skip:
			skip = false
		case r == '§':
			skip = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
