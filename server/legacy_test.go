package server

import (
	"encoding/binary"
	"io"
	"net"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstoney/arrow/config"
)

func decodeLegacyKick(t *testing.T, b []byte) string {
	t.Helper()
	require.GreaterOrEqual(t, len(b), 3)
	require.Equal(t, byte(legacyKickID), b[0])
	n := int(binary.BigEndian.Uint16(b[1:3]))
	require.Len(t, b[3:], 2*n)
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[3+2*i:])
	}
	return string(utf16.Decode(units))
}

func assertExtendedReply(t *testing.T, reply []byte) {
	t.Helper()
	fields := strings.Split(decodeLegacyKick(t, reply), "\x00")
	require.Len(t, fields, 6)
	assert.Equal(t, "§1", fields[0])
	assert.Equal(t, "127", fields[1])
	assert.Equal(t, "1.8.9", fields[2])
	assert.Contains(t, fields[3], "Arrow - A minecraft server written in Go")
	assert.Equal(t, "0", fields[4])
	assert.Equal(t, "42", fields[5])
}

func TestLegacyPing_Extended(t *testing.T) {
	s := newTestServer(t, nil)
	c, sc := net.Pipe()
	defer c.Close()
	go s.handleRawConn(sc)

	_, err := c.Write([]byte{0xFE, 0x01})
	require.NoError(t, err)
	reply, err := io.ReadAll(c)
	require.NoError(t, err)
	assertExtendedReply(t, reply)
}

// The 0x01 after 0xFE arrives in a separate read and must still select
// the extended reply.
func TestLegacyPing_ExtendedSplitAcrossReads(t *testing.T) {
	s := newTestServer(t, nil)
	c, sc := net.Pipe()
	defer c.Close()
	go s.handleRawConn(sc)

	// Pipe writes return once the server has read them.
	_, err := c.Write([]byte{0xFE})
	require.NoError(t, err)
	_, err = c.Write([]byte{0x01})
	require.NoError(t, err)

	reply, err := io.ReadAll(c)
	require.NoError(t, err)
	assertExtendedReply(t, reply)
}

// A lone 0xFE gets the beta reply once the follow-up wait runs out.
func TestLegacyPing_Beta(t *testing.T) {
	s := newTestServer(t, nil)
	c, sc := net.Pipe()
	defer c.Close()
	go s.handleRawConn(sc)

	_, err := c.Write([]byte{0xFE})
	require.NoError(t, err)
	reply, err := io.ReadAll(c)
	require.NoError(t, err)

	fields := strings.Split(decodeLegacyKick(t, reply), "§")
	require.Len(t, fields, 3)
	assert.Contains(t, fields[0], "Arrow - A minecraft server written in Go")
	assert.Equal(t, "0", fields[1])
	assert.Equal(t, "42", fields[2])
}

func TestLegacyResponse_Beta(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.Motd = "&6Gold &rserver"
		c.Server.MaxPlayers = 7
	})
	s.players.Add(newPlayer("Steve"))

	text := decodeLegacyKick(t, s.legacyResponse(false))
	assert.Equal(t, "Gold server§1§7", text)
}

func TestEncodeLegacyKick_SurrogatePairs(t *testing.T) {
	b := encodeLegacyKick("a😀")
	// One BMP unit plus a surrogate pair.
	assert.Equal(t, uint16(3), binary.BigEndian.Uint16(b[1:3]))
	assert.Equal(t, "a😀", decodeLegacyKick(t, b))
}

func TestStripCodes(t *testing.T) {
	assert.Equal(t, "plain", stripCodes("plain"))
	assert.Equal(t, "ab", stripCodes("§aa§lb"))
	assert.Equal(t, "x", stripCodes("x§"))
}
