package arrow

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstoney/arrow/packet"
)

func defaultConfig() ConnConfig {
	return ConnConfig{
		MaxPacketLen:       1 << 20, // 1MB
		MaxDecompressedLen: 1 << 21, // 2MB
		ReadTimeout:        5 * time.Second,
	}
}

// connPair returns a client and a server Conn joined by a synchronous pipe.
func connPair(t *testing.T) (client, server *Conn) {
	t.Helper()
	c, s := net.Pipe()
	client = Connect(c, defaultConfig())
	server = Accept(s, defaultConfig())
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

// sendAsync sends packets from another goroutine, since pipe writes block
// until the peer reads.
func sendAsync(c *Conn, packets ...packet.Packet) <-chan error {
	done := make(chan error, 1)
	go func() {
		for _, p := range packets {
			if err := c.Send(p); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	return done
}

// TestConn_Roundtrip verifies that a packet can be sent and received
// with identical fields through an uncompressed connection.
func TestConn_Roundtrip(t *testing.T) {
	client, server := connPair(t)

	want := &packet.Handshake{ProtocolVersion: 754, ServerAddress: "localhost", ServerPort: 25565, NextState: 2}
	done := sendAsync(client, want)

	got, err := server.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, want, got)
	assert.Equal(t, packet.StateLogin, server.State())
}

// TestConn_MultiplePackets verifies that multiple packets sent
// sequentially maintain proper frame boundaries and are received in order.
func TestConn_MultiplePackets(t *testing.T) {
	client, server := connPair(t)

	done := sendAsync(client,
		&packet.Handshake{ProtocolVersion: 47, ServerAddress: "a", ServerPort: 1, NextState: 2},
		&packet.LoginStart{Name: "first"},
	)

	_, err := server.NextPacket()
	require.NoError(t, err)
	p, err := server.NextPacket()
	require.NoError(t, err)
	assert.Equal(t, &packet.LoginStart{Name: "first"}, p)
	require.NoError(t, <-done)
}

// TestConn_LargePayload verifies that a frame larger than the read buffer
// is reassembled over several reads.
func TestConn_LargePayload(t *testing.T) {
	c, s := net.Pipe()
	cfg := defaultConfig()
	cfg.ReadBufferSize = 16
	client, server := Connect(c, cfg), Accept(s, cfg)
	defer client.Close()
	defer server.Close()

	done := sendAsync(client, &packet.Handshake{ProtocolVersion: 754, ServerAddress: "x", ServerPort: 1, NextState: 2})
	_, err := server.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-done)

	reason := string(bytes.Repeat([]byte("z"), 1<<12))
	done = sendAsync(server, &packet.Disconnect{Reason: reason})

	p, err := client.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, &packet.Disconnect{Reason: reason}, p)
}

// TestConn_PacketTooBig verifies that NextPacket fails when the frame
// length exceeds MaxPacketLen.
func TestConn_PacketTooBig(t *testing.T) {
	c, s := net.Pipe()
	cfg := defaultConfig()
	cfg.MaxPacketLen = 100
	server := Accept(s, cfg)
	defer c.Close()
	defer server.Close()

	go func() {
		frame := packet.AppendVarInt(nil, 200)
		_, _ = c.Write(append(frame, make([]byte, 200)...))
	}()

	_, err := server.NextPacket()
	assert.ErrorIs(t, err, packet.ErrPacketTooBig)
}

// TestConn_CompressedRoundtrip verifies that compressed frames in both
// directions decode to the packets sent.
func TestConn_CompressedRoundtrip(t *testing.T) {
	client, server := connPair(t)

	done := sendAsync(client, &packet.Handshake{ProtocolVersion: 754, ServerAddress: "x", ServerPort: 1, NextState: 2})
	_, err := server.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-done)

	client.SetCompression(10)
	server.SetCompression(10)

	reason := `{"text":"hello minecraft compressed payload test"}`
	done = sendAsync(server, &packet.Disconnect{Reason: reason})

	p, err := client.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, &packet.Disconnect{Reason: reason}, p)
}

// TestConn_UnexpectedEOF verifies that a stream ending inside a frame is
// reported as io.ErrUnexpectedEOF and one ending between frames as io.EOF.
func TestConn_UnexpectedEOF(t *testing.T) {
	c, s := net.Pipe()
	server := Accept(s, defaultConfig())
	defer server.Close()

	go func() {
		_, _ = c.Write([]byte{0x05, 0x00})
		c.Close()
	}()
	_, err := server.NextPacket()
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	c, s = net.Pipe()
	server = Accept(s, defaultConfig())
	defer server.Close()
	go c.Close()
	_, err = server.NextPacket()
	assert.Equal(t, io.EOF, err)
}

// TestConn_Peek verifies that peeked bytes are still decoded afterwards.
func TestConn_Peek(t *testing.T) {
	client, server := connPair(t)

	done := sendAsync(client, &packet.Handshake{ProtocolVersion: 754, ServerAddress: "x", ServerPort: 1, NextState: 1})
	b, err := server.Peek(1)
	require.NoError(t, err)
	require.NotEqual(t, byte(0xFE), b[0], "framed stream looks like a legacy ping")

	_, err = server.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, packet.StateStatus, server.State())
}

// TestConn_PeekWithin verifies that a bounded peek returns what arrived
// before the deadline and leaves the connection readable.
func TestConn_PeekWithin(t *testing.T) {
	c, s := net.Pipe()
	server := Accept(s, defaultConfig())
	defer c.Close()
	defer server.Close()

	frame, err := NewCodec(CodecConfig{Direction: packet.Clientbound}).Encode(
		&packet.Handshake{ProtocolVersion: 754, ServerAddress: "x", ServerPort: 1, NextState: 1})
	require.NoError(t, err)

	// Pipe writes return once the server has read them.
	written := make(chan error, 1)
	go func() {
		_, err := c.Write(frame[:1])
		written <- err
	}()

	b, err := server.PeekWithin(2, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, IsConnClosed(err), "want a timeout, got %v", err)
	assert.Equal(t, frame[:1], b)
	require.NoError(t, <-written)

	go func() {
		_, err := c.Write(frame[1:])
		written <- err
	}()
	p, err := server.NextPacket()
	require.NoError(t, err)
	require.NoError(t, <-written)
	assert.IsType(t, &packet.Handshake{}, p)
}

// TestIsConnClosed verifies which errors count as the peer going away.
func TestIsConnClosed(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.EOF, true},
		{net.ErrClosed, true},
		{io.ErrClosedPipe, true},
		{&packet.FormatError{What: "frame length", Err: packet.ErrVarIntTooLong}, false},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsConnClosed(tc.err), "IsConnClosed(%v)", tc.err)
	}
}
