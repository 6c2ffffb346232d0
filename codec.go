// Package arrow frames a block-game protocol stream into typed packets.
//
// A Codec turns buffered bytes into packets for one connection, tracking
// its state and protocol version as Handshake packets pass through it. A
// Conn pairs a Codec with a net.Conn.
package arrow

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/gstoney/arrow/catalog"
	"github.com/gstoney/arrow/packet"
)

const (
	// DefaultMaxPacketLen is the largest frame length a three byte VarInt
	// can express, which is what vanilla clients accept.
	DefaultMaxPacketLen int32 = 1<<21 - 1
	// DefaultMaxDecompressedLen bounds the size a compressed body may
	// claim to inflate to.
	DefaultMaxDecompressedLen int32 = 8 << 20
)

type CodecConfig struct {
	// Direction is the direction of the packets the codec decodes.
	// Encoded packets travel the opposite way.
	Direction packet.Direction

	// Catalog defaults to catalog.Default().
	Catalog *catalog.Catalog

	MaxPacketLen       int32
	MaxDecompressedLen int32

	// PassthroughPlay decodes Play packets the catalog does not know into
	// *packet.Unknown instead of failing. Other states always fail.
	PassthroughPlay bool

	Logger logr.Logger
}

// Codec is the per-connection frame codec. It is not safe for concurrent
// use; Conn serializes access where it needs to.
type Codec struct {
	cfg   CodecConfig
	state ConnState
	log   logr.Logger

	buf []byte
	off int

	// threshold is negative until compression is enabled.
	threshold int
	zr        io.ReadCloser
	zw        *zlib.Writer
	zbuf      bytes.Buffer

	scratch []byte
}

func NewCodec(cfg CodecConfig) *Codec {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.MaxPacketLen <= 0 {
		cfg.MaxPacketLen = DefaultMaxPacketLen
	}
	if cfg.MaxDecompressedLen <= 0 {
		cfg.MaxDecompressedLen = DefaultMaxDecompressedLen
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Codec{
		cfg:       cfg,
		log:       log,
		threshold: -1,
	}
}

func (c *Codec) State() packet.State { return c.state.State() }

func (c *Codec) Protocol() int32 { return c.state.Protocol() }

// EnterPlay signals that login completed; Play opcodes decode from now on.
func (c *Codec) EnterPlay() error {
	return c.state.EnterPlay()
}

// SetCompression enables compression for frames at or above threshold
// bytes. A negative threshold disables it again.
func (c *Codec) SetCompression(threshold int) {
	c.threshold = threshold
}

// Compression returns the current threshold, negative when disabled.
func (c *Codec) Compression() int { return c.threshold }

// Write buffers p for decoding. It never fails.
func (c *Codec) Write(p []byte) (int, error) {
	if c.off > 0 && c.off == len(c.buf) {
		c.buf = c.buf[:0]
		c.off = 0
	} else if c.off > cap(c.buf)/2 {
		n := copy(c.buf, c.buf[c.off:])
		c.buf = c.buf[:n]
		c.off = 0
	}
	c.buf = append(c.buf, p...)
	return len(p), nil
}

// Buffered returns the bytes written but not yet decoded. The slice is
// only valid until the next Write or Decode.
func (c *Codec) Buffered() []byte {
	return c.buf[c.off:]
}

// Decode decodes the next complete packet from the buffer. ok is false
// with a nil error when the buffer does not hold a complete frame yet.
// Any error is fatal to the connection.
//
// A decoded Handshake moves the codec to the requested state before
// Decode returns, so later frames in the same buffer decode under it.
func (c *Codec) Decode() (p packet.Packet, ok bool, err error) {
	body, ok, err := c.nextFrame()
	if !ok || err != nil {
		return nil, false, err
	}
	if c.threshold >= 0 {
		if body, err = c.inflate(body); err != nil {
			return nil, false, err
		}
	}

	opcode, n, err := packet.DecodeVarInt(body)
	if err != nil {
		return nil, false, frameError("packet id", err)
	}
	payload := body[n:]

	dir, state, version := c.cfg.Direction, c.state.State(), c.state.Protocol()
	e, err := c.cfg.Catalog.Resolve(dir, state, opcode, version)
	if err != nil {
		var invalid *packet.InvalidOpcodeError
		if state == packet.StatePlay && c.cfg.PassthroughPlay && errors.As(err, &invalid) {
			c.log.V(2).Info("passing through unknown packet", "opcode", opcode, "len", len(payload))
			return &packet.Unknown{Opcode: opcode, Data: bytes.Clone(payload)}, true, nil
		}
		return nil, false, err
	}

	if p, err = e.Decode(payload); err != nil {
		return nil, false, err
	}
	if h, isHandshake := p.(*packet.Handshake); isHandshake {
		if err = c.state.Advance(h); err != nil {
			return nil, false, err
		}
	}
	c.log.V(2).Info("decoded packet", "kind", p.Kind(), "opcode", opcode, "state", state)
	return p, true, nil
}

// Encode returns the complete frame of p.
func (c *Codec) Encode(p packet.Packet) ([]byte, error) {
	return c.AppendFrame(nil, p)
}

// AppendFrame appends the complete frame of p to dst. On error dst is
// returned unchanged. Encoding a Handshake moves the codec to the state it
// requests, as decoding one does.
func (c *Codec) AppendFrame(dst []byte, p packet.Packet) ([]byte, error) {
	dir := c.cfg.Direction.Opposite()
	body, err := c.cfg.Catalog.AppendPacket(c.scratch[:0], dir, c.state.State(), c.state.Protocol(), p)
	if err != nil {
		return dst, err
	}
	c.scratch = body

	var (
		header [packet.MaxVarIntLen]byte
		hdr    []byte
		data   = body
	)
	if c.threshold >= 0 {
		if len(body) >= c.threshold {
			if data, err = c.deflate(body); err != nil {
				return dst, fmt.Errorf("compress %s: %w", p.Kind(), err)
			}
			hdr = packet.AppendVarInt(header[:0], int32(len(body)))
		} else {
			hdr = append(header[:0], 0)
		}
	}

	length := len(hdr) + len(data)
	if length > int(c.cfg.MaxPacketLen) {
		return dst, fmt.Errorf("%s frame of %d bytes: %w", p.Kind(), length, packet.ErrPacketTooBig)
	}

	if h, isHandshake := p.(*packet.Handshake); isHandshake {
		if err = c.state.Advance(h); err != nil {
			return dst, err
		}
	}

	dst = packet.AppendVarInt(dst, int32(length))
	dst = append(dst, hdr...)
	return append(dst, data...), nil
}
