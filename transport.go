package arrow

import (
	"errors"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/atomic"

	"github.com/gstoney/arrow/catalog"
	"github.com/gstoney/arrow/packet"
)

const defaultReadBufferSize = 4096

type ConnConfig struct {
	Catalog            *catalog.Catalog
	MaxPacketLen       int32
	MaxDecompressedLen int32

	// StrictPlay fails on Play packets the catalog does not know instead
	// of surfacing them as *packet.Unknown.
	StrictPlay bool

	// ReadTimeout bounds each socket read. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds each frame write. Zero disables it.
	WriteTimeout time.Duration

	ReadBufferSize int
	Logger         logr.Logger
}

// Conn is a framed protocol connection.
//
// NextPacket must be called from one goroutine only. Send and the other
// methods may be called from any goroutine; each frame is written in a
// single Write so frames from concurrent senders never interleave.
type Conn struct {
	nc    net.Conn
	codec *Codec
	log   logr.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration

	rbuf    []byte
	readErr error

	wmu  sync.Mutex // guards wbuf and the encoding half of codec
	wbuf []byte

	closed atomic.Bool
}

// Accept wraps a server-side connection: it decodes serverbound packets
// and sends clientbound ones.
func Accept(nc net.Conn, cfg ConnConfig) *Conn {
	return newConn(nc, packet.Serverbound, cfg)
}

// Connect wraps a client-side connection: it sends serverbound packets
// and decodes clientbound ones.
func Connect(nc net.Conn, cfg ConnConfig) *Conn {
	return newConn(nc, packet.Clientbound, cfg)
}

func newConn(nc net.Conn, dir packet.Direction, cfg ConnConfig) *Conn {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	size := cfg.ReadBufferSize
	if size <= 0 {
		size = defaultReadBufferSize
	}
	return &Conn{
		nc: nc,
		codec: NewCodec(CodecConfig{
			Direction:          dir,
			Catalog:            cfg.Catalog,
			MaxPacketLen:       cfg.MaxPacketLen,
			MaxDecompressedLen: cfg.MaxDecompressedLen,
			PassthroughPlay:    !cfg.StrictPlay,
			Logger:             log,
		}),
		log:          log,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		rbuf:         make([]byte, size),
	}
}

// fill reads from the socket into the codec once. A read error is kept
// and returned by every later call.
func (c *Conn) fill() error {
	if c.readErr != nil {
		return c.readErr
	}
	var deadline time.Time
	if c.readTimeout > 0 {
		deadline = time.Now().Add(c.readTimeout)
	}
	n, err := c.readUntil(deadline)
	if err != nil {
		c.readErr = err
		if n > 0 {
			return nil
		}
	}
	return err
}

// readUntil performs one socket read into the codec. A zero deadline
// leaves the current one in place.
func (c *Conn) readUntil(deadline time.Time) (int, error) {
	if !deadline.IsZero() {
		if err := c.nc.SetReadDeadline(deadline); err != nil {
			return 0, err
		}
	}
	n, err := c.nc.Read(c.rbuf)
	if n > 0 {
		_, _ = c.codec.Write(c.rbuf[:n])
	}
	return n, err
}

// NextPacket blocks until one packet decodes or the connection fails.
// A stream that ends inside a frame yields io.ErrUnexpectedEOF; one that
// ends between frames yields io.EOF.
func (c *Conn) NextPacket() (packet.Packet, error) {
	for {
		p, ok, err := c.codec.Decode()
		if err != nil {
			return nil, err
		}
		if ok {
			return p, nil
		}
		if err = c.fill(); err != nil {
			if errors.Is(err, io.EOF) && len(c.codec.Buffered()) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}

// Peek waits until at least n undecoded bytes are buffered and returns
// them without consuming anything. It returns fewer bytes only together
// with an error.
func (c *Conn) Peek(n int) ([]byte, error) {
	for len(c.codec.Buffered()) < n {
		if err := c.fill(); err != nil {
			return c.codec.Buffered(), err
		}
	}
	return c.codec.Buffered(), nil
}

// PeekWithin is Peek bounded by d. When d runs out first it returns the
// bytes buffered so far with a timeout error, and the connection stays
// usable.
func (c *Conn) PeekWithin(n int, d time.Duration) ([]byte, error) {
	deadline := time.Now().Add(d)
	defer func() { _ = c.nc.SetReadDeadline(time.Time{}) }()
	for len(c.codec.Buffered()) < n {
		if c.readErr != nil {
			return c.codec.Buffered(), c.readErr
		}
		if _, err := c.readUntil(deadline); err != nil {
			if !isTimeout(err) {
				c.readErr = err
			}
			return c.codec.Buffered(), err
		}
	}
	return c.codec.Buffered(), nil
}

// Send encodes p for the current state and writes it as one frame.
func (c *Conn) Send(p packet.Packet) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	frame, err := c.codec.AppendFrame(c.wbuf[:0], p)
	if err != nil {
		return err
	}
	c.wbuf = frame
	if err = c.write(frame); err != nil {
		return err
	}
	c.log.V(2).Info("sent packet", "kind", p.Kind(), "len", len(frame))
	return nil
}

// WriteRaw writes b as is, outside framing. It serves sub-protocols that
// predate framing, such as the legacy server list ping.
func (c *Conn) WriteRaw(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.write(b)
}

func (c *Conn) write(b []byte) error {
	if c.writeTimeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := c.nc.Write(b)
	return err
}

func (c *Conn) State() packet.State {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.codec.State()
}

func (c *Conn) Protocol() int32 {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.codec.Protocol()
}

// EnterPlay moves the connection from Login to Play.
func (c *Conn) EnterPlay() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.codec.EnterPlay()
}

// SetCompression changes the compression threshold for frames sent and
// received after this call. Servers call it right after sending
// SetCompression; clients right after receiving it.
func (c *Conn) SetCompression(threshold int) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.codec.SetCompression(threshold)
}

func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

func (c *Conn) LocalAddr() net.Addr { return c.nc.LocalAddr() }

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.nc.Close()
}

func (c *Conn) Closed() bool { return c.closed.Load() }

// IsConnClosed reports whether err only says that the peer went away, went
// quiet past a deadline or was closed locally, as opposed to a protocol
// failure.
func IsConnClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	return isTimeout(err)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
