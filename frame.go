package arrow

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"

	"github.com/gstoney/arrow/packet"
)

var (
	ErrInvalidFrameLength  = errors.New("invalid frame length")
	ErrZlibPayloadOverrun  = errors.New("zlib stream exceeds declared payload length")
	ErrZlibPayloadUnderrun = errors.New("zlib stream shorter than declared payload length")
	ErrZlibTrailingData    = errors.New("trailing data in frame after zlib stream ends")
	ErrBelowThreshold      = errors.New("compressed packet below compression threshold")
)

func frameError(what string, err error) error {
	return &packet.FormatError{What: what, Err: err}
}

// nextFrame splits one complete frame body (packet id and payload) off the
// buffer. ok is false when more input is needed; the buffer is left
// untouched in that case.
func (c *Codec) nextFrame() (body []byte, ok bool, err error) {
	b := c.buf[c.off:]
	if len(b) == 0 {
		return nil, false, nil
	}

	length, n, err := packet.DecodeVarInt(b)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) && n < packet.MaxVarIntLen {
			return nil, false, nil
		}
		return nil, false, frameError("frame length", err)
	}
	if length <= 0 {
		return nil, false, frameError("frame length", ErrInvalidFrameLength)
	}
	if length > c.cfg.MaxPacketLen {
		return nil, false, frameError("frame length", packet.ErrPacketTooBig)
	}

	end := n + int(length)
	if len(b) < end {
		return nil, false, nil
	}
	c.off += end
	return b[n:end], true, nil
}

// inflate unwraps a body sent after compression was enabled. The result
// aliases body when the packet was sent uncompressed.
func (c *Codec) inflate(body []byte) ([]byte, error) {
	dataLen, n, err := packet.DecodeVarInt(body)
	if err != nil {
		return nil, frameError("data length", err)
	}
	if dataLen == 0 {
		return body[n:], nil
	}
	if dataLen < 0 {
		return nil, frameError("data length", packet.ErrNegativeLength)
	}
	if dataLen > c.cfg.MaxDecompressedLen {
		return nil, frameError("data length", packet.ErrPacketTooBig)
	}
	if int(dataLen) < c.threshold {
		return nil, frameError("data length", ErrBelowThreshold)
	}

	src := bytes.NewReader(body[n:])
	if c.zr == nil {
		c.zr, err = zlib.NewReader(src)
	} else {
		err = c.zr.(zlib.Resetter).Reset(src, nil)
	}
	if err != nil {
		return nil, frameError("zlib stream", err)
	}

	out := make([]byte, dataLen)
	if _, err = io.ReadFull(c.zr, out); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrZlibPayloadUnderrun
		}
		return nil, frameError("zlib stream", err)
	}

	// Reading past the declared length also verifies the checksum.
	var one [1]byte
	k, err := io.ReadFull(c.zr, one[:])
	if k > 0 {
		return nil, frameError("zlib stream", ErrZlibPayloadOverrun)
	}
	if err != io.EOF {
		return nil, frameError("zlib stream", err)
	}
	if src.Len() > 0 {
		return nil, frameError("zlib stream", ErrZlibTrailingData)
	}
	return out, nil
}

// deflate compresses body into the codec's scratch buffer.
func (c *Codec) deflate(body []byte) ([]byte, error) {
	c.zbuf.Reset()
	if c.zw == nil {
		c.zw = zlib.NewWriter(&c.zbuf)
	} else {
		c.zw.Reset(&c.zbuf)
	}
	if _, err := c.zw.Write(body); err != nil {
		return nil, err
	}
	if err := c.zw.Close(); err != nil {
		return nil, err
	}
	return c.zbuf.Bytes(), nil
}
