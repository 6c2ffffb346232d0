package packet

import "io"

// FrameReader reads fields out of the payload of a single frame.
// It never reads past the end of the payload; running out of bytes
// mid-field yields io.ErrUnexpectedEOF.
type FrameReader struct {
	buf []byte
	off int
}

func NewFrameReader(buf []byte) FrameReader {
	return FrameReader{
		buf: buf,
		off: 0,
	}
}

func (r FrameReader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *FrameReader) ReadByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// Read implements io.Reader so that nested decoders (NBT) can consume
// the payload directly. It returns io.EOF once the payload is exhausted.
func (r *FrameReader) Read(p []byte) (int, error) {
	if r.off >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}

// Next returns the next n bytes of the payload without copying.
func (r *FrameReader) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n > len(r.buf)-r.off {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Rest returns every unread byte and exhausts the reader.
func (r *FrameReader) Rest() []byte {
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

// Peek returns the unread bytes without consuming them.
func (r FrameReader) Peek() []byte {
	return r.buf[r.off:]
}
