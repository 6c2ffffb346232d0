package packet

import (
	"errors"
	"io"
)

const (
	MaxVarIntLen  = 5
	MaxVarLongLen = 10
)

var (
	ErrVarIntTooLong      = errors.New("VarInt is too long")
	ErrVarLongTooLong     = errors.New("VarLong is too long")
	ErrVarIntNotCanonical = errors.New("variable-length integer is not minimally encoded")
	ErrVarIntOverflow     = errors.New("variable-length integer overflows its width")
)

// VarIntLen returns the number of bytes WriteVarInt emits for v.
func VarIntLen(v int32) int {
	uv := uint32(v)
	n := 1
	for uv >= 0x80 {
		uv >>= 7
		n++
	}
	return n
}

func VarLongLen(v int64) int {
	uv := uint64(v)
	n := 1
	for uv >= 0x80 {
		uv >>= 7
		n++
	}
	return n
}

func AppendVarInt(dst []byte, v int32) []byte {
	uv := uint32(v)
	for uv >= 0x80 {
		dst = append(dst, byte(uv)|0x80)
		uv >>= 7
	}
	return append(dst, byte(uv))
}

func AppendVarLong(dst []byte, v int64) []byte {
	uv := uint64(v)
	for uv >= 0x80 {
		dst = append(dst, byte(uv)|0x80)
		uv >>= 7
	}
	return append(dst, byte(uv))
}

func WriteVarInt(w io.Writer, v int32) error {
	var buf [MaxVarIntLen]byte
	_, err := w.Write(AppendVarInt(buf[:0], v))
	return err
}

func WriteVarLong(w io.Writer, v int64) error {
	var buf [MaxVarLongLen]byte
	_, err := w.Write(AppendVarLong(buf[:0], v))
	return err
}

// varDecoder accumulates 7-bit groups of a VarInt or VarLong.
// maxLen bounds the group count and lastMask the bits allowed in the
// final group of a maximum-length encoding.
type varDecoder struct {
	maxLen   int
	lastMask byte
	tooLong  error

	v uint64
	n int
}

// feed consumes one byte. done reports whether the encoding terminated.
func (d *varDecoder) feed(b byte) (done bool, err error) {
	if d.n == d.maxLen {
		return false, d.tooLong
	}
	d.v |= uint64(b&0x7F) << (7 * d.n)
	d.n++

	if b&0x80 != 0 {
		if d.n == d.maxLen {
			return false, d.tooLong
		}
		return false, nil
	}

	if d.n > 1 && b == 0 {
		return true, ErrVarIntNotCanonical
	}
	if d.n == d.maxLen && b&^d.lastMask != 0 {
		return true, ErrVarIntOverflow
	}
	return true, nil
}

func varIntDecoder() varDecoder {
	return varDecoder{maxLen: MaxVarIntLen, lastMask: 0x0F, tooLong: ErrVarIntTooLong}
}

func varLongDecoder() varDecoder {
	return varDecoder{maxLen: MaxVarLongLen, lastMask: 0x01, tooLong: ErrVarLongTooLong}
}

// ReadVarInt reads a VarInt one byte at a time.
// An io.EOF before the terminating byte is reported as io.ErrUnexpectedEOF
// unless no byte was read at all.
func ReadVarInt(r io.ByteReader) (int32, error) {
	d := varIntDecoder()
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && d.n > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		done, err := d.feed(b)
		if err != nil {
			return 0, err
		}
		if done {
			return int32(uint32(d.v)), nil
		}
	}
}

func ReadVarLong(r io.ByteReader) (int64, error) {
	d := varLongDecoder()
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && d.n > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		done, err := d.feed(b)
		if err != nil {
			return 0, err
		}
		if done {
			return int64(d.v), nil
		}
	}
}

// DecodeVarInt decodes a VarInt from the start of b and returns it with the
// number of bytes it occupied.
//
// If b ends before the VarInt terminates the error is io.ErrUnexpectedEOF
// and n is the number of bytes inspected. Callers framing a stream treat
// that as a request for more input, since fewer than MaxVarIntLen bytes
// were seen; any other error means the bytes can never form a valid VarInt.
func DecodeVarInt(b []byte) (v int32, n int, err error) {
	d := varIntDecoder()
	for _, c := range b {
		done, err := d.feed(c)
		if err != nil {
			return 0, d.n, err
		}
		if done {
			return int32(uint32(d.v)), d.n, nil
		}
	}
	return 0, d.n, io.ErrUnexpectedEOF
}

func DecodeVarLong(b []byte) (v int64, n int, err error) {
	d := varLongDecoder()
	for _, c := range b {
		done, err := d.feed(c)
		if err != nil {
			return 0, d.n, err
		}
		if done {
			return int64(d.v), d.n, nil
		}
	}
	return 0, d.n, io.ErrUnexpectedEOF
}
