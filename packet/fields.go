package packet

import (
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"
)

type WriteFn[T any] func(io.Writer, T) error
type ReadFn[T any] func(*FrameReader) (T, error)

// DefaultMaxStringLen is the protocol-wide limit on a String field,
// counted in characters.
const DefaultMaxStringLen = 32767

var ErrInvalidUTF8 = errors.New("string is not valid UTF-8")

func WriteBoolean(w io.Writer, v bool) (err error) {
	b := byte(0)
	if v {
		b = 1
	}

	_, err = w.Write([]byte{b})
	return
}

func ReadBoolean(r *FrameReader) (v bool, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}

	switch b {
	case 0:
		v = false
	case 1:
		v = true
	default:
		err = ErrInvalidBoolean
	}
	return
}

func WriteByte(w io.Writer, v byte) (err error) {
	_, err = w.Write([]byte{v})
	return
}

func ReadByte(r *FrameReader) (v byte, err error) {
	return r.ReadByte()
}

func WriteSignedByte(w io.Writer, v int8) error {
	return WriteByte(w, byte(v))
}

func ReadSignedByte(r *FrameReader) (v int8, err error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func WriteUnsignedShort(w io.Writer, v uint16) (err error) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err = w.Write(b[:])
	return
}

func ReadUnsignedShort(r *FrameReader) (v uint16, err error) {
	b, err := r.Next(2)
	if err != nil {
		return
	}

	v = binary.BigEndian.Uint16(b)
	return
}

func WriteInt(w io.Writer, v int32) (err error) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	_, err = w.Write(b[:])
	return
}

func ReadInt(r *FrameReader) (v int32, err error) {
	b, err := r.Next(4)
	if err != nil {
		return
	}

	v = int32(binary.BigEndian.Uint32(b))
	return
}

func WriteLong(w io.Writer, v int64) (err error) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	_, err = w.Write(b[:])
	return
}

func ReadLong(r *FrameReader) (v int64, err error) {
	b, err := r.Next(8)
	if err != nil {
		return
	}

	v = int64(binary.BigEndian.Uint64(b))
	return
}

// ReadVarIntField reads a VarInt field; the name keeps it usable as a ReadFn.
func ReadVarIntField(r *FrameReader) (int32, error) {
	return ReadVarInt(r)
}

func ReadVarLongField(r *FrameReader) (int64, error) {
	return ReadVarLong(r)
}

func WriteString(w io.Writer, v string) (err error) {
	err = WriteVarInt(w, int32(len(v)))
	if err != nil {
		return
	}
	_, err = io.WriteString(w, v)
	return
}

func ReadString(r *FrameReader) (string, error) {
	return ReadStringMax(r, DefaultMaxStringLen)
}

// ReadStringMax reads a String of at most maxChars characters.
// The byte length is checked before any bytes are consumed.
func ReadStringMax(r *FrameReader, maxChars int) (v string, err error) {
	length := int32(0)
	length, err = ReadVarInt(r)
	if err != nil {
		return
	}

	if length < 0 {
		err = ErrNegativeLength
		return
	}
	if int(length) > maxChars*4 {
		err = ErrStringTooLong
		return
	}

	buf, err := r.Next(int(length))
	if err != nil {
		return
	}
	if !utf8.Valid(buf) {
		err = ErrInvalidUTF8
		return
	}
	if utf8.RuneCount(buf) > maxChars {
		err = ErrStringTooLong
		return
	}
	return string(buf), nil
}

func WriteUUID(w io.Writer, v uuid.UUID) (err error) {
	_, err = w.Write(v[:])
	return
}

func ReadUUID(r *FrameReader) (v uuid.UUID, err error) {
	b, err := r.Next(16)
	if err != nil {
		return
	}

	v = uuid.UUID(b)
	return
}

// WriteUUIDString writes v in its hyphenated text form, as login packets
// did before binary UUIDs were introduced.
func WriteUUIDString(w io.Writer, v uuid.UUID) error {
	return WriteString(w, v.String())
}

func ReadUUIDString(r *FrameReader) (v uuid.UUID, err error) {
	s, err := ReadStringMax(r, 36)
	if err != nil {
		return
	}
	return uuid.Parse(s)
}

func WritePrefixedArray[T any](w io.Writer, v []T, write WriteFn[T]) (err error) {
	err = WriteVarInt(w, int32(len(v)))
	if err != nil {
		return
	}

	for _, item := range v {
		err = write(w, item)
		if err != nil {
			return
		}
	}
	return
}

func ReadPrefixedArray[T any](r *FrameReader, read ReadFn[T]) (v []T, err error) {
	length := int32(0)
	if length, err = ReadVarInt(r); err != nil {
		return
	}
	if length < 0 {
		err = ErrNegativeLength
		return
	}
	// Every element occupies at least one byte.
	if int(length) > r.Remaining() {
		err = io.ErrUnexpectedEOF
		return
	}

	v = make([]T, length)
	for i := 0; i < int(length); i++ {
		var item T
		if item, err = read(r); err != nil {
			return
		}
		v[i] = item
	}

	return
}

// WriteRemainingBytes writes v without a length prefix. It is only valid as
// the last field of a packet, where the frame length delimits it.
func WriteRemainingBytes(w io.Writer, v []byte) (err error) {
	_, err = w.Write(v)
	return
}

// ReadRemainingBytes copies every byte left in the payload.
func ReadRemainingBytes(r *FrameReader) ([]byte, error) {
	rest := r.Rest()
	out := make([]byte, len(rest))
	copy(out, rest)
	return out, nil
}

// Optional[T] represents Optional field in a packet
//
// Serialized Optional[T] is prefixed with Boolean of whether the value exists.
// If so, the value T is followed.
type Optional[T any] struct {
	Exists bool
	Item   T
}

func WriteOptional[T any](w io.Writer, v Optional[T], write WriteFn[T]) (err error) {
	err = WriteBoolean(w, v.Exists)
	if err != nil {
		return
	}

	if v.Exists {
		err = write(w, v.Item)
	}
	return
}

func ReadOptional[T any](r *FrameReader, read ReadFn[T]) (v Optional[T], err error) {
	if v.Exists, err = ReadBoolean(r); err != nil {
		return
	}

	if v.Exists {
		v.Item, err = read(r)
	}
	return
}
