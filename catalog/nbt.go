package catalog

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/gstoney/arrow/packet"
)

var ErrInvalidNBT = errors.New("invalid NBT")

// readNBT consumes one big-endian NBT document from r and returns its raw
// bytes. The document is parsed only to find where it ends.
func readNBT(r *packet.FrameReader) ([]byte, error) {
	rest := r.Peek()
	br := bytes.NewReader(rest)
	var doc map[string]any
	if err := nbt.NewDecoderWithEncoding(br, nbt.BigEndian).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNBT, err)
	}
	raw, err := r.Next(len(rest) - br.Len())
	if err != nil {
		return nil, err
	}
	return bytes.Clone(raw), nil
}

// EncodeNBT serializes v as a big-endian NBT document, the form JoinGame
// embeds verbatim.
func EncodeNBT(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeNBT parses a document produced by EncodeNBT or received in a
// JoinGame packet.
func DecodeNBT(data []byte, v any) error {
	br := bytes.NewReader(data)
	if err := nbt.NewDecoderWithEncoding(br, nbt.BigEndian).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNBT, err)
	}
	if br.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidNBT, br.Len())
	}
	return nil
}
