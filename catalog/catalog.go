// Package catalog maps packets to opcodes and wire layouts per connection
// state, direction and protocol version.
//
// A Catalog is an ordered list of entries. Each entry covers a closed-open
// band of protocol versions; lookups return the first entry whose band
// contains the version, and report an error when none does. Bands of one
// packet never overlap, and no two packets share an opcode within
// overlapping bands; Validate checks both.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/gstoney/arrow/packet"
)

// Band is a closed-open range of protocol versions [From, To).
// A To of zero leaves the band open towards newer versions.
type Band struct {
	From int32
	To   int32
}

func Since(from int32) Band { return Band{From: from} }

func Between(from, to int32) Band { return Band{From: from, To: to} }

func (b Band) Contains(v int32) bool {
	return v >= b.From && (b.To == 0 || v < b.To)
}

func (b Band) end() int64 {
	if b.To == 0 {
		return math.MaxInt64
	}
	return int64(b.To)
}

func (b Band) Overlaps(o Band) bool {
	return int64(b.From) < o.end() && int64(o.From) < b.end()
}

func (b Band) String() string {
	if b.To == 0 {
		return fmt.Sprintf("[%d,..)", b.From)
	}
	return fmt.Sprintf("[%d,%d)", b.From, b.To)
}

// Layout is one wire layout of a packet kind.
type Layout struct {
	Kind packet.Kind
	Name string

	encode func(io.Writer, packet.Packet) error
	decode func(*packet.FrameReader) (packet.Packet, error)
}

// layout builds a Layout from a typed encoder and decoder pair.
func layout[T any, P interface {
	*T
	packet.Packet
}](name string, enc func(io.Writer, P) error, dec func(*packet.FrameReader, P) error) *Layout {
	var zero T
	return &Layout{
		Kind: P(&zero).Kind(),
		Name: name,
		encode: func(w io.Writer, p packet.Packet) error {
			v, ok := p.(P)
			if !ok {
				return fmt.Errorf("layout %s cannot encode %T", name, p)
			}
			return enc(w, v)
		},
		decode: func(r *packet.FrameReader) (packet.Packet, error) {
			v := P(new(T))
			if err := dec(r, v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Entry binds a layout and opcode to a state, direction and version band.
type Entry struct {
	State     packet.State
	Direction packet.Direction
	Band      Band
	Opcode    int32
	Layout    *Layout
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s 0x%02X %s", e.Direction, e.State, e.Band, e.Opcode, e.Layout.Name)
}

// Encode writes the payload of p, without opcode or length.
func (e Entry) Encode(w io.Writer, p packet.Packet) error {
	return e.Layout.encode(w, p)
}

// Decode parses a complete payload. Running out of bytes and leaving bytes
// unread are both reported as *packet.FormatError.
func (e Entry) Decode(payload []byte) (packet.Packet, error) {
	r := packet.NewFrameReader(payload)
	p, err := e.Layout.decode(&r)
	if err != nil {
		return nil, &packet.FormatError{What: e.Layout.Name, Err: err}
	}
	if r.Remaining() != 0 {
		return nil, &packet.FormatError{
			What: e.Layout.Name,
			Err:  fmt.Errorf("%w: %d trailing bytes", packet.ErrNotExhausted, r.Remaining()),
		}
	}
	return p, nil
}

// UnsupportedPacketError is returned when a packet kind has no layout for
// the requested state, direction and version.
type UnsupportedPacketError struct {
	Kind      packet.Kind
	State     packet.State
	Direction packet.Direction
	Protocol  int32
}

func (e *UnsupportedPacketError) Error() string {
	return fmt.Sprintf("%s has no %s %s layout for protocol %d", e.Kind, e.Direction, e.State, e.Protocol)
}

type scope struct {
	dir   packet.Direction
	state packet.State
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	entries []Entry
	scoped  map[scope][]int
}

// New builds a catalog from entries. The order of entries is the
// resolution order.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: append([]Entry(nil), entries...),
		scoped:  make(map[scope][]int),
	}
	for i, e := range c.entries {
		k := scope{e.Direction, e.State}
		c.scoped[k] = append(c.scoped[k], i)
	}
	return c
}

var standard = sync.OnceValue(func() *Catalog {
	return New(standardEntries())
})

// Default returns the catalog of every packet this module knows.
func Default() *Catalog {
	return standard()
}

func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Resolve finds the entry an incoming opcode decodes with.
func (c *Catalog) Resolve(dir packet.Direction, state packet.State, opcode, version int32) (Entry, error) {
	for _, i := range c.scoped[scope{dir, state}] {
		e := c.entries[i]
		if e.Opcode == opcode && e.Band.Contains(version) {
			return e, nil
		}
	}
	return Entry{}, &packet.InvalidOpcodeError{
		Opcode:    opcode,
		State:     state,
		Direction: dir,
		Protocol:  version,
	}
}

// Lookup finds the entry an outgoing packet kind encodes with.
func (c *Catalog) Lookup(dir packet.Direction, state packet.State, kind packet.Kind, version int32) (Entry, error) {
	for _, i := range c.scoped[scope{dir, state}] {
		e := c.entries[i]
		if e.Layout.Kind == kind && e.Band.Contains(version) {
			return e, nil
		}
	}
	return Entry{}, &UnsupportedPacketError{
		Kind:      kind,
		State:     state,
		Direction: dir,
		Protocol:  version,
	}
}

// Decode resolves opcode and decodes payload with the matching layout.
func (c *Catalog) Decode(dir packet.Direction, state packet.State, version, opcode int32, payload []byte) (packet.Packet, error) {
	e, err := c.Resolve(dir, state, opcode, version)
	if err != nil {
		return nil, err
	}
	return e.Decode(payload)
}

// AppendPacket appends the opcode and payload of p to dst.
func (c *Catalog) AppendPacket(dst []byte, dir packet.Direction, state packet.State, version int32, p packet.Packet) ([]byte, error) {
	e, err := c.Lookup(dir, state, p.Kind(), version)
	if err != nil {
		return dst, err
	}
	buf := bytes.NewBuffer(packet.AppendVarInt(dst, e.Opcode))
	if err := e.Encode(buf, p); err != nil {
		return dst, fmt.Errorf("encode %s: %w", e.Layout.Name, err)
	}
	return buf.Bytes(), nil
}

var ErrOverlap = errors.New("overlapping catalog entries")

// Validate reports every pair of entries that would make resolution
// ambiguous: the same packet kind, or the same opcode, in overlapping
// bands of one state and direction.
func (c *Catalog) Validate() error {
	var errs []error
	for k, idx := range c.scoped {
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				x, y := c.entries[idx[a]], c.entries[idx[b]]
				if !x.Band.Overlaps(y.Band) {
					continue
				}
				if x.Layout.Kind == y.Layout.Kind {
					errs = append(errs, fmt.Errorf("%w: %s %s: %s and %s share a kind",
						ErrOverlap, k.dir, k.state, x, y))
				}
				if x.Opcode == y.Opcode {
					errs = append(errs, fmt.Errorf("%w: %s %s: %s and %s share an opcode",
						ErrOverlap, k.dir, k.state, x, y))
				}
			}
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}
