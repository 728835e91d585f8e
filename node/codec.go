// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package node

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
)

// Compiled pool format:
//
//	magic   "EPDL"
//	version u8
//	count   uvarint
//	root    uvarint
//	nodes   count × (kind u8, id str, condition str, variant fields)
//
// Integers are varints (signed ones zigzag encoded), floats are little-endian
// IEEE 754 bits and strings are uvarint-length-prefixed UTF-8. The encoding
// is deterministic: equal pools always produce identical bytes.
const (
	magic   = "EPDL"
	version = 1
)

// Encode writes the binary form of p to w.
func Encode(w io.Writer, p *Pool) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("node: write pool: %w", err)
	}
	return nil
}

// Decode reads a pool written by Encode. It does not run Validate.
func Decode(r io.Reader) (*Pool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("node: read pool: %w", err)
	}
	return Unmarshal(data)
}

// Marshal returns the binary form of p.
func Marshal(p *Pool) ([]byte, error) {
	if len(p.Nodes) > MaxNodes {
		return nil, fmt.Errorf("node: %d nodes exceeds %d", len(p.Nodes), MaxNodes)
	}
	e := encoder{buf: make([]byte, 0, 64*len(p.Nodes)+16)}
	e.buf = append(e.buf, magic...)
	e.u8(version)
	e.uvarint(uint64(len(p.Nodes)))
	e.uvarint(uint64(p.Root))
	for i, n := range p.Nodes {
		if err := e.node(n); err != nil {
			return nil, fmt.Errorf("node: encode node %d: %w", i, err)
		}
	}
	return e.buf, nil
}

// Unmarshal parses the binary form produced by Marshal.
func Unmarshal(data []byte) (*Pool, error) {
	if len(data) < len(magic)+1 || string(data[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	d := decoder{data: data, off: len(magic)}
	if v := d.u8(); v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	count := d.uvarint()
	root := d.uvarint()
	if d.err != nil {
		return nil, d.err
	}
	// Every node takes at least three bytes, which bounds the allocation.
	if count > MaxNodes || count > uint64(len(data)) {
		return nil, fmt.Errorf("%w: node count %d", ErrCorrupt, count)
	}
	if root >= count && count > 0 {
		return nil, fmt.Errorf("%w: root %d out of range", ErrCorrupt, root)
	}
	p := &Pool{Nodes: make([]Node, 0, count), Root: ID(root)}
	for i := uint64(0); i < count; i++ {
		n := d.node()
		if d.err != nil {
			return nil, fmt.Errorf("node: decode node %d: %w", i, d.err)
		}
		p.Nodes = append(p.Nodes, n)
	}
	if d.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-d.off)
	}
	return p, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }
func (e *encoder) uvarint(v uint64) { e.buf = binary.AppendUvarint(e.buf, v) }
func (e *encoder) varint(v int64) { e.buf = binary.AppendVarint(e.buf, v) }
func (e *encoder) f32(v float32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(v)) }

func (e *encoder) point(p geom.Point) {
	e.varint(int64(p.X))
	e.varint(int64(p.Y))
}

func (e *encoder) size(s geom.Size) {
	e.varint(int64(s.W))
	e.varint(int64(s.H))
}

func (e *encoder) str(s string) {
	e.uvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) bool(b bool) {
	if b {
		e.u8(1)
		return
	}
	e.u8(0)
}

func (e *encoder) node(n Node) error {
	if n == nil {
		return errors.New("nil node")
	}
	meta := n.Meta()
	e.u8(uint8(n.Kind()))
	e.str(meta.ID)
	e.str(meta.Condition)

	switch n := n.(type) {
	case *Container:
		e.point(n.Position)
		e.u8(uint8(n.Anchor))
		e.size(n.Size)
		e.u8(uint8(n.Direction))
		e.uvarint(uint64(len(n.Children)))
		for _, c := range n.Children {
			e.uvarint(uint64(c.Node))
			e.f32(c.Weight)
			e.bool(c.IsAbsolute)
		}
		e.u8(n.Border.Top)
		e.u8(n.Border.Right)
		e.u8(n.Border.Bottom)
		e.u8(n.Border.Left)
		e.u8(uint8(n.Border.Importance))
	case *Text:
		e.point(n.Position)
		e.u8(uint8(n.Anchor))
		e.size(n.Size)
		e.str(n.Content)
		e.u8(n.Font)
		e.u8(uint8(n.Align))
		e.u8(n.MaxLines)
		e.u8(uint8(n.Importance))
	case *Icon:
		e.point(n.Position)
		e.u8(uint8(n.Anchor))
		e.str(n.Key)
		e.u8(uint8(n.Importance))
	case *Line:
		e.point(n.Start)
		e.point(n.End)
		e.u8(n.Thickness)
		e.u8(uint8(n.Importance))
	case *Rectangle:
		e.point(n.Position)
		e.u8(uint8(n.Anchor))
		e.size(n.Size)
		e.u8(n.Thickness)
		e.u8(uint8(n.Importance))
		e.bool(n.Filled)
		e.u8(uint8(n.Fill))
	case *Circle:
		e.point(n.Position)
		e.u8(uint8(n.Anchor))
		e.uvarint(uint64(n.Radius))
		e.u8(n.Thickness)
		e.u8(uint8(n.Importance))
		e.bool(n.Filled)
		e.u8(uint8(n.Fill))
	default:
		return fmt.Errorf("unknown node type %T", n)
	}
	return nil
}

// decoder reads with a sticky error: after the first failure every read
// returns zero values and the error is reported once by the caller.
type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: "+format, append([]any{ErrCorrupt}, args...)...)
	}
}

func (d *decoder) u8() uint8 {
	if d.err != nil {
		return 0
	}
	if d.off >= len(d.data) {
		d.fail("unexpected end of data at %d", d.off)
		return 0
	}
	v := d.data[d.off]
	d.off++
	return v
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.data[d.off:])
	if n <= 0 {
		d.fail("bad uvarint at %d", d.off)
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) varint() int64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Varint(d.data[d.off:])
	if n <= 0 {
		d.fail("bad varint at %d", d.off)
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) int() int {
	v := d.varint()
	if v < math.MinInt32 || v > math.MaxInt32 {
		d.fail("integer %d out of range", v)
		return 0
	}
	return int(v)
}

func (d *decoder) f32() float32 {
	if d.err != nil {
		return 0
	}
	if len(d.data)-d.off < 4 {
		d.fail("unexpected end of data at %d", d.off)
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(d.data[d.off:]))
	d.off += 4
	return v
}

func (d *decoder) str() string {
	n := d.uvarint()
	if d.err != nil {
		return ""
	}
	if n > uint64(len(d.data)-d.off) {
		d.fail("string length %d overruns data", n)
		return ""
	}
	s := string(d.data[d.off : d.off+int(n)])
	d.off += int(n)
	return s
}

func (d *decoder) bool() bool {
	switch d.u8() {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail("bad bool at %d", d.off-1)
		return false
	}
}

func (d *decoder) point() geom.Point { return geom.Point{X: d.int(), Y: d.int()} }
func (d *decoder) size() geom.Size { return geom.Size{W: d.int(), H: d.int()} }

func (d *decoder) anchor() Anchor {
	a := Anchor(d.u8())
	if a > BottomRight {
		d.fail("bad anchor %d", a)
	}
	return a
}

func (d *decoder) importance() palette.Importance {
	i := palette.Importance(d.u8())
	if i > palette.Critical {
		d.fail("bad importance %d", i)
	}
	return i
}

func (d *decoder) node() Node {
	kind := Kind(d.u8())
	base := Base{ID: d.str(), Condition: d.str()}

	switch kind {
	case KindContainer:
		c := &Container{Base: base}
		c.Position = d.point()
		c.Anchor = d.anchor()
		c.Size = d.size()
		c.Direction = Direction(d.u8())
		if c.Direction > Vertical {
			d.fail("bad direction %d", c.Direction)
		}
		n := d.uvarint()
		if n > uint64(len(d.data)-d.off) {
			d.fail("child count %d overruns data", n)
			return nil
		}
		if n > 0 {
			c.Children = make([]ChildLayout, 0, n)
		}
		for i := uint64(0); i < n && d.err == nil; i++ {
			id := d.uvarint()
			if id >= MaxNodes {
				d.fail("child id %d out of range", id)
			}
			c.Children = append(c.Children, ChildLayout{
				Node:       ID(id),
				Weight:     d.f32(),
				IsAbsolute: d.bool(),
			})
		}
		c.Border = Border{Top: d.u8(), Right: d.u8(), Bottom: d.u8(), Left: d.u8()}
		c.Border.Importance = d.importance()
		return c
	case KindText:
		t := &Text{Base: base}
		t.Position = d.point()
		t.Anchor = d.anchor()
		t.Size = d.size()
		t.Content = d.str()
		t.Font = d.u8()
		t.Align = Align(d.u8())
		if t.Align > AlignRight {
			d.fail("bad align %d", t.Align)
		}
		t.MaxLines = d.u8()
		t.Importance = d.importance()
		return t
	case KindIcon:
		ic := &Icon{Base: base}
		ic.Position = d.point()
		ic.Anchor = d.anchor()
		ic.Key = d.str()
		ic.Importance = d.importance()
		return ic
	case KindLine:
		l := &Line{Base: base}
		l.Start = d.point()
		l.End = d.point()
		l.Thickness = d.u8()
		l.Importance = d.importance()
		return l
	case KindRectangle:
		r := &Rectangle{Base: base}
		r.Position = d.point()
		r.Anchor = d.anchor()
		r.Size = d.size()
		r.Thickness = d.u8()
		r.Importance = d.importance()
		r.Filled = d.bool()
		r.Fill = d.importance()
		return r
	case KindCircle:
		c := &Circle{Base: base}
		c.Position = d.point()
		c.Anchor = d.anchor()
		radius := d.uvarint()
		if radius > math.MaxUint16 {
			d.fail("radius %d out of range", radius)
		}
		c.Radius = uint16(radius)
		c.Thickness = d.u8()
		c.Importance = d.importance()
		c.Filled = d.bool()
		c.Fill = d.importance()
		return c
	default:
		d.fail("unknown node kind %d", kind)
		return nil
	}
}
