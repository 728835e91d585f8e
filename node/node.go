// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package node

import (
	"strings"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
)

const unknownStr = "Unknown"

// ID is the index of a node inside its Pool.
// It is the only way nodes reference each other.
type ID uint16

// Kind tags the variant of a Node.
type Kind uint8

const (
	// KindContainer groups children and distributes space among them.
	KindContainer Kind = iota + 1
	// KindText draws a string with placeholder substitution.
	KindText
	// KindIcon draws a bitmap looked up by key.
	KindIcon
	// KindLine draws a straight segment.
	KindLine
	// KindRectangle draws a stroked and/or filled rectangle.
	KindRectangle
	// KindCircle draws a stroked and/or filled circle.
	KindCircle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "Container"
	case KindText:
		return "Text"
	case KindIcon:
		return "Icon"
	case KindLine:
		return "Line"
	case KindRectangle:
		return "Rectangle"
	case KindCircle:
		return "Circle"
	default:
		return unknownStr
	}
}

// Node is one of *Container, *Text, *Icon, *Line, *Rectangle or *Circle.
// The set is closed: the traversal matches variants with a type switch.
type Node interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Meta returns the fields shared by every variant.
	Meta() Base

	sealed()
}

// Base holds the fields every node carries.
type Base struct {
	// ID is the stable name of the node, unique within a pool when set.
	ID string
	// Condition is an optional visibility expression. Empty means visible.
	Condition string
}

// Meta implements Node.
func (b *Base) Meta() Base { return *b }

func (*Base) sealed() {}

// Anchor names the reference point a declared position refers to.
type Anchor uint8

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

// Factors returns the horizontal and vertical fractions of the element size
// that separate the anchor point from the element's top-left corner.
func (a Anchor) Factors() (h, v float64) {
	switch a {
	case TopCenter:
		return 0.5, 0
	case TopRight:
		return 1, 0
	case CenterLeft:
		return 0, 0.5
	case Center:
		return 0.5, 0.5
	case CenterRight:
		return 1, 0.5
	case BottomLeft:
		return 0, 1
	case BottomCenter:
		return 0.5, 1
	case BottomRight:
		return 1, 1
	default:
		return 0, 0
	}
}

var anchorNames = [...]string{
	"top-left", "top-center", "top-right",
	"center-left", "center", "center-right",
	"bottom-left", "bottom-center", "bottom-right",
}

// String returns the anchor name in kebab case.
func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return unknownStr
}

// ParseAnchor parses a kebab-case anchor name.
func ParseAnchor(s string) (Anchor, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range anchorNames {
		if name == s {
			return Anchor(i), true
		}
	}
	return TopLeft, false
}

// Direction is the primary axis of a container.
type Direction uint8

const (
	// Horizontal lays relative children out left to right.
	Horizontal Direction = iota
	// Vertical lays relative children out top to bottom.
	Vertical
)

// Align is the horizontal alignment of text lines inside their box.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// ChildLayout references one child of a container and its layout role.
type ChildLayout struct {
	Node ID
	// Weight is the share of the container's primary axis given to a
	// relative child. It must be positive for relative children.
	Weight float32
	// IsAbsolute positions the child against the screen origin and keeps it
	// out of the weighted distribution.
	IsAbsolute bool
}

// Border holds independent edge widths of a container outline.
type Border struct {
	Top, Right, Bottom, Left uint8
	Importance               palette.Importance
}

// IsZero reports whether no edge is drawn.
func (b Border) IsZero() bool {
	return b.Top == 0 && b.Right == 0 && b.Bottom == 0 && b.Left == 0
}

// Container groups children.
type Container struct {
	Base
	Position  geom.Point
	Anchor    Anchor
	Size      geom.Size // zero dimensions fill the parent slot
	Direction Direction
	Children  []ChildLayout
	Border    Border
}

// Text is a string drawn with a bitmap font.
type Text struct {
	Base
	Position   geom.Point
	Anchor     Anchor
	Size       geom.Size // zero width wraps at the parent width
	Content    string
	Font       uint8
	Align      Align
	MaxLines   uint8 // zero uses the shaper default
	Importance palette.Importance
}

// Icon is a bitmap looked up by key. Key may contain placeholders.
type Icon struct {
	Base
	Position   geom.Point
	Anchor     Anchor
	Key        string
	Importance palette.Importance
}

// Line is a straight segment between two points relative to the parent.
type Line struct {
	Base
	Start, End geom.Point
	Thickness  uint8
	Importance palette.Importance
}

// Rectangle is a stroked and/or filled box.
type Rectangle struct {
	Base
	Position   geom.Point
	Anchor     Anchor
	Size       geom.Size
	Thickness  uint8 // zero draws no outline
	Importance palette.Importance
	Filled     bool
	Fill       palette.Importance
}

// Circle is a stroked and/or filled circle. Position is resolved with
// Anchor against the circle's bounding box.
type Circle struct {
	Base
	Position   geom.Point
	Anchor     Anchor
	Radius     uint16
	Thickness  uint8
	Importance palette.Importance
	Filled     bool
	Fill       palette.Importance
}

func (*Container) Kind() Kind { return KindContainer }
func (*Text) Kind() Kind { return KindText }
func (*Icon) Kind() Kind { return KindIcon }
func (*Line) Kind() Kind { return KindLine }
func (*Rectangle) Kind() Kind { return KindRectangle }
func (*Circle) Kind() Kind { return KindCircle }
