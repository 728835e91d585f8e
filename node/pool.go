// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package node

import (
	"fmt"
	"os"
)

// MaxDepth is the deepest container nesting allowed below the root.
const MaxDepth = 8

// MaxThickness bounds stroke and border widths.
const MaxThickness = 3

// MaxNodes is the largest pool an ID can address.
const MaxNodes = 1 << 16

// Pool is the compiled UI: every node plus the root handle.
// A Pool is read-only once built.
type Pool struct {
	Nodes []Node
	Root  ID
}

// Len returns the number of nodes.
func (p *Pool) Len() int {
	return len(p.Nodes)
}

// Node returns the node with the given ID.
// It returns false only for IDs outside the pool.
func (p *Pool) Node(id ID) (Node, bool) {
	if int(id) >= len(p.Nodes) {
		return nil, false
	}
	return p.Nodes[id], true
}

// Find returns the ID of the first node whose Base.ID equals name.
// The scan is linear; pools are small and static.
func (p *Pool) Find(name string) (ID, bool) {
	for i, n := range p.Nodes {
		if n.Meta().ID == name {
			return ID(i), true
		}
	}
	return 0, false
}

// Load reads, decodes and validates a compiled pool file.
func Load(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("node: read %s: %w", path, err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("node: decode %s: %w", path, err)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the structural invariants of a pool: the root and all
// child references are in range, no node is its own ancestor, nesting stays
// within MaxDepth, relative weights are positive and thickness values are
// bounded.
func Validate(p *Pool) error {
	if p == nil || len(p.Nodes) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPool)
	}
	if len(p.Nodes) > MaxNodes {
		return fmt.Errorf("%w: %d nodes exceeds %d", ErrInvalidPool, len(p.Nodes), MaxNodes)
	}
	if int(p.Root) >= len(p.Nodes) {
		return fmt.Errorf("%w: root %d out of range", ErrInvalidPool, p.Root)
	}
	for i, n := range p.Nodes {
		if err := validateNode(p, ID(i), n); err != nil {
			return err
		}
	}
	v := validator{pool: p, state: make([]visitState, len(p.Nodes))}
	return v.walk(p.Root, 0)
}

func validateNode(p *Pool, id ID, n Node) error {
	switch n := n.(type) {
	case nil:
		return fmt.Errorf("%w: node %d is nil", ErrInvalidPool, id)
	case *Container:
		for _, c := range n.Children {
			if int(c.Node) >= len(p.Nodes) {
				return fmt.Errorf("%w: node %d: child %d out of range", ErrInvalidPool, id, c.Node)
			}
			if !c.IsAbsolute && !(c.Weight > 0) {
				return fmt.Errorf("%w: node %d: child %d has non-positive weight %v", ErrInvalidPool, id, c.Node, c.Weight)
			}
		}
		b := n.Border
		if max(b.Top, b.Right, b.Bottom, b.Left) > MaxThickness {
			return fmt.Errorf("%w: node %d: border wider than %d", ErrInvalidPool, id, MaxThickness)
		}
	case *Line:
		if n.Thickness == 0 || n.Thickness > MaxThickness {
			return fmt.Errorf("%w: node %d: line thickness %d outside [1,%d]", ErrInvalidPool, id, n.Thickness, MaxThickness)
		}
	case *Rectangle:
		if n.Thickness > MaxThickness {
			return fmt.Errorf("%w: node %d: thickness %d exceeds %d", ErrInvalidPool, id, n.Thickness, MaxThickness)
		}
	case *Circle:
		if n.Thickness > MaxThickness {
			return fmt.Errorf("%w: node %d: thickness %d exceeds %d", ErrInvalidPool, id, n.Thickness, MaxThickness)
		}
	}
	return nil
}

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	done
)

type validator struct {
	pool  *Pool
	state []visitState
}

// walk is a depth-first traversal that detects cycles and depth overflow.
// Nodes shared by several containers are revisited so every path is checked
// against MaxDepth.
func (v *validator) walk(id ID, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w: node %d nested deeper than %d", ErrInvalidPool, id, MaxDepth)
	}
	if v.state[id] == onStack {
		return fmt.Errorf("%w: node %d is its own ancestor", ErrInvalidPool, id)
	}
	c, ok := v.pool.Nodes[id].(*Container)
	if !ok {
		v.state[id] = done
		return nil
	}
	v.state[id] = onStack
	for _, child := range c.Children {
		if err := v.walk(child.Node, depth+1); err != nil {
			return err
		}
	}
	v.state[id] = done
	return nil
}
