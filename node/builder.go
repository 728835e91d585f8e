// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package node

// Builder assembles a Pool in code. Layouts normally come from the offline
// compiler; Builder serves tests and built-in screens.
//
//	var b node.Builder
//	title := b.Add(&node.Text{Base: node.Base{ID: "title"}, Content: "{{date.day}}"})
//	root := b.Add(&node.Container{Children: []node.ChildLayout{{Node: title, Weight: 1}}})
//	pool, err := b.Build(root)
type Builder struct {
	nodes []Node
}

// Add appends a node and returns its ID.
func (b *Builder) Add(n Node) ID {
	b.nodes = append(b.nodes, n)
	return ID(len(b.nodes) - 1)
}

// Len returns the number of nodes added so far.
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Build validates the nodes and returns them as a Pool rooted at root.
// The builder may be reused afterwards; the returned pool does not share
// its node slice.
func (b *Builder) Build(root ID) (*Pool, error) {
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	p := &Pool{Nodes: nodes, Root: root}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}
