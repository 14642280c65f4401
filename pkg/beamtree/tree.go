// Package beamtree builds the tree of beams cast from one origin into a
// scene of planar faces.
//
// Nodes live in an arena and refer to each other by NodeID. The only edit
// besides appending a child is Replace, which swaps a node for a new one
// at the same position in its parent's child list; the replaced node is
// kept in the arena, marked Detached, so its anomalies stay inspectable.
package beamtree

import (
	"errors"
	"fmt"

	"github.com/chazu/beamtrace/pkg/beam"
	"github.com/chazu/beamtrace/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// ErrUnknownNode is returned for IDs outside the arena.
var ErrUnknownNode = errors.New("beamtree: unknown node")

// NodeID indexes the tree arena.
type NodeID int

// RootID is the dummy root every cast beam hangs off.
const RootID NodeID = 0

// NoNode marks a missing parent or source.
const NoNode NodeID = -1

// Kind records how a node's beam came to be.
type Kind int

const (
	KindRoot      Kind = iota // dummy root, no beam
	KindCast                  // seeded from the enclosing cube
	KindSplit                 // same-order piece of a split beam
	KindFront                 // visible part of the resolved face, replaces the split beam
	KindReflected             // mirrored through the resolved face, order+1
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindCast:
		return "cast"
	case KindSplit:
		return "split"
	case KindFront:
		return "front"
	case KindReflected:
		return "reflected"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is one arena slot.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Kind     Kind
	Beam     *beam.Beam // nil for the root

	// Source is the node whose expansion produced this one.
	Source NodeID

	// Detached nodes were replaced and are no longer reachable.
	Detached   bool
	ReplacedBy NodeID

	Anomalies []beam.Anomaly
}

// Order returns the beam order, or -1 for the root.
func (n *Node) Order() int {
	if n.Beam == nil {
		return -1
	}
	return n.Beam.Order
}

// Tree owns the arena, the origin and the full scene face list.
type Tree struct {
	Origin v3.Vec
	Faces  []kernel.Face

	// Truncated is set when expansion stopped at the beam limit.
	Truncated bool

	nodes []*Node
}

// NewTree returns a tree holding only the dummy root.
func NewTree(origin v3.Vec, faces []kernel.Face) *Tree {
	t := &Tree{Origin: origin, Faces: faces}
	t.nodes = append(t.nodes, &Node{
		ID:         RootID,
		Parent:     NoNode,
		Kind:       KindRoot,
		Source:     NoNode,
		ReplacedBy: NoNode,
	})
	return t
}

// Root returns the dummy root.
func (t *Tree) Root() *Node {
	return t.nodes[RootID]
}

// Len returns the arena size, detached nodes and the root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the node with the given ID.
func (t *Tree) Get(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return t.nodes[id], nil
}

// Add appends a new node as the last child of parent.
func (t *Tree) Add(parent NodeID, kind Kind, b *beam.Beam, source NodeID) (NodeID, error) {
	p, err := t.Get(parent)
	if err != nil {
		return NoNode, err
	}
	if p.Detached {
		return NoNode, fmt.Errorf("beamtree: add under detached node %d", parent)
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &Node{
		ID:         id,
		Parent:     parent,
		Kind:       kind,
		Beam:       b,
		Source:     source,
		ReplacedBy: NoNode,
	})
	p.Children = append(p.Children, id)
	return id, nil
}

// Replace inserts a new node in old's place in its parent's child list.
// Any children of old move under the new node; old is detached.
func (t *Tree) Replace(old NodeID, kind Kind, b *beam.Beam) (NodeID, error) {
	o, err := t.Get(old)
	if err != nil {
		return NoNode, err
	}
	if o.Parent == NoNode {
		return NoNode, fmt.Errorf("beamtree: cannot replace the root")
	}
	if o.Detached {
		return NoNode, fmt.Errorf("beamtree: node %d already replaced by %d", old, o.ReplacedBy)
	}
	p := t.nodes[o.Parent]
	pos := lo.IndexOf(p.Children, old)
	if pos < 0 {
		return NoNode, fmt.Errorf("beamtree: node %d missing from parent %d", old, o.Parent)
	}

	id := NodeID(len(t.nodes))
	n := &Node{
		ID:         id,
		Parent:     o.Parent,
		Children:   o.Children,
		Kind:       kind,
		Beam:       b,
		Source:     old,
		ReplacedBy: NoNode,
	}
	t.nodes = append(t.nodes, n)
	for _, c := range n.Children {
		t.nodes[c].Parent = id
	}

	p.Children[pos] = id
	o.Children = nil
	o.Detached = true
	o.ReplacedBy = id
	return id, nil
}

// Children returns the child nodes of id in order.
func (t *Tree) Children(id NodeID) []*Node {
	n, err := t.Get(id)
	if err != nil {
		return nil
	}
	return lo.Map(n.Children, func(c NodeID, _ int) *Node { return t.nodes[c] })
}

// Walk visits attached nodes in pre-order starting at the root. Returning
// false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	type entry struct {
		id    NodeID
		depth int
	}
	stack := []entry{{RootID, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[e.id]
		if !fn(n, e.depth) {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{n.Children[i], e.depth + 1})
		}
	}
}

// Nodes returns every attached node except the root, in pre-order.
func (t *Tree) Nodes() []*Node {
	var out []*Node
	t.Walk(func(n *Node, _ int) bool {
		if n.ID != RootID {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Beams returns the beams of all attached nodes in pre-order.
func (t *Tree) Beams() []*beam.Beam {
	return lo.Map(t.Nodes(), func(n *Node, _ int) *beam.Beam { return n.Beam })
}

// Anomalies flattens the anomalies of every arena node, detached ones
// included, in creation order.
func (t *Tree) Anomalies() []beam.Anomaly {
	return lo.FlatMap(t.nodes, func(n *Node, _ int) []beam.Anomaly { return n.Anomalies })
}
