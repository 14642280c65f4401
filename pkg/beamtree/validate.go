package beamtree

import (
	"fmt"
	"strings"

	"github.com/chazu/beamtrace/pkg/geom"
)

// Violation is one structural problem found by Validate.
type Violation struct {
	Node    NodeID
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("node %d: %s", v.Node, v.Message)
}

// ValidationError collects every violation found in a tree.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("beamtree: %d violations: %s", len(e.Violations), strings.Join(msgs, "; "))
}

// Validate checks the structural invariants of a built tree: parent and
// child links agree, orders step by one from parent to child, split and
// front beams keep their source's order while reflected beams add one,
// detached nodes are unreachable and every boundary is a counter-clockwise
// polygon. It returns nil or a *ValidationError.
func Validate(t *Tree) error {
	var vs []Violation
	add := func(id NodeID, format string, args ...any) {
		vs = append(vs, Violation{Node: id, Message: fmt.Sprintf(format, args...)})
	}

	reachable := make(map[NodeID]bool, len(t.nodes))
	t.Walk(func(n *Node, _ int) bool {
		if reachable[n.ID] {
			add(n.ID, "visited twice")
			return false
		}
		reachable[n.ID] = true
		for _, c := range n.Children {
			if int(c) >= len(t.nodes) || c < 0 {
				add(n.ID, "child %d out of range", c)
				continue
			}
			child := t.nodes[c]
			if child.Parent != n.ID {
				add(c, "parent is %d, listed under %d", child.Parent, n.ID)
			}
			if child.Order() != n.Order()+1 {
				add(c, "order %d under parent of order %d", child.Order(), n.Order())
			}
		}
		return true
	})

	for _, n := range t.nodes {
		if n.Detached {
			if reachable[n.ID] {
				add(n.ID, "detached but reachable")
			}
			continue
		}
		if n.ID == RootID {
			continue
		}
		if !reachable[n.ID] {
			add(n.ID, "attached but unreachable")
		}
		t.checkSource(n, add)
		t.checkBoundary(n, add)
	}

	if len(vs) > 0 {
		return &ValidationError{Violations: vs}
	}
	return nil
}

func (t *Tree) checkSource(n *Node, add func(NodeID, string, ...any)) {
	if n.Source < 0 || int(n.Source) >= len(t.nodes) {
		add(n.ID, "source %d out of range", n.Source)
		return
	}
	src := t.nodes[n.Source]
	switch n.Kind {
	case KindCast:
		if n.Order() != 0 {
			add(n.ID, "cast beam has order %d", n.Order())
		}
	case KindSplit, KindFront:
		if n.Order() != src.Order() {
			add(n.ID, "%v beam order %d differs from source order %d", n.Kind, n.Order(), src.Order())
		}
	case KindReflected:
		if n.Order() != src.Order()+1 {
			add(n.ID, "reflected beam order %d, source order %d", n.Order(), src.Order())
		}
	default:
		add(n.ID, "unexpected kind %v", n.Kind)
	}
}

func (t *Tree) checkBoundary(n *Node, add func(NodeID, string, ...any)) {
	b := n.Beam
	if b == nil {
		add(n.ID, "no beam")
		return
	}
	if len(b.Frustum) < 3 || len(b.Boundary) < 3 {
		add(n.ID, "frustum has %d points, boundary %d", len(b.Frustum), len(b.Boundary))
		return
	}
	if geom.SignedArea2D(b.Boundary) <= 0 {
		add(n.ID, "boundary is not counter-clockwise")
	}
}
