package beamtree

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/chazu/beamtrace/pkg/beam"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// NodeView is the serializable form of one attached node.
type NodeView struct {
	ID        NodeID         `json:"id"`
	Parent    NodeID         `json:"parent"`
	Source    NodeID         `json:"source"`
	Kind      Kind           `json:"kind"`
	Order     int            `json:"order"`
	Origin    [3]float64     `json:"origin"`
	Frustum   [][3]float64   `json:"frustum"`
	Face      int            `json:"face"`
	Children  []NodeID       `json:"children,omitempty"`
	Anomalies []beam.Anomaly `json:"anomalies,omitempty"`
}

// Snapshot is a JSON-ready view of a tree.
type Snapshot struct {
	Origin    [3]float64 `json:"origin"`
	Faces     int        `json:"faces"`
	Truncated bool       `json:"truncated,omitempty"`
	Roots     []NodeID   `json:"roots"`
	Nodes     []NodeView `json:"nodes"`
	Stats     Stats      `json:"stats"`
}

// Stats counts the attached beams of a tree.
type Stats struct {
	Beams     int            `json:"beams"`
	MaxOrder  int            `json:"max_order"`
	ByOrder   map[int]int    `json:"by_order"`
	ByKind    map[string]int `json:"by_kind"`
	Anomalies int            `json:"anomalies"`
}

// Orders returns the orders present in ByOrder, ascending.
func (s Stats) Orders() []int {
	orders := lo.Keys(s.ByOrder)
	sort.Ints(orders)
	return orders
}

func point(p v3.Vec) [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

// Snapshot captures the attached nodes of t in pre-order.
func (t *Tree) Snapshot() Snapshot {
	nodes := t.Nodes()
	views := lo.Map(nodes, func(n *Node, _ int) NodeView {
		face := beam.NoFace
		if n.Beam.Face != nil {
			face = n.Beam.Face.ID()
		}
		return NodeView{
			ID:        n.ID,
			Parent:    n.Parent,
			Source:    n.Source,
			Kind:      n.Kind,
			Order:     n.Order(),
			Origin:    point(n.Beam.Origin),
			Frustum:   lo.Map(n.Beam.Frustum, func(p v3.Vec, _ int) [3]float64 { return point(p) }),
			Face:      face,
			Children:  n.Children,
			Anomalies: n.Anomalies,
		}
	})
	return Snapshot{
		Origin:    point(t.Origin),
		Faces:     len(t.Faces),
		Truncated: t.Truncated,
		Roots:     t.Root().Children,
		Nodes:     views,
		Stats:     t.Stats(),
	}
}

// WriteJSON encodes the snapshot of t to w, indented.
func (t *Tree) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Snapshot())
}

// Stats counts attached beams by order and kind. Anomalies counts every
// arena node, detached ones included.
func (t *Tree) Stats() Stats {
	nodes := t.Nodes()
	s := Stats{
		Beams:     len(nodes),
		ByOrder:   lo.CountValuesBy(nodes, func(n *Node) int { return n.Order() }),
		ByKind:    lo.CountValuesBy(nodes, func(n *Node) string { return n.Kind.String() }),
		Anomalies: len(t.Anomalies()),
	}
	if len(nodes) > 0 {
		s.MaxOrder = lo.MaxBy(nodes, func(a, b *Node) bool { return a.Order() > b.Order() }).Order()
	}
	return s
}
