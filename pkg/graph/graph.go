package graph

import "fmt"

// Trace defaults used when a scene does not override them.
const (
	DefaultMaxOrder     = 2
	DefaultNearDistance = 0.01
	DefaultEpsilon      = 1e-7
	DefaultTraversal    = "depth-first"
)

// ValidTraversals lists the accepted work-list orders.
var ValidTraversals = map[string]bool{
	"depth-first":   true,
	"breadth-first": true,
}

// ValidRootFaces lists the faces of the enclosing cube that can seed beams.
var ValidRootFaces = map[string]bool{
	"front":  true,
	"back":   true,
	"left":   true,
	"right":  true,
	"top":    true,
	"bottom": true,
}

// Settings contains scene-wide trace settings.
type Settings struct {
	MaxOrder     int      `json:"max_order"`
	NearDistance float64  `json:"near_distance"`
	Epsilon      float64  `json:"epsilon"`
	Traversal    string   `json:"traversal"`
	Roots        []string `json:"roots"`     // enclosing cube faces to seed
	MaxBeams     int      `json:"max_beams"` // 0 = unlimited
}

// SceneGraph is the top-level immutable data structure produced by Lisp
// evaluation. It is never mutated in place; each evaluation produces a new
// graph.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Sources   []Vec3            `json:"sources"`
	Settings  Settings          `json:"settings"`
	Version   uint64            `json:"version"`
}

// New creates an empty SceneGraph with default settings.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Settings: Settings{
			MaxOrder:     DefaultMaxOrder,
			NearDistance: DefaultNearDistance,
			Epsilon:      DefaultEpsilon,
			Traversal:    DefaultTraversal,
			Roots:        []string{"front"},
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *SceneGraph) AddRoot(id NodeID) {
	for _, r := range g.Roots {
		if r == id {
			return
		}
	}
	g.Roots = append(g.Roots, id)
}

// RemoveRoot unregisters a root, used when a top-level node is later
// consumed by a place or group form.
func (g *SceneGraph) RemoveRoot(id NodeID) {
	for i, r := range g.Roots {
		if r == id {
			g.Roots = append(g.Roots[:i], g.Roots[i+1:]...)
			return
		}
	}
}

// AddSource records an emission point.
func (g *SceneGraph) AddSource(v Vec3) {
	g.Sources = append(g.Sources, v)
}

// Source returns the first declared emission point.
func (g *SceneGraph) Source() (Vec3, bool) {
	if len(g.Sources) == 0 {
		return Vec3{}, false
	}
	return g.Sources[0], true
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Surfaces returns all face-producing nodes in the graph.
func (g *SceneGraph) Surfaces() []*Node {
	var surfaces []*Node
	for _, n := range g.Nodes {
		if n.Kind.IsSurface() {
			surfaces = append(surfaces, n)
		}
	}
	return surfaces
}

// Children returns the child nodes of the given node.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}

// IsEmpty reports whether the graph has neither nodes nor sources.
func (g *SceneGraph) IsEmpty() bool {
	return len(g.Nodes) == 0 && len(g.Sources) == 0
}
