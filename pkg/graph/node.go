package graph

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeRoom      NodeKind = iota // closed box enclosure
	NodePanel                     // single rectangular reflector
	NodePolygon                   // explicit convex face
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoom:
		return "room"
	case NodePanel:
		return "panel"
	case NodePolygon:
		return "polygon"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// IsSurface reports whether nodes of this kind produce faces.
func (k NodeKind) IsSurface() bool {
	return k == NodeRoom || k == NodePanel || k == NodePolygon
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// DisplayName returns the node name, or its short ID when unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
