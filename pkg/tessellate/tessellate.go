// Package tessellate walks a scene graph and produces planar face meshes
// using a geometry kernel. One mesh is produced per surface node.
package tessellate

import (
	"fmt"

	"github.com/chazu/beamtrace/pkg/graph"
	"github.com/chazu/beamtrace/pkg/kernel"
)

// placement is one (place ...) level: rotation first, then translation.
type placement struct {
	translation graph.Vec3
	rotation    graph.Vec3
}

// transformStack accumulates placements during graph traversal. The last
// entry is the innermost placement.
type transformStack struct {
	levels []placement
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(p placement) {
	ts.levels = append(ts.levels, p)
}

func (ts *transformStack) pop() {
	if len(ts.levels) > 0 {
		ts.levels = ts.levels[:len(ts.levels)-1]
	}
}

// apply moves s through every level, innermost first.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.levels) - 1; i >= 0; i-- {
		lv := ts.levels[i]
		if r := lv.rotation; !r.IsZero() {
			s = k.Rotate(s, r.X, r.Y, r.Z)
		}
		if t := lv.translation; !t.IsZero() {
			s = k.Translate(s, t.X, t.Y, t.Z)
		}
	}
	return s
}

// Tessellate walks the scene graph and produces one face mesh per surface
// node using the provided geometry kernel. The tessellator is read-only
// and never mutates the graph.
func Tessellate(g *graph.SceneGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting meshes.
func walkNode(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodeRoom, graph.NodePanel, graph.NodePolygon:
		return handleSurface(k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts)

	case graph.NodeGroup:
		return handleGroup(g, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handleSurface creates geometry for a face-producing node.
func handleSurface(k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var solid kernel.Solid

	switch data := n.Data.(type) {
	case graph.RoomData:
		solid = k.Room(data.Size.X, data.Size.Y, data.Size.Z)
	case graph.PanelData:
		solid = k.Panel(data.Width, data.Height)
	case graph.PolygonData:
		verts := make([][3]float64, len(data.Vertices))
		for i, v := range data.Vertices {
			verts[i] = v.Array()
		}
		var err error
		solid, err = k.Polygon(verts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: polygon node %s: %w", n.ID.Short(), err)
		}
	default:
		return nil, fmt.Errorf("surface node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	solid = ts.apply(k, solid)

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	mesh.PartName = n.DisplayName()
	mesh.Solid = solid
	for _, f := range mesh.Faces {
		f.SetPart(mesh.PartName)
	}

	return []*kernel.Mesh{mesh}, nil
}

// handleTransform pushes the placement, recurses into children, then pops.
func handleTransform(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	var p placement
	if td.Translation != nil {
		p.translation = *td.Translation
	}
	if td.Rotation != nil {
		p.rotation = *td.Rotation
	}
	ts.push(p)
	defer ts.pop()

	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// handleGroup recurses into children transparently.
func handleGroup(g *graph.SceneGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// Faces flattens meshes into the scene face list, assigning each face its
// index in the returned slice as its ID.
func Faces(meshes []*kernel.Mesh) []kernel.Face {
	var faces []kernel.Face
	for _, m := range meshes {
		for _, f := range m.Faces {
			f.SetID(len(faces))
			if f.Part() == "" {
				f.SetPart(m.PartName)
			}
			faces = append(faces, f)
		}
	}
	return faces
}
