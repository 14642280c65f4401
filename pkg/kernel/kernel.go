// Package kernel defines the abstract geometry kernel interface and the
// planar Face type consumed by the beam tracer. Implementations (sdfx)
// turn scene primitives into faces behind this interface, so the scene
// pipeline does not depend on a particular backend.
package kernel

// Solid is an opaque handle to a geometry kernel solid or surface.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Room(x, y, z float64) Solid // closed box, inward-facing faces, min corner at origin
	Panel(w, h float64) Solid   // single rectangle in the XY plane, normal +Z
	Polygon(verts [][3]float64) (Solid, error)

	// Composition
	Union(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Queries
	Contains(s Solid, p [3]float64) bool // p strictly inside a closed solid

	// Face output
	ToMesh(s Solid) (*Mesh, error)
}
