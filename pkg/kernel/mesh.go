package kernel

import "github.com/samber/lo"

// Mesh is the set of planar faces produced for one scene part.
type Mesh struct {
	Faces    []*Polygon `json:"faces"`
	PartName string     `json:"partName"` // which scene graph part this came from

	// Solid is the placed kernel solid the faces were taken from.
	Solid Solid `json:"-"`
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of face corners, counted per face.
func (m *Mesh) VertexCount() int {
	return lo.SumBy(m.Faces, func(f *Polygon) int { return len(f.verts) })
}

// Area returns the total face area.
func (m *Mesh) Area() float64 {
	return lo.SumBy(m.Faces, func(f *Polygon) float64 { return f.area })
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}
