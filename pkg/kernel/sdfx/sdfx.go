// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Closed primitives carry
// an SDF3 used for containment queries; every primitive carries its
// planar boundary faces, which are moved with the same M44 matrices.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/beamtrace/pkg/geom"
	"github.com/chazu/beamtrace/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// planarEps bounds the distance of polygon vertices from their plane.
const planarEps = 1e-5

// sdfxSolid pairs an optional sdf.SDF3 with boundary faces.
type sdfxSolid struct {
	s     sdf.SDF3 // nil for open surfaces
	faces [][]v3.Vec
}

// BoundingBox returns the axis-aligned bounding box of the faces.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	if len(s.faces) == 0 {
		return min, max
	}
	lo := s.faces[0][0]
	hi := lo
	for _, f := range s.faces {
		for _, v := range f {
			lo = lo.Min(v)
			hi = hi.Max(v)
		}
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// transform applies m to the SDF and to every face vertex.
func (s *sdfxSolid) transform(m sdf.M44) *sdfxSolid {
	out := &sdfxSolid{faces: make([][]v3.Vec, len(s.faces))}
	if s.s != nil {
		out.s = sdf.Transform3D(s.s, m)
	}
	for i, f := range s.faces {
		moved := make([]v3.Vec, len(f))
		for j, v := range f {
			moved[j] = m.MulPosition(v)
		}
		out.faces[i] = moved
	}
	return out
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) *sdfxSolid {
	return s.(*sdfxSolid)
}

// Room creates a closed box with its minimum corner at the origin so that
// placement translations work intuitively. Face normals point into the
// room. sdf.Box3D centers the box at the origin, so the SDF is translated
// by half-dimensions.
func (k *SdfxKernel) Room(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})

	c := func(i, j, l float64) v3.Vec { return v3.Vec{X: i * x, Y: j * y, Z: l * z} }
	faces := [][]v3.Vec{
		{c(0, 0, 0), c(1, 0, 0), c(1, 1, 0), c(0, 1, 0)}, // floor
		{c(0, 0, 1), c(0, 1, 1), c(1, 1, 1), c(1, 0, 1)}, // ceiling
		{c(0, 0, 0), c(0, 0, 1), c(1, 0, 1), c(1, 0, 0)}, // y=0 wall
		{c(0, 1, 0), c(1, 1, 0), c(1, 1, 1), c(0, 1, 1)}, // y=max wall
		{c(0, 0, 0), c(0, 1, 0), c(0, 1, 1), c(0, 0, 1)}, // x=0 wall
		{c(1, 0, 0), c(1, 0, 1), c(1, 1, 1), c(1, 1, 0)}, // x=max wall
	}
	return &sdfxSolid{s: sdf.Transform3D(s, m), faces: faces}
}

// Panel creates a single w x h rectangle in the XY plane with its minimum
// corner at the origin and normal +Z.
func (k *SdfxKernel) Panel(w, h float64) kernel.Solid {
	return &sdfxSolid{faces: [][]v3.Vec{{
		{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h},
	}}}
}

// Polygon creates a single face from explicit vertices. The polygon must
// be planar and convex.
func (k *SdfxKernel) Polygon(verts [][3]float64) (kernel.Solid, error) {
	if len(verts) < 3 {
		return nil, fmt.Errorf("sdfx: polygon needs at least 3 vertices, got %d", len(verts))
	}
	f := make([]v3.Vec, len(verts))
	for i, v := range verts {
		f[i] = v3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	if !geom.IsPlanar(f, planarEps) {
		return nil, fmt.Errorf("sdfx: polygon is not planar")
	}
	if !geom.IsConvex(f, planarEps) {
		return nil, fmt.Errorf("sdfx: polygon is not convex")
	}
	return &sdfxSolid{faces: [][]v3.Vec{f}}, nil
}

// Union returns both solids' faces; closed volumes are unioned.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	out := &sdfxSolid{faces: append(append([][]v3.Vec{}, sa.faces...), sb.faces...)}
	switch {
	case sa.s != nil && sb.s != nil:
		out.s = sdf.Union3D(sa.s, sb.s)
	case sa.s != nil:
		out.s = sa.s
	default:
		out.s = sb.s
	}
	return out
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return unwrap(s).transform(m)
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return unwrap(s).transform(m)
}

// Contains reports whether p lies strictly inside a closed solid. Open
// surfaces contain nothing.
func (k *SdfxKernel) Contains(s kernel.Solid, p [3]float64) bool {
	ss := unwrap(s)
	if ss.s == nil {
		return false
	}
	return ss.s.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]}) < 0
}

// ToMesh converts a solid's faces to kernel polygons. Face IDs are left
// at zero; the tessellator assigns scene-wide IDs.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss := unwrap(s)
	mesh := &kernel.Mesh{Faces: make([]*kernel.Polygon, 0, len(ss.faces))}
	for i, f := range ss.faces {
		p, err := kernel.NewPolygon(0, f)
		if err != nil {
			return nil, fmt.Errorf("sdfx: face %d: %w", i, err)
		}
		mesh.Faces = append(mesh.Faces, p)
	}
	return mesh, nil
}
