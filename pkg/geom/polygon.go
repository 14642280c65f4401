package geom

import (
	"errors"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegeneratePolygon is returned when a polygon has no well-defined
// normal (fewer than three vertices or all vertices collinear).
var ErrDegeneratePolygon = errors.New("geom: degenerate polygon")

// FaceNormal returns the unit normal of a polygon from the first vertex
// triple whose cross product is not negligible relative to its edges.
// Consecutive collinear vertices are skipped.
func FaceNormal(verts []v3.Vec, eps float64) (v3.Vec, error) {
	for i := 2; i < len(verts); i++ {
		a := verts[i-1].Sub(verts[0])
		b := verts[i].Sub(verts[0])
		n := a.Cross(b)
		la, lb := a.Length(), b.Length()
		if la > 0 && lb > 0 && n.Length()/(la*lb) > eps {
			return n.Normalize(), nil
		}
	}
	return v3.Vec{}, ErrDegeneratePolygon
}

// PolygonArea returns the area of a convex polygon by fanning triangles
// out of the first vertex.
func PolygonArea(verts []v3.Vec) float64 {
	if len(verts) < 3 {
		return 0
	}
	area := 0.0
	prev := verts[1].Sub(verts[0])
	for i := 2; i < len(verts); i++ {
		cur := verts[i].Sub(verts[0])
		area += 0.5 * prev.Cross(cur).Length()
		prev = cur
	}
	return area
}

// PolygonArea2D is PolygonArea for image-plane polygons.
func PolygonArea2D(pts []v2.Vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	area := 0.0
	prev := pts[1].Sub(pts[0])
	for i := 2; i < len(pts); i++ {
		cur := pts[i].Sub(pts[0])
		area += 0.5 * math.Abs(prev.X*cur.Y-prev.Y*cur.X)
		prev = cur
	}
	return area
}

// SignedArea2D returns the shoelace area, positive for counter-clockwise
// vertex order.
func SignedArea2D(pts []v2.Vec) float64 {
	s := 0.0
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		s += a.X*b.Y - b.X*a.Y
	}
	return s / 2
}

// IsPlanar reports whether every vertex lies within eps of the plane
// spanned by the polygon.
func IsPlanar(verts []v3.Vec, eps float64) bool {
	n, err := FaceNormal(verts, DefaultTolerance.Normal)
	if err != nil {
		return false
	}
	pl := NewPlane(verts[0], n)
	for _, v := range verts {
		if math.Abs(pl.Distance(v)) > eps {
			return false
		}
	}
	return true
}

// IsConvex reports whether a planar polygon turns the same way at every
// vertex. Collinear runs are tolerated.
func IsConvex(verts []v3.Vec, eps float64) bool {
	n, err := FaceNormal(verts, DefaultTolerance.Normal)
	if err != nil {
		return false
	}
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		c := verts[(i+2)%len(verts)]
		turn := b.Sub(a).Cross(c.Sub(b)).Dot(n)
		if turn < -eps {
			return false
		}
	}
	return true
}

// Centroid returns the vertex average.
func Centroid(verts []v3.Vec) v3.Vec {
	var c v3.Vec
	if len(verts) == 0 {
		return c
	}
	for _, v := range verts {
		c = c.Add(v)
	}
	return c.MulScalar(1 / float64(len(verts)))
}
