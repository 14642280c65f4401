package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Line is the parametric line P + tV.
type Line struct {
	P v3.Vec
	V v3.Vec
}

// LineThrough returns the line through a and b, parameterised so that
// t=0 is a and t=1 is b.
func LineThrough(a, b v3.Vec) Line {
	return Line{P: a, V: b.Sub(a)}
}

// At returns the point at parameter t.
func (l Line) At(t float64) v3.Vec {
	return l.P.Add(l.V.MulScalar(t))
}

// IntersectPlane returns the parameter and point where l crosses pl.
// ok is false when the line is parallel to the plane within eps.
func (l Line) IntersectPlane(pl Plane, eps float64) (t float64, x v3.Vec, ok bool) {
	denom := pl.N.Dot(l.V)
	if math.Abs(denom) < eps {
		return 0, v3.Vec{}, false
	}
	t = (pl.P.Dot(pl.N) - pl.N.Dot(l.P)) / denom
	return t, l.At(t), true
}

// IntersectLine solves l.P + t*l.V = o.P + s*o.V using the two coordinate
// combinations x+z and y+z. It returns the point on l. ok is false when
// the 2x2 system is singular within eps (parallel or skew lines).
func (l Line) IntersectLine(o Line, eps float64) (t float64, x v3.Vec, ok bool) {
	a := l.V.X + l.V.Z
	b := -(o.V.X + o.V.Z)
	c := l.V.Y + l.V.Z
	d := -(o.V.Y + o.V.Z)
	e := o.P.X + o.P.Z - (l.P.X + l.P.Z)
	f := o.P.Y + o.P.Z - (l.P.Y + l.P.Z)

	det := a*d - c*b
	if math.Abs(det) < eps {
		return 0, v3.Vec{}, false
	}
	t = (e*d - b*f) / det
	return t, l.At(t), true
}

// Line2 is a parametric line in the image plane.
type Line2 struct {
	P v2.Vec
	V v2.Vec
}

// Line2Through returns the 2D line through a and b.
func Line2Through(a, b v2.Vec) Line2 {
	return Line2{P: a, V: b.Sub(a)}
}

// IntersectLine intersects two image-plane lines by lifting them to z=0.
// The returned point lies on l.
func (l Line2) IntersectLine(o Line2, eps float64) (v2.Vec, bool) {
	_, x, ok := Line{P: Lift(l.P), V: Lift(l.V)}.IntersectLine(Line{P: Lift(o.P), V: Lift(o.V)}, eps)
	if !ok {
		return v2.Vec{}, false
	}
	return Drop(x), true
}

// Lift embeds an image-plane point at z=0.
func Lift(p v2.Vec) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y}
}

// Drop discards the z component.
func Drop(p v3.Vec) v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}
