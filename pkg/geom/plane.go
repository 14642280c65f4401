package geom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is a point on the plane plus a unit normal.
type Plane struct {
	P v3.Vec `json:"point"`
	N v3.Vec `json:"normal"`
}

// NewPlane builds a plane, normalising n. A zero normal is kept as is.
func NewPlane(p, n v3.Vec) Plane {
	if n.Length() > 0 {
		n = n.Normalize()
	}
	return Plane{P: p, N: n}
}

// Distance returns the signed distance of x from the plane, positive on
// the side the normal points to.
func (pl Plane) Distance(x v3.Vec) float64 {
	return pl.N.Dot(x.Sub(pl.P))
}

// FacingAwayFrom returns the plane with its normal flipped, if needed, so
// that the half-space containing origin is the non-positive one.
func (pl Plane) FacingAwayFrom(origin v3.Vec) Plane {
	if pl.P.Sub(origin).Dot(pl.N) < 0 {
		pl.N = pl.N.Neg()
	}
	return pl
}

// Reflect mirrors x across the plane: the offset from P is split into
// components parallel and perpendicular to the normal, and the
// perpendicular part is negated.
func (pl Plane) Reflect(x v3.Vec) v3.Vec {
	d := x.Sub(pl.P)
	var perp v3.Vec
	if n2 := pl.N.Dot(pl.N); n2 > 0 {
		perp = pl.N.MulScalar(pl.N.Dot(d) / n2)
	}
	par := d.Sub(perp)
	return pl.P.Add(par).Sub(perp)
}
