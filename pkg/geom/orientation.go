package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Orientation classifies a point C against the directed segment A->B.
type Orientation int

const (
	OnSegment         Orientation = iota // C lies in the closed segment [A,B]
	CounterClockwise                     // C strictly left of A->B
	Clockwise                            // C strictly right of A->B
	Coincident                           // A, B and C all coincide
	DegenerateSegment                    // A and B coincide, C does not
	BeyondA                              // collinear, past A
	BeyondB                              // collinear, past B
)

func (o Orientation) String() string {
	switch o {
	case OnSegment:
		return "on-segment"
	case CounterClockwise:
		return "ccw"
	case Clockwise:
		return "cw"
	case Coincident:
		return "coincident"
	case DegenerateSegment:
		return "degenerate-segment"
	case BeyondA:
		return "beyond-a"
	case BeyondB:
		return "beyond-b"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Strict reports whether o is one of the two strict turn codes.
func (o Orientation) Strict() bool {
	return o == CounterClockwise || o == Clockwise
}

// Within reports whether C was found inside the closed segment, including
// the fully degenerate case where all three points coincide.
func (o Orientation) Within() bool {
	return o == OnSegment || o == Coincident
}

// Opposite returns the strict code of the reversed segment B->A.
// Non-strict codes are returned unchanged.
func (o Orientation) Opposite() Orientation {
	switch o {
	case CounterClockwise:
		return Clockwise
	case Clockwise:
		return CounterClockwise
	}
	return o
}

// Orient2D classifies c against the directed segment a->b. Every clipping
// and splitting decision in the tracer goes through this predicate.
func Orient2D(a, b, c v2.Vec, eps float64) Orientation {
	det := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if det > eps {
		return CounterClockwise
	}
	if det < -eps {
		return Clockwise
	}

	if PointsEqual2D(a, b, eps) {
		if PointsEqual2D(b, c, eps) {
			return Coincident
		}
		return DegenerateSegment
	}

	// (C-A) and (C-B) point in opposite directions, or one is zero,
	// exactly when C sits in the closed segment.
	if c.Sub(a).Dot(c.Sub(b)) <= 0 {
		return OnSegment
	}
	if a.Sub(b).Dot(c.Sub(b)) > 0 {
		return BeyondA
	}
	return BeyondB
}

// PointsEqual2D compares two points coordinate-wise within eps.
func PointsEqual2D(a, b v2.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}
