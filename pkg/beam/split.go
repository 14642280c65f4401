package beam

import (
	"github.com/chazu/beamtrace/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// crossing is where a face edge's line meets the working boundary. edge
// is the index of the boundary edge it lies on, -1 when not found.
type crossing struct {
	at   v2.Vec
	edge int
}

// SplitRegions partitions the beam boundary around the image-plane
// boundary of a visible face. Each face edge's line cuts one convex piece
// off the working boundary; the piece becomes a sibling region and the
// remainder is cut by the next edge. What is left at the end is the face
// itself and is dropped.
//
// A face edge whose line does not cross the working boundary on both
// sides is skipped with an AnomalySplitCrossing.
func (b *Beam) SplitRegions(face []v2.Vec) ([][]v2.Vec, []Anomaly) {
	tol := b.cfg.Tolerance
	working := append([]v2.Vec(nil), b.Boundary...)

	var regions [][]v2.Vec
	var anomalies []Anomaly

	for i := range face {
		f1, f2 := face[i], face[(i+1)%len(face)]
		left, right := b.crossings(working, f1, f2)
		if left.edge < 0 || right.edge < 0 {
			anomalies = append(anomalies, newAnomaly(AnomalySplitCrossing, SeverityError,
				"face edge %d %v->%v: left found=%t, right found=%t",
				i, f1, f2, left.edge >= 0, right.edge >= 0))
			continue
		}
		if left.edge == right.edge {
			continue
		}

		region := walk(working, left, right, tol.Coincide)
		if len(region) >= 3 {
			regions = append(regions, region)
		}
		working = walk(working, right, left, tol.Coincide)
	}

	return regions, anomalies
}

// crossings scans the working boundary for the points where the line
// through f1 and f2 enters and leaves it. A face vertex lying on a
// boundary edge is its own crossing.
func (b *Beam) crossings(working []v2.Vec, f1, f2 v2.Vec) (left, right crossing) {
	eps := b.cfg.Tolerance.Orient
	faceLine := geom.Line2Through(f1, f2)
	left.edge, right.edge = -1, -1

	n := len(working)
	for j := 0; j < n; j++ {
		b1, b2 := working[j], working[(j+1)%n]
		if geom.Orient2D(b1, b2, f1, eps).Within() {
			left = crossing{at: f1, edge: j}
		}
		if geom.Orient2D(b1, b2, f2, eps).Within() {
			right = crossing{at: f2, edge: j}
		}
		if left.edge >= 0 && right.edge >= 0 {
			break
		}

		x, ok := geom.Line2Through(b1, b2).IntersectLine(faceLine, b.cfg.Tolerance.Singular)
		if !ok || !geom.Orient2D(b1, b2, x, eps).Within() {
			continue
		}
		switch geom.Orient2D(f1, f2, x, eps) {
		case geom.BeyondA:
			left = crossing{at: x, edge: j}
		case geom.BeyondB:
			right = crossing{at: x, edge: j}
		}
	}
	return left, right
}

// walk starts at from, follows the boundary forward through the vertex
// that opens to's edge and closes at to. Points within merge of the
// running last point are skipped.
func walk(boundary []v2.Vec, from, to crossing, merge float64) []v2.Vec {
	out := []v2.Vec{from.at}
	n := len(boundary)
	for k := (from.edge + 1) % n; ; k = (k + 1) % n {
		if !geom.PointsEqual2D(out[len(out)-1], boundary[k], merge) {
			out = append(out, boundary[k])
		}
		if k == to.edge {
			break
		}
	}
	if !geom.PointsEqual2D(out[len(out)-1], to.at, merge) {
		out = append(out, to.at)
	}
	return out
}

// Split is SplitRegions with every region lifted back to world space on
// the beam's near plane, ready to seed sibling beams.
func (b *Beam) Split(face []v2.Vec) ([][]v3.Vec, []Anomaly) {
	regions, anomalies := b.SplitRegions(face)
	out := make([][]v3.Vec, len(regions))
	for i, r := range regions {
		out[i] = b.Unproject(r)
	}
	return out, anomalies
}
