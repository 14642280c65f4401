package beam

import (
	"github.com/chazu/beamtrace/pkg/geom"
	"github.com/chazu/beamtrace/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Clip is the result of projecting or clipping a polygon. Synthesized
// parallels Points and marks vertices created by a frustum crossing.
type Clip struct {
	Points      []v2.Vec
	Synthesized []bool
	Anomalies   []Anomaly
}

// Empty reports whether nothing of the polygon survived.
func (c Clip) Empty() bool {
	return len(c.Points) == 0
}

// Sliver reports whether the surviving points enclose no area: fewer than
// three of them, or an image-plane area at or below eps squared. A face
// that only touches the frustum along an edge clips to a sliver.
func (c Clip) Sliver(eps float64) bool {
	return len(c.Points) < 3 || geom.PolygonArea2D(c.Points) <= eps*eps
}

// ProjectPolygon maps a world polygon into the image plane. With clip set
// the polygon is first cut against the near plane. The result is
// reoriented to counter-clockwise.
func (b *Beam) ProjectPolygon(poly []v3.Vec, clip bool) Clip {
	local := b.toLocal.ApplyAll(poly)
	if clip {
		local = b.clipNear(local)
	}

	var res Clip
	near := b.NearDistance
	pts := make([]v2.Vec, len(local))
	for i, v := range local {
		if v.Z == 0 {
			if clip {
				res.Anomalies = append(res.Anomalies, newAnomaly(AnomalyNearClip, SeverityError,
					"vertex %d left at zero depth after near clipping", i))
			} else {
				res.Anomalies = append(res.Anomalies, newAnomaly(AnomalyFocalInPlane, SeverityWarning,
					"beam origin lies in the plane of its frustum"))
			}
			v.Z = b.cfg.FocalNudge
		}
		pts[i] = v2.Vec{X: -near * v.X / v.Z, Y: -near * v.Y / v.Z}
	}

	pts, _ = dropRepeats(pts, make([]bool, len(pts)), b.cfg.Tolerance.Orient)
	res.Points = b.counterClockwise(pts)
	res.Synthesized = make([]bool, len(res.Points))
	return res
}

// clipNear is a single-plane Sutherland-Hodgman pass keeping everything at
// depth NearDistance or beyond.
func (b *Beam) clipNear(verts []v3.Vec) []v3.Vec {
	near := b.NearDistance
	var out []v3.Vec
	for i := range verts {
		p := verts[i]
		q := verts[(i+1)%len(verts)]
		dp, dq := -p.Z, -q.Z
		switch {
		case dp < near && dq >= near:
			r := (near - dp) / (dq - dp)
			out = append(out, v3.Vec{X: p.X + (q.X-p.X)*r, Y: p.Y + (q.Y-p.Y)*r, Z: -near})
		case dp >= near && dq < near:
			r := (near - dq) / (dp - dq)
			out = append(out, p, v3.Vec{X: q.X + (p.X-q.X)*r, Y: q.Y + (p.Y-q.Y)*r, Z: -near})
		case dp >= near && dq >= near:
			out = append(out, p)
		}
	}
	return out
}

// counterClockwise reverses pts in place when their signed area is
// negative.
func (b *Beam) counterClockwise(pts []v2.Vec) []v2.Vec {
	if geom.SignedArea2D(pts) < 0 {
		lo.Reverse(pts)
	}
	return pts
}

// dropRepeats removes every point that coincides with its predecessor
// within eps, comparing the last point against the first as well. A kept
// point inherits the synthesized mark of the points merged into it.
func dropRepeats(pts []v2.Vec, synth []bool, eps float64) ([]v2.Vec, []bool) {
	outP := make([]v2.Vec, 0, len(pts))
	outS := make([]bool, 0, len(pts))
	for i, p := range pts {
		if n := len(outP); n > 0 && geom.PointsEqual2D(outP[n-1], p, eps) {
			outS[n-1] = outS[n-1] || synth[i]
			continue
		}
		outP = append(outP, p)
		outS = append(outS, synth[i])
	}
	for n := len(outP); n > 1 && geom.PointsEqual2D(outP[n-1], outP[0], eps); n = len(outP) {
		outS[0] = outS[0] || outS[n-1]
		outP, outS = outP[:n-1], outS[:n-1]
	}
	return outP, outS
}

// ClipToFrustum clips an image-plane polygon against the beam boundary
// using Sutherland-Hodgman, one boundary edge at a time. A missing
// crossing is reported and the pass continues without it.
func (b *Beam) ClipToFrustum(poly []v2.Vec) Clip {
	eps := b.cfg.Tolerance.Orient
	singular := b.cfg.Tolerance.Singular

	res := Clip{
		Points:      append([]v2.Vec(nil), poly...),
		Synthesized: make([]bool, len(poly)),
	}

	n := len(b.Boundary)
	for i := 0; i < n && len(res.Points) > 0; i++ {
		c0, c1 := b.Boundary[i], b.Boundary[(i+1)%n]
		edge := geom.Line2Through(c0, c1)

		in, inSynth := res.Points, res.Synthesized
		res.Points, res.Synthesized = nil, nil

		cross := func(s, e v2.Vec) {
			x, ok := edge.IntersectLine(geom.Line2Through(s, e), singular)
			if !ok {
				res.Anomalies = append(res.Anomalies, newAnomaly(AnomalyMissingIntersection, SeverityError,
					"no crossing between clip edge %d %v->%v and segment %v->%v", i, c0, c1, s, e))
				return
			}
			res.Points = append(res.Points, x)
			res.Synthesized = append(res.Synthesized, true)
		}

		s := in[len(in)-1]
		for k, e := range in {
			os := geom.Orient2D(c0, c1, s, eps)
			oe := geom.Orient2D(c0, c1, e, eps)
			// Points on the clip line count as inside; only a strict
			// change of side produces a crossing.
			switch {
			case oe != geom.Clockwise:
				if os == geom.Clockwise && oe == geom.CounterClockwise {
					cross(s, e)
				}
				res.Points = append(res.Points, e)
				res.Synthesized = append(res.Synthesized, inSynth[k])
			case os == geom.CounterClockwise:
				cross(s, e)
			}
			s = e
		}
		res.Points, res.Synthesized = dropRepeats(res.Points, res.Synthesized, eps)
	}
	return res
}

// ClipPolygon projects a world polygon with near clipping and clips it to
// the frustum.
func (b *Beam) ClipPolygon(poly []v3.Vec) Clip {
	proj := b.ProjectPolygon(poly, true)
	if proj.Empty() {
		return proj
	}
	res := b.ClipToFrustum(proj.Points)
	res.Anomalies = joinAnomalies(proj.Anomalies, res.Anomalies)
	return res
}

// ClipFace clips a scene face to the beam. Anomalies carry the face ID.
func (b *Beam) ClipFace(f kernel.Face) Clip {
	res := b.ClipPolygon(f.Vertices())
	res.Anomalies = withFace(res.Anomalies, f.ID())
	return res
}
