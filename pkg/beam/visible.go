package beam

import (
	"github.com/chazu/beamtrace/pkg/geom"
	"github.com/chazu/beamtrace/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Visible is the part of a face seen unobstructed through a beam.
type Visible struct {
	Boundary2D []v2.Vec // clipped boundary in the image plane
	Boundary   []v3.Vec // the same boundary cast back onto the face plane
	Face       kernel.Face
}

// Area returns the world-space area of the visible boundary.
func (v *Visible) Area() float64 {
	return geom.PolygonArea(v.Boundary)
}

type candidate struct {
	clip  []v2.Vec
	world []v3.Vec
	face  kernel.Face
	ok    bool
}

// FindLargestUnobstructedFace clips every face to the beam and returns
// the largest one that lies entirely on the origin side of every other
// visible face's plane. Faces that survive clipping with some area are
// cached in VisibleFaces. A nil result with no anomalies means free space.
//
// The beam's own face is never a candidate: it sits on the near plane and
// would otherwise always win.
func (b *Beam) FindLargestUnobstructedFace(faces []kernel.Face) (*Visible, []Anomaly) {
	var anomalies []Anomaly
	var cands []candidate
	b.VisibleFaces = nil

	for _, f := range faces {
		if b.Face != nil && f.ID() == b.Face.ID() {
			continue
		}
		c := b.ClipFace(f)
		anomalies = append(anomalies, c.Anomalies...)
		if c.Sliver(b.cfg.Tolerance.Orient) {
			continue
		}
		cands = append(cands, candidate{clip: c.Points, face: f})
		b.VisibleFaces = append(b.VisibleFaces, f)
	}
	if len(cands) == 0 {
		return nil, anomalies
	}

	// Cast the clipped image-plane boundaries back onto the true faces.
	for i := range cands {
		c := &cands[i]
		pl := c.face.Plane()
		c.world = b.Unproject(c.clip)
		c.ok = true
		for k, p := range c.world {
			_, x, ok := geom.LineThrough(b.Origin, p).IntersectPlane(pl, b.cfg.Tolerance.Singular)
			if !ok {
				anomalies = append(anomalies, Anomaly{
					Kind:     AnomalyUnprojectable,
					Severity: SeverityError,
					FaceID:   c.face.ID(),
					Message:  "ray through clipped vertex is parallel to the face plane",
				})
				c.ok = false
				break
			}
			c.world[k] = x
		}
	}

	var best *Visible
	bestArea := 0.0
	for i, c := range cands {
		if !c.ok || !b.inFront(c, cands, i) {
			continue
		}
		if area := geom.PolygonArea(c.world); area > bestArea {
			bestArea = area
			best = &Visible{Boundary2D: c.clip, Boundary: c.world, Face: c.face}
		}
	}

	if best == nil {
		anomalies = append(anomalies, newAnomaly(AnomalyNoFrontFace, SeverityWarning,
			"%d faces visible but none unobstructed", len(cands)))
	}
	return best, anomalies
}

// inFront reports whether no vertex of cands[i] lies beyond the plane of
// another candidate, as seen from the origin.
func (b *Beam) inFront(c candidate, cands []candidate, i int) bool {
	eps := b.cfg.Tolerance.Orient
	for j, other := range cands {
		if i == j {
			continue
		}
		pl := geom.NewPlane(other.face.Vertices()[0], other.face.Normal()).FacingAwayFrom(b.Origin)
		for _, v := range c.world {
			if pl.Distance(v) > eps {
				return false
			}
		}
	}
	return true
}
