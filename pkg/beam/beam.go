package beam

import (
	"errors"
	"fmt"

	"github.com/chazu/beamtrace/pkg/geom"
	"github.com/chazu/beamtrace/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrTooFewVertices is returned for frustums with fewer than three points.
	ErrTooFewVertices = errors.New("beam: frustum needs at least 3 vertices")

	// ErrDegenerateFrustum is returned when no camera frame can be built
	// from the frustum.
	ErrDegenerateFrustum = errors.New("beam: degenerate frustum")
)

// Beam is one node's worth of visibility: an origin, a world-space
// frustum polygon and the camera frame derived from it.
type Beam struct {
	Origin  v3.Vec
	Order   int
	Face    kernel.Face // face the beam reflected off; nil for cast beams
	Frustum []v3.Vec    // world space

	Forward v3.Vec
	Up      v3.Vec
	Right   v3.Vec

	NearDistance float64

	// Boundary is the frustum in image-plane coordinates, counter-clockwise.
	Boundary []v2.Vec

	// VisibleFaces is filled by FindLargestUnobstructedFace with every face
	// that survived clipping. Split siblings only need to test these.
	VisibleFaces []kernel.Face

	// Anomalies raised while building the beam.
	Anomalies []Anomaly

	toLocal geom.Transform
	toWorld geom.Transform
	cfg     Config
}

// New builds a beam. The forward axis is the frustum plane normal turned
// to face away from origin; right runs along the first frustum edge. A
// beam with a face puts its near plane on the frustum, otherwise the
// configured near distance is used.
func New(origin v3.Vec, frustum []v3.Vec, order int, face kernel.Face, cfg Config) (*Beam, error) {
	if len(frustum) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVertices, len(frustum))
	}
	cfg = cfg.OrDefault()

	forward, err := geom.FaceNormal(frustum, cfg.Tolerance.Normal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFrustum, err)
	}
	if frustum[0].Sub(origin).Dot(forward) < 0 {
		forward = forward.Neg()
	}
	right := frustum[1].Sub(frustum[0])
	if right.Length() == 0 {
		return nil, fmt.Errorf("%w: first edge has zero length", ErrDegenerateFrustum)
	}
	right = right.Normalize()
	up := right.Cross(forward).Normalize()

	toLocal := geom.CameraTransform(forward, up, right, origin)
	toWorld, err := toLocal.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFrustum, err)
	}

	fv := make([]v3.Vec, len(frustum))
	copy(fv, frustum)

	b := &Beam{
		Origin:       origin,
		Order:        order,
		Face:         face,
		Frustum:      fv,
		Forward:      forward,
		Up:           up,
		Right:        right,
		NearDistance: cfg.NearDistance,
		toLocal:      toLocal,
		toWorld:      toWorld,
		cfg:          cfg,
	}
	if face != nil {
		b.NearDistance = -toLocal.Apply(fv[0]).Z
	}

	proj := b.ProjectPolygon(fv, false)
	b.Anomalies = proj.Anomalies
	if len(proj.Points) < 3 {
		return nil, fmt.Errorf("%w: frustum projects to %d points", ErrDegenerateFrustum, len(proj.Points))
	}
	b.Boundary = proj.Points
	return b, nil
}

// Config returns the configuration the beam was built with.
func (b *Beam) Config() Config {
	return b.cfg
}

// ToLocal maps a world point into the beam frame.
func (b *Beam) ToLocal(p v3.Vec) v3.Vec {
	return b.toLocal.Apply(p)
}

// ToWorld maps a beam-frame point back into world space.
func (b *Beam) ToWorld(p v3.Vec) v3.Vec {
	return b.toWorld.Apply(p)
}

// Unproject lifts image-plane points onto the near plane in world space.
func (b *Beam) Unproject(pts []v2.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[i] = b.toWorld.Apply(v3.Vec{X: p.X, Y: p.Y, Z: -b.NearDistance})
	}
	return out
}

// Sibling builds a same-order beam over another part of this beam's
// frustum.
func (b *Beam) Sibling(frustum []v3.Vec) (*Beam, error) {
	return New(b.Origin, frustum, b.Order, b.Face, b.cfg)
}

// Front builds the beam that covers exactly the visible part of v's face.
// It replaces this beam in the tree.
func (b *Beam) Front(v *Visible) (*Beam, error) {
	return New(b.Origin, v.Boundary, b.Order, b.Face, b.cfg)
}

// Reflected mirrors the origin across the plane of v's visible boundary
// and builds the next-order beam through it.
func (b *Beam) Reflected(v *Visible) (*Beam, error) {
	n, err := geom.FaceNormal(v.Boundary, b.cfg.Tolerance.Normal)
	if err != nil {
		return nil, fmt.Errorf("beam: reflect off face %d: %w", v.Face.ID(), err)
	}
	mirrored := geom.NewPlane(v.Boundary[0], n).Reflect(b.Origin)
	return New(mirrored, v.Boundary, b.Order+1, v.Face, b.cfg)
}

func (b *Beam) String() string {
	return fmt.Sprintf("beam(order=%d, origin=%v, near=%.4g, %d frustum points)",
		b.Order, b.Origin, b.NearDistance, len(b.Frustum))
}
