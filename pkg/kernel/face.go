package kernel

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/beamtrace/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a planar convex polygon of the scene. All methods are pure
// queries; callers must not modify the returned vertex slice.
type Face interface {
	ID() int
	Vertices() []v3.Vec
	Plane() geom.Plane
	Normal() v3.Vec
	Area() float64
}

// Compile-time interface check.
var _ Face = (*Polygon)(nil)

// Polygon is the concrete Face produced by kernels.
type Polygon struct {
	id    int
	part  string
	verts []v3.Vec
	plane geom.Plane
	area  float64
}

// NewPolygon builds a face from at least three planar vertices. The
// normal follows the vertex winding.
func NewPolygon(id int, verts []v3.Vec) (*Polygon, error) {
	if len(verts) < 3 {
		return nil, fmt.Errorf("kernel: face needs at least 3 vertices, got %d", len(verts))
	}
	n, err := geom.FaceNormal(verts, geom.DefaultTolerance.Normal)
	if err != nil {
		return nil, fmt.Errorf("kernel: face normal: %w", err)
	}
	vs := make([]v3.Vec, len(verts))
	copy(vs, verts)
	return &Polygon{
		id:    id,
		verts: vs,
		plane: geom.NewPlane(vs[0], n),
		area:  geom.PolygonArea(vs),
	}, nil
}

// ID returns the scene-wide face index.
func (p *Polygon) ID() int { return p.id }

// SetID assigns the scene-wide face index.
func (p *Polygon) SetID(id int) { p.id = id }

// Part returns the name of the scene part the face belongs to.
func (p *Polygon) Part() string { return p.part }

// SetPart records the owning scene part.
func (p *Polygon) SetPart(name string) { p.part = name }

func (p *Polygon) Vertices() []v3.Vec { return p.verts }
func (p *Polygon) Plane() geom.Plane  { return p.plane }
func (p *Polygon) Normal() v3.Vec     { return p.plane.N }
func (p *Polygon) Area() float64      { return p.area }

func (p *Polygon) String() string {
	return fmt.Sprintf("face %d (%s, %d verts, area %.4g)", p.id, p.part, len(p.verts), p.area)
}

// MarshalJSON emits the face geometry for external consumers.
func (p *Polygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       int      `json:"id"`
		Part     string   `json:"part,omitempty"`
		Vertices []v3.Vec `json:"vertices"`
		Normal   v3.Vec   `json:"normal"`
		Area     float64  `json:"area"`
	}{p.id, p.part, p.verts, p.plane.N, p.area})
}
