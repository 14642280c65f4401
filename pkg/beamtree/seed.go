package beamtree

import (
	"fmt"
	"strings"

	"github.com/chazu/beamtrace/pkg/beam"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// RootFaces is a set of faces of the unit cube around the origin that
// seed cast beams.
type RootFaces uint8

const (
	RootFront  RootFaces = 1 << iota // +z
	RootBack                         // -z
	RootLeft                         // -x
	RootRight                        // +x
	RootTop                          // +y
	RootBottom                       // -y

	AllRoots = RootFront | RootBack | RootLeft | RootRight | RootTop | RootBottom
)

type rootName struct {
	face RootFaces
	name string
}

var rootNames = []rootName{
	{RootFront, "front"},
	{RootBack, "back"},
	{RootLeft, "left"},
	{RootRight, "right"},
	{RootTop, "top"},
	{RootBottom, "bottom"},
}

// Has reports whether every face in f is enabled.
func (r RootFaces) Has(f RootFaces) bool {
	return r&f == f
}

// Names lists the enabled faces in seeding order.
func (r RootFaces) Names() []string {
	return lo.FilterMap(rootNames, func(e rootName, _ int) (string, bool) {
		return e.name, r.Has(e.face)
	})
}

func (r RootFaces) String() string {
	return strings.Join(r.Names(), ",")
}

// ParseRoots turns face names into a set.
func ParseRoots(names []string) (RootFaces, error) {
	var r RootFaces
	for _, name := range names {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		e, ok := lo.Find(rootNames, func(e rootName) bool { return e.name == name })
		if !ok {
			return 0, fmt.Errorf("%w: unknown root face %q", ErrInvalidOptions, name)
		}
		r |= e.face
	}
	return r, nil
}

// CubeFaces returns the frustum polygon of every enabled cube face,
// offset to origin.
func CubeFaces(origin v3.Vec, roots RootFaces) [][]v3.Vec {
	p := func(x, y, z float64) v3.Vec { return origin.Add(v3.Vec{X: x, Y: y, Z: z}) }
	all := map[RootFaces][]v3.Vec{
		RootFront:  {p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1)},
		RootBack:   {p(-1, 1, -1), p(1, 1, -1), p(1, -1, -1), p(-1, -1, -1)},
		RootLeft:   {p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1)},
		RootRight:  {p(1, 1, -1), p(1, 1, 1), p(1, -1, 1), p(1, -1, -1)},
		RootTop:    {p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1), p(-1, 1, -1)},
		RootBottom: {p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1)},
	}
	var out [][]v3.Vec
	for _, e := range rootNames {
		if roots.Has(e.face) {
			out = append(out, all[e.face])
		}
	}
	return out
}

// Seed attaches one cast beam per enabled cube face to the root and
// returns their IDs. Faces whose beam cannot be built are reported on
// the root.
func (t *Tree) Seed(roots RootFaces, cfg beam.Config) []NodeID {
	var ids []NodeID
	for _, frustum := range CubeFaces(t.Origin, roots) {
		b, err := beam.New(t.Origin, frustum, 0, nil, cfg)
		if err != nil {
			t.Root().Anomalies = append(t.Root().Anomalies, constructionAnomaly(err, beam.NoFace))
			continue
		}
		id, err := t.Add(RootID, KindCast, b, RootID)
		if err != nil {
			t.Root().Anomalies = append(t.Root().Anomalies, constructionAnomaly(err, beam.NoFace))
			continue
		}
		t.nodes[id].Anomalies = append(t.nodes[id].Anomalies, b.Anomalies...)
		ids = append(ids, id)
	}
	return ids
}

func constructionAnomaly(err error, face int) beam.Anomaly {
	return beam.Anomaly{
		Kind:     beam.AnomalyConstruction,
		Severity: beam.SeverityError,
		FaceID:   face,
		Message:  err.Error(),
	}
}
