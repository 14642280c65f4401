package tessellate

import (
	"math"
	"sort"

	"github.com/chazu/beamtrace/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
)

// boundEpsilon pads flat bounding boxes; rtreego rejects zero extents.
const boundEpsilon = 1e-6

// Overlap names two faces that share a plane and cover common area.
// Beams cannot tell such faces apart, so scenes should avoid them.
type Overlap struct {
	A, B int // face IDs, A < B
}

// indexedFace adapts a kernel.Face to rtreego.Spatial.
type indexedFace struct {
	face kernel.Face
	rect rtreego.Rect
}

func (f *indexedFace) Bounds() rtreego.Rect { return f.rect }

func boundsOf(f kernel.Face, pad float64) (rtreego.Rect, error) {
	verts := f.Vertices()
	lo, hi := verts[0], verts[0]
	for _, v := range verts[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return rtreego.NewRect(
		rtreego.Point{lo.X - pad, lo.Y - pad, lo.Z - pad},
		[]float64{
			math.Max(hi.X-lo.X, boundEpsilon) + 2*pad,
			math.Max(hi.Y-lo.Y, boundEpsilon) + 2*pad,
			math.Max(hi.Z-lo.Z, boundEpsilon) + 2*pad,
		},
	)
}

// FindOverlaps reports coplanar face pairs whose interiors intersect by
// more than eps. Candidate pairs come from an R-tree over face bounds.
func FindOverlaps(faces []kernel.Face, eps float64) ([]Overlap, error) {
	tree := rtreego.NewTree(3, 2, 5)
	items := make([]*indexedFace, 0, len(faces))
	for _, f := range faces {
		r, err := boundsOf(f, eps)
		if err != nil {
			return nil, err
		}
		item := &indexedFace{face: f, rect: r}
		items = append(items, item)
		tree.Insert(item)
	}

	var out []Overlap
	for _, item := range items {
		for _, s := range tree.SearchIntersect(item.rect) {
			other := s.(*indexedFace).face
			if other.ID() <= item.face.ID() {
				continue
			}
			if coplanar(item.face, other, eps) && overlap2D(item.face, other, eps) {
				out = append(out, Overlap{A: item.face.ID(), B: other.ID()})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out, nil
}

// coplanar reports whether b lies in a's supporting plane, regardless of
// which way either face points.
func coplanar(a, b kernel.Face, eps float64) bool {
	if math.Abs(math.Abs(a.Normal().Dot(b.Normal()))-1) > eps {
		return false
	}
	pl := a.Plane()
	for _, v := range b.Vertices() {
		if math.Abs(pl.Distance(v)) > eps {
			return false
		}
	}
	return true
}

// overlap2D projects both faces into a's plane and runs a separating axis
// test. Faces that only touch along an edge do not overlap.
func overlap2D(a, b kernel.Face, eps float64) bool {
	av := a.Vertices()
	u := av[1].Sub(av[0]).Normalize()
	w := a.Normal().Cross(u)
	pa := projectOnto(av, av[0], u, w)
	pb := projectOnto(b.Vertices(), av[0], u, w)
	return !separated(pa, pb, eps) && !separated(pb, pa, eps)
}

func projectOnto(verts []v3.Vec, origin, u, w v3.Vec) []v2.Vec {
	out := make([]v2.Vec, len(verts))
	for i, v := range verts {
		d := v.Sub(origin)
		out[i] = v2.Vec{X: d.Dot(u), Y: d.Dot(w)}
	}
	return out
}

// separated reports whether some edge normal of p splits p from q.
func separated(p, q []v2.Vec, eps float64) bool {
	for i := range p {
		e := p[(i+1)%len(p)].Sub(p[i])
		axis := v2.Vec{X: -e.Y, Y: e.X}
		if axis.Length() == 0 {
			continue
		}
		axis = axis.Normalize()
		pMin, pMax := span(p, axis)
		qMin, qMax := span(q, axis)
		if pMax <= qMin+eps || qMax <= pMin+eps {
			return true
		}
	}
	return false
}

func span(p []v2.Vec, axis v2.Vec) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
