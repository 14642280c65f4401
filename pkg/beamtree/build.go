package beamtree

import (
	"errors"
	"fmt"
	"log"

	"github.com/chazu/beamtrace/pkg/beam"
	"github.com/chazu/beamtrace/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidOptions is returned by Build for unusable options.
var ErrInvalidOptions = errors.New("beamtree: invalid options")

// Traversal selects the work-list discipline.
type Traversal int

const (
	// DepthFirst expands every split sibling, and everything below it,
	// before the reflected beam of the same parent.
	DepthFirst Traversal = iota
	// BreadthFirst expands beams in creation order.
	BreadthFirst
)

func (tr Traversal) String() string {
	switch tr {
	case DepthFirst:
		return "depth-first"
	case BreadthFirst:
		return "breadth-first"
	default:
		return fmt.Sprintf("Traversal(%d)", int(tr))
	}
}

// ParseTraversal accepts "depth-first" or "breadth-first".
func ParseTraversal(s string) (Traversal, error) {
	switch s {
	case "depth-first", "":
		return DepthFirst, nil
	case "breadth-first":
		return BreadthFirst, nil
	}
	return 0, fmt.Errorf("%w: unknown traversal %q", ErrInvalidOptions, s)
}

// Options configure Build.
type Options struct {
	MaxOrder  int
	Traversal Traversal
	Roots     RootFaces
	MaxBeams  int // 0 = unlimited
	Beam      beam.Config

	// Logger, when set, receives one line per expanded beam.
	Logger *log.Logger
}

// DefaultOptions traces second-order reflections from the front cube face.
func DefaultOptions() Options {
	return Options{
		MaxOrder:  2,
		Traversal: DepthFirst,
		Roots:     RootFront,
		Beam:      beam.DefaultConfig,
	}
}

func (o Options) validate() error {
	switch {
	case o.MaxOrder < 0:
		return fmt.Errorf("%w: max order %d", ErrInvalidOptions, o.MaxOrder)
	case o.MaxBeams < 0:
		return fmt.Errorf("%w: max beams %d", ErrInvalidOptions, o.MaxBeams)
	case o.Roots == 0 || o.Roots&^AllRoots != 0:
		return fmt.Errorf("%w: root faces %#x", ErrInvalidOptions, uint8(o.Roots))
	case o.Traversal != DepthFirst && o.Traversal != BreadthFirst:
		return fmt.Errorf("%w: %v", ErrInvalidOptions, o.Traversal)
	}
	return nil
}

// task is one pending beam expansion and the faces it must test.
type task struct {
	node  NodeID
	faces []kernel.Face
}

// worklist is a stack or a queue depending on the traversal.
type worklist struct {
	lifo  bool
	tasks []task
}

func (w *worklist) len() int { return len(w.tasks) }

func (w *worklist) next() task {
	if w.lifo {
		t := w.tasks[len(w.tasks)-1]
		w.tasks = w.tasks[:len(w.tasks)-1]
		return t
	}
	t := w.tasks[0]
	w.tasks = w.tasks[1:]
	return t
}

// schedule queues the split siblings and the reflected beam produced by
// one expansion. A stack gets them reversed so siblings pop first, in
// order, and the reflection last.
func (w *worklist) schedule(splits []task, reflected *task) {
	if !w.lifo {
		w.tasks = append(w.tasks, splits...)
		if reflected != nil {
			w.tasks = append(w.tasks, *reflected)
		}
		return
	}
	if reflected != nil {
		w.tasks = append(w.tasks, *reflected)
	}
	for i := len(splits) - 1; i >= 0; i-- {
		w.tasks = append(w.tasks, splits[i])
	}
}

// builder carries the state of one Build call.
type builder struct {
	tree *Tree
	opts Options
	work *worklist
}

// Build seeds cast beams around origin and expands them against faces
// until every branch reaches MaxOrder or free space.
func Build(origin v3.Vec, faces []kernel.Face, opts Options) (*Tree, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.Beam = opts.Beam.OrDefault()

	t := NewTree(origin, faces)
	bd := &builder{
		tree: t,
		opts: opts,
		work: &worklist{lifo: opts.Traversal == DepthFirst},
	}

	seeds := t.Seed(opts.Roots, opts.Beam)
	initial := make([]task, len(seeds))
	for i, id := range seeds {
		initial[i] = task{node: id, faces: faces}
	}
	bd.work.schedule(initial, nil)

	for bd.work.len() > 0 && !t.Truncated {
		bd.expand(bd.work.next())
	}
	return t, nil
}

// full reports whether n more beams would exceed MaxBeams, and marks the
// tree truncated if so.
func (bd *builder) full(n int) bool {
	if bd.opts.MaxBeams == 0 {
		return false
	}
	if bd.tree.Len()-1+n > bd.opts.MaxBeams {
		bd.tree.Truncated = true
		return true
	}
	return false
}

// expand resolves one beam: find the face it sees, split the rest of the
// frustum into siblings under the same parent, replace the beam with its
// front part and hang the reflected beam under that.
func (bd *builder) expand(tk task) {
	t := bd.tree
	n := t.nodes[tk.node]
	b := n.Beam
	if b.Order >= bd.opts.MaxOrder || len(tk.faces) == 0 {
		return
	}

	vis, anomalies := b.FindLargestUnobstructedFace(tk.faces)
	n.Anomalies = append(n.Anomalies, anomalies...)
	if vis == nil {
		bd.logf("node %d order %d: free space (%d faces tested)", n.ID, b.Order, len(tk.faces))
		return
	}
	faceID := vis.Face.ID()

	regions, anomalies := b.Split(vis.Boundary2D)
	for i := range anomalies {
		anomalies[i].FaceID = faceID
	}
	n.Anomalies = append(n.Anomalies, anomalies...)

	parent := n.Parent
	var splits []task
	for _, r := range regions {
		if bd.full(1) {
			return
		}
		s, err := b.Sibling(r)
		if err != nil {
			n.Anomalies = append(n.Anomalies, constructionAnomaly(err, faceID))
			continue
		}
		id, err := t.Add(parent, KindSplit, s, n.ID)
		if err != nil {
			n.Anomalies = append(n.Anomalies, constructionAnomaly(err, faceID))
			continue
		}
		t.nodes[id].Anomalies = append(t.nodes[id].Anomalies, s.Anomalies...)
		splits = append(splits, task{node: id, faces: b.VisibleFaces})
	}

	if bd.full(2) {
		bd.work.schedule(splits, nil)
		return
	}
	front, err := b.Front(vis)
	if err != nil {
		n.Anomalies = append(n.Anomalies, constructionAnomaly(err, faceID))
		bd.work.schedule(splits, nil)
		return
	}
	frontID, err := t.Replace(n.ID, KindFront, front)
	if err != nil {
		n.Anomalies = append(n.Anomalies, constructionAnomaly(err, faceID))
		bd.work.schedule(splits, nil)
		return
	}

	var reflected *task
	if rb, err := b.Reflected(vis); err != nil {
		n.Anomalies = append(n.Anomalies, constructionAnomaly(err, faceID))
	} else if id, err := t.Add(frontID, KindReflected, rb, n.ID); err != nil {
		n.Anomalies = append(n.Anomalies, constructionAnomaly(err, faceID))
	} else {
		t.nodes[id].Anomalies = append(t.nodes[id].Anomalies, rb.Anomalies...)
		reflected = &task{node: id, faces: t.Faces}
	}

	bd.logf("node %d order %d: face %d, %d splits, front %d", n.ID, b.Order, faceID, len(splits), frontID)
	bd.work.schedule(splits, reflected)
}

func (bd *builder) logf(format string, args ...any) {
	if bd.opts.Logger != nil {
		bd.opts.Logger.Printf("beamtree: "+format, args...)
	}
}
