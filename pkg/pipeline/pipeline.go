// Package pipeline runs a scene from source text to beam tree: evaluate
// the DSL, validate the scene graph, turn surfaces into faces and build
// the tree from the scene's source point.
package pipeline

import (
	"fmt"
	"log"
	"sort"

	"github.com/chazu/beamtrace/pkg/beam"
	"github.com/chazu/beamtrace/pkg/beamtree"
	"github.com/chazu/beamtrace/pkg/engine"
	"github.com/chazu/beamtrace/pkg/geom"
	"github.com/chazu/beamtrace/pkg/graph"
	"github.com/chazu/beamtrace/pkg/kernel"
	"github.com/chazu/beamtrace/pkg/kernel/sdfx"
	"github.com/chazu/beamtrace/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Stage names the step a diagnostic came from.
type Stage string

const (
	StageEval       Stage = "eval"
	StageValidate   Stage = "validate"
	StageTessellate Stage = "tessellate"
	StageScene      Stage = "scene"
	StageTrace      Stage = "trace"
)

// Diagnostic is one error or warning reported by a run.
type Diagnostic struct {
	Stage   Stage  `json:"stage"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", d.Stage, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Stage, d.Message)
}

// PartSummary describes the faces one scene part contributed.
type PartSummary struct {
	Name  string  `json:"name"`
	Faces int     `json:"faces"`
	Area  float64 `json:"area"`
}

// Result is the full outcome of a run. Tree is nil when a blocking error
// stopped the run before tracing.
type Result struct {
	Errors    []Diagnostic       `json:"errors"`
	Warnings  []Diagnostic       `json:"warnings"`
	Settings  graph.Settings     `json:"settings"`
	Source    [3]float64         `json:"source"`
	Parts     []PartSummary      `json:"parts"`
	Faces     int                `json:"faces"`
	Anomalies []beam.Anomaly     `json:"anomalies"`
	Snapshot  *beamtree.Snapshot `json:"tree,omitempty"`

	Tree *beamtree.Tree `json:"-"`
}

// OK reports whether the run finished without blocking errors. Anomalies
// and warnings do not count.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(stage Stage, line int, format string, args ...any) {
	r.Errors = append(r.Errors, Diagnostic{Stage: stage, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warn(stage Stage, format string, args ...any) {
	r.Warnings = append(r.Warnings, Diagnostic{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// Overrides replace scene settings field by field. Nil and empty fields
// keep the scene's value.
type Overrides struct {
	MaxOrder     *int
	NearDistance *float64
	Epsilon      *float64
	Traversal    string
	Roots        []string
	MaxBeams     *int
}

// Apply writes the set fields of o over s.
func (o Overrides) Apply(s graph.Settings) graph.Settings {
	if o.MaxOrder != nil {
		s.MaxOrder = *o.MaxOrder
	}
	if o.NearDistance != nil {
		s.NearDistance = *o.NearDistance
	}
	if o.Epsilon != nil {
		s.Epsilon = *o.Epsilon
	}
	if o.Traversal != "" {
		s.Traversal = o.Traversal
	}
	if len(o.Roots) > 0 {
		s.Roots = o.Roots
	}
	if o.MaxBeams != nil {
		s.MaxBeams = *o.MaxBeams
	}
	return s
}

// Merge returns o with every field set in later replacing its own.
func (o Overrides) Merge(later Overrides) Overrides {
	if later.MaxOrder != nil {
		o.MaxOrder = later.MaxOrder
	}
	if later.NearDistance != nil {
		o.NearDistance = later.NearDistance
	}
	if later.Epsilon != nil {
		o.Epsilon = later.Epsilon
	}
	if later.Traversal != "" {
		o.Traversal = later.Traversal
	}
	if len(later.Roots) > 0 {
		o.Roots = later.Roots
	}
	if later.MaxBeams != nil {
		o.MaxBeams = later.MaxBeams
	}
	return o
}

// Pipeline owns the evaluation engine and geometry kernel shared by runs.
// Runs on one Pipeline should not overlap: a Run started while another is
// still evaluating supersedes it, and the older Run reports an eval error.
// Use one Pipeline per goroutine.
type Pipeline struct {
	engine *engine.Engine
	kernel kernel.Kernel

	// Logger receives progress lines; nil disables logging.
	Logger *log.Logger
	// Verbose also logs every anomaly and every expanded beam.
	Verbose bool
}

// New creates a pipeline with a fresh engine and the sdfx kernel.
func New() *Pipeline {
	return &Pipeline{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

// Run evaluates source and traces it. Settings are resolved as built-in
// defaults, then the scene's (settings ...) form, then ov.
func (p *Pipeline) Run(source string, ov Overrides) *Result {
	res := &Result{
		Errors:    []Diagnostic{},
		Warnings:  []Diagnostic{},
		Parts:     []PartSummary{},
		Anomalies: []beam.Anomaly{},
	}

	// Step 1: Evaluate the source into a scene graph.
	g, evalErrs, err := p.engine.Evaluate(source)
	if err != nil {
		p.logf("evaluate: fatal: %v", err)
		res.fail(StageEval, 0, "%v", err)
		return res
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			p.logf("evaluate: %v", e)
			res.fail(StageEval, e.Line, "%s", e.Message)
		}
		return res
	}
	g.Settings = ov.Apply(g.Settings)
	res.Settings = g.Settings

	// Step 2: Validate structure, geometry and settings.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		p.logf("validate: warning: %s", w.Message)
		res.warn(StageValidate, "%s", w.Message)
	}
	for _, e := range vr.Errors {
		p.logf("validate: %v", e)
		res.fail(StageValidate, 0, "%s", e.Error())
	}
	if !res.OK() {
		return res
	}

	// Step 3: Turn surfaces into placed faces.
	meshes, err := tessellate.Tessellate(g, p.kernel)
	if err != nil {
		p.logf("tessellate: %v", err)
		res.fail(StageTessellate, 0, "%v", err)
		return res
	}
	faces := tessellate.Faces(meshes)
	res.Faces = len(faces)
	res.Parts = lo.Map(meshes, func(m *kernel.Mesh, _ int) PartSummary {
		return PartSummary{Name: m.PartName, Faces: m.FaceCount(), Area: m.Area()}
	})

	src, ok := g.Source()
	if !ok {
		// Only an empty scene gets past validation without a source.
		return res
	}
	res.Source = src.Array()
	origin := v3.Vec{X: src.X, Y: src.Y, Z: src.Z}

	// Step 4: Scene-level checks that need faces.
	p.checkScene(res, meshes, faces, src)

	// Step 5: Trace.
	opts, err := p.treeOptions(g.Settings)
	if err != nil {
		res.fail(StageTrace, 0, "%v", err)
		return res
	}
	tree, err := beamtree.Build(origin, faces, opts)
	if err != nil {
		p.logf("trace: %v", err)
		res.fail(StageTrace, 0, "%v", err)
		return res
	}
	if err := beamtree.Validate(tree); err != nil {
		p.logf("trace: %v", err)
		res.fail(StageTrace, 0, "%v", err)
	}
	if tree.Truncated {
		res.warn(StageTrace, "beam limit %d reached, tree is incomplete", opts.MaxBeams)
	}

	res.Tree = tree
	res.Anomalies = append(res.Anomalies, tree.Anomalies()...)
	snap := tree.Snapshot()
	res.Snapshot = &snap

	if p.Verbose {
		for _, a := range res.Anomalies {
			p.logf("anomaly: %v", a)
		}
	}
	p.logSummary(snap.Stats, len(res.Anomalies))
	return res
}

// checkScene warns about scenes that trace but probably not as intended.
func (p *Pipeline) checkScene(res *Result, meshes []*kernel.Mesh, faces []kernel.Face, src graph.Vec3) {
	if len(faces) == 0 {
		res.warn(StageScene, "scene has no faces, every beam escapes")
		return
	}

	inside := lo.SomeBy(meshes, func(m *kernel.Mesh) bool {
		return m.Solid != nil && p.kernel.Contains(m.Solid, src.Array())
	})
	if !inside {
		p.logf("scene: source %v lies outside every room", src)
		res.warn(StageScene, "source (%g, %g, %g) lies outside every room", src.X, src.Y, src.Z)
	}

	overlaps, err := tessellate.FindOverlaps(faces, geom.DefaultTolerance.Coincide)
	if err != nil {
		res.warn(StageScene, "overlap check skipped: %v", err)
		return
	}
	for _, o := range overlaps {
		res.warn(StageScene, "faces %d and %d are coplanar and overlap", o.A, o.B)
	}
}

// treeOptions maps validated scene settings onto builder options.
func (p *Pipeline) treeOptions(s graph.Settings) (beamtree.Options, error) {
	opts := beamtree.DefaultOptions()
	opts.MaxOrder = s.MaxOrder
	opts.MaxBeams = s.MaxBeams

	tr, err := beamtree.ParseTraversal(s.Traversal)
	if err != nil {
		return opts, err
	}
	opts.Traversal = tr

	roots, err := beamtree.ParseRoots(s.Roots)
	if err != nil {
		return opts, err
	}
	opts.Roots = roots

	tol := geom.DefaultTolerance
	tol.Orient = s.Epsilon
	opts.Beam = beam.Config{Tolerance: tol, NearDistance: s.NearDistance}.OrDefault()

	if p.Verbose {
		opts.Logger = p.Logger
	}
	return opts, nil
}

func (p *Pipeline) logSummary(st beamtree.Stats, anomalies int) {
	if p.Logger == nil {
		return
	}
	p.logf("trace: %d beams, deepest order %d, %d anomalies", st.Beams, st.MaxOrder, anomalies)
	for _, order := range st.Orders() {
		p.logf("trace:   order %d: %d beams", order, st.ByOrder[order])
	}
	kinds := lo.Keys(st.ByKind)
	sort.Strings(kinds)
	for _, k := range kinds {
		p.logf("trace:   %s: %d", k, st.ByKind[k])
	}
}
