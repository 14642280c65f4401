package graph

import (
	"fmt"
	"math"

	"github.com/chazu/beamtrace/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// planarityTolerance bounds the distance of polygon vertices from their
// supporting plane.
const planarityTolerance = 1e-5

// maxOrderWarning is the reflection order above which tree size usually
// explodes.
const maxOrderWarning = 8

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateDimensions(g)...)
	errs = append(errs, validatePolygons(g)...)

	warnings = append(warnings, validateEmptyGroups(g)...)

	return errs, warnings
}

// validateDimensions checks that rooms and panels have positive extents.
func validateDimensions(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	positive := func(node *Node, what string, v float64) {
		if v <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s %s is %.4f, must be positive", node.Kind, what, v),
				Severity: SeverityError,
			})
		}
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case RoomData:
			positive(node, "dimension X", d.Size.X)
			positive(node, "dimension Y", d.Size.Y)
			positive(node, "dimension Z", d.Size.Z)
		case PanelData:
			positive(node, "width", d.Width)
			positive(node, "height", d.Height)
		}
	}

	return errs
}

// validatePolygons checks that explicit polygons have at least three
// vertices and are planar, convex and non-degenerate.
func validatePolygons(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		pd, ok := node.Data.(PolygonData)
		if !ok {
			continue
		}

		fail := func(msg string) {
			errs = append(errs, ValidationError{NodeID: node.ID, Message: msg, Severity: SeverityError})
		}

		if len(pd.Vertices) < 3 {
			fail(fmt.Sprintf("polygon has %d vertices, needs at least 3", len(pd.Vertices)))
			continue
		}
		verts := make([]v3.Vec, len(pd.Vertices))
		for i, v := range pd.Vertices {
			verts[i] = v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
		}
		if _, err := geom.FaceNormal(verts, geom.DefaultTolerance.Normal); err != nil {
			fail("polygon vertices are collinear")
			continue
		}
		if !geom.IsPlanar(verts, planarityTolerance) {
			fail("polygon is not planar")
			continue
		}
		if !geom.IsConvex(verts, planarityTolerance) {
			fail("polygon is not convex")
		}
	}

	return errs
}

// validateEmptyGroups warns about groups that contribute no geometry.
func validateEmptyGroups(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		if node.Kind == NodeGroup && len(node.Children) == 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("group %q has no children", node.DisplayName()),
			})
		}
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: trace settings
// ---------------------------------------------------------------------------

// validateSettings checks the scene-wide trace settings.
func validateSettings(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning
	s := g.Settings

	fail := func(msg string) {
		errs = append(errs, ValidationError{Message: msg, Severity: SeverityError})
	}

	if s.MaxOrder < 0 {
		fail(fmt.Sprintf("max-order is %d, must be non-negative", s.MaxOrder))
	} else if s.MaxOrder > maxOrderWarning {
		warnings = append(warnings, ValidationWarning{
			Message: fmt.Sprintf("max-order %d may produce a very large beam tree", s.MaxOrder),
		})
	}
	if s.NearDistance <= 0 || math.IsNaN(s.NearDistance) {
		fail(fmt.Sprintf("near-distance is %g, must be positive", s.NearDistance))
	}
	if s.Epsilon <= 0 || math.IsNaN(s.Epsilon) {
		fail(fmt.Sprintf("epsilon is %g, must be positive", s.Epsilon))
	}
	if !ValidTraversals[s.Traversal] {
		fail(fmt.Sprintf("invalid traversal %q, expected depth-first or breadth-first", s.Traversal))
	}
	if len(s.Roots) == 0 {
		fail("no root faces enabled")
	}
	for _, r := range s.Roots {
		if !ValidRootFaces[r] {
			fail(fmt.Sprintf("invalid root face %q, expected front/back/left/right/top/bottom", r))
		}
	}
	if s.MaxBeams < 0 {
		fail(fmt.Sprintf("max-beams is %d, must be non-negative", s.MaxBeams))
	}

	return errs, warnings
}
