package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the structural checks on g. It never mutates the graph.
func Validate(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateTransforms(g)...)
	errs = append(errs, validateSources(g)...)
	return errs
}

// ValidateAll runs the structural, surface and settings checks, splitting
// their findings into blocking errors and warnings.
func ValidateAll(g *SceneGraph) ValidationResult {
	structural := Validate(g)
	geomErrs, geomWarnings := validateGeometry(g)
	settingsErrs, settingsWarnings := validateSettings(g)

	var result ValidationResult
	for _, e := range structural {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, geomErrs...)
	result.Errors = append(result.Errors, settingsErrs...)
	result.Warnings = append(result.Warnings, geomWarnings...)
	result.Warnings = append(result.Warnings, settingsWarnings...)

	return result
}

// validateDAG rejects placements that contain themselves, directly or
// through a group. Only the first cycle is reported.
func validateDAG(g *SceneGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("placement cycle: scene node %s contains itself", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white && visit(id) {
			break
		}
	}

	return errs
}

// validateReferences checks that every child NodeID points to a node that
// actually exists in g.Nodes.
func validateReferences(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("places scene node %s, which does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if node.Kind.IsSurface() && len(node.Children) > 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s surface cannot contain other scene nodes", node.Kind),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateNames requires part names to be unique so (part "name") is
// unambiguous.
func validateNames(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("part name %q refers to missing scene node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q shared by %d scene nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks the root list and warns about surfaces that were
// consumed by no placement and sit under no root, so they are never traced.
func validateRoots(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s names no scene node", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("scene node %q is under no root and will not be traced (orphan)", node.DisplayName()),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateTransforms checks that transform nodes carry TransformData and
// wrap at least one child.
func validateTransforms(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		if node.Kind != NodeTransform {
			continue
		}
		if _, ok := node.Data.(TransformData); !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("transform node has unexpected data type %T", node.Data),
				Severity: SeverityError,
			})
		}
		if len(node.Children) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "transform has no child to place",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateSources requires exactly one emission point once the scene
// declares any geometry.
func validateSources(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	switch {
	case len(g.Sources) == 0 && len(g.Nodes) > 0:
		errs = append(errs, ValidationError{
			Message:  "scene declares geometry but no source",
			Severity: SeverityError,
		})
	case len(g.Sources) > 1:
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("scene declares %d sources, exactly one is supported", len(g.Sources)),
			Severity: SeverityError,
		})
	}

	return errs
}
