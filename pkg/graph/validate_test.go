package graph

import (
	"strings"
	"testing"
)

// buildValidScene creates a minimal valid scene: a room plus a placed panel
// inside a group, with one source.
func buildValidScene() *SceneGraph {
	g := New()

	roomID := NewNodeID("room/hall")
	panelID := NewNodeID("panel/reflector")
	placeID := NewNodeID("place/reflector")
	groupID := NewNodeID("group/scene")

	g.AddNode(&Node{ID: roomID, Kind: NodeRoom, Name: "hall", Data: RoomData{Size: Vec3{10, 8, 3}}})
	g.AddNode(&Node{ID: panelID, Kind: NodePanel, Name: "reflector", Data: PanelData{Width: 2, Height: 1}})
	g.AddNode(&Node{
		ID:       placeID,
		Kind:     NodeTransform,
		Children: []NodeID{panelID},
		Data:     TransformData{Translation: &Vec3{0, 0, 2}},
	})
	g.AddNode(&Node{
		ID:       groupID,
		Kind:     NodeGroup,
		Name:     "scene",
		Children: []NodeID{roomID, placeID},
		Data:     GroupData{Description: "test scene"},
	})
	g.AddRoot(groupID)
	g.AddSource(Vec3{0, 0, 0})

	return g
}

func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(warnings []ValidationWarning, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

func errorCount(errs []ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

func TestValidGraphPasses(t *testing.T) {
	g := buildValidScene()
	errs := Validate(g)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected: %s", e.Error())
		}
	}
}

func TestEmptyGraphPasses(t *testing.T) {
	errs := Validate(New())
	if len(errs) != 0 {
		t.Errorf("empty graph should validate, got %d findings", len(errs))
	}
}

func TestCycleDetection(t *testing.T) {
	g := buildValidScene()
	a := NewNodeID("group/a")
	b := NewNodeID("group/b")
	g.AddNode(&Node{ID: a, Kind: NodeGroup, Name: "a", Children: []NodeID{b}, Data: GroupData{}})
	g.AddNode(&Node{ID: b, Kind: NodeGroup, Name: "b", Children: []NodeID{a}, Data: GroupData{}})
	g.AddRoot(a)

	errs := Validate(g)
	if !hasError(errs, "placement cycle") {
		t.Errorf("expected cycle error, got %v", errs)
	}
}

func TestDanglingChildReference(t *testing.T) {
	g := buildValidScene()
	group := g.Lookup("scene")
	group.Children = append(group.Children, NewNodeID("ghost"))

	errs := Validate(g)
	if !hasError(errs, "places scene node") {
		t.Errorf("expected dangling reference error, got %v", errs)
	}
}

func TestSurfaceWithChildren(t *testing.T) {
	g := buildValidScene()
	room := g.Lookup("hall")
	room.Children = []NodeID{g.Lookup("reflector").ID}

	errs := Validate(g)
	if !hasError(errs, "room surface cannot contain other scene nodes") {
		t.Errorf("expected surface-children error, got %v", errs)
	}
}

func TestDuplicateNames(t *testing.T) {
	g := buildValidScene()
	dup := NewNodeID("panel/other")
	g.AddNode(&Node{ID: dup, Kind: NodePanel, Name: "reflector", Data: PanelData{Width: 1, Height: 1}})
	g.AddRoot(dup)

	errs := Validate(g)
	if !hasError(errs, "duplicate name") {
		t.Errorf("expected duplicate name error, got %v", errs)
	}
}

func TestMissingRoot(t *testing.T) {
	g := buildValidScene()
	g.Roots = append(g.Roots, NewNodeID("nowhere"))

	errs := Validate(g)
	if !hasError(errs, "root reference") {
		t.Errorf("expected missing root error, got %v", errs)
	}
}

func TestOrphanIsWarning(t *testing.T) {
	g := buildValidScene()
	orphan := NewNodeID("panel/orphan")
	g.AddNode(&Node{ID: orphan, Kind: NodePanel, Name: "orphan", Data: PanelData{Width: 1, Height: 1}})

	errs := Validate(g)
	if errorCount(errs) != 0 {
		t.Errorf("orphan should not produce errors, got %v", errs)
	}
	res := ValidateAll(g)
	if !hasWarning(res.Warnings, `"orphan" is under no root`) {
		t.Errorf("expected orphan warning, got %v", res.Warnings)
	}
}

func TestTransformWithoutChild(t *testing.T) {
	g := buildValidScene()
	place := NewNodeID("place/empty")
	g.AddNode(&Node{ID: place, Kind: NodeTransform, Data: TransformData{}})
	g.AddRoot(place)

	errs := Validate(g)
	if !hasError(errs, "no child to place") {
		t.Errorf("expected empty transform error, got %v", errs)
	}
}

func TestTransformWrongData(t *testing.T) {
	g := buildValidScene()
	place := g.Get(NewNodeID("place/reflector"))
	place.Data = GroupData{}

	errs := Validate(g)
	if !hasError(errs, "unexpected data type") {
		t.Errorf("expected transform data error, got %v", errs)
	}
}

func TestSources(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		g := buildValidScene()
		g.Sources = nil
		if !hasError(Validate(g), "no source") {
			t.Error("expected missing source error")
		}
	})
	t.Run("multiple", func(t *testing.T) {
		g := buildValidScene()
		g.AddSource(Vec3{1, 1, 1})
		if !hasError(Validate(g), "exactly one is supported") {
			t.Error("expected multiple source error")
		}
	})
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Message: "boom", Severity: SeverityError}
	if got := e.Error(); got != "[error] boom" {
		t.Errorf("Error() = %q", got)
	}
	id := NewNodeID("x")
	e = ValidationError{NodeID: id, Message: "boom", Severity: SeverityWarning}
	if !strings.Contains(e.Error(), id.Short()) || !strings.HasPrefix(e.Error(), "[warning]") {
		t.Errorf("Error() = %q", e.Error())
	}
}
