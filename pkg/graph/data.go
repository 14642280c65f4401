package graph

// ---------------------------------------------------------------------------
// Surfaces
// ---------------------------------------------------------------------------

// RoomData is a closed box with its minimum corner at the local origin.
// Its six faces point inward.
type RoomData struct {
	Size Vec3 `json:"size"` // width (x) x depth (y) x height (z)
}

func (RoomData) nodeData() {}

// PanelData is a single rectangle in the local XY plane, normal +Z.
type PanelData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (PanelData) nodeData() {}

// PolygonData is one explicit planar convex face.
type PolygonData struct {
	Vertices []Vec3 `json:"vertices"`
}

func (PolygonData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) Lisp form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping of surfaces.
// Created by the (group ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
