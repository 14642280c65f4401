package sdfx

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestRoom(t *testing.T) {
	k := New()
	room := k.Room(10, 8, 3)
	mesh, err := k.ToMesh(room)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.FaceCount() != 6 {
		t.Fatalf("room face count = %d, want 6", mesh.FaceCount())
	}
	wantArea := 2 * (10*8 + 10*3 + 8*3.0)
	if math.Abs(mesh.Area()-wantArea) > 1e-9 {
		t.Errorf("room area = %v, want %v", mesh.Area(), wantArea)
	}

	// Every face normal points towards the room center.
	center := v3.Vec{X: 5, Y: 4, Z: 1.5}
	for i, f := range mesh.Faces {
		if d := f.Plane().Distance(center); d <= 0 {
			t.Errorf("face %d normal %v points out of the room", i, f.Normal())
		}
	}
}

func TestPanel(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(k.Panel(2, 1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.FaceCount() != 1 {
		t.Fatalf("panel face count = %d, want 1", mesh.FaceCount())
	}
	if mesh.Faces[0].Normal() != (v3.Vec{Z: 1}) {
		t.Errorf("panel normal = %v, want +z", mesh.Faces[0].Normal())
	}
	if mesh.Area() != 2 {
		t.Errorf("panel area = %v, want 2", mesh.Area())
	}
}

func TestPolygon(t *testing.T) {
	k := New()
	tests := []struct {
		name    string
		verts   [][3]float64
		wantErr bool
	}{
		{"triangle", [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, false},
		{"too few", [][3]float64{{0, 0, 0}, {1, 0, 0}}, true},
		{"warped", [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 1}, {0, 1, 0}}, true},
		{"concave", [][3]float64{{0, 0, 0}, {2, 0, 0}, {1, 0.3, 0}, {1, 2, 0}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Polygon(tt.verts)
			if (err != nil) != tt.wantErr {
				t.Errorf("Polygon() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	k := New()
	room := k.Room(10, 10, 10)
	panel := k.Translate(k.Panel(2, 2), 4, 4, 5)
	u := k.Union(room, panel)
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.FaceCount() != 7 {
		t.Fatalf("union face count = %d, want 7", mesh.FaceCount())
	}
	if !k.Contains(u, [3]float64{1, 1, 1}) {
		t.Error("union should contain a point inside the room")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	room := k.Room(10, 10, 10)
	translated := k.Translate(room, 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 1e-9
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
	if !k.Contains(translated, [3]float64{105, 205, 305}) {
		t.Error("translated room should contain its new center")
	}
	if k.Contains(translated, [3]float64{5, 5, 5}) {
		t.Error("translated room should not contain its old center")
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	room := k.Room(100, 50, 25)
	min, max := room.BoundingBox()

	const tol = 1e-9
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestContains(t *testing.T) {
	k := New()
	room := k.Room(4, 4, 4)
	tests := []struct {
		name string
		p    [3]float64
		want bool
	}{
		{"center", [3]float64{2, 2, 2}, true},
		{"outside", [3]float64{5, 2, 2}, false},
		{"below", [3]float64{2, 2, -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.Contains(room, tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
	if k.Contains(k.Panel(1, 1), [3]float64{0.5, 0.5, 0}) {
		t.Error("an open panel should contain nothing")
	}
}

func TestRotate(t *testing.T) {
	k := New()
	panel := k.Panel(100, 10)

	// A long panel along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(panel, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1e-6
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}

	// Rotating about X by 90 degrees turns the +Z normal into -Y.
	mesh, err := k.ToMesh(k.Rotate(k.Panel(1, 1), 90, 0, 0))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	n := mesh.Faces[0].Normal()
	if math.Abs(n.Y+1) > 1e-9 {
		t.Errorf("rotated normal = %v, want -y", n)
	}
}
