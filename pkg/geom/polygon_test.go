package geom

import (
	"errors"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/floats/scalar"
)

var unitSquare = []v3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

func TestFaceNormal(t *testing.T) {
	n, err := FaceNormal(unitSquare, DefaultTolerance.Normal)
	if err != nil {
		t.Fatalf("FaceNormal failed: %v", err)
	}
	if !vecNear(n, v3.Vec{Z: 1}, 1e-12) {
		t.Errorf("normal = %v, want +z", n)
	}

	// Leading collinear run is skipped.
	verts := []v3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 2, Y: 1}}
	n, err = FaceNormal(verts, DefaultTolerance.Normal)
	if err != nil {
		t.Fatalf("FaceNormal failed: %v", err)
	}
	if !vecNear(n, v3.Vec{Z: 1}, 1e-12) {
		t.Errorf("normal = %v, want +z", n)
	}

	_, err = FaceNormal([]v3.Vec{{X: 0}, {X: 1}, {X: 2}}, DefaultTolerance.Normal)
	if !errors.Is(err, ErrDegeneratePolygon) {
		t.Errorf("collinear polygon: err = %v, want ErrDegeneratePolygon", err)
	}
}

func TestPolygonArea(t *testing.T) {
	if got := PolygonArea(unitSquare); !scalar.EqualWithinAbs(got, 1, 1e-12) {
		t.Errorf("area = %v, want 1", got)
	}
	tri := []v3.Vec{{}, {X: 4}, {Y: 3, Z: 0}}
	if got := PolygonArea(tri); !scalar.EqualWithinAbs(got, 6, 1e-12) {
		t.Errorf("area = %v, want 6", got)
	}
	if got := PolygonArea(unitSquare[:2]); got != 0 {
		t.Errorf("area of a segment = %v, want 0", got)
	}
}

func TestPolygonArea2DAndSign(t *testing.T) {
	ccw := []v2.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	if got := PolygonArea2D(ccw); !scalar.EqualWithinAbs(got, 4, 1e-12) {
		t.Errorf("area = %v, want 4", got)
	}
	if got := SignedArea2D(ccw); got <= 0 {
		t.Errorf("signed area of ccw square = %v, want positive", got)
	}
}

func TestIsPlanarAndConvex(t *testing.T) {
	tests := []struct {
		name   string
		verts  []v3.Vec
		planar bool
		convex bool
	}{
		{"square", unitSquare, true, true},
		{"warped", []v3.Vec{{}, {X: 1}, {X: 1, Y: 1, Z: 0.5}, {Y: 1}}, false, true},
		{"dart", []v3.Vec{{}, {X: 2}, {X: 1, Y: 0.3}, {X: 1, Y: 2}}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlanar(tt.verts, 1e-5); got != tt.planar {
				t.Errorf("IsPlanar = %v, want %v", got, tt.planar)
			}
			if tt.planar {
				if got := IsConvex(tt.verts, 1e-9); got != tt.convex {
					t.Errorf("IsConvex = %v, want %v", got, tt.convex)
				}
			}
		})
	}
}
