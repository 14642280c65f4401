package geom

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestCameraTransformFrame(t *testing.T) {
	origin := v3.Vec{X: 1, Y: 2, Z: 3}
	forward := v3.Vec{Z: 1}
	right := v3.Vec{X: 1}
	up := right.Cross(forward)
	cam := CameraTransform(forward, up, right, origin)

	if got := cam.Apply(origin); !vecNear(got, v3.Vec{}, 1e-12) {
		t.Errorf("origin maps to %v, want 0", got)
	}
	ahead := cam.Apply(origin.Add(v3.Vec{Z: 2}))
	if want := (v3.Vec{Z: -2}); !vecNear(ahead, want, 1e-12) {
		t.Errorf("point ahead maps to %v, want %v", ahead, want)
	}
	side := cam.Apply(origin.Add(v3.Vec{X: 1}))
	if want := (v3.Vec{X: 1}); !vecNear(side, want, 1e-12) {
		t.Errorf("point to the right maps to %v, want %v", side, want)
	}
}

func TestTransformInverseRoundTrip(t *testing.T) {
	forward := v3.Vec{X: 1, Y: 1, Z: 0}.Normalize()
	right := v3.Vec{X: 1, Y: -1, Z: 0}.Normalize()
	up := right.Cross(forward)
	cam := CameraTransform(forward, up, right, v3.Vec{X: -2.5, Y: 2.5, Z: -2})

	inv, err := cam.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	pts := []v3.Vec{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 0, Z: 0.5}, {}}
	for _, p := range pts {
		if got := inv.Apply(cam.Apply(p)); !vecNear(got, p, 1e-9) {
			t.Errorf("round trip of %v gave %v", p, got)
		}
	}
	id := cam.Mul(inv)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if d := id.At(i, j) - want; d > 1e-9 || d < -1e-9 {
				t.Errorf("cam*inv[%d][%d] = %v, want %v", i, j, id.At(i, j), want)
			}
		}
	}
}

func TestTransformSingular(t *testing.T) {
	var zero [16]float64
	if _, err := NewTransform(zero).Inverse(); err == nil {
		t.Error("expected an error inverting the zero matrix")
	}
}

func TestTranslationApplyDirection(t *testing.T) {
	tr := Translation(v3.Vec{X: 3})
	if got := tr.Apply(v3.Vec{Y: 1}); !vecNear(got, v3.Vec{X: 3, Y: 1}, 1e-12) {
		t.Errorf("Apply = %v", got)
	}
	if got := tr.ApplyDirection(v3.Vec{Y: 1}); !vecNear(got, v3.Vec{Y: 1}, 1e-12) {
		t.Errorf("ApplyDirection = %v", got)
	}
}
