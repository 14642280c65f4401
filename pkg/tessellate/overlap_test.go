package tessellate_test

import (
	"testing"

	"github.com/chazu/beamtrace/pkg/kernel"
	"github.com/chazu/beamtrace/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func square(t *testing.T, id int, x0, y0, size, z float64) kernel.Face {
	t.Helper()
	p, err := kernel.NewPolygon(id, []v3.Vec{
		{X: x0, Y: y0, Z: z},
		{X: x0 + size, Y: y0, Z: z},
		{X: x0 + size, Y: y0 + size, Z: z},
		{X: x0, Y: y0 + size, Z: z},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFindOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		faces func(t *testing.T) []kernel.Face
		want  []tessellate.Overlap
	}{
		{
			name: "overlapping coplanar squares",
			faces: func(t *testing.T) []kernel.Face {
				return []kernel.Face{square(t, 0, 0, 0, 2, 0), square(t, 1, 1, 1, 2, 0)}
			},
			want: []tessellate.Overlap{{A: 0, B: 1}},
		},
		{
			name: "edge-adjacent squares touch only",
			faces: func(t *testing.T) []kernel.Face {
				return []kernel.Face{square(t, 0, 0, 0, 1, 0), square(t, 1, 1, 0, 1, 0)}
			},
		},
		{
			name: "parallel planes",
			faces: func(t *testing.T) []kernel.Face {
				return []kernel.Face{square(t, 0, 0, 0, 1, 0), square(t, 1, 0, 0, 1, 0.5)}
			},
		},
		{
			name: "disjoint coplanar",
			faces: func(t *testing.T) []kernel.Face {
				return []kernel.Face{square(t, 0, 0, 0, 1, 0), square(t, 1, 5, 5, 1, 0)}
			},
		},
		{
			name: "nested with third face elsewhere",
			faces: func(t *testing.T) []kernel.Face {
				return []kernel.Face{
					square(t, 0, 0, 0, 4, 0),
					square(t, 1, 10, 10, 1, 3),
					square(t, 2, 1, 1, 1, 0),
				}
			},
			want: []tessellate.Overlap{{A: 0, B: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tessellate.FindOverlaps(tt.faces(t), 1e-7)
			if err != nil {
				t.Fatalf("FindOverlaps: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("overlap %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindOverlapsRoomIsClean(t *testing.T) {
	k := newKernel()
	m, err := k.ToMesh(k.Room(3, 3, 3))
	if err != nil {
		t.Fatal(err)
	}
	faces := tessellate.Faces([]*kernel.Mesh{m})
	got, err := tessellate.FindOverlaps(faces, 1e-7)
	if err != nil {
		t.Fatalf("FindOverlaps: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("room walls should not overlap, got %v", got)
	}
}
