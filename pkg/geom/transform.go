package geom

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

// Transform is a 4x4 affine transform acting on column vectors.
// Use Identity or one of the constructors; the zero value is not usable.
type Transform struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() Transform {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return Transform{m: m}
}

// NewTransform builds a transform from 16 row-major values.
func NewTransform(rowMajor [16]float64) Transform {
	data := make([]float64, 16)
	copy(data, rowMajor[:])
	return Transform{m: mat.NewDense(4, 4, data)}
}

// CameraTransform maps world space into a frame whose x axis is right,
// y axis is up and whose viewing direction forward becomes -z. The frame
// is centered on origin.
func CameraTransform(forward, up, right, origin v3.Vec) Transform {
	back := forward.Neg()
	return NewTransform([16]float64{
		right.X, right.Y, right.Z, -right.Dot(origin),
		up.X, up.Y, up.Z, -up.Dot(origin),
		back.X, back.Y, back.Z, -back.Dot(origin),
		0, 0, 0, 1,
	})
}

// Translation returns a pure translation.
func Translation(d v3.Vec) Transform {
	t := Identity()
	t.m.Set(0, 3, d.X)
	t.m.Set(1, 3, d.Y)
	t.m.Set(2, 3, d.Z)
	return t
}

// At returns the element at row i, column j.
func (t Transform) At(i, j int) float64 {
	return t.m.At(i, j)
}

// Apply transforms a point (w=1).
func (t Transform) Apply(p v3.Vec) v3.Vec {
	var out mat.VecDense
	out.MulVec(t.m, mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))
	return v3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// ApplyDirection transforms a direction (w=0).
func (t Transform) ApplyDirection(v v3.Vec) v3.Vec {
	var out mat.VecDense
	out.MulVec(t.m, mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, 0}))
	return v3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// ApplyAll transforms every point in ps into a new slice.
func (t Transform) ApplyAll(ps []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(ps))
	for i, p := range ps {
		out[i] = t.Apply(p)
	}
	return out
}

// Mul returns the composition t*o (o is applied first).
func (t Transform) Mul(o Transform) Transform {
	var m mat.Dense
	m.Mul(t.m, o.m)
	return Transform{m: &m}
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() (Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.m); err != nil {
		return Transform{}, fmt.Errorf("geom: invert transform: %w", err)
	}
	return Transform{m: &inv}, nil
}

func (t Transform) String() string {
	return fmt.Sprintf("%v", mat.Formatted(t.m, mat.Squeeze()))
}
