package geom

// Tolerance holds the epsilons used by the geometric predicates. Callers
// inject it so tests can probe precision boundaries directly.
type Tolerance struct {
	Orient   float64 // collinearity band of Orient2D and 2D point equality
	Coincide float64 // merge distance when walking split boundaries
	Singular float64 // cut-off for singular intersection systems
	Normal   float64 // relative cross-product magnitude accepted by FaceNormal
}

// DefaultTolerance matches the constants the tracer has always used.
var DefaultTolerance = Tolerance{
	Orient:   1e-7,
	Coincide: 1e-4,
	Singular: 1e-12,
	Normal:   1e-10,
}

// OrDefault returns t with every non-positive field replaced by its default.
func (t Tolerance) OrDefault() Tolerance {
	if t.Orient <= 0 {
		t.Orient = DefaultTolerance.Orient
	}
	if t.Coincide <= 0 {
		t.Coincide = DefaultTolerance.Coincide
	}
	if t.Singular <= 0 {
		t.Singular = DefaultTolerance.Singular
	}
	if t.Normal <= 0 {
		t.Normal = DefaultTolerance.Normal
	}
	return t
}
