package beam

import "github.com/chazu/beamtrace/pkg/geom"

// Config holds the numeric knobs of a beam.
type Config struct {
	Tolerance geom.Tolerance

	// NearDistance is the image-plane depth of beams that do not start on
	// a face.
	NearDistance float64

	// FocalNudge replaces a zero depth during perspective division.
	FocalNudge float64
}

// DefaultConfig is used for any field left at zero.
var DefaultConfig = Config{
	Tolerance:    geom.DefaultTolerance,
	NearDistance: 0.01,
	FocalNudge:   1e-5,
}

// OrDefault fills unset fields from DefaultConfig.
func (c Config) OrDefault() Config {
	c.Tolerance = c.Tolerance.OrDefault()
	if c.NearDistance <= 0 {
		c.NearDistance = DefaultConfig.NearDistance
	}
	if c.FocalNudge <= 0 {
		c.FocalNudge = DefaultConfig.FocalNudge
	}
	return c
}
