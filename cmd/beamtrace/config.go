package main

import (
	"fmt"
	"os"

	"github.com/chazu/beamtrace/pkg/pipeline"
	"gopkg.in/gcfg.v1"
)

// ConfigEnv names the environment variable consulted when -config is not
// given.
const ConfigEnv = "BEAMTRACE_CONFIG"

// ExampleConfig documents every setting the [trace] section accepts.
const ExampleConfig = `[trace]

# Highest reflection order to trace. 0 traces cast beams only.
max-order = 3

# Image-plane depth of beams that do not start on a face.
# near-distance = 0.01

# Orientation tolerance of the tracer.
# epsilon = 1e-7

# depth-first or breadth-first.
# traversal = depth-first

# Faces of the cube around the source that seed beams. Repeat to add more.
# roots = front
# roots = back

# Stop after this many beams. 0 is unlimited.
# max-beams = 100000
`

// traceSection is the [trace] section. Sentinel defaults mark settings the
// file leaves out; every sentinel is also an invalid setting.
type traceSection struct {
	MaxOrder     int      `gcfg:"max-order"`
	NearDistance float64  `gcfg:"near-distance"`
	Epsilon      float64  `gcfg:"epsilon"`
	Traversal    string   `gcfg:"traversal"`
	Roots        []string `gcfg:"roots"`
	MaxBeams     int      `gcfg:"max-beams"`
}

type fileConfig struct {
	Trace traceSection
}

func newFileConfig() *fileConfig {
	return &fileConfig{Trace: traceSection{MaxOrder: -1, MaxBeams: -1}}
}

func (c *fileConfig) overrides() pipeline.Overrides {
	var ov pipeline.Overrides
	t := c.Trace
	if t.MaxOrder >= 0 {
		ov.MaxOrder = &t.MaxOrder
	}
	if t.NearDistance > 0 {
		ov.NearDistance = &t.NearDistance
	}
	if t.Epsilon > 0 {
		ov.Epsilon = &t.Epsilon
	}
	if t.MaxBeams >= 0 {
		ov.MaxBeams = &t.MaxBeams
	}
	ov.Traversal = t.Traversal
	ov.Roots = t.Roots
	return ov
}

// parseConfig reads a config file body.
func parseConfig(body string) (pipeline.Overrides, error) {
	c := newFileConfig()
	if err := gcfg.ReadStringInto(c, body); err != nil {
		return pipeline.Overrides{}, fmt.Errorf("config: %w", err)
	}
	return c.overrides(), nil
}

// loadConfig reads the config file at path. An empty path falls back to
// $BEAMTRACE_CONFIG, and no file at all yields empty overrides.
func loadConfig(path string) (pipeline.Overrides, string, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		return pipeline.Overrides{}, "", nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Overrides{}, path, fmt.Errorf("config: %w", err)
	}
	ov, err := parseConfig(string(body))
	if err != nil {
		return pipeline.Overrides{}, path, fmt.Errorf("%s: %w", path, err)
	}
	return ov, path, nil
}
