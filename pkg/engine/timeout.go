package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/beamtrace/pkg/graph"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// errStopped unwinds a scene evaluation that timed out or was superseded.
var errStopped = errors.New("scene evaluation stopped")

type evalResult struct {
	graph  *graph.SceneGraph
	errors []EvalError
	err    error
}

// waitWithTimeout returns the scene from ch unless ctx expires first or
// current reports that a newer evaluation has started.
func waitWithTimeout(
	ctx context.Context,
	ch <-chan evalResult,
	timeout time.Duration,
	current func() bool,
) (*graph.SceneGraph, []EvalError, error) {
	select {
	case res := <-ch:
		if !current() {
			return nil, nil, fmt.Errorf("scene evaluation superseded by newer request")
		}
		if errors.Is(res.err, errStopped) {
			return nil, nil, fmt.Errorf("scene evaluation timed out after %s", timeout)
		}
		return res.graph, res.errors, res.err

	case <-ctx.Done():
		return nil, nil, fmt.Errorf("scene evaluation timed out after %s", timeout)
	}
}
