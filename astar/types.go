// Package astar implements A* shortest-path search over the routing
// graph's directed edges using effective weights.
//
// The search reads topology and weights on demand through the graph
// and the configured weight function; it never caches a snapshot
// across calls, so every search observes the latest effect state. The
// heuristic is the straight-line (Euclidean) distance between node
// coordinates, admissible in the domain's unit system because effects
// only add cost, never subtract it (a blockage removes reachability
// rather than reducing cost).
//
// Edges whose effective weight reaches the impassable threshold are
// excluded from expansion entirely: equivalent to removal, not a
// large-but-finite cost, so blocked graphs report NotReachable instead
// of a false "very expensive but reachable" result.
//
// Errors (sentinel):
//
//	ErrNotReachable   - no path exists under current weights. This is
//	                    a normal, expected outcome, not a fault.
//	ErrNilGraph       - the provided graph pointer is nil.
//	ErrEmptyEndpoint  - start or goal ID is empty.
//	ErrNodeNotFound   - start or goal does not exist in the graph.
//	ErrNegativeWeight - the weight function produced a negative cost.
package astar

import (
	"errors"
	"math"

	"github.com/dynroute/dynroute/core"
)

// Sentinel errors returned by FindPath.
var (
	// ErrNotReachable indicates the goal cannot be reached under the
	// current weights. Expected outcome; always surfaced for display.
	ErrNotReachable = errors.New("astar: goal not reachable")

	// ErrNilGraph indicates a nil *core.Graph was passed to FindPath.
	ErrNilGraph = errors.New("astar: graph is nil")

	// ErrEmptyEndpoint indicates an empty start or goal ID.
	ErrEmptyEndpoint = errors.New("astar: start and goal IDs must be non-empty")

	// ErrNodeNotFound indicates the start or goal node does not exist.
	ErrNodeNotFound = errors.New("astar: endpoint node not found in graph")

	// ErrNegativeWeight indicates the weight function produced a
	// negative edge cost.
	ErrNegativeWeight = errors.New("astar: negative edge weight encountered")
)

// WeightFunc returns the traversal cost of an edge. The engine plugs
// in the effect layer's live effective-weight function here; the
// default reads the base weight.
type WeightFunc func(e *core.Edge) float64

// Options configures a single search.
//
// Weight       – edge cost function (default: base weight).
// InfThreshold – edges with cost ≥ this are excluded from expansion.
//
//	Must be > 0. Default is math.MaxFloat64, which matches
//	the effect layer's Impassable sentinel.
type Options struct {
	Weight       WeightFunc
	InfThreshold float64
}

// Option is a functional option for configuring FindPath.
type Option func(*Options)

// WithWeightFunc sets the edge cost function.
func WithWeightFunc(fn WeightFunc) Option {
	return func(o *Options) {
		if fn != nil {
			o.Weight = fn
		}
	}
}

// WithInfThreshold sets the impassable cutoff: edges with cost ≥
// threshold are skipped entirely. Panics on a non-positive value, the
// same contract as an invalid functional option elsewhere.
func WithInfThreshold(threshold float64) Option {
	return func(o *Options) {
		if threshold <= 0 {
			panic("astar: InfThreshold must be positive")
		}
		o.InfThreshold = threshold
	}
}

// DefaultOptions returns the baseline configuration: base weights,
// impassable at math.MaxFloat64.
func DefaultOptions() Options {
	return Options{
		Weight:       func(e *core.Edge) float64 { return e.Weight },
		InfThreshold: math.MaxFloat64,
	}
}

// Result is a computed path and its total cost.
type Result struct {
	// Path is the ordered node sequence from start to goal inclusive.
	Path []string

	// Cost is the sum of effective weights along Path.
	Cost float64
}
