// Package routeopt orders intermediate waypoints between a fixed
// start and end to minimize total path cost.
//
// The optimizer is a pure client of path search: every leg cost comes
// from the supplied CostFunc (which the engine backs with A* over
// live effective weights, never Euclidean distance), and the
// optimizer itself never touches the graph. Because it does not
// mutate anything, cancelling an in-flight optimization simply
// discards the computation.
//
// Policy: for n ≤ BruteForceMax intermediate waypoints (default 7)
// all n! permutations are evaluated exactly, ties broken by first
// occurrence in lexicographic enumeration order; beyond that a greedy
// nearest-unvisited heuristic runs with no optimality guarantee,
// backing out of picks that strand the remaining waypoints so it
// still finds a feasible order whenever one exists. The Result
// reports which mode ran so callers can tell.
//
// A leg cost of math.Inf(1) means the leg is unreachable; any order
// containing one is excluded from consideration. If no candidate
// order is feasible, the optimizer fails with ErrNoFeasibleOrder.
package routeopt

import (
	"context"
	"errors"
	"math"
)

// Infeasible is the leg cost meaning "no path": orders containing
// such a leg are excluded, mirroring the missing-edge convention of
// distance-matrix TSP solvers.
var Infeasible = math.Inf(1)

// Sentinel errors returned by Optimize.
var (
	// ErrNoFeasibleOrder indicates that no waypoint permutation has
	// finite total cost.
	ErrNoFeasibleOrder = errors.New("routeopt: no feasible waypoint order")

	// ErrNilCostFunc indicates a nil CostFunc.
	ErrNilCostFunc = errors.New("routeopt: cost function is nil")

	// ErrEmptyEndpoint indicates an empty start or end ID.
	ErrEmptyEndpoint = errors.New("routeopt: start and end IDs must be non-empty")
)

// CostFunc returns the cost of traveling from one node to another
// under current weights. Return Infeasible for an unreachable leg;
// return an error only for faults (including context cancellation),
// which aborts the whole optimization.
type CostFunc func(ctx context.Context, from, to string) (float64, error)

// Mode identifies which optimization policy produced a Result.
type Mode int

const (
	// ModeExact means every permutation was evaluated; the result is
	// optimal.
	ModeExact Mode = iota

	// ModeGreedy means the nearest-unvisited heuristic ran; the
	// result is feasible but not necessarily optimal.
	ModeGreedy
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	if m == ModeGreedy {
		return "greedy"
	}

	return "exact"
}

// Options configures Optimize.
//
// BruteForceMax – largest waypoint count still solved exactly.
// Must be ≥ 0. Default 7 (7! = 5040 permutations).
type Options struct {
	BruteForceMax int
}

// Option is a functional option for configuring Optimize.
type Option func(*Options)

// WithBruteForceMax overrides the exact-search cutoff.
// Panics on a negative value.
func WithBruteForceMax(n int) Option {
	return func(o *Options) {
		if n < 0 {
			panic("routeopt: BruteForceMax must be non-negative")
		}
		o.BruteForceMax = n
	}
}

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{BruteForceMax: 7}
}

// Result is the outcome of one optimization.
type Result struct {
	// Order is the visiting order as indices into the input waypoint
	// slice.
	Order []int

	// Cost is the total cost start → waypoints (in Order) → end.
	Cost float64

	// Mode reports which policy ran.
	Mode Mode
}
