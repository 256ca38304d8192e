// Package engine is the routing engine facade: it owns the graph, the
// effect layer, the virtual-node manager, and the waypoint list, and
// exposes the operations the boundary (UI, CLI, server) calls.
//
// Concurrency model: public mutations are serialized behind an
// exclusive lock; ComputeRoute runs under a shared lock, so searches
// never observe a half-applied mutation. Advance deliberately bypasses
// the engine lock (signal clock advancement must not be blocked
// behind a long brute-force optimization) and relies on the effect
// registry's own locking instead. Long optimizations are cancelable
// through their context; cancellation discards the computation without
// corrupting graph state, since the optimizer never mutates anything.
//
// Errors:
//
//	ErrNoEndpoints  - ComputeRoute called before start and end are set.
//	ErrSameEndpoint - start and end resolve to the same node.
//	ErrBadIndex     - waypoint index out of range.
//	ErrNoNearbyNode - no node or edge within the snap radii of a point.
package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/dynroute/dynroute/effects"
)

// Sentinel errors for engine operations.
var (
	// ErrNoEndpoints indicates a route was requested before both
	// start and end were set.
	ErrNoEndpoints = errors.New("engine: start and end must be set")

	// ErrSameEndpoint indicates start and end resolve to the same node.
	ErrSameEndpoint = errors.New("engine: start and end must differ")

	// ErrBadIndex indicates a waypoint index out of range.
	ErrBadIndex = errors.New("engine: waypoint index out of range")

	// ErrNoNearbyNode indicates no node or edge lies within the snap
	// radii of the given point.
	ErrNoNearbyNode = errors.New("engine: no node or edge near point")
)

// Config holds the engine's tunable constants. All distances are in
// the coordinate units of the loaded graph; defaults match the
// reference dataset's pixel domain.
type Config struct {
	// Effects configures the effect layer (proximity threshold,
	// congestion penalties, signal rates).
	Effects effects.Config

	// NodeSnapRadius: a resolved point closer than this to an
	// existing node snaps to that node.
	NodeSnapRadius float64

	// EdgeSnapRadius: failing a node snap, a point closer than this
	// to an edge becomes a virtual node on it.
	EdgeSnapRadius float64

	// RatioBandLow, RatioBandHigh: splits outside this band snap to
	// the nearer endpoint instead of creating a virtual node.
	RatioBandLow  float64
	RatioBandHigh float64

	// BruteForceMax is the largest waypoint count the optimizer still
	// solves exactly.
	BruteForceMax int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Effects:        effects.DefaultConfig(),
		NodeSnapRadius: 15,
		EdgeSnapRadius: 25,
		RatioBandLow:   0.05,
		RatioBandHigh:  0.95,
		BruteForceMax:  7,
	}
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger attaches a structured logger. The default is a no-op
// logger, so the library stays silent unless asked.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
