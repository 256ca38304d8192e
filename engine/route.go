// Package engine: route computation.
//
// A Route is always derived, never stored: the boundary calls
// ComputeRoute after any state change it cares about, and the engine
// rebuilds the result from live topology and weights.

package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dynroute/dynroute/astar"
	"github.com/dynroute/dynroute/routeopt"
)

// Route is one computed multi-stop route.
type Route struct {
	// Nodes is the full node sequence from start to end, legs
	// stitched together without duplicate junctions.
	Nodes []string

	// Cost is the total effective-weight cost.
	Cost float64

	// Order is the waypoint visiting order actually used.
	Order []string

	// Optimized reports whether the optimizer reordered the
	// waypoints; Mode then tells which policy ran.
	Optimized bool
	Mode      routeopt.Mode
}

// ComputeRoute computes the current route start → waypoints → end
// over live effective weights.
//
// With optimization enabled and more than one waypoint, the waypoint
// order comes from the optimizer (exact or greedy; see Route.Mode).
// Otherwise the manual list order is followed.
//
// Fails with ErrNoEndpoints before both endpoints are set, with
// astar.ErrNotReachable when a leg has no path, and with
// routeopt.ErrNoFeasibleOrder when no waypoint order is feasible.
// The context cancels a long optimization; state is never mutated.
func (e *Engine) ComputeRoute(ctx context.Context) (Route, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.start == "" || e.end == "" {
		return Route{}, ErrNoEndpoints
	}

	route := Route{Order: append([]string(nil), e.waypoints...)}

	// 1) Decide the visiting order.
	if e.optimize && len(e.waypoints) > 1 {
		res, err := routeopt.Optimize(ctx, e.start, e.end, e.waypoints, e.legCost,
			routeopt.WithBruteForceMax(e.cfg.BruteForceMax))
		if err != nil {
			return Route{}, err
		}
		route.Order = route.Order[:0]
		for _, idx := range res.Order {
			route.Order = append(route.Order, e.waypoints[idx])
		}
		route.Optimized = true
		route.Mode = res.Mode
	}

	// 2) Stitch the legs.
	stops := make([]string, 0, len(route.Order)+2)
	stops = append(stops, e.start)
	stops = append(stops, route.Order...)
	stops = append(stops, e.end)

	for i := 0; i+1 < len(stops); i++ {
		if err := ctx.Err(); err != nil {
			return Route{}, err
		}
		leg, err := astar.FindPath(e.graph, stops[i], stops[i+1],
			astar.WithWeightFunc(e.registry.WeightFn()))
		if err != nil {
			return Route{}, err
		}

		if i == 0 {
			route.Nodes = append(route.Nodes, leg.Path...)
		} else {
			// Skip the shared junction node.
			route.Nodes = append(route.Nodes, leg.Path[1:]...)
		}
		route.Cost += leg.Cost
	}

	e.log.Debug("route computed",
		zap.Int("stops", len(stops)),
		zap.Float64("cost", route.Cost),
		zap.Bool("optimized", route.Optimized))

	return route, nil
}

// legCost adapts A* to the optimizer's cost function: an unreachable
// leg is Infeasible rather than an error, so the optimizer can
// exclude orders containing it.
func (e *Engine) legCost(ctx context.Context, from, to string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := astar.FindPath(e.graph, from, to,
		astar.WithWeightFunc(e.registry.WeightFn()))
	if errors.Is(err, astar.ErrNotReachable) {
		return routeopt.Infeasible, nil
	}
	if err != nil {
		return 0, err
	}

	return res.Cost, nil
}
