// Package dynroute is an in-memory routing engine for weighted graphs
// whose edge costs change while you route over them.
//
// What is dynroute?
//
//	A thread-safe engine that brings together:
//		• Core primitives: nodes with coordinates, directed weighted edges
//		• Dynamic effects: congestion zones, blockages, timed traffic signals
//		• Virtual nodes: split any edge at an arbitrary point, merge it back
//		• Shortest paths: A* with a Euclidean heuristic over live weights
//		• Multi-stop routes: waypoint ordering, exact or greedy
//
// Everything is organized under flat subpackages:
//
//	geom/     — points, segments, projections, distances
//	core/     — Graph, Node, Edge and thread-safe base topology
//	effects/  — effect registry, signal state machines, effective weights
//	virtual/  — edge splitting and virtual-node lifecycle
//	astar/    — A* shortest path with pluggable weight functions
//	routeopt/ — waypoint-order optimization (brute force / greedy)
//	engine/   — the facade tying the layers into one routing session
//
// Quick ASCII example:
//
//	    A───B───C───D        a line road; drop a congestion zone on B─C
//	                         and the A→D route gets costlier, drop a
//	                         blockage and it becomes unreachable.
//
// The cmd/dynroute binary runs YAML-described scenarios end to end.
package dynroute
