// Package engine: endpoint and waypoint list management.
//
// Start and end hold fixed first/last positions; intermediate
// waypoints form an ordered list the boundary can edit freely. Every
// reference to a virtual node pins it against cleanup; dropping the
// last reference removes the node and reconstitutes its edge.

package engine

import (
	"go.uber.org/zap"

	"github.com/dynroute/dynroute/geom"
)

// SetStart sets the route start to an existing node.
// Fails with core.ErrNodeNotFound for an unknown ID and
// ErrSameEndpoint when the node is the current end.
func (e *Engine) SetStart(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.setEndpoint(&e.start, nodeID, e.end)
}

// SetEnd sets the route end to an existing node.
// Fails with core.ErrNodeNotFound for an unknown ID and
// ErrSameEndpoint when the node is the current start.
func (e *Engine) SetEnd(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.setEndpoint(&e.end, nodeID, e.start)
}

// SetStartEnd sets both endpoints in one call. The pair is validated
// up front, so a bad end never leaves a half-applied start.
func (e *Engine) SetStartEnd(startID, endID string) error {
	if startID == endID {
		return ErrSameEndpoint
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.graph.Node(startID); err != nil {
		return err
	}
	if _, err := e.graph.Node(endID); err != nil {
		return err
	}

	if err := e.setEndpoint(&e.start, startID, e.end); err != nil {
		return err
	}

	return e.setEndpoint(&e.end, endID, e.start)
}

// setEndpoint validates and swaps one endpoint slot. Caller holds e.mu.
func (e *Engine) setEndpoint(slot *string, nodeID, other string) error {
	if _, err := e.graph.Node(nodeID); err != nil {
		return err
	}
	if nodeID == other {
		return ErrSameEndpoint
	}

	old := *slot
	*slot = nodeID
	e.retainNode(nodeID)
	if old != "" && old != nodeID {
		e.releaseNode(old)
	}

	return nil
}

// SetStartAt resolves a point (node snap or virtual-node insertion)
// and sets it as the start.
func (e *Engine) SetStartAt(p geom.Point) (string, error) {
	id, err := e.ResolvePoint(p)
	if err != nil {
		return "", err
	}

	return id, e.SetStart(id)
}

// SetEndAt resolves a point and sets it as the end.
func (e *Engine) SetEndAt(p geom.Point) (string, error) {
	id, err := e.ResolvePoint(p)
	if err != nil {
		return "", err
	}

	return id, e.SetEnd(id)
}

// ClearStart drops the start endpoint.
func (e *Engine) ClearStart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseNode(e.start)
	e.start = ""
}

// ClearEnd drops the end endpoint.
func (e *Engine) ClearEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseNode(e.end)
	e.end = ""
}

// Start returns the current start node ID ("" when unset).
func (e *Engine) Start() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.start
}

// End returns the current end node ID ("" when unset).
func (e *Engine) End() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.end
}

// AddWaypoint appends an existing node to the waypoint list.
// Fails with core.ErrNodeNotFound for an unknown ID.
func (e *Engine) AddWaypoint(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.graph.Node(nodeID); err != nil {
		return err
	}

	e.waypoints = append(e.waypoints, nodeID)
	e.retainNode(nodeID)

	e.log.Debug("waypoint added",
		zap.String("node", nodeID),
		zap.Int("count", len(e.waypoints)))

	return nil
}

// AddWaypointAt resolves a point and appends it as a waypoint.
func (e *Engine) AddWaypointAt(p geom.Point) (string, error) {
	id, err := e.ResolvePoint(p)
	if err != nil {
		return "", err
	}

	return id, e.AddWaypoint(id)
}

// RemoveWaypoint deletes the waypoint at index. A virtual node with
// no remaining references is cleaned up, reconstituting its edge.
// Fails with ErrBadIndex.
func (e *Engine) RemoveWaypoint(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.waypoints) {
		return ErrBadIndex
	}

	id := e.waypoints[index]
	e.waypoints = append(e.waypoints[:index], e.waypoints[index+1:]...)
	e.releaseNode(id)

	return nil
}

// ReorderWaypoint moves the waypoint at index to newIndex, shifting
// the ones between. Fails with ErrBadIndex.
func (e *Engine) ReorderWaypoint(index, newIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.waypoints) ||
		newIndex < 0 || newIndex >= len(e.waypoints) {
		return ErrBadIndex
	}
	if index == newIndex {
		return nil
	}

	id := e.waypoints[index]
	rest := append(e.waypoints[:index], e.waypoints[index+1:]...)
	e.waypoints = append(rest[:newIndex], append([]string{id}, rest[newIndex:]...)...)

	return nil
}

// ClearWaypoints empties the waypoint list, cleaning up any virtual
// nodes it was the last reference to. Endpoints are untouched.
func (e *Engine) ClearWaypoints() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.waypoints {
		e.releaseNode(id)
	}
	e.waypoints = nil
}

// Waypoints returns a copy of the current waypoint list in order.
func (e *Engine) Waypoints() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]string(nil), e.waypoints...)
}

// OptimizeOrder toggles whether ComputeRoute reorders waypoints via
// the optimizer or follows the manual list order.
func (e *Engine) OptimizeOrder(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.optimize = enabled
}

// OptimizeEnabled reports the current toggle state.
func (e *Engine) OptimizeEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.optimize
}
