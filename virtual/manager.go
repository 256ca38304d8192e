// Package virtual inserts and removes temporary nodes that subdivide
// an existing edge at an arbitrary point, so a waypoint can sit
// anywhere along a road rather than only at intersections.
//
// The Manager is the only component permitted to mutate topology at
// runtime. An insert removes the split edge, adds the virtual node at
// the interpolated coordinate, and adds the two sub-edges whose base
// weights divide the original weight by the split ratio; when the
// road is two-way the reverse edge is split the same way. Removal
// reconstitutes the original edge(s) with their original base weights
// exactly (round-trip law).
//
// Virtual nodes referenced by an active waypoint are "pinned" and
// ineligible for removal; callers check IsRemovable first.
//
// Errors:
//
//	ErrBadRatio - split ratio outside the open interval (0,1).
//	core.ErrEdgeNotFound, core.ErrDuplicateNode propagate unchanged.
package virtual

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/geom"
)

// ErrBadRatio indicates a split ratio outside the open interval (0,1).
var ErrBadRatio = errors.New("virtual: split ratio must be in (0,1)")

// Default safety band: ratios closer to an endpoint than this snap to
// the endpoint itself instead of creating a near-degenerate split.
const (
	DefaultBandLow  = 0.05
	DefaultBandHigh = 0.95
)

// idRatioDecimals fixes the identifier precision so repeated inserts
// near the same point derive the same node ID.
const idRatioDecimals = 1000

// Reassigner redistributes effect membership when an edge is split or
// a split is undone. Implemented by effects.Registry.
type Reassigner interface {
	Reassign(old, repl []core.EdgeKey)
}

// Option configures a Manager.
type Option func(*Manager)

// WithRatioBand overrides the snapping band [low, high]. Ratios below
// low resolve to the from-endpoint, above high to the to-endpoint.
func WithRatioBand(low, high float64) Option {
	return func(m *Manager) {
		m.bandLow = low
		m.bandHigh = high
	}
}

// split records what an insert destroyed, so removal can restore it.
type split struct {
	node    string
	forward core.EdgeSpec
	reverse *core.EdgeSpec // nil for one-way roads
}

// Manager owns runtime topology mutation and virtual-node lifecycle.
type Manager struct {
	mu sync.Mutex

	g        *core.Graph
	effects  Reassigner // may be nil when no effect layer is attached
	bandLow  float64
	bandHigh float64

	splits map[string]split
	pins   map[string]int
}

// NewManager creates a Manager over g. The Reassigner keeps effect
// coverage consistent across splits; pass nil to skip that step.
func NewManager(g *core.Graph, effects Reassigner, opts ...Option) *Manager {
	m := &Manager{
		g:        g,
		effects:  effects,
		bandLow:  DefaultBandLow,
		bandHigh: DefaultBandHigh,
		splits:   make(map[string]split),
		pins:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// NodeID derives the deterministic identifier for a split of edge
// from → to at the given ratio (rounded to 3 decimals).
func NodeID(from, to string, ratio float64) string {
	return fmt.Sprintf("virtual:%s:%s:%.3f", from, to, roundRatio(ratio))
}

// Insert subdivides the edge from → to at ratio ∈ (0,1) and returns
// the resulting node ID.
//
// Ratios outside the safety band snap to the nearer existing endpoint:
// the returned ID is that endpoint and no topology changes. A ratio
// outside (0,1) entirely is rejected with ErrBadRatio.
//
// On success the original edge (and its reverse, when present) is
// replaced by two sub-edges each way, any effect membership of the
// split edges is redistributed to the sub-edges, and their effective
// weights are recomputed. The operation either fully succeeds or
// fails with no mutation.
//
// Fails with core.ErrEdgeNotFound if the edge does not exist and
// core.ErrDuplicateNode if a node with the derived ID already exists.
// Complexity: O(1) topology work + effect redistribution.
func (m *Manager) Insert(from, to string, ratio float64) (string, error) {
	if ratio <= 0 || ratio >= 1 {
		return "", ErrBadRatio
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 1) Validate the edge before anything else.
	fwd, err := m.g.Edge(from, to)
	if err != nil {
		return "", err
	}

	// 2) Snap clicks too close to an endpoint to the real node.
	if ratio < m.bandLow {
		return from, nil
	}
	if ratio > m.bandHigh {
		return to, nil
	}

	// 3) Reject identifier collisions; callers should check first.
	id := NodeID(from, to, ratio)
	if m.g.HasNode(id) {
		return "", core.ErrDuplicateNode
	}

	fromNode, err := m.g.Node(from)
	if err != nil {
		return "", err
	}
	toNode, err := m.g.Node(to)
	if err != nil {
		return "", err
	}

	rec := split{
		node:    id,
		forward: core.EdgeSpec{From: from, To: to, Weight: fwd.Weight},
	}
	if rev, err := m.g.Edge(to, from); err == nil {
		rec.reverse = &core.EdgeSpec{From: to, To: from, Weight: rev.Weight}
	}

	// 4) Mutate: all inputs validated, so none of these can fail.
	node := &core.Node{
		ID:     id,
		At:     geom.Lerp(fromNode.At, toNode.At, ratio),
		Kind:   core.NodeVirtual,
		Origin: &core.SplitOrigin{From: from, To: to, Ratio: ratio},
	}
	if err = m.g.AddNode(node); err != nil {
		return "", err
	}

	_ = m.g.RemoveEdge(from, to)
	_ = m.g.AddEdge(from, id, fwd.Weight*ratio)
	_ = m.g.AddEdge(id, to, fwd.Weight*(1-ratio))
	m.reassign(
		[]core.EdgeKey{{From: from, To: to}},
		[]core.EdgeKey{{From: from, To: id}, {From: id, To: to}},
	)

	if rec.reverse != nil {
		_ = m.g.RemoveEdge(to, from)
		_ = m.g.AddEdge(to, id, rec.reverse.Weight*(1-ratio))
		_ = m.g.AddEdge(id, from, rec.reverse.Weight*ratio)
		m.reassign(
			[]core.EdgeKey{{From: to, To: from}},
			[]core.EdgeKey{{From: to, To: id}, {From: id, To: from}},
		)
	}

	m.splits[id] = rec

	return id, nil
}

// Remove undoes the split that created nodeID: deletes the virtual
// node with its sub-edges and reconstitutes the original edge(s) with
// their original base weights. Reports whether a removal happened.
//
// Persistent nodes, pinned virtual nodes, and unknown IDs are
// no-ops returning false; callers check IsRemovable first.
// Complexity: O(deg) topology work + effect redistribution.
func (m *Manager) Remove(nodeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.splits[nodeID]
	if !ok || m.pins[nodeID] > 0 {
		return false
	}

	// Deleting the node removes all four sub-edges with it.
	if err := m.g.RemoveNode(nodeID); err != nil {
		return false
	}

	m.restore(rec.forward, nodeID)
	if rec.reverse != nil {
		m.restore(*rec.reverse, nodeID)
	}

	delete(m.splits, nodeID)
	delete(m.pins, nodeID)

	return true
}

// Pin marks nodeID as in active use (referenced by a waypoint or an
// endpoint). Pins are counted, so multiple references stack.
// Pinning a non-virtual node is a harmless no-op.
func (m *Manager) Pin(nodeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.splits[nodeID]; ok {
		m.pins[nodeID]++
	}
}

// Unpin releases one pin on nodeID.
func (m *Manager) Unpin(nodeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pins[nodeID] > 0 {
		m.pins[nodeID]--
	}
}

// IsRemovable reports whether nodeID is an unpinned virtual node
// managed here. Persistent and unknown nodes are never removable.
func (m *Manager) IsRemovable(nodeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.splits[nodeID]

	return ok && m.pins[nodeID] == 0
}

// IsVirtual reports whether nodeID was created by this manager.
func (m *Manager) IsVirtual(nodeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.splits[nodeID]

	return ok
}

// restore reconstitutes one original edge after its split node was
// deleted and moves effect membership off the dead sub-edges. When an
// original endpoint was itself a virtual node already removed (nested
// splits undone out of order), the edge cannot come back; membership
// of the sub-edges is dropped instead of pointing at an edge that was
// never recreated.
func (m *Manager) restore(orig core.EdgeSpec, nodeID string) {
	old := []core.EdgeKey{{From: orig.From, To: nodeID}, {From: nodeID, To: orig.To}}

	if err := m.g.AddEdge(orig.From, orig.To, orig.Weight); err != nil {
		m.reassign(old, nil)

		return
	}
	m.reassign(old, []core.EdgeKey{{From: orig.From, To: orig.To}})
}

// reassign forwards membership redistribution to the effect layer.
func (m *Manager) reassign(old, repl []core.EdgeKey) {
	if m.effects != nil {
		m.effects.Reassign(old, repl)
	}
}

// roundRatio rounds to the identifier precision (3 decimals).
func roundRatio(r float64) float64 {
	return math.Round(r*idRatioDecimals) / idRatioDecimals
}
