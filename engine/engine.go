package engine

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/effects"
	"github.com/dynroute/dynroute/geom"
	"github.com/dynroute/dynroute/virtual"
)

// Engine wires the routing core together and owns all route state:
// start, end, the ordered waypoint list, and the optimize toggle.
type Engine struct {
	mu  sync.RWMutex
	cfg Config
	log *zap.Logger

	graph    *core.Graph
	registry *effects.Registry
	nodes    *virtual.Manager

	start     string
	end       string
	waypoints []string
	optimize  bool
}

// New creates an engine over an empty graph. Call Load before routing.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg: DefaultConfig(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.graph = core.NewGraph()
	e.rebuildLayers()

	return e
}

// Load bulk-initializes the base topology, discarding all prior route
// state: effects, virtual nodes, waypoints, and endpoints. A failed
// load leaves everything unchanged.
// Fails with core.ErrLoad on malformed or inconsistent data.
func (e *Engine) Load(nodes []core.NodeSpec, edges []core.EdgeSpec) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.graph.Load(nodes, edges); err != nil {
		return err
	}

	e.rebuildLayers()
	e.start = ""
	e.end = ""
	e.waypoints = nil

	e.log.Info("graph loaded",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)))

	return nil
}

// rebuildLayers recreates the effect registry and virtual-node
// manager, dropping any state that referenced the old topology.
func (e *Engine) rebuildLayers() {
	e.registry = effects.NewRegistry(e.graph, e.cfg.Effects)
	e.nodes = virtual.NewManager(e.graph, e.registry,
		virtual.WithRatioBand(e.cfg.RatioBandLow, e.cfg.RatioBandHigh))
}

// Graph exposes the underlying topology for read-only inspection.
func (e *Engine) Graph() *core.Graph { return e.graph }

// NearestNode returns the persistent node closest to p, at any
// distance. Virtual nodes are skipped: this is the resolver for
// named-place coordinates, which should always land on the base
// network. Fails with ErrNoNearbyNode on an empty graph.
// Complexity: O(V).
func (e *Engine) NearestNode(p geom.Point) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	best := ""
	bestDist := 0.0
	for _, id := range e.graph.NodeIDs() {
		n, err := e.graph.Node(id)
		if err != nil {
			continue
		}
		if n.Kind != core.NodePersistent {
			continue
		}
		if d := geom.Dist(p, n.At); best == "" || d < bestDist {
			best = id
			bestDist = d
		}
	}
	if best == "" {
		return "", ErrNoNearbyNode
	}

	return best, nil
}

// ResolvePoint maps an arbitrary point to a node ID:
//
//  1. The nearest node (persistent or virtual) within NodeSnapRadius
//     wins outright.
//  2. Otherwise the point is projected onto the nearest edge within
//     EdgeSnapRadius and a virtual node is inserted there (ratios
//     near an endpoint snap to that endpoint; a projection that
//     collides with an existing virtual node reuses it).
//  3. Outside both radii: ErrNoNearbyNode.
//
// Complexity: O(V + E).
func (e *Engine) ResolvePoint(p geom.Point) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1) Node snap.
	best := ""
	bestDist := 0.0
	for _, id := range e.graph.NodeIDs() {
		n, err := e.graph.Node(id)
		if err != nil {
			continue
		}
		if d := geom.Dist(p, n.At); best == "" || d < bestDist {
			best = id
			bestDist = d
		}
	}
	if best != "" && bestDist <= e.cfg.NodeSnapRadius {
		return best, nil
	}

	// 2) Edge snap. Edges() is sorted, so equal distances resolve to
	// the lexicographically first edge deterministically.
	var (
		bestEdge  *core.Edge
		bestRatio float64
		edgeDist  = e.cfg.EdgeSnapRadius
		found     bool
	)
	for _, edge := range e.graph.Edges() {
		from, err := e.graph.Node(edge.From)
		if err != nil {
			continue
		}
		to, err := e.graph.Node(edge.To)
		if err != nil {
			continue
		}
		ratio, closest := geom.ProjectOnSegment(p, geom.Segment{A: from.At, B: to.At})
		if d := geom.Dist(p, closest); d < edgeDist || (!found && d <= edgeDist) {
			bestEdge = edge
			bestRatio = ratio
			edgeDist = d
			found = true
		}
	}
	if !found {
		return "", ErrNoNearbyNode
	}

	id, err := e.nodes.Insert(bestEdge.From, bestEdge.To, bestRatio)
	if errors.Is(err, core.ErrDuplicateNode) {
		// Same spot clicked again: reuse the existing virtual node.
		return virtual.NodeID(bestEdge.From, bestEdge.To, bestRatio), nil
	}
	if errors.Is(err, virtual.ErrBadRatio) {
		// Projection landed exactly on an endpoint.
		if bestRatio <= 0 {
			return bestEdge.From, nil
		}

		return bestEdge.To, nil
	}
	if err != nil {
		return "", err
	}

	e.log.Debug("point resolved",
		zap.String("node", id),
		zap.Float64("ratio", bestRatio))

	return id, nil
}

// releaseNode unpins id and deletes it when it is an unpinned virtual
// node no longer referenced by anything. Caller holds e.mu.
func (e *Engine) releaseNode(id string) {
	if id == "" {
		return
	}
	e.nodes.Unpin(id)
	if e.nodes.IsRemovable(id) {
		e.nodes.Remove(id)
	}
}

// retainNode pins id so virtual-node cleanup cannot reclaim it while
// an endpoint or waypoint references it. Caller holds e.mu.
func (e *Engine) retainNode(id string) {
	e.nodes.Pin(id)
}
