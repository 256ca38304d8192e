// Package core defines the central Graph, Node, and Edge types for the
// routing engine and provides thread-safe primitives for loading,
// mutating, and querying the road topology.
//
// The Graph is the topology of record: it owns node and edge existence
// and the immutable base weight of every edge. Transient cost layers
// (congestion, blockages, timed signals) live outside this package and
// reference edges by their (From, To) key; base weights are never
// mutated after load or split time, so every cost layer is reversible.
//
// All core APIs use a single sync.RWMutex internally: mutations take
// the write lock, queries the read lock.
//
// Errors:
//
//	ErrLoad           - bulk load input is malformed or inconsistent.
//	ErrEmptyNodeID    - node ID is the empty string.
//	ErrNodeNotFound   - requested node does not exist.
//	ErrEdgeNotFound   - requested edge does not exist.
//	ErrDuplicateNode  - node with the same ID already exists.
//	ErrBadWeight      - negative base weight.
package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dynroute/dynroute/geom"
)

// Sentinel errors for core graph operations.
var (
	// ErrLoad indicates malformed or inconsistent base data; fatal to
	// initialization.
	ErrLoad = errors.New("core: invalid graph data")

	// ErrEmptyNodeID indicates that the provided node ID is empty.
	ErrEmptyNodeID = errors.New("core: node ID is empty")

	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrDuplicateNode indicates an insert collided with an existing node ID.
	ErrDuplicateNode = errors.New("core: duplicate node ID")

	// ErrBadWeight indicates a negative base weight.
	ErrBadWeight = errors.New("core: edge weight must be non-negative")
)

// NodeKind discriminates persistent nodes (loaded from the base
// dataset) from virtual nodes (created at runtime by splitting an
// edge). The discriminant is explicit; nothing in the engine parses a
// node ID to recover split parameters.
type NodeKind int

const (
	// NodePersistent is a node from the base dataset.
	NodePersistent NodeKind = iota

	// NodeVirtual is a synthetic node subdividing an existing edge.
	NodeVirtual
)

// SplitOrigin records the edge a virtual node subdivides and where
// along it the split sits. Ratio is measured from From toward To.
type SplitOrigin struct {
	From  string
	To    string
	Ratio float64
}

// Node is a graph vertex with a fixed planar coordinate.
// Nodes are never mutated after creation.
type Node struct {
	// ID uniquely identifies this node within its Graph.
	ID string

	// At is the node's planar coordinate.
	At geom.Point

	// Kind distinguishes persistent from virtual nodes.
	Kind NodeKind

	// Origin is the originating edge and split ratio for virtual
	// nodes; nil for persistent nodes.
	Origin *SplitOrigin
}

// EdgeKey identifies a directed edge by its ordered endpoints.
// The domain never creates parallel edges between the same ordered
// pair, so the pair is a sufficient key.
type EdgeKey struct {
	From string
	To   string
}

// Edge is a directed connection between two nodes. Weight is the
// immutable base traversal cost, set at load or at split time.
// Bidirectional roads are modeled as two edges.
type Edge struct {
	From   string
	To     string
	Weight float64
}

// Key returns the EdgeKey for this edge.
func (e *Edge) Key() EdgeKey { return EdgeKey{From: e.From, To: e.To} }

// NodeSpec is one node row of a bulk load.
type NodeSpec struct {
	ID string
	X  float64
	Y  float64
}

// EdgeSpec is one edge row of a bulk load.
type EdgeSpec struct {
	From   string
	To     string
	Weight float64
}

// Graph is the in-memory road topology.
//
// adjacency[from] is the set of direct successors of from; the edge
// itself is looked up in edges by its EdgeKey. No parallel edges:
// adding an existing (from, to) pair overwrites the prior weight.
type Graph struct {
	mu sync.RWMutex

	nodes     map[string]*Node
	edges     map[EdgeKey]*Edge
	adjacency map[string]map[string]struct{}
}

// NewGraph creates an empty Graph.
// Complexity: O(1).
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[EdgeKey]*Edge),
		adjacency: make(map[string]map[string]struct{}),
	}
}

// Load bulk-initializes the graph from external data, replacing any
// prior contents. It validates before committing, so a failed load
// leaves the graph unchanged.
//
// Fails with ErrLoad (wrapped with detail) on: empty or duplicate node
// IDs, edges referencing unknown nodes, or negative edge weights.
// Complexity: O(N + E).
func (g *Graph) Load(nodes []NodeSpec, edges []EdgeSpec) error {
	// 1) Validate nodes: non-empty, unique IDs.
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: empty node ID", ErrLoad)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %q", ErrLoad, n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	// 2) Validate edges: known endpoints, non-negative weights.
	for _, e := range edges {
		if _, ok := seen[e.From]; !ok {
			return fmt.Errorf("%w: edge %s→%s references unknown node %q", ErrLoad, e.From, e.To, e.From)
		}
		if _, ok := seen[e.To]; !ok {
			return fmt.Errorf("%w: edge %s→%s references unknown node %q", ErrLoad, e.From, e.To, e.To)
		}
		if e.Weight < 0 {
			return fmt.Errorf("%w: edge %s→%s weight=%v", ErrLoad, e.From, e.To, e.Weight)
		}
	}

	// 3) Commit: rebuild storage atomically under the write lock.
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*Node, len(nodes))
	g.edges = make(map[EdgeKey]*Edge, len(edges))
	g.adjacency = make(map[string]map[string]struct{}, len(nodes))

	for _, n := range nodes {
		g.nodes[n.ID] = &Node{ID: n.ID, At: geom.Point{X: n.X, Y: n.Y}, Kind: NodePersistent}
		g.adjacency[n.ID] = make(map[string]struct{})
	}
	for _, e := range edges {
		k := EdgeKey{From: e.From, To: e.To}
		g.edges[k] = &Edge{From: e.From, To: e.To, Weight: e.Weight}
		g.adjacency[e.From][e.To] = struct{}{}
	}

	return nil
}
