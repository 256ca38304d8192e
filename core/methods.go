// Package core: Graph method implementations.
//
// This file provides thread-safe operations for node and edge
// management on the Graph type defined in types.go. Runtime topology
// mutation (AddNode/RemoveNode/AddEdge/RemoveEdge) is reserved for the
// virtual-node manager; every other component treats topology as
// read-only between its calls.

package core

import "sort"

// AddNode inserts n into the graph.
// Returns ErrEmptyNodeID for an empty ID and ErrDuplicateNode if a
// node with the same ID already exists.
// Complexity: O(1) amortized.
func (g *Graph) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return ErrEmptyNodeID
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNode
	}
	g.nodes[n.ID] = n
	g.adjacency[n.ID] = make(map[string]struct{})

	return nil
}

// RemoveNode deletes the node with the given ID and all incident
// edges (both outgoing and incoming).
// Returns ErrNodeNotFound if the node does not exist.
// Complexity: O(deg(v)) via adjacency, plus O(V) to find predecessors.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return ErrNodeNotFound
	}

	// Outgoing edges.
	for to := range g.adjacency[id] {
		delete(g.edges, EdgeKey{From: id, To: to})
	}
	delete(g.adjacency, id)

	// Incoming edges.
	for from, succ := range g.adjacency {
		if _, ok := succ[id]; ok {
			delete(succ, id)
			delete(g.edges, EdgeKey{From: from, To: id})
		}
	}

	delete(g.nodes, id)

	return nil
}

// HasNode reports whether a node with the given ID exists.
// Complexity: O(1).
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]

	return ok
}

// Node returns the node with the given ID.
// The returned value is shared and must be treated as read-only.
// Returns ErrNodeNotFound if absent.
// Complexity: O(1).
func (g *Graph) Node(id string) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}

	return n, nil
}

// AddEdge creates a directed edge from → to with the given base
// weight. Both endpoints must already exist. Adding an edge for an
// existing (from, to) pair overwrites the prior base weight rather
// than creating a parallel edge.
//
// Returns ErrEmptyNodeID, ErrNodeNotFound, or ErrBadWeight.
// Complexity: O(1).
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if from == "" || to == "" {
		return ErrEmptyNodeID
	}
	if weight < 0 {
		return ErrBadWeight
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[from]; !ok {
		return ErrNodeNotFound
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrNodeNotFound
	}

	g.edges[EdgeKey{From: from, To: to}] = &Edge{From: from, To: to, Weight: weight}
	g.adjacency[from][to] = struct{}{}

	return nil
}

// RemoveEdge deletes the directed edge from → to.
// Returns ErrEdgeNotFound if absent.
// Complexity: O(1).
func (g *Graph) RemoveEdge(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := EdgeKey{From: from, To: to}
	if _, ok := g.edges[k]; !ok {
		return ErrEdgeNotFound
	}
	delete(g.edges, k)
	delete(g.adjacency[from], to)

	return nil
}

// Edge returns the directed edge from → to.
// The returned value is shared and must be treated as read-only.
// Returns ErrEdgeNotFound if absent.
// Complexity: O(1).
func (g *Graph) Edge(from, to string) (*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[EdgeKey{From: from, To: to}]
	if !ok {
		return nil, ErrEdgeNotFound
	}

	return e, nil
}

// HasEdge reports whether the directed edge from → to exists.
// Complexity: O(1).
func (g *Graph) HasEdge(from, to string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[EdgeKey{From: from, To: to}]

	return ok
}

// Neighbors returns the outgoing edges of the given node, sorted by
// destination ID so iteration order is deterministic.
// Returns ErrNodeNotFound if the node does not exist.
// Complexity: O(deg(v) log deg(v)).
func (g *Graph) Neighbors(id string) ([]*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	succ, ok := g.adjacency[id]
	if !ok {
		return nil, ErrNodeNotFound
	}

	out := make([]*Edge, 0, len(succ))
	for to := range succ {
		out = append(out, g.edges[EdgeKey{From: id, To: to}])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })

	return out, nil
}

// NodeIDs returns all node IDs in ascending order.
// Complexity: O(V log V).
func (g *Graph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Edges returns all edges sorted by (From, To).
// Returned values are shared and must be treated as read-only.
// Complexity: O(E log E).
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}

		return out[i].To < out[j].To
	})

	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}
