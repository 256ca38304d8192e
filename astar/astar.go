package astar

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/geom"
)

// FindPath computes the minimum-cost path from start to goal and
// returns the ordered node sequence with its total cost.
//
// Preconditions and validation (in order):
//  1. start and goal must be non-empty (ErrEmptyEndpoint).
//  2. g must be non-nil (ErrNilGraph).
//  3. g must contain start and goal (ErrNodeNotFound).
//
// Returns ErrNotReachable when no path exists under the current
// weights, a normal outcome rather than a fault. Tie-breaking between equal
// frontier priorities is by node identifier, so results are
// reproducible for a fixed graph and effect state.
//
// Complexity:
//
//   - Time:  O((V + E) log V) with a lazy-decrease-key binary heap.
//   - Space: O(V + E).
func FindPath(g *core.Graph, start, goal string, opts ...Option) (Result, error) {
	// 1) Build options.
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	// 2) Validate endpoints before touching the graph.
	if start == "" || goal == "" {
		return Result{}, ErrEmptyEndpoint
	}
	if g == nil {
		return Result{}, ErrNilGraph
	}
	if !g.HasNode(start) || !g.HasNode(goal) {
		return Result{}, ErrNodeNotFound
	}

	// 3) Trivial case: start is the goal.
	if start == goal {
		return Result{Path: []string{start}, Cost: 0}, nil
	}

	r := &runner{
		g:       g,
		options: cfg,
		goal:    goal,
		dist:    map[string]float64{start: 0},
		prev:    make(map[string]string),
		visited: make(map[string]bool),
	}

	heap.Init(&r.pq)
	heap.Push(&r.pq, &frontierItem{id: start, priority: r.heuristic(start)})

	return r.process()
}

// runner holds the mutable state of a single search.
type runner struct {
	g       *core.Graph
	options Options
	goal    string

	dist    map[string]float64 // best-known cost from start
	prev    map[string]string  // predecessor on the best path
	visited map[string]bool    // cost finalized
	pq      frontierPQ
}

// process is the main loop: extract the lowest-priority frontier node,
// finalize it, and relax its outgoing edges until the goal is
// finalized or the frontier empties.
func (r *runner) process() (Result, error) {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*frontierItem)
		u := item.id

		// Stale entry from lazy decrease-key.
		if r.visited[u] {
			continue
		}
		r.visited[u] = true

		if u == r.goal {
			return r.reconstruct(), nil
		}

		if err := r.relax(u); err != nil {
			return Result{}, err
		}
	}

	return Result{}, ErrNotReachable
}

// relax attempts to improve the distance of every successor of u.
// Impassable edges (cost ≥ InfThreshold) are not expanded at all.
func (r *runner) relax(u string) error {
	neighbors, err := r.g.Neighbors(u)
	if err != nil {
		return fmt.Errorf("astar: neighbors of %q: %w", u, err)
	}

	for _, e := range neighbors {
		w := r.options.Weight(e)
		if w >= r.options.InfThreshold {
			continue // excluded, not merely expensive
		}
		if w < 0 {
			return fmt.Errorf("%w: edge %s→%s weight=%v", ErrNegativeWeight, e.From, e.To, w)
		}

		v := e.To
		if r.visited[v] {
			continue
		}

		tentative := r.dist[u] + w
		if best, seen := r.dist[v]; seen && tentative >= best {
			continue
		}

		r.dist[v] = tentative
		r.prev[v] = u
		heap.Push(&r.pq, &frontierItem{
			id:       v,
			priority: tentative + r.heuristic(v),
		})
	}

	return nil
}

// heuristic is the straight-line distance from id to the goal. An
// unknown coordinate contributes zero, which stays admissible.
func (r *runner) heuristic(id string) float64 {
	n, err := r.g.Node(id)
	if err != nil {
		return 0
	}
	gn, err := r.g.Node(r.goal)
	if err != nil {
		return 0
	}

	return geom.Dist(n.At, gn.At)
}

// reconstruct walks the predecessor chain backwards from the goal.
func (r *runner) reconstruct() Result {
	path := []string{r.goal}
	for at := r.goal; ; {
		p, ok := r.prev[at]
		if !ok {
			break
		}
		path = append(path, p)
		at = p
	}

	// Reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	cost := r.dist[r.goal]
	if math.IsInf(cost, 0) {
		cost = 0
	}

	return Result{Path: path, Cost: cost}
}

// frontierItem is one frontier entry: a node and its priority
// (cost-so-far + heuristic).
type frontierItem struct {
	id       string
	priority float64
}

// frontierPQ is a min-heap of *frontierItem ordered by priority, with
// ties broken by node identifier to keep expansion deterministic.
// Lazy decrease-key: shorter rediscoveries push duplicates; stale
// entries are skipped via the visited set when popped.
type frontierPQ []*frontierItem

func (pq frontierPQ) Len() int { return len(pq) }

func (pq frontierPQ) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}

	return pq[i].id < pq[j].id
}

func (pq frontierPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *frontierPQ) Push(x interface{}) { *pq = append(*pq, x.(*frontierItem)) }

func (pq *frontierPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
