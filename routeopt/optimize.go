package routeopt

import (
	"context"
	"math"
	"sort"
)

// Optimize finds (or approximates) the visiting order of the
// intermediate waypoints minimizing total cost start → p1 → … → pn →
// end. See the package documentation for the exact/greedy policy.
//
// The context is checked between cost evaluations and candidate
// orders, so a superseded optimization stops promptly; cancellation
// returns ctx.Err() and discards the partial computation.
//
// Complexity: O(n²) cost evaluations to build the leg matrix, then
// O(n!·n) for the exact policy or O(n² log n) for the greedy one
// (worse only when infeasible legs force it to back out of dead-end
// picks).
func Optimize(ctx context.Context, start, end string, waypoints []string, cost CostFunc, opts ...Option) (Result, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cost == nil {
		return Result{}, ErrNilCostFunc
	}
	if start == "" || end == "" {
		return Result{}, ErrEmptyEndpoint
	}

	n := len(waypoints)

	// No intermediates: the "order" is empty and the cost is the
	// direct start → end leg.
	if n == 0 {
		c, err := cost(ctx, start, end)
		if err != nil {
			return Result{}, err
		}
		if math.IsInf(c, 1) {
			return Result{}, ErrNoFeasibleOrder
		}

		return Result{Order: []int{}, Cost: c, Mode: ModeExact}, nil
	}

	// Leg matrix over points[0]=start, points[1..n]=waypoints,
	// points[n+1]=end. Every candidate order reuses these values, so
	// path search runs O(n²) times regardless of policy.
	m, err := buildLegMatrix(ctx, start, end, waypoints, cost)
	if err != nil {
		return Result{}, err
	}

	if n <= cfg.BruteForceMax {
		return bruteForce(ctx, m, n)
	}

	return greedy(m, n)
}

// legMatrix holds pairwise leg costs; index 0 is start, 1..n are
// waypoints, n+1 is end.
type legMatrix [][]float64

func buildLegMatrix(ctx context.Context, start, end string, waypoints []string, cost CostFunc) (legMatrix, error) {
	points := make([]string, 0, len(waypoints)+2)
	points = append(points, start)
	points = append(points, waypoints...)
	points = append(points, end)

	n := len(points)
	m := make(legMatrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c, err := cost(ctx, points[i], points[j])
			if err != nil {
				return nil, err
			}
			m[i][j] = c
		}
	}

	return m, nil
}

// bruteForce evaluates every permutation of the n waypoints in
// lexicographic order and keeps the first minimum-cost one.
func bruteForce(ctx context.Context, m legMatrix, n int) (Result, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	best := Result{Cost: Infeasible, Mode: ModeExact}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if c := orderCost(m, perm, n); c < best.Cost {
			best.Cost = c
			best.Order = append([]int(nil), perm...)
		}

		if !nextPermutation(perm) {
			break
		}
	}

	if best.Order == nil {
		return Result{}, ErrNoFeasibleOrder
	}

	return best, nil
}

// orderCost sums start → perm… → end for one candidate order.
// Any infeasible leg makes the whole order Infeasible.
func orderCost(m legMatrix, perm []int, n int) float64 {
	total := m[0][perm[0]+1] // start → first waypoint
	for i := 0; i+1 < len(perm); i++ {
		total += m[perm[i]+1][perm[i+1]+1]
	}
	total += m[perm[len(perm)-1]+1][n+1] // last waypoint → end

	return total
}

// nextPermutation advances perm to its lexicographic successor,
// returning false after the last one.
func nextPermutation(perm []int) bool {
	i := len(perm) - 2
	for i >= 0 && perm[i] >= perm[i+1] {
		i--
	}
	if i < 0 {
		return false
	}

	j := len(perm) - 1
	for perm[j] <= perm[i] {
		j--
	}
	perm[i], perm[j] = perm[j], perm[i]

	for l, r := i+1, len(perm)-1; l < r; l, r = l+1, r-1 {
		perm[l], perm[r] = perm[r], perm[l]
	}

	return true
}

// greedy repeatedly appends the unvisited waypoint cheapest to reach
// from the current position, then connects to end. A pure
// nearest-first chain can dead-end on a waypoint the remaining ones
// are unreachable from even though another order is feasible, so a
// pick that strands the rest is undone and the next-cheapest
// candidate tried instead. The first completed chain wins: with no
// dead-ends it is exactly the nearest-first one. Ties break toward
// the lower index for determinism. No optimality guarantee; a
// feasible chain is found whenever one exists.
func greedy(m legMatrix, n int) (Result, error) {
	g := &greedyChain{
		m:       m,
		n:       n,
		visited: make([]bool, n),
		order:   make([]int, 0, n),
	}

	cost, ok := g.extend(0) // matrix index of start
	if !ok {
		return Result{}, ErrNoFeasibleOrder
	}

	return Result{Order: g.order, Cost: cost, Mode: ModeGreedy}, nil
}

// greedyChain carries the in-progress visiting chain for the greedy
// policy; order and visited are unwound on backtrack.
type greedyChain struct {
	m       legMatrix
	n       int
	visited []bool
	order   []int
}

// extend grows the chain from matrix index current, trying reachable
// unvisited waypoints cheapest-first and undoing any pick whose
// remainder cannot be completed. Returns the cost of the completed
// suffix (including the final leg to end).
func (g *greedyChain) extend(current int) (float64, bool) {
	if len(g.order) == g.n {
		last := g.m[current][g.n+1] // final waypoint → end
		if math.IsInf(last, 1) {
			return 0, false
		}

		return last, true
	}

	for _, w := range g.candidates(current) {
		g.visited[w] = true
		g.order = append(g.order, w)

		if rest, ok := g.extend(w + 1); ok {
			return g.m[current][w+1] + rest, true
		}

		g.order = g.order[:len(g.order)-1]
		g.visited[w] = false
	}

	return 0, false
}

// candidates lists the unvisited waypoints reachable from current,
// cheapest leg first, lower index first on equal cost.
func (g *greedyChain) candidates(current int) []int {
	c := make([]int, 0, g.n-len(g.order))
	for w := 0; w < g.n; w++ {
		if !g.visited[w] && !math.IsInf(g.m[current][w+1], 1) {
			c = append(c, w)
		}
	}
	sort.SliceStable(c, func(i, j int) bool {
		return g.m[current][c[i]+1] < g.m[current][c[j]+1]
	})

	return c
}
