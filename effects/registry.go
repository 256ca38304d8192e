// Package effects: Registry implementation.
//
// The Registry resolves effect membership against the current graph
// topology at creation time and keeps a reverse index from edge key to
// the effects touching it, so recomputation after any change is
// bounded by the edges actually touched.

package effects

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/geom"
)

// EffectID uniquely identifies an active effect.
type EffectID string

// Effect is one active transient modifier and the set of edges it
// influences. Membership is resolved once at creation from the
// topology of that moment; it is not re-resolved as topology changes,
// except that edge splits redistribute membership to the sub-edges
// (see Reassign).
type Effect struct {
	ID       EffectID
	Kind     Kind
	Geometry geom.Segment // degenerate (A == B) for signals

	// Penalty is the additive contribution of a congestion zone.
	Penalty float64

	// Signal is the phase state machine of a timed signal; nil for
	// other kinds.
	Signal *Signal

	// Edges is the resolved membership, sorted by (From, To).
	Edges []core.EdgeKey
}

// Registry owns the active effects and the derived effective-weight
// cache layered over the graph's immutable base weights.
type Registry struct {
	mu  sync.RWMutex
	g   *core.Graph
	cfg Config

	effects map[EffectID]*Effect

	// byEdge is the reverse index: which effects touch this edge.
	byEdge map[core.EdgeKey]map[EffectID]struct{}

	// effective caches the derived weight of every touched edge.
	// Untouched edges fall back to their base weight.
	effective map[core.EdgeKey]float64
}

// NewRegistry creates an empty effect registry over g.
func NewRegistry(g *core.Graph, cfg Config) *Registry {
	return &Registry{
		g:         g,
		cfg:       cfg,
		effects:   make(map[EffectID]*Effect),
		byEdge:    make(map[core.EdgeKey]map[EffectID]struct{}),
		effective: make(map[core.EdgeKey]float64),
	}
}

// ApplyCongestion registers a congestion zone along seg with the given
// intensity tier and returns its EffectID.
// Returns ErrBadIntensity for an unknown tier; graph state unchanged.
// Complexity: O(E) membership resolution + O(touched) recompute.
func (r *Registry) ApplyCongestion(seg geom.Segment, intensity Intensity) (EffectID, error) {
	penalty, err := r.cfg.penalty(intensity)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ef := &Effect{
		ID:       EffectID(uuid.NewString()),
		Kind:     KindCongestion,
		Geometry: seg,
		Penalty:  penalty,
	}
	r.register(ef)

	return ef.ID, nil
}

// ApplyBlockage registers a blockage along seg: every touched edge
// becomes impassable. Returns the new EffectID.
// Complexity: O(E) membership resolution + O(touched) recompute.
func (r *Registry) ApplyBlockage(seg geom.Segment) (EffectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ef := &Effect{
		ID:       EffectID(uuid.NewString()),
		Kind:     KindBlockage,
		Geometry: seg,
	}
	r.register(ef)

	return ef.ID, nil
}

// ApplySignal places a timed signal at the given point. The signal
// starts in the Red phase with its full duration.
// Returns ErrBadDuration if any phase duration is below one time unit;
// graph state unchanged.
// Complexity: O(E) membership resolution + O(touched) recompute.
func (r *Registry) ApplySignal(at geom.Point, d SignalDurations) (EffectID, error) {
	sig, err := newSignal(d, r.cfg)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ef := &Effect{
		ID:       EffectID(uuid.NewString()),
		Kind:     KindSignal,
		Geometry: geom.Segment{A: at, B: at},
		Signal:   sig,
	}
	r.register(ef)

	return ef.ID, nil
}

// Remove deletes the effect with the given ID and restores every edge
// it touched to the weight implied by the remaining active effects.
// Returns ErrUnknownEffect if the ID is not present.
// Complexity: O(touched edges).
func (r *Registry) Remove(id EffectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ef, ok := r.effects[id]
	if !ok {
		return ErrUnknownEffect
	}
	r.unregister(ef)

	return nil
}

// RemoveNear deletes every effect whose geometry lies within radius of
// p and returns how many were removed.
// Returns ErrBadRadius for a non-positive radius.
func (r *Registry) RemoveNear(p geom.Point, radius float64) (int, error) {
	if radius <= 0 {
		return 0, ErrBadRadius
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, ef := range r.snapshot() {
		if geom.DistToSegment(p, ef.Geometry) <= radius {
			r.unregister(ef)
			removed++
		}
	}

	return removed, nil
}

// RemoveOfKind deletes every effect of the given kind and returns how
// many were removed.
func (r *Registry) RemoveOfKind(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, ef := range r.snapshot() {
		if ef.Kind == kind {
			r.unregister(ef)
			removed++
		}
	}

	return removed
}

// Clear deletes all active effects.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ef := range r.snapshot() {
		r.unregister(ef)
	}
}

// Advance consumes dt simulated time units on every active signal and
// recomputes the effective weight of the edges those signals touch.
// Other effect kinds are time-invariant and are not revisited.
// Complexity: O(signals + edges touched by signals).
func (r *Registry) Advance(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := make(map[core.EdgeKey]struct{})
	for _, ef := range r.effects {
		if ef.Kind != KindSignal {
			continue
		}
		ef.Signal.Advance(dt)
		for _, k := range ef.Edges {
			touched[k] = struct{}{}
		}
	}
	r.recompute(touched)
}

// EffectiveWeight returns the current traversal cost of e: its cached
// derived weight when any effect touches it, its base weight
// otherwise. Impassable marks edges excluded from path search.
// Complexity: O(1).
func (r *Registry) EffectiveWeight(e *core.Edge) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, ok := r.effective[e.Key()]; ok {
		return w
	}

	return e.Weight
}

// WeightFn returns the live effective-weight function for path search.
// Every call observes the latest effect state; nothing is snapshotted.
func (r *Registry) WeightFn() func(e *core.Edge) float64 {
	return r.EffectiveWeight
}

// Reassign moves membership from the edges in old to the edges in
// repl for every effect touching any edge in old, then recomputes the
// union. The virtual-node manager calls this when splitting an edge
// (old = the split edge, repl = the two sub-edges) and again in
// reverse when the split is undone, so effect coverage survives both
// directions.
// Complexity: O(effects touching old + |old| + |repl|) per effect.
func (r *Registry) Reassign(old, repl []core.EdgeKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldSet := make(map[core.EdgeKey]struct{}, len(old))
	for _, k := range old {
		oldSet[k] = struct{}{}
	}

	touched := make(map[core.EdgeKey]struct{}, len(old)+len(repl))
	for _, k := range old {
		touched[k] = struct{}{}
	}

	for _, ef := range r.effects {
		hit := false
		kept := ef.Edges[:0]
		for _, k := range ef.Edges {
			if _, drop := oldSet[k]; drop {
				hit = true
				delete(r.byEdge[k], ef.ID)
				continue
			}
			kept = append(kept, k)
		}
		if !hit {
			continue
		}

		ef.Edges = kept
		for _, k := range repl {
			r.attach(ef, k)
			touched[k] = struct{}{}
		}
		sortKeys(ef.Edges)
	}

	r.recompute(touched)
}

// Effects returns the active effects sorted by ID.
// Returned values are shared and must be treated as read-only.
func (r *Registry) Effects() []*Effect {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.snapshot()

	return out
}

// Count returns the number of active effects.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.effects)
}

// register resolves membership for ef against current topology, wires
// the reverse index, and recomputes touched edges. Caller holds mu.
func (r *Registry) register(ef *Effect) {
	touched := make(map[core.EdgeKey]struct{})
	for _, e := range r.g.Edges() {
		seg, ok := r.edgeSegment(e)
		if !ok {
			continue
		}
		if geom.DistSegments(ef.Geometry, seg) <= r.cfg.Proximity {
			r.attach(ef, e.Key())
			touched[e.Key()] = struct{}{}
		}
	}
	sortKeys(ef.Edges)
	r.effects[ef.ID] = ef
	r.recompute(touched)
}

// unregister detaches ef from the reverse index and recomputes the
// edges it touched. Caller holds mu.
func (r *Registry) unregister(ef *Effect) {
	touched := make(map[core.EdgeKey]struct{}, len(ef.Edges))
	for _, k := range ef.Edges {
		touched[k] = struct{}{}
		if set, ok := r.byEdge[k]; ok {
			delete(set, ef.ID)
			if len(set) == 0 {
				delete(r.byEdge, k)
			}
		}
	}
	delete(r.effects, ef.ID)
	r.recompute(touched)
}

// attach adds edge key k to ef's membership and the reverse index,
// skipping duplicates. Caller holds mu.
func (r *Registry) attach(ef *Effect, k core.EdgeKey) {
	set, ok := r.byEdge[k]
	if !ok {
		set = make(map[EffectID]struct{})
		r.byEdge[k] = set
	}
	if _, dup := set[ef.ID]; dup {
		return
	}
	set[ef.ID] = struct{}{}
	ef.Edges = append(ef.Edges, k)
}

// recompute re-derives the effective weight of every key in touched:
// base weight plus all additive contributions, or Impassable when any
// active blockage touches the edge. Edges no longer present, or no
// longer touched by any effect, drop out of the cache and fall back
// to base weight. Caller holds mu.
func (r *Registry) recompute(touched map[core.EdgeKey]struct{}) {
	for k := range touched {
		e, err := r.g.Edge(k.From, k.To)
		if err != nil {
			delete(r.effective, k)
			continue
		}

		ids := r.byEdge[k]
		if len(ids) == 0 {
			delete(r.effective, k)
			continue
		}

		w := e.Weight
		blocked := false
		for id := range ids {
			ef := r.effects[id]
			switch ef.Kind {
			case KindBlockage:
				blocked = true
			case KindCongestion:
				w += ef.Penalty
			case KindSignal:
				w += ef.Signal.Penalty()
			}
		}

		if blocked {
			r.effective[k] = Impassable
		} else {
			r.effective[k] = w
		}
	}
}

// edgeSegment returns the straight-line geometry of e from its
// endpoint coordinates.
func (r *Registry) edgeSegment(e *core.Edge) (geom.Segment, bool) {
	from, err := r.g.Node(e.From)
	if err != nil {
		return geom.Segment{}, false
	}
	to, err := r.g.Node(e.To)
	if err != nil {
		return geom.Segment{}, false
	}

	return geom.Segment{A: from.At, B: to.At}, true
}

// snapshot returns the active effects sorted by ID. Caller holds mu
// (read or write).
func (r *Registry) snapshot() []*Effect {
	out := make([]*Effect, 0, len(r.effects))
	for _, ef := range r.effects {
		out = append(out, ef)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// sortKeys orders edge keys by (From, To) for deterministic iteration.
func sortKeys(keys []core.EdgeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}

		return keys[i].To < keys[j].To
	})
}
