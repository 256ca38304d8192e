// Package engine: effect pass-throughs and clock advancement.

package engine

import (
	"go.uber.org/zap"

	"github.com/dynroute/dynroute/effects"
	"github.com/dynroute/dynroute/geom"
)

// ApplyCongestion draws a congestion zone along seg with the given
// intensity tier.
func (e *Engine) ApplyCongestion(seg geom.Segment, intensity effects.Intensity) (effects.EffectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.registry.ApplyCongestion(seg, intensity)
	if err != nil {
		return "", err
	}
	e.log.Debug("congestion applied", zap.String("effect", string(id)))

	return id, nil
}

// ApplyBlockage draws a blockage along seg; touched edges become
// impassable.
func (e *Engine) ApplyBlockage(seg geom.Segment) (effects.EffectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.registry.ApplyBlockage(seg)
	if err != nil {
		return "", err
	}
	e.log.Debug("blockage applied", zap.String("effect", string(id)))

	return id, nil
}

// ApplySignal places a timed signal at a point with the given phase
// durations.
func (e *Engine) ApplySignal(at geom.Point, d effects.SignalDurations) (effects.EffectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.registry.ApplySignal(at, d)
	if err != nil {
		return "", err
	}
	e.log.Debug("signal applied", zap.String("effect", string(id)))

	return id, nil
}

// RemoveEffect deletes one effect by ID.
func (e *Engine) RemoveEffect(id effects.EffectID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registry.Remove(id)
}

// RemoveEffectsNear deletes every effect within radius of p and
// returns how many were removed.
func (e *Engine) RemoveEffectsNear(p geom.Point, radius float64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registry.RemoveNear(p, radius)
}

// RemoveEffectsOfKind deletes every effect of one kind.
func (e *Engine) RemoveEffectsOfKind(kind effects.Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registry.RemoveOfKind(kind)
}

// ClearEffects deletes all active effects, restoring base weights.
func (e *Engine) ClearEffects() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.registry.Clear()
}

// Effects lists the active effects sorted by ID.
func (e *Engine) Effects() []*effects.Effect {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.registry.Effects()
}

// Advance consumes dt simulated time units on every timed signal.
//
// This intentionally skips the engine lock: the clock source ticks on
// its own cadence and must not stall behind a long optimization. The
// effect registry's internal locking keeps the weight cache
// consistent.
func (e *Engine) Advance(dt float64) {
	e.registry.Advance(dt)
}
