// Package effects layers transient cost modifiers on top of the base
// road topology: congestion zones, blockages, and timed signals.
//
// The Registry owns the set of active effects. Each effect resolves,
// once at creation time, the set of edges whose geometry passes within
// a proximity threshold of the drawn segment (or placed point), and
// contributes an additive penalty or an impassable override to those
// edges. The Resolver side of the Registry maintains a derived
// effective-weight cache recomputed incrementally: only the edges
// touched by a changed effect are revisited, never the whole graph.
// Base weights in core are never mutated, so every effect is fully
// reversible.
//
// Errors:
//
//	ErrInvalidEffect - effect parameters rejected; graph state unchanged.
//	ErrBadIntensity  - unknown congestion intensity tier.
//	ErrBadDuration   - signal phase duration below one time unit.
//	ErrBadRadius     - non-positive removal radius.
//	ErrUnknownEffect - effect ID not present in the registry.
package effects

import (
	"errors"
	"math"
)

// Impassable is the sentinel effective weight for blocked edges.
// It is a large finite value rather than +Inf so that accidental
// arithmetic on it cannot produce NaN; path search excludes such
// edges from expansion entirely instead of treating them as a large
// but finite cost.
const Impassable = math.MaxFloat64

// Sentinel errors for effect operations.
var (
	// ErrInvalidEffect is the base class for rejected effect parameters.
	ErrInvalidEffect = errors.New("effects: invalid effect parameters")

	// ErrBadIntensity indicates an unknown congestion intensity tier.
	ErrBadIntensity = errors.New("effects: unknown congestion intensity")

	// ErrBadDuration indicates a signal phase duration below one time unit.
	ErrBadDuration = errors.New("effects: signal phase duration must be >= 1")

	// ErrBadRadius indicates a non-positive removal radius.
	ErrBadRadius = errors.New("effects: removal radius must be positive")

	// ErrUnknownEffect indicates a removal referenced an unknown effect ID.
	ErrUnknownEffect = errors.New("effects: effect not found")
)

// Kind enumerates the effect variants.
type Kind int

const (
	// KindCongestion adds a fixed per-tier penalty to touched edges.
	KindCongestion Kind = iota

	// KindBlockage makes touched edges impassable.
	KindBlockage

	// KindSignal adds a phase-dependent penalty to touched edges.
	KindSignal
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCongestion:
		return "congestion"
	case KindBlockage:
		return "blockage"
	case KindSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// Intensity is a congestion severity tier.
type Intensity int

const (
	// Light congestion: small additive penalty.
	Light Intensity = iota

	// Moderate congestion: medium additive penalty.
	Moderate

	// Heavy congestion: large additive penalty.
	Heavy
)

// Config holds the tunable constants of the effect layer. Thresholds
// and penalties are coordinate-unit-agnostic: callers choose values
// that fit their unit system. Defaults match the reference dataset's
// pixel domain.
type Config struct {
	// Proximity is the maximum distance between an effect's geometry
	// and an edge for the effect to influence that edge.
	Proximity float64

	// LightPenalty, ModeratePenalty, HeavyPenalty are the additive
	// weight penalties per congestion tier.
	LightPenalty    float64
	ModeratePenalty float64
	HeavyPenalty    float64

	// RedRate, YellowRate, GreenRate scale a signal's penalty by the
	// remaining time in its current phase. The shape to preserve:
	// proportional to remaining time, highest for yellow, near-zero
	// for green.
	RedRate    float64
	YellowRate float64
	GreenRate  float64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Proximity:       20,
		LightPenalty:    50,
		ModeratePenalty: 100,
		HeavyPenalty:    200,
		RedRate:         3.33,
		YellowRate:      10.0,
		GreenRate:       0.04,
	}
}

// penalty maps an intensity tier to its additive penalty.
func (c Config) penalty(i Intensity) (float64, error) {
	switch i {
	case Light:
		return c.LightPenalty, nil
	case Moderate:
		return c.ModeratePenalty, nil
	case Heavy:
		return c.HeavyPenalty, nil
	default:
		return 0, ErrBadIntensity
	}
}
