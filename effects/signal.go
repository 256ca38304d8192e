package effects

// SignalState is a phase of a timed traffic signal.
type SignalState int

// Phases cycle in fixed order: Red → Green → Yellow → Red.
const (
	Red SignalState = iota
	Green
	Yellow
)

// String returns the lowercase phase name.
func (s SignalState) String() string {
	switch s {
	case Red:
		return "red"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	default:
		return "unknown"
	}
}

// next returns the phase following s in the fixed cycle.
func (s SignalState) next() SignalState {
	switch s {
	case Red:
		return Green
	case Green:
		return Yellow
	default:
		return Red
	}
}

// SignalDurations holds the per-phase durations of one signal, in the
// engine's time units. Each must be at least one time unit.
type SignalDurations struct {
	Red    float64
	Green  float64
	Yellow float64
}

// validate rejects any phase duration below one time unit.
func (d SignalDurations) validate() error {
	if d.Red < 1 || d.Green < 1 || d.Yellow < 1 {
		return ErrBadDuration
	}

	return nil
}

// duration returns the full duration of the given phase.
func (d SignalDurations) duration(s SignalState) float64 {
	switch s {
	case Red:
		return d.Red
	case Green:
		return d.Green
	default:
		return d.Yellow
	}
}

// Signal is the state machine of one timed traffic signal.
//
// It is a pure function of elapsed time: Advance(dt) consumes
// simulated time and performs phase transitions; Penalty reads the
// live state at any instant without a scheduled tick. On a transition
// the remaining time resets to the next phase's full duration.
type Signal struct {
	durations SignalDurations
	rates     Config

	state     SignalState
	remaining float64
}

// newSignal starts a signal in the Red phase with its full duration.
func newSignal(d SignalDurations, cfg Config) (*Signal, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	return &Signal{
		durations: d,
		rates:     cfg,
		state:     Red,
		remaining: d.Red,
	}, nil
}

// Advance consumes dt time units, performing as many phase
// transitions as the elapsed time requires. Negative dt is a no-op.
// Complexity: O(transitions).
func (s *Signal) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	for dt >= s.remaining {
		dt -= s.remaining
		s.state = s.state.next()
		s.remaining = s.durations.duration(s.state)
	}
	s.remaining -= dt
}

// State returns the current phase.
func (s *Signal) State() SignalState { return s.state }

// Remaining returns the time left in the current phase.
func (s *Signal) Remaining() float64 { return s.remaining }

// Penalty returns the additive weight contribution of this signal at
// the current instant: rate(state) × remaining time in state.
func (s *Signal) Penalty() float64 {
	switch s.state {
	case Red:
		return s.rates.RedRate * s.remaining
	case Yellow:
		return s.rates.YellowRate * s.remaining
	default:
		return s.rates.GreenRate * s.remaining
	}
}
