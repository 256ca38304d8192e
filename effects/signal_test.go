package effects

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSignal(t *testing.T, d SignalDurations) *Signal {
	t.Helper()
	s, err := newSignal(d, DefaultConfig())
	require.NoError(t, err)

	return s
}

func TestSignal_StartsRedWithFullDuration(t *testing.T) {
	s := testSignal(t, SignalDurations{Red: 10, Green: 8, Yellow: 3})
	require.Equal(t, Red, s.State())
	require.Equal(t, 10.0, s.Remaining())
}

func TestSignal_RejectsShortDurations(t *testing.T) {
	for _, d := range []SignalDurations{
		{Red: 0, Green: 5, Yellow: 5},
		{Red: 5, Green: -1, Yellow: 5},
		{Red: 5, Green: 5, Yellow: 0.5},
	} {
		_, err := newSignal(d, DefaultConfig())
		require.ErrorIs(t, err, ErrBadDuration)
	}
}

func TestSignal_CycleOrder(t *testing.T) {
	// Red → Green → Yellow → Red, remaining resets to the next phase's
	// full duration on each transition.
	s := testSignal(t, SignalDurations{Red: 10, Green: 8, Yellow: 3})

	s.Advance(10)
	require.Equal(t, Green, s.State())
	require.Equal(t, 8.0, s.Remaining())

	s.Advance(8)
	require.Equal(t, Yellow, s.State())
	require.Equal(t, 3.0, s.Remaining())

	s.Advance(3)
	require.Equal(t, Red, s.State())
	require.Equal(t, 10.0, s.Remaining())
}

func TestSignal_AdvanceSpansMultiplePhases(t *testing.T) {
	s := testSignal(t, SignalDurations{Red: 10, Green: 8, Yellow: 3})
	// 10 (red) + 8 (green) + 1 into yellow.
	s.Advance(19)
	require.Equal(t, Yellow, s.State())
	require.Equal(t, 2.0, s.Remaining())

	// A full extra cycle lands in the same place.
	s.Advance(21)
	require.Equal(t, Yellow, s.State())
	require.Equal(t, 2.0, s.Remaining())
}

func TestSignal_NegativeAdvanceIsNoOp(t *testing.T) {
	s := testSignal(t, SignalDurations{Red: 10, Green: 8, Yellow: 3})
	s.Advance(-5)
	require.Equal(t, Red, s.State())
	require.Equal(t, 10.0, s.Remaining())
}

func TestSignal_PenaltyProportionalToRemaining(t *testing.T) {
	cfg := DefaultConfig()
	s := testSignal(t, SignalDurations{Red: 10, Green: 8, Yellow: 4})

	// Red: rate × remaining.
	require.InDelta(t, cfg.RedRate*10, s.Penalty(), 1e-9)
	s.Advance(4)
	require.InDelta(t, cfg.RedRate*6, s.Penalty(), 1e-9)

	// Green penalty is near-zero; yellow is the steepest.
	s.Advance(6) // into green, full 8 remaining
	green := s.Penalty()
	require.InDelta(t, cfg.GreenRate*8, green, 1e-9)
	s.Advance(8) // into yellow, full 4 remaining
	yellow := s.Penalty()
	require.InDelta(t, cfg.YellowRate*4, yellow, 1e-9)
	require.Greater(t, yellow, green)
}
