package game

import (
	"math"
	"testing"

	"masquerade-panic/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTuning() *config.Tuning {
	t := config.DefaultTuning()
	return &t
}

func TestNextKillerState_FlashlightOnEntersHuntFromAnyPhase(t *testing.T) {
	tune := testTuning()
	obs := KillerObservation{FlashlightTurnedOn: true, Dt: 1.0 / 60}

	for _, start := range []KillerAI{
		{Phase: PhaseNormal},
		{Phase: PhaseHunt, FlashlightOnTime: 2.5},
		{Phase: PhaseSearch, LastKnownPlayerPos: Vec2{X: 100, Y: 100}},
	} {
		next := NextKillerState(start, obs, tune)
		assert.Equal(t, PhaseHunt, next.Phase)
		// Fresh accumulator on every entry
		assert.Zero(t, next.FlashlightOnTime)
	}
}

func TestNextKillerState_OnEdgeBeatsSearchArrival(t *testing.T) {
	tune := testTuning()

	// Killer is already within arrival range of the last known position, and
	// the flashlight flicks on in the same tick. Hunt must win.
	ai := KillerAI{Phase: PhaseSearch, LastKnownPlayerPos: Vec2{X: 500, Y: 500}}
	obs := KillerObservation{
		FlashlightTurnedOn: true,
		KillerPos:          Vec2{X: 501, Y: 500},
		PlayerPos:          Vec2{X: 900, Y: 900},
		Dt:                 1.0 / 60,
	}

	next := NextKillerState(ai, obs, tune)
	assert.Equal(t, PhaseHunt, next.Phase)
}

func TestNextKillerState_HuntToSearchCapturesPlayerPos(t *testing.T) {
	tune := testTuning()
	playerPos := Vec2{X: 777, Y: 333}

	ai := KillerAI{Phase: PhaseHunt, FlashlightOnTime: 1.2}
	next := NextKillerState(ai, KillerObservation{
		FlashlightTurnedOff: true,
		PlayerPos:           playerPos,
		Dt:                  1.0 / 60,
	}, tune)

	require.Equal(t, PhaseSearch, next.Phase)
	assert.Equal(t, playerPos, next.LastKnownPlayerPos)

	// The target stays pinned even as the player moves on
	assert.Equal(t, playerPos, next.Target(Vec2{X: 0, Y: 0}))
}

func TestNextKillerState_HuntAccumulatesOnTime(t *testing.T) {
	tune := testTuning()
	dt := 1.0 / 60

	ai := KillerAI{Phase: PhaseHunt}
	for i := 0; i < 60; i++ {
		ai = NextKillerState(ai, KillerObservation{Dt: dt}, tune)
	}

	assert.Equal(t, PhaseHunt, ai.Phase)
	assert.InDelta(t, 1.0, ai.FlashlightOnTime, 1e-9)
}

func TestNextKillerState_SearchArrival(t *testing.T) {
	tune := testTuning()
	last := Vec2{X: 500, Y: 500}

	// Outside the threshold: keep searching
	ai := KillerAI{Phase: PhaseSearch, LastKnownPlayerPos: last}
	next := NextKillerState(ai, KillerObservation{
		KillerPos: Vec2{X: 500 + tune.SearchArrivalThreshold + 1, Y: 500},
	}, tune)
	assert.Equal(t, PhaseSearch, next.Phase)

	// Inside the threshold: settle back to Normal
	next = NextKillerState(ai, KillerObservation{
		KillerPos: Vec2{X: 500 + tune.SearchArrivalThreshold - 1, Y: 500},
	}, tune)
	assert.Equal(t, PhaseNormal, next.Phase)
}

func TestNextKillerState_NormalIgnoresOffEdge(t *testing.T) {
	tune := testTuning()

	ai := KillerAI{Phase: PhaseNormal}
	next := NextKillerState(ai, KillerObservation{FlashlightTurnedOff: true}, tune)
	assert.Equal(t, PhaseNormal, next.Phase)
}

func TestStateMultiplier_SteppedRamp(t *testing.T) {
	tune := testTuning()

	cases := []struct {
		onTime float64
		want   float64
	}{
		{0.0, 1.0},
		{0.99, 1.0},
		{1.0, tune.HuntSpeed1s},
		{1.99, tune.HuntSpeed1s},
		{2.0, tune.HuntSpeed2s},
		{3.0, tune.HuntSpeed3s},
		{10.0, tune.HuntSpeed3s},
	}

	for _, tc := range cases {
		ai := KillerAI{Phase: PhaseHunt, FlashlightOnTime: tc.onTime}
		assert.Equal(t, tc.want, ai.StateMultiplier(tune), "onTime=%g", tc.onTime)
	}
}

func TestStateMultiplier_FixedPolicy(t *testing.T) {
	tune := testTuning()
	tune.HuntSpeedPolicy = config.HuntFixed

	// Top multiplier the instant Hunt begins
	ai := KillerAI{Phase: PhaseHunt, FlashlightOnTime: 0}
	assert.Equal(t, tune.HuntSpeed3s, ai.StateMultiplier(tune))
}

func TestStateMultiplier_SearchAndNormal(t *testing.T) {
	tune := testTuning()

	assert.Equal(t, tune.SearchSpeed, KillerAI{Phase: PhaseSearch}.StateMultiplier(tune))
	assert.Equal(t, 1.0, KillerAI{Phase: PhaseNormal}.StateMultiplier(tune))
}

func TestTimeMultiplier_Exponential(t *testing.T) {
	tune := testTuning()
	tune.TimeScalePolicy = config.TimeScaleExponential
	tune.TimeScaleGrowth = 1.02

	assert.InDelta(t, 1.0, TimeMultiplier(tune, 0), 1e-9)
	assert.InDelta(t, math.Pow(1.02, 15), TimeMultiplier(tune, 15), 1e-9)

	// Monotonically increasing
	prev := 0.0
	for elapsed := 0.0; elapsed <= tune.GameMaxTime; elapsed += 1.0 {
		m := TimeMultiplier(tune, elapsed)
		assert.Greater(t, m, prev)
		prev = m
	}
}

func TestTimeMultiplier_Linear(t *testing.T) {
	tune := testTuning()
	tune.TimeScalePolicy = config.TimeScaleLinear

	assert.InDelta(t, 1.0, TimeMultiplier(tune, 0), 1e-9)

	// At full duration the bonus is fully blended in
	wantMax := 1 + tune.KillerBonusSpeed/tune.KillerBaseSpeed
	assert.InDelta(t, wantMax, TimeMultiplier(tune, tune.GameMaxTime), 1e-9)

	// Clamped past the end
	assert.InDelta(t, wantMax, TimeMultiplier(tune, tune.GameMaxTime*2), 1e-9)
}

func TestKillerSpeed_ComposesFactors(t *testing.T) {
	tune := testTuning()
	tune.TimeScalePolicy = config.TimeScaleLinear

	ai := KillerAI{Phase: PhaseHunt, FlashlightOnTime: 3.5}
	elapsed := 15.0

	want := tune.KillerBaseSpeed * TimeMultiplier(tune, elapsed) * tune.HuntSpeed3s
	assert.InDelta(t, want, ai.KillerSpeed(tune, elapsed), 1e-9)
}

func TestKillerPhaseString(t *testing.T) {
	assert.Equal(t, "normal", PhaseNormal.String())
	assert.Equal(t, "hunt", PhaseHunt.String())
	assert.Equal(t, "search", PhaseSearch.String())
	assert.Equal(t, "unknown", KillerPhase(99).String())
}
