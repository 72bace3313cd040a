package game

import (
	"math"

	"masquerade-panic/internal/config"
)

// KillerPhase is the killer AI's behavioral state.
type KillerPhase uint8

const (
	// PhaseNormal: stalk the player's true position at base speed.
	PhaseNormal KillerPhase = iota
	// PhaseHunt: flashlight is on; close in at a boosted multiplier.
	PhaseHunt
	// PhaseSearch: light went out; sweep the last known player position.
	PhaseSearch
)

// String returns a stable name for API payloads and logs.
func (p KillerPhase) String() string {
	switch p {
	case PhaseNormal:
		return "normal"
	case PhaseHunt:
		return "hunt"
	case PhaseSearch:
		return "search"
	default:
		return "unknown"
	}
}

// KillerAI is the tagged state of the pursuit machine.
// LastKnownPlayerPos is meaningful only in Search; FlashlightOnTime
// accumulates only while in Hunt.
type KillerAI struct {
	Phase              KillerPhase
	LastKnownPlayerPos Vec2
	FlashlightOnTime   float64
}

// KillerObservation is everything the transition function may look at for
// one tick. Keeping it a plain value makes transitions pure and testable
// without a session.
type KillerObservation struct {
	FlashlightTurnedOn  bool // off->on edge this tick
	FlashlightTurnedOff bool // on->off edge this tick
	KillerPos           Vec2
	PlayerPos           Vec2
	Dt                  float64
}

// NextKillerState returns the killer state after one tick of observation.
//
// Edge checks come before the Search arrival check: a flashlight flick while
// the killer is about to settle back to Normal still re-triggers Hunt, and an
// off->on edge from ANY phase enters Hunt with a fresh accumulator.
func NextKillerState(ai KillerAI, obs KillerObservation, tune *config.Tuning) KillerAI {
	if obs.FlashlightTurnedOn {
		return KillerAI{Phase: PhaseHunt}
	}

	switch ai.Phase {
	case PhaseHunt:
		if obs.FlashlightTurnedOff {
			return KillerAI{Phase: PhaseSearch, LastKnownPlayerPos: obs.PlayerPos}
		}
		ai.FlashlightOnTime += obs.Dt
		return ai

	case PhaseSearch:
		if obs.KillerPos.DistanceTo(ai.LastKnownPlayerPos) < tune.SearchArrivalThreshold {
			return KillerAI{Phase: PhaseNormal}
		}
		return ai

	default:
		return ai
	}
}

// Target returns the position the killer moves toward this tick: the true
// player position in Normal and Hunt, the last known one in Search.
func (ai KillerAI) Target(playerPos Vec2) Vec2 {
	if ai.Phase == PhaseSearch {
		return ai.LastKnownPlayerPos
	}
	return playerPos
}

// StateMultiplier returns the phase-dependent speed factor.
func (ai KillerAI) StateMultiplier(tune *config.Tuning) float64 {
	switch ai.Phase {
	case PhaseHunt:
		if tune.HuntSpeedPolicy == config.HuntFixed {
			return tune.HuntSpeed3s
		}
		// Stepped ramp on continuous flashlight-on time.
		switch {
		case ai.FlashlightOnTime >= 3:
			return tune.HuntSpeed3s
		case ai.FlashlightOnTime >= 2:
			return tune.HuntSpeed2s
		case ai.FlashlightOnTime >= 1:
			return tune.HuntSpeed1s
		default:
			return 1
		}
	case PhaseSearch:
		return tune.SearchSpeed
	default:
		return 1
	}
}

// TimeMultiplier returns the survival-time speed factor, monotonically
// increasing in elapsed time under both policies.
func TimeMultiplier(tune *config.Tuning, elapsed float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	switch tune.TimeScalePolicy {
	case config.TimeScaleLinear:
		frac := elapsed / tune.GameMaxTime
		if frac > 1 {
			frac = 1
		}
		return 1 + (tune.KillerBonusSpeed/tune.KillerBaseSpeed)*frac
	default:
		return math.Pow(tune.TimeScaleGrowth, elapsed)
	}
}

// KillerSpeed composes the full per-tick speed:
// base x time multiplier x state multiplier.
func (ai KillerAI) KillerSpeed(tune *config.Tuning, elapsed float64) float64 {
	return tune.KillerBaseSpeed * TimeMultiplier(tune, elapsed) * ai.StateMultiplier(tune)
}
