package game

import "masquerade-panic/internal/config"

// Flashlight tracks the limited-use, cooldown-gated visibility tool.
//
// Invariant: On implies Available and UsageTime < FlashlightMaxDuration.
// Releasing early still incurs the FULL cooldown - holding the light is a
// commitment, which is what makes triggering Hunt a real decision.
type Flashlight struct {
	On           bool
	UsageTime    float64
	CooldownTime float64
	Available    bool

	// Aim is the world-space position the light points at, owned by the
	// input collaborator and echoed here for targeting math and UI.
	Aim Vec2

	// prevOn is last tick's On value, kept for edge detection by the
	// killer AI.
	prevOn bool
}

// NewFlashlight returns a fresh, available flashlight.
func NewFlashlight() Flashlight {
	return Flashlight{Available: true}
}

// Reset restores the spawn-time state.
func (f *Flashlight) Reset() {
	*f = Flashlight{Available: true}
}

// Update advances the flashlight by dt given the raw "activation held" input.
func (f *Flashlight) Update(held bool, aim Vec2, dt float64, tune *config.Tuning) {
	f.prevOn = f.On
	f.Aim = aim

	if f.CooldownTime > 0 {
		f.CooldownTime -= dt
		if f.CooldownTime <= 0 {
			f.CooldownTime = 0
			f.Available = true
		}
	}

	switch {
	case held && f.Available:
		f.On = true
		f.UsageTime += dt
		if f.UsageTime >= tune.FlashlightMaxDuration {
			f.turnOff(tune)
		}
	case !held && f.On:
		f.turnOff(tune)
	default:
		f.On = false
	}
}

// turnOff shuts the light and starts the full cooldown.
func (f *Flashlight) turnOff(tune *config.Tuning) {
	f.On = false
	f.Available = false
	f.UsageTime = 0
	f.CooldownTime = tune.FlashlightCooldown
}

// TurnedOn reports an off->on edge this tick.
func (f *Flashlight) TurnedOn() bool { return f.On && !f.prevOn }

// TurnedOff reports an on->off edge this tick.
func (f *Flashlight) TurnedOff() bool { return !f.On && f.prevOn }

// ConeRadius returns the visible cone radius, shrinking linearly from the
// max to the min radius as usage approaches the duration limit. Read by the
// presentation layer only; gameplay never consumes it.
func (f *Flashlight) ConeRadius(tune *config.Tuning) float64 {
	if !f.On {
		return 0
	}
	frac := f.UsageTime / tune.FlashlightMaxDuration
	if frac > 1 {
		frac = 1
	}
	return tune.FlashlightRadius - (tune.FlashlightRadius-tune.FlashlightMinRadius)*frac
}
