package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, seed int64) *Session {
	t.Helper()
	s, err := NewSession(testTuning(), rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return s
}

func TestSession_TimerCountsDownAndClamps(t *testing.T) {
	// Harmless killer so the timer is the only terminal path
	tune := testTuning()
	tune.KillerBaseSpeed = 0

	s, err := NewSession(tune, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	start := s.Timer

	s.Step(Input{}, testDt)
	assert.InDelta(t, start-testDt, s.Timer, 1e-9)

	ticks := int(start/testDt) + 10
	for i := 0; i < ticks && !s.Won; i++ {
		s.Step(Input{}, testDt)
		assert.GreaterOrEqual(t, s.Timer, 0.0, "timer must never go negative")
	}

	assert.True(t, s.Won, "surviving the countdown is a win")
	assert.False(t, s.Over)
	assert.Zero(t, s.Timer)
}

func TestSession_CaptureUsesStrictInequality(t *testing.T) {
	// Zero killer speed pins the killer in place so the boundary distance
	// survives the movement phase before the collision check runs.
	tune := testTuning()
	tune.KillerBaseSpeed = 0

	s, err := NewSession(tune, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	sum := tune.PlayerCollisionRadius + tune.KillerCollisionRadius

	// Exactly at the sum of radii: NOT a capture
	s.Player().Pos = Vec2{X: 1000, Y: 1000}
	s.KillerEntity().Pos = Vec2{X: 1000 + sum, Y: 1000}
	s.Step(Input{}, testDt)
	assert.False(t, s.Over, "touching at exactly the radius sum is not a capture")

	// Strictly inside: capture
	s.KillerEntity().Pos = Vec2{X: 1000 + sum - 0.001, Y: 1000}
	s.Step(Input{}, testDt)
	assert.True(t, s.Over)
	assert.False(t, s.Won)
	assert.True(t, s.JumpscareActive)
}

func TestSession_DoorOverlapWins(t *testing.T) {
	s := newTestSession(t, 3)
	door := s.ExitDoor()

	// Park the killer across the map from the door
	s.KillerEntity().Pos = Vec2{
		X: s.tune.MapWidth - door.Pos.X,
		Y: s.tune.MapHeight - door.Pos.Y,
	}

	s.Player().Pos = door.Pos
	s.Step(Input{}, testDt)

	assert.True(t, s.Won)
	assert.False(t, s.Over)
	assert.False(t, s.JumpscareActive, "winning has no capture animation")
}

func TestSession_CaptureBeatsEscapeSameTick(t *testing.T) {
	s := newTestSession(t, 4)
	door := s.ExitDoor()

	// Player on the door AND inside the killer's capture radius
	s.Player().Pos = door.Pos
	s.KillerEntity().Pos = door.Pos

	s.Step(Input{}, testDt)

	assert.True(t, s.Over, "capture at the door is still a loss")
	assert.False(t, s.Won)
}

func TestSession_TerminalStateFreezesWorld(t *testing.T) {
	s := newTestSession(t, 5)

	// Force a capture
	s.KillerEntity().Pos = s.Player().Pos
	s.Step(Input{}, testDt)
	require.True(t, s.Over)

	playerPos := s.Player().Pos
	killerPos := s.KillerEntity().Pos
	timer := s.Timer

	// Movement input must be ignored once terminal
	for i := 0; i < 30; i++ {
		s.Step(Input{Move: Vec2{X: 1}, FlashlightHeld: true}, testDt)
	}

	assert.Equal(t, playerPos, s.Player().Pos)
	assert.Equal(t, killerPos, s.KillerEntity().Pos)
	assert.Equal(t, timer, s.Timer, "timer freezes in the terminal state")
	assert.False(t, s.Flashlight.On)
}

func TestSession_PostGameGating(t *testing.T) {
	s := newTestSession(t, 6)
	tune := s.tune

	s.KillerEntity().Pos = s.Player().Pos
	s.Step(Input{}, testDt)
	require.True(t, s.Over)
	require.True(t, s.JumpscareActive)
	require.False(t, s.CanRestart)

	// Restart input during the animation is ignored
	jumpTicks := int(tune.JumpscareDuration/testDt) + 2
	for i := 0; i < jumpTicks && s.JumpscareActive; i++ {
		s.Step(Input{Restart: true}, testDt)
		assert.True(t, s.Over, "restart must not fire during the animation")
	}
	require.False(t, s.JumpscareActive)
	require.False(t, s.CanRestart, "delay starts only after the animation")

	// Drain the restart delay
	delayTicks := int(tune.RestartDelay/testDt) + 2
	for i := 0; i < delayTicks && !s.CanRestart; i++ {
		s.Step(Input{}, testDt)
		assert.True(t, s.Over, "delay must not end the terminal state by itself")
	}
	require.True(t, s.CanRestart)

	// Now it goes through
	s.Step(Input{Restart: true}, testDt)
	assert.False(t, s.Over)
	assert.False(t, s.Won)
	assert.Equal(t, tune.GameMaxTime, s.Timer)
	assert.Equal(t, PhaseNormal, s.Killer.Phase)
	assert.True(t, s.Flashlight.Available)
}

func TestSession_WinSkipsJumpscare(t *testing.T) {
	s := newTestSession(t, 7)
	tune := s.tune

	door := s.ExitDoor()
	s.KillerEntity().Pos = Vec2{
		X: tune.MapWidth - door.Pos.X,
		Y: tune.MapHeight - door.Pos.Y,
	}
	s.Player().Pos = door.Pos
	s.Step(Input{}, testDt)
	require.True(t, s.Won)
	require.False(t, s.JumpscareActive)

	// Only the restart delay gates the restart
	delayTicks := int(tune.RestartDelay/testDt) + 2
	for i := 0; i < delayTicks && !s.CanRestart; i++ {
		s.Step(Input{}, testDt)
	}
	assert.True(t, s.CanRestart)
}

func TestSession_FlashlightDrivesKillerPhases(t *testing.T) {
	s := newTestSession(t, 8)

	// Keep the killer from ever reaching the player during the scenario
	s.KillerEntity().Pos = Vec2{X: 0, Y: 0}
	s.Player().Pos = Vec2{X: 1900, Y: 1900}

	require.Equal(t, PhaseNormal, s.Killer.Phase)

	// Hold the light: Hunt on the on-edge
	s.Step(Input{FlashlightHeld: true}, testDt)
	assert.Equal(t, PhaseHunt, s.Killer.Phase)

	// Keep holding: still Hunt, accumulator grows
	for i := 0; i < 30; i++ {
		s.Step(Input{FlashlightHeld: true}, testDt)
	}
	assert.Equal(t, PhaseHunt, s.Killer.Phase)
	assert.Greater(t, s.Killer.FlashlightOnTime, 0.0)

	// Release: Search with the player's position captured
	playerPos := s.Player().Pos
	s.Step(Input{}, testDt)
	assert.Equal(t, PhaseSearch, s.Killer.Phase)
	assert.Equal(t, playerPos, s.Killer.LastKnownPlayerPos)
}

func TestSession_KillerApproachesPlayerInNormal(t *testing.T) {
	s := newTestSession(t, 9)

	player := s.Player()
	killer := s.KillerEntity()
	before := killer.Pos.DistanceTo(player.Pos)

	for i := 0; i < 60; i++ {
		s.Step(Input{}, testDt)
		if s.Over || s.Won {
			return // Reached the player - also an approach
		}
	}

	after := s.KillerEntity().Pos.DistanceTo(s.Player().Pos)
	assert.Less(t, after, before, "killer must close in on a stationary player")
}

func TestSession_SearchKillerWalksToLastKnownPos(t *testing.T) {
	s := newTestSession(t, 10)

	s.KillerEntity().Pos = Vec2{X: 100, Y: 100}
	s.Player().Pos = Vec2{X: 1000, Y: 1000}

	// Flick the light on and off to pin a last known position
	s.Step(Input{FlashlightHeld: true}, testDt)
	pinned := s.Player().Pos
	s.Step(Input{}, testDt)
	require.Equal(t, PhaseSearch, s.Killer.Phase)

	// Teleport the player away; the killer must head for the pin, not them
	s.Player().Pos = Vec2{X: 50, Y: 1900}

	before := s.KillerEntity().Pos.DistanceTo(pinned)
	for i := 0; i < 60 && s.Killer.Phase == PhaseSearch; i++ {
		s.Step(Input{}, testDt)
	}
	after := s.KillerEntity().Pos.DistanceTo(pinned)
	assert.Less(t, after, before)
}

func TestSession_PlayerMovementNormalizedAndClamped(t *testing.T) {
	s := newTestSession(t, 11)
	tune := s.tune

	// Diagonal input must not be faster than cardinal input
	start := s.Player().Pos
	s.KillerEntity().Pos = Vec2{X: -10000, Y: -10000}
	s.Step(Input{Move: Vec2{X: 1, Y: 1}}, testDt)
	moved := s.Player().Pos.DistanceTo(start)
	assert.InDelta(t, tune.PlayerSpeed*testDt, moved, 1e-6)

	// Walking into a wall clamps to the map bounds
	s.Player().Pos = Vec2{X: 0, Y: 0}
	for i := 0; i < 30; i++ {
		s.Step(Input{Move: Vec2{X: -1, Y: -1}}, testDt)
	}
	assert.Equal(t, Vec2{X: 0, Y: 0}, s.Player().Pos)
}

func TestSession_NPCsStayInsideInsetBounds(t *testing.T) {
	s := newTestSession(t, 12)
	tune := s.tune

	s.KillerEntity().Pos = Vec2{X: -10000, Y: -10000}

	for i := 0; i < 600; i++ {
		s.Step(Input{}, testDt)
	}

	inset := tune.NPCBoundsInset
	for _, e := range s.Entities() {
		if e.Kind != KindNPC {
			continue
		}
		assert.GreaterOrEqual(t, e.Pos.X, inset)
		assert.LessOrEqual(t, e.Pos.X, tune.MapWidth-inset)
		assert.GreaterOrEqual(t, e.Pos.Y, inset)
		assert.LessOrEqual(t, e.Pos.Y, tune.MapHeight-inset)
	}
}

func TestSession_JumpscareProgress(t *testing.T) {
	s := newTestSession(t, 13)
	tune := s.tune

	assert.Zero(t, s.JumpscareProgress())

	s.KillerEntity().Pos = s.Player().Pos
	s.Step(Input{}, testDt)
	require.True(t, s.Over)

	prev := s.JumpscareProgress()
	ticks := int(tune.JumpscareDuration/testDt) + 2
	for i := 0; i < ticks; i++ {
		s.Step(Input{}, testDt)
		p := s.JumpscareProgress()
		assert.GreaterOrEqual(t, p, prev)
		assert.LessOrEqual(t, p, 1.0)
		prev = p
	}
	assert.Equal(t, 1.0, s.JumpscareProgress())
}
