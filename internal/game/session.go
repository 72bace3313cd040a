package game

import (
	"math/rand"

	"masquerade-panic/internal/config"
)

// Input is everything the presentation/input collaborator feeds the
// simulation for one tick.
type Input struct {
	// Move is the directional intent; components in [-1, 1].
	Move Vec2 `json:"move"`
	// FlashlightHeld is the raw "activation held" boolean.
	FlashlightHeld bool `json:"flashlightHeld"`
	// Aim is the world-space aim position (mouse equivalent).
	Aim Vec2 `json:"aim"`
	// Restart requests a session restart; honored only once unlocked.
	Restart bool `json:"restart"`
}

// Session owns one run of the game: the entity arena, the countdown, the
// terminal flags, and the flashlight / killer sub-states. All mutation
// happens inside Step, single-threaded, in a fixed order.
type Session struct {
	tune *config.Tuning
	rng  *rand.Rand

	store   *Store
	spawner *Spawner
	refs    SpawnRefs

	// Countdown from GameMaxTime to 0; clamped, never negative.
	Timer float64
	// Terminal flags; at most one is ever true.
	Over bool
	Won  bool

	Flashlight Flashlight
	Killer     KillerAI

	// Post-game state: the capture animation gates the restart delay,
	// which gates restarts.
	JumpscareActive   bool
	JumpscareTimer    float64
	RestartDelayTimer float64
	CanRestart        bool

	tick   uint64
	events *EventLog // optional; nil-safe
}

// NewSession spawns a fresh run. Fails fast on degenerate tuning
// (ErrSpawnExhausted) instead of looping forever.
func NewSession(tune *config.Tuning, rng *rand.Rand) (*Session, error) {
	s := &Session{
		tune:    tune,
		rng:     rng,
		store:   NewStore(tune.NPCCount + 3),
		spawner: NewSpawner(tune, rng),
	}
	if err := s.Restart(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetEventLog attaches an optional journal for gameplay events.
func (s *Session) SetEventLog(el *EventLog) { s.events = el }

// Restart re-spawns everything and resets the timer, outcome flags and all
// sub-states. Callable at any time by the owner; gameplay code goes through
// the CanRestart gate in Step.
func (s *Session) Restart() error {
	refs, err := s.spawner.Populate(s.store)
	if err != nil {
		return err
	}
	s.refs = refs

	s.Timer = s.tune.GameMaxTime
	s.Over = false
	s.Won = false
	s.Flashlight.Reset()
	s.Killer = KillerAI{}
	s.JumpscareActive = false
	s.JumpscareTimer = 0
	s.RestartDelayTimer = 0
	s.CanRestart = false

	s.emit(EventTypeSpawn, SpawnPayload{
		Entities: s.store.Len(),
		PlayerX:  s.Player().Pos.X,
		PlayerY:  s.Player().Pos.Y,
	})
	return nil
}

// Step advances the simulation by dt seconds in the fixed order:
// flashlight -> player -> NPC wander -> killer AI -> timer -> collisions.
// Once terminal, only the capture animation and restart-delay countdown run.
func (s *Session) Step(in Input, dt float64) {
	s.tick++

	if s.Over || s.Won {
		s.stepPostGame(in, dt)
		return
	}

	s.stepFlashlight(in, dt)
	s.stepPlayer(in, dt)
	s.updateWander(dt)
	s.stepKiller(dt)
	s.stepTimer(dt)
	s.stepCollisions()
}

func (s *Session) stepFlashlight(in Input, dt float64) {
	s.Flashlight.Update(in.FlashlightHeld, in.Aim, dt, s.tune)
	if s.Flashlight.TurnedOn() {
		s.emit(EventTypeFlashlightOn, FlashlightPayload{CooldownTime: s.Flashlight.CooldownTime})
	}
	if s.Flashlight.TurnedOff() {
		s.emit(EventTypeFlashlightOff, FlashlightPayload{CooldownTime: s.Flashlight.CooldownTime})
	}
}

func (s *Session) stepPlayer(in Input, dt float64) {
	player := s.Player()
	if player == nil {
		return
	}
	player.Vel = in.Move.Normalize().Scale(s.tune.PlayerSpeed)
	player.Pos = player.Pos.Add(player.Vel.Scale(dt)).
		Clamp(0, 0, s.tune.MapWidth, s.tune.MapHeight)
}

func (s *Session) stepKiller(dt float64) {
	killer := s.KillerEntity()
	player := s.Player()
	if killer == nil || player == nil {
		return
	}

	prev := s.Killer.Phase
	s.Killer = NextKillerState(s.Killer, KillerObservation{
		FlashlightTurnedOn:  s.Flashlight.TurnedOn(),
		FlashlightTurnedOff: s.Flashlight.TurnedOff(),
		KillerPos:           killer.Pos,
		PlayerPos:           player.Pos,
		Dt:                  dt,
	}, s.tune)
	if s.Killer.Phase != prev {
		s.emit(EventTypePhaseChange, PhasePayload{From: prev.String(), To: s.Killer.Phase.String()})
	}

	speed := s.Killer.KillerSpeed(s.tune, s.Elapsed())
	killer.Vel = killer.Pos.DirectionTo(s.Killer.Target(player.Pos)).Scale(speed)
	killer.Pos = killer.Pos.Add(killer.Vel.Scale(dt)).
		Clamp(0, 0, s.tune.MapWidth, s.tune.MapHeight)
}

func (s *Session) stepTimer(dt float64) {
	s.Timer -= dt
	if s.Timer <= 0 {
		s.Timer = 0
		s.win("timer")
	}
}

// stepCollisions runs the capture and escape checks. Capture first: a tick
// where the killer reaches the player at the door is still a loss.
func (s *Session) stepCollisions() {
	if s.Over || s.Won {
		return
	}
	player := s.Player()
	killer := s.KillerEntity()
	door := s.ExitDoor()
	if player == nil {
		return
	}

	if killer != nil {
		sum := s.tune.PlayerCollisionRadius + s.tune.KillerCollisionRadius
		if player.Pos.DistanceTo(killer.Pos) < sum {
			s.capture()
			return
		}
	}

	if door != nil {
		halfW := s.tune.ExitDoorWidth / 2
		halfH := s.tune.ExitDoorHeight / 2
		dx := player.Pos.X - door.Pos.X
		dy := player.Pos.Y - door.Pos.Y
		if dx >= -halfW && dx <= halfW && dy >= -halfH && dy <= halfH {
			s.win("escape")
		}
	}
}

func (s *Session) capture() {
	s.Over = true
	s.JumpscareActive = true
	s.JumpscareTimer = 0
	s.RestartDelayTimer = s.tune.RestartDelay
	s.CanRestart = false
	s.emit(EventTypeCapture, OutcomePayload{Timer: s.Timer, KillerPhase: s.Killer.Phase.String()})
}

func (s *Session) win(how string) {
	s.Won = true
	s.RestartDelayTimer = s.tune.RestartDelay
	s.CanRestart = false
	s.emit(EventTypeEscape, OutcomePayload{Timer: s.Timer, How: how})
}

// stepPostGame advances the disjoint post-game updates: the capture
// animation must finish before the restart delay starts draining.
func (s *Session) stepPostGame(in Input, dt float64) {
	if s.JumpscareActive {
		s.JumpscareTimer += dt
		if s.JumpscareTimer >= s.tune.JumpscareDuration {
			s.JumpscareActive = false
		}
		return
	}

	if !s.CanRestart {
		s.RestartDelayTimer -= dt
		if s.RestartDelayTimer <= 0 {
			s.RestartDelayTimer = 0
			s.CanRestart = true
		}
	}

	if in.Restart && s.CanRestart {
		s.emit(EventTypeRestart, OutcomePayload{Timer: s.Timer})
		// Spawn succeeded once with this tuning; a repeat failure would
		// mean the RNG hit the retry cap, so keep the terminal state.
		_ = s.Restart()
	}
}

// Elapsed returns seconds survived so far.
func (s *Session) Elapsed() float64 { return s.tune.GameMaxTime - s.Timer }

// JumpscareProgress returns the capture animation progress in [0, 1].
func (s *Session) JumpscareProgress() float64 {
	if !s.Over {
		return 0
	}
	if !s.JumpscareActive {
		return 1
	}
	p := s.JumpscareTimer / s.tune.JumpscareDuration
	if p > 1 {
		p = 1
	}
	return p
}

// Player returns the player entity, or nil before spawn.
func (s *Session) Player() *Entity { return s.store.Get(s.refs.Player) }

// KillerEntity returns the killer entity, or nil before spawn.
func (s *Session) KillerEntity() *Entity { return s.store.Get(s.refs.Killer) }

// ExitDoor returns the exit door entity, or nil before spawn.
func (s *Session) ExitDoor() *Entity { return s.store.Get(s.refs.ExitDoor) }

// Entities exposes the arena for snapshotting.
func (s *Session) Entities() []Entity { return s.store.All() }

// Tick returns the number of Steps taken.
func (s *Session) Tick() uint64 { return s.tick }

func (s *Session) emit(t EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Emit(NewEvent(t, s.tick, payload))
}
