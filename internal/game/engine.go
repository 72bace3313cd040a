package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"masquerade-panic/internal/config"
)

// EngineConfig bundles everything needed to build an engine.
type EngineConfig struct {
	TickRate int
	Seed     int64 // 0 seeds from the wall clock (runs are not replayable)
	Tuning   *config.Tuning
}

// Engine drives the session at a fixed tick rate. It owns the input mailbox
// fed by the API layer, the snapshot pool read by broadcasters, and the
// event journal.
type Engine struct {
	mu      sync.RWMutex
	session *Session

	// Latest input from the presentation collaborator, sampled once per
	// tick. Restart is a latch: it stays set until a tick consumes it.
	input          Input
	restartLatched bool

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	tickCount int64

	snapshotPool *SnapshotPool
	eventLog     *EventLog
	rng          *rand.Rand

	// onTick observes tick wall time; wired to metrics by the caller so
	// this package stays free of the api import.
	onTick func(time.Duration)
}

// NewEngine creates an engine and spawns the initial session. Fails on
// degenerate tuning (spawn exhaustion).
func NewEngine(cfg EngineConfig) (*Engine, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	eventLog := NewEventLog()
	session, err := NewSession(cfg.Tuning, rng)
	if err != nil {
		return nil, err
	}
	session.SetEventLog(eventLog)

	e := &Engine{
		session:      session,
		tickRate:     cfg.TickRate,
		stopChan:     make(chan struct{}),
		snapshotPool: NewSnapshotPool(cfg.Tuning.NPCCount + 3),
		eventLog:     eventLog,
		rng:          rng,
	}
	e.produceSnapshot()
	return e, nil
}

// OnTick registers an observer for tick wall time (metrics).
func (e *Engine) OnTick(fn func(time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// OnEvent registers a synchronous gameplay event observer (metrics).
// Must be called before Start.
func (e *Engine) OnEvent(fn func(Event)) {
	e.eventLog.SetObserver(fn)
}

// Start begins the simulation loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Simulation started at %d TPS", e.tickRate)
}

// Stop stops the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Simulation stopped")
}

// tick advances one fixed step.
func (e *Engine) tick() {
	start := time.Now()

	e.mu.Lock()
	e.tickCount++
	dt := 1.0 / float64(e.tickRate)

	in := e.input
	in.Restart = e.restartLatched
	wasTerminal := e.session.Over || e.session.Won

	e.session.Step(in, dt)

	// Terminal -> non-terminal only happens via restart, so that edge is
	// the signal that the latch was consumed. A restart pressed while the
	// game is still running is meaningless and dropped.
	if wasTerminal && !e.session.Over && !e.session.Won {
		e.restartLatched = false
	} else if !wasTerminal {
		e.restartLatched = false
	}

	e.eventLog.Emit(NewEvent(EventTypeTick, e.session.Tick(), TickPayload{
		Timer:       e.session.Timer,
		KillerPhase: e.session.Killer.Phase.String(),
		DeltaTimeNs: int64(dt * 1e9),
	}))

	e.produceSnapshot()
	onTick := e.onTick
	e.mu.Unlock()

	if onTick != nil {
		onTick(time.Since(start))
	}
}

// SetInput replaces the sampled input state. Restart requests are latched
// separately so a short button press between ticks is not lost.
func (e *Engine) SetInput(in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if in.Restart {
		e.restartLatched = true
	}
	in.Restart = false
	e.input = in
}

// RequestRestart latches a restart request for the next eligible tick.
func (e *Engine) RequestRestart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restartLatched = true
}

// TickRate returns the configured ticks per second.
func (e *Engine) TickRate() int { return e.tickRate }

// Snapshot returns the latest immutable snapshot, lock-free.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshotPool.AcquireRead()
}

// produceSnapshot copies session state into the next snapshot slot.
// Caller holds e.mu.
func (e *Engine) produceSnapshot() {
	s := e.session
	snap := e.snapshotPool.AcquireWrite()

	snap.TickNumber = s.Tick()
	for _, ent := range s.Entities() {
		snap.Entities = append(snap.Entities, EntitySnapshot{
			Kind:   ent.Kind.String(),
			X:      ent.Pos.X,
			Y:      ent.Pos.Y,
			VX:     ent.Vel.X,
			VY:     ent.Vel.Y,
			Active: ent.Active,
		})
	}

	snap.Timer = s.Timer
	snap.Over = s.Over
	snap.Won = s.Won
	snap.KillerPhase = s.Killer.Phase.String()

	snap.Flashlight = FlashlightSnapshot{
		On:           s.Flashlight.On,
		Available:    s.Flashlight.Available,
		UsageTime:    s.Flashlight.UsageTime,
		CooldownTime: s.Flashlight.CooldownTime,
		ConeRadius:   s.Flashlight.ConeRadius(s.tune),
		AimX:         s.Flashlight.Aim.X,
		AimY:         s.Flashlight.Aim.Y,
	}

	if player := s.Player(); player != nil {
		snap.PlayerX = player.Pos.X
		snap.PlayerY = player.Pos.Y
	}

	snap.JumpscareActive = s.JumpscareActive
	snap.JumpscareProgress = s.JumpscareProgress()
	snap.CanRestart = s.CanRestart

	e.snapshotPool.PublishWrite()
}

// StartEventLog initializes the event journal.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event journal.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats returns journal counters for monitoring.
func (e *Engine) EventLogStats() map[string]uint64 {
	return e.eventLog.Stats()
}
