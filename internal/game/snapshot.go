package game

import (
	"sync/atomic"
	"time"
)

// EntitySnapshot is an immutable copy of one entity for the presentation
// layer. Value types only, no pointers back into the arena.
type EntitySnapshot struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Active bool    `json:"active"`
}

// FlashlightSnapshot carries the flashlight UI values, including the
// presentation-only cone radius.
type FlashlightSnapshot struct {
	On           bool    `json:"on"`
	Available    bool    `json:"available"`
	UsageTime    float64 `json:"usageTime"`
	CooldownTime float64 `json:"cooldownTime"`
	ConeRadius   float64 `json:"coneRadius"`
	AimX         float64 `json:"aimX"`
	AimY         float64 `json:"aimY"`
}

// Snapshot is a complete immutable view of one tick, everything the
// presentation collaborator needs to draw a frame.
type Snapshot struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tickNumber"`

	Entities []EntitySnapshot `json:"entities"`

	Timer       float64 `json:"timer"`
	Over        bool    `json:"over"`
	Won         bool    `json:"won"`
	KillerPhase string  `json:"killerPhase"`

	Flashlight FlashlightSnapshot `json:"flashlight"`

	// Camera follow target (the camera itself is presentation-owned)
	PlayerX float64 `json:"playerX"`
	PlayerY float64 `json:"playerY"`

	JumpscareActive   bool    `json:"jumpscareActive"`
	JumpscareProgress float64 `json:"jumpscareProgress"`
	CanRestart        bool    `json:"canRestart"`
}

// SnapshotPool triple-buffers snapshots so the render/broadcast side reads
// lock-free while the tick writes.
type SnapshotPool struct {
	snapshots [3]Snapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool pre-allocates entity slices for the expected count.
func NewSnapshotPool(entityCap int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = Snapshot{
			Entities: make([]EntitySnapshot, 0, entityCap),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the
// tick). Slices are reset but keep capacity.
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Entities = snap.Entities[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks the write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer side).
func (p *SnapshotPool) AcquireRead() *Snapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
