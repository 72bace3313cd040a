package game

// EntityKind classifies the actors in the simulation.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota
	KindNPC
	KindKiller
	KindExitDoor
)

// String returns a stable name for API payloads and logs.
func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	case KindKiller:
		return "killer"
	case KindExitDoor:
		return "exit_door"
	default:
		return "unknown"
	}
}

// Entity is a single simulation actor. Entities are created during spawn and
// mutated every tick by exactly one behavior depending on kind; they are
// deactivated rather than removed, so handles stay valid for a session.
type Entity struct {
	Pos    Vec2
	Vel    Vec2
	Kind   EntityKind
	Active bool

	// NPC-only wander countdown
	WanderTimer float64
}

// Handle is an opaque reference into the Store. It exists so callers cannot
// fabricate or arithmetic their way to another entity's slot.
type Handle int32

// NoEntity is the zero-value-adjacent invalid handle.
const NoEntity Handle = -1

// Valid reports whether the handle refers to any slot at all.
func (h Handle) Valid() bool { return h >= 0 }

// Store is a flat arena of entities. The session owns exactly one Store and
// keeps handles to the player, killer and exit door for O(1) access.
type Store struct {
	entities []Entity
}

// NewStore returns a store with capacity for the expected entity count.
func NewStore(capacity int) *Store {
	return &Store{entities: make([]Entity, 0, capacity)}
}

// Add appends an entity and returns its handle.
func (s *Store) Add(e Entity) Handle {
	s.entities = append(s.entities, e)
	return Handle(len(s.entities) - 1)
}

// Get returns the entity for a handle, or nil if the handle is invalid.
// Callers are expected to nil-check and skip silently (no-op guard).
func (s *Store) Get(h Handle) *Entity {
	if !h.Valid() || int(h) >= len(s.entities) {
		return nil
	}
	return &s.entities[h]
}

// Len returns the number of entities in the arena.
func (s *Store) Len() int { return len(s.entities) }

// All returns the backing slice for iteration. The slice is owned by the
// store; callers must not retain it across ticks.
func (s *Store) All() []Entity { return s.entities }

// Reset empties the arena, invalidating all previously issued handles.
// Only the spawner calls this, at session (re)start.
func (s *Store) Reset() {
	s.entities = s.entities[:0]
}
