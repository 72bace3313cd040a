package game

import (
	"errors"
	"fmt"
	"math/rand"

	"masquerade-panic/internal/config"
)

// ErrSpawnExhausted is returned when rejection sampling cannot satisfy the
// minimum-distance constraints within SpawnMaxAttempts. It means the tuning
// is degenerate (distances too large for the map), not a transient failure.
var ErrSpawnExhausted = errors.New("spawn: rejection sampling exhausted")

// SpawnRefs carries the quick-access handles produced by a spawn pass.
type SpawnRefs struct {
	Player   Handle
	Killer   Handle
	ExitDoor Handle
}

// Spawner places all entities for a fresh session under the tuning's
// distance constraints.
type Spawner struct {
	tune *config.Tuning
	rng  *rand.Rand
}

// NewSpawner returns a spawner using the session's RNG.
func NewSpawner(tune *config.Tuning, rng *rand.Rand) *Spawner {
	return &Spawner{tune: tune, rng: rng}
}

// Populate resets the store and places player, NPCs, killer and exit door.
// The player goes to the map center; NPCs are uniform within the inset
// bounds; killer and exit door are rejection-sampled against their minimum
// distances to the player, with a bounded retry count.
func (sp *Spawner) Populate(store *Store) (SpawnRefs, error) {
	t := sp.tune
	store.Reset()

	refs := SpawnRefs{Player: NoEntity, Killer: NoEntity, ExitDoor: NoEntity}

	playerPos := Vec2{X: t.MapWidth / 2, Y: t.MapHeight / 2}
	refs.Player = store.Add(Entity{Pos: playerPos, Kind: KindPlayer, Active: true})

	inset := t.NPCBoundsInset
	for i := 0; i < t.NPCCount; i++ {
		pos := Vec2{
			X: sp.randRange(inset, t.MapWidth-inset),
			Y: sp.randRange(inset, t.MapHeight-inset),
		}
		store.Add(Entity{Pos: pos, Kind: KindNPC, Active: true})
	}

	killerPos, err := sp.sampleAwayFrom(playerPos, t.KillerMinSpawnDistance, sp.randMapPos)
	if err != nil {
		return refs, fmt.Errorf("placing killer (min distance %g): %w", t.KillerMinSpawnDistance, err)
	}
	refs.Killer = store.Add(Entity{Pos: killerPos, Kind: KindKiller, Active: true})

	doorPos, err := sp.sampleAwayFrom(playerPos, t.ExitDoorMinSpawnDistance, sp.randEdgePos)
	if err != nil {
		return refs, fmt.Errorf("placing exit door (min distance %g): %w", t.ExitDoorMinSpawnDistance, err)
	}
	refs.ExitDoor = store.Add(Entity{Pos: doorPos, Kind: KindExitDoor, Active: true})

	return refs, nil
}

// sampleAwayFrom draws candidates until one is strictly farther than minDist
// from anchor, giving up after SpawnMaxAttempts.
func (sp *Spawner) sampleAwayFrom(anchor Vec2, minDist float64, draw func() Vec2) (Vec2, error) {
	for i := 0; i < sp.tune.SpawnMaxAttempts; i++ {
		pos := draw()
		if pos.DistanceTo(anchor) > minDist {
			return pos, nil
		}
	}
	return Vec2{}, fmt.Errorf("%w after %d attempts", ErrSpawnExhausted, sp.tune.SpawnMaxAttempts)
}

func (sp *Spawner) randMapPos() Vec2 {
	return Vec2{
		X: sp.randRange(0, sp.tune.MapWidth),
		Y: sp.randRange(0, sp.tune.MapHeight),
	}
}

// randEdgePos picks one of the four map edges uniformly, then a uniform
// point along it.
func (sp *Spawner) randEdgePos() Vec2 {
	t := sp.tune
	switch sp.rng.Intn(4) {
	case 0: // top
		return Vec2{X: sp.randRange(0, t.MapWidth), Y: 0}
	case 1: // bottom
		return Vec2{X: sp.randRange(0, t.MapWidth), Y: t.MapHeight}
	case 2: // left
		return Vec2{X: 0, Y: sp.randRange(0, t.MapHeight)}
	default: // right
		return Vec2{X: t.MapWidth, Y: sp.randRange(0, t.MapHeight)}
	}
}

func (sp *Spawner) randRange(lo, hi float64) float64 {
	return lo + sp.rng.Float64()*(hi-lo)
}
