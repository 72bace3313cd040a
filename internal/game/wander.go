package game

import "math"

// updateWander gives every NPC its idle drift: when the per-NPC countdown
// expires, pick a fresh uniform direction on the circle at NPC speed and
// re-arm the timer with a random duration from the configured range.
// Position integrates every tick regardless of the timer.
func (s *Session) updateWander(dt float64) {
	t := s.tune
	inset := t.NPCBoundsInset
	maxX := t.MapWidth - inset
	maxY := t.MapHeight - inset

	for i := range s.store.entities {
		e := &s.store.entities[i]
		if e.Kind != KindNPC || !e.Active {
			continue
		}

		e.WanderTimer -= dt
		if e.WanderTimer <= 0 {
			angle := s.rng.Float64() * 2 * math.Pi
			e.Vel = Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(t.NPCSpeed)
			e.WanderTimer = t.WanderMinTime + s.rng.Float64()*(t.WanderMaxTime-t.WanderMinTime)
		}

		e.Pos = e.Pos.Add(e.Vel.Scale(dt))

		// Billiard bounce at the inset bounds: flip the offending
		// component and clamp. Not physical, just keeps the crowd inside.
		if e.Pos.X < inset {
			e.Pos.X = inset
			e.Vel.X = -e.Vel.X
		} else if e.Pos.X > maxX {
			e.Pos.X = maxX
			e.Vel.X = -e.Vel.X
		}
		if e.Pos.Y < inset {
			e.Pos.Y = inset
			e.Vel.Y = -e.Vel.Y
		} else if e.Pos.Y > maxY {
			e.Pos.Y = maxY
			e.Vel.Y = -e.Vel.Y
		}
	}
}
