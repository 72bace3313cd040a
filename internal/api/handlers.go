package api

import (
	"encoding/json"
	"net/http"

	"masquerade-panic/internal/game"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

// handleGetState returns the latest full simulation snapshot.
// Uses the lock-free snapshot pool, so polling never contends with the tick.
func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

// handleGetSession returns aggregate session info for dashboards.
func (h *routerHandlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"tickRate":    h.engine.TickRate(),
		"tickNumber":  snapshot.TickNumber,
		"timer":       snapshot.Timer,
		"over":        snapshot.Over,
		"won":         snapshot.Won,
		"killerPhase": snapshot.KillerPhase,
		"canRestart":  snapshot.CanRestart,
		"entityCount": len(snapshot.Entities),
		"eventLog":    h.engine.EventLogStats(),
	})
}

// inputRequest is the wire format for player input. Directional booleans
// instead of a raw vector so a held-key client stays trivial; the engine
// normalizes the resulting direction.
type inputRequest struct {
	Up         bool    `json:"up"`
	Down       bool    `json:"down"`
	Left       bool    `json:"left"`
	Right      bool    `json:"right"`
	Flashlight bool    `json:"flashlight"`
	AimX       float64 `json:"aimX"`
	AimY       float64 `json:"aimY"`
	Restart    bool    `json:"restart"`
}

// toInput converts directional booleans to the engine input form.
func (req inputRequest) toInput() game.Input {
	var move game.Vec2
	if req.Up {
		move.Y -= 1
	}
	if req.Down {
		move.Y += 1
	}
	if req.Left {
		move.X -= 1
	}
	if req.Right {
		move.X += 1
	}
	return game.Input{
		Move:           move,
		FlashlightHeld: req.Flashlight,
		Aim:            game.Vec2{X: req.AimX, Y: req.AimY},
		Restart:        req.Restart,
	}
}

func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	h.engine.SetInput(req.toInput())
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handlePostRestart(w http.ResponseWriter, r *http.Request) {
	h.engine.RequestRestart()
	writeJSON(w, map[string]bool{"success": true})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
