package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with timer/phase summary
	EventTypeSpawn             // Session (re)spawn complete
	EventTypeFlashlightOn
	EventTypeFlashlightOff
	EventTypePhaseChange // Killer AI transition
	EventTypeCapture     // Killer caught the player
	EventTypeEscape      // Player won (door or timer)
	EventTypeRestart
)

// EventVersion for backwards compatibility when replaying journals
const EventVersion uint8 = 1

// Event is the core structure written to the journal.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic, assigned by the log
	TickNum   uint64    `json:"tickNum"`
	Payload   []byte    `json:"payload"` // JSON-encoded payload
}

// String returns a human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeSpawn:
		return "spawn"
	case EventTypeFlashlightOn:
		return "flashlight_on"
	case EventTypeFlashlightOff:
		return "flashlight_off"
	case EventTypePhaseChange:
		return "phase_change"
	case EventTypeCapture:
		return "capture"
	case EventTypeEscape:
		return "escape"
	case EventTypeRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload summarizes a tick boundary.
type TickPayload struct {
	Timer       float64 `json:"timer"`
	KillerPhase string  `json:"killerPhase"`
	DeltaTimeNs int64   `json:"deltaTimeNs"`
}

// SpawnPayload records a completed spawn pass.
type SpawnPayload struct {
	Entities int     `json:"entities"`
	PlayerX  float64 `json:"playerX"`
	PlayerY  float64 `json:"playerY"`
}

// FlashlightPayload records a flashlight edge.
type FlashlightPayload struct {
	CooldownTime float64 `json:"cooldownTime"`
}

// PhasePayload records a killer AI transition.
type PhasePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// OutcomePayload records a terminal outcome or restart.
type OutcomePayload struct {
	Timer       float64 `json:"timer"`
	KillerPhase string  `json:"killerPhase,omitempty"`
	How         string  `json:"how,omitempty"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// DecodePayload unmarshals the event payload into dst.
func (e Event) DecodePayload(dst interface{}) error {
	return json.Unmarshal(e.Payload, dst)
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		Payload:   EncodePayload(payload),
	}
}
