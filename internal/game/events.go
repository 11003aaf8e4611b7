/*
Package game
File: events.go
Description:
    Events emitted by the run to its presentation layer.
    The Game never blocks on delivery: a Notifier must return promptly.
*/

package game

import (
	"time"

	"github.com/google/uuid"
)

// EventType describes the kind of event emitted by the game.
type EventType string

const (
	EventLog                EventType = "log"
	EventSailBroken         EventType = "sail_broken"
	EventMining             EventType = "mining"
	EventEncounterTriggered EventType = "encounter_triggered"
	EventEncounterResolved  EventType = "encounter_resolved"
	EventCraft              EventType = "craft"
	EventWin                EventType = "win"
	EventGameOver           EventType = "game_over"
	EventMarket             EventType = "market"
	EventWarpStarted        EventType = "warp_started"
	EventWarpFrame          EventType = "warp_frame"
	EventMapAdvanced        EventType = "map_advanced"
	EventReset              EventType = "reset"
)

// Event represents a game event produced by a command or a tick.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Type     EventType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message,omitempty"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload,omitempty"`
}

// Notifier receives events. Implementations must not block and must not call back into the Game.
type Notifier interface {
	Publish(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Publish(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

// GameOverPayload explains why a run was lost.
type GameOverPayload struct {
	Reason string `json:"reason"` // "timer" or "warp"
}

// CraftPayload describes a crafted module.
type CraftPayload struct {
	Slot SlotView `json:"slot"`
}
