/*
Package game
File: items.go
Description:
    Inventory modules that occupy ship slots.
    Item is a closed sum type: only *Sail and *Battery implement it, and every
    consumer switches on the concrete type.
*/

package game

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind tags a slot's content on the wire.
type ItemKind string

const (
	KindSail    ItemKind = "sail"
	KindBattery ItemKind = "battery"
)

// Item is a module sitting in an inventory slot.
type Item interface {
	Kind() ItemKind
	ItemID() uuid.UUID
	clone() Item
}

// Sail produces propulsion power while its durability is positive.
type Sail struct {
	ID         uuid.UUID `json:"id"`
	Power      int       `json:"power"`      // >= 1
	Durability int       `json:"durability"` // 0..SailMaxDurability
	Broken     bool      `json:"broken"`     // Set once, must be jettisoned manually
}

func (s *Sail) Kind() ItemKind    { return KindSail }
func (s *Sail) ItemID() uuid.UUID { return s.ID }
func (s *Sail) clone() Item       { c := *s; return &c }

// Functional reports whether the sail still contributes power.
func (s *Sail) Functional() bool { return s.Durability > 0 }

// Battery produces photons every drip tick. It never decays.
type Battery struct {
	ID   uuid.UUID       `json:"id"`
	Rate decimal.Decimal `json:"rate"` // Photons per drip, 2 decimal places
}

func (b *Battery) Kind() ItemKind    { return KindBattery }
func (b *Battery) ItemID() uuid.UUID { return b.ID }
func (b *Battery) clone() Item       { c := *b; return &c }

// SlotView is the flattened, read-only form of a slot used by snapshots.
type SlotView struct {
	Index      int              `json:"index"`
	Kind       ItemKind         `json:"kind,omitempty"` // Empty for a free slot
	ID         string           `json:"id,omitempty"`
	Power      int              `json:"power,omitempty"`
	Durability int              `json:"durability,omitempty"`
	Broken     bool             `json:"broken,omitempty"`
	Rate       *decimal.Decimal `json:"rate,omitempty"`
}

// ViewSlot flattens one slot.
func ViewSlot(index int, it Item) SlotView {
	v := SlotView{Index: index}
	switch m := it.(type) {
	case *Sail:
		v.Kind = KindSail
		v.ID = m.ID.String()
		v.Power = m.Power
		v.Durability = m.Durability
		v.Broken = m.Broken
	case *Battery:
		rate := m.Rate
		v.Kind = KindBattery
		v.ID = m.ID.String()
		v.Rate = &rate
	}
	return v
}
