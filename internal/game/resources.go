/*
Package game
File: resources.go
Description:
    ResourceState owns the balances, the inventory slots, the map countdown and
    the run progression counters. It also runs the mining/decay cycle.

    ResourceState is not safe for concurrent use; the Game serializes access.
*/

package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MiningResult is the outcome of one mining/decay pass.
type MiningResult struct {
	LyGain     int    `json:"ly_gain"`
	TotalPower int    `json:"total_power"`
	Broken     []Sail `json:"broken,omitempty"` // Sails that broke during this pass
	Stalled    bool   `json:"stalled"`          // Sails are slotted but none produced distance
}

// SlotCounts summarizes the inventory.
type SlotCounts struct {
	Sails           int             `json:"sails"`
	Batteries       int             `json:"batteries"`
	TotalPower      int             `json:"total_power"` // Power of functional sails only
	TotalPhotonRate decimal.Decimal `json:"total_photon_rate"`
}

// ResourceState holds everything a run accumulates.
type ResourceState struct {
	balance   GameBalance
	durations []int
	rng       Rand
	journal   *Journal
	onLog     func(LogEntry)

	Photons         decimal.Decimal
	Lightyears      int
	TotalLightyears int // Banked over completed maps
	MapsCompleted   int
	Slots           []Item // Fixed length; nil marks an empty slot
	MapTimer        int    // Seconds left on the current map
	HasWon          bool
}

// NewResourceState builds a state in its reset configuration.
func NewResourceState(cfg Config, rng Rand, clk Clock) *ResourceState {
	rs := &ResourceState{
		balance:   cfg.Balance,
		durations: append([]int(nil), cfg.MapDurations...),
		rng:       rng,
		journal:   NewJournal(clk),
	}
	rs.Reset()
	return rs
}

// OnLog registers a hook invoked for every new log entry.
func (rs *ResourceState) OnLog(fn func(LogEntry)) { rs.onLog = fn }

// Log appends an entry to the ship's log.
func (rs *ResourceState) Log(message string, sev Severity) LogEntry {
	entry := rs.journal.Add(message, sev)
	if rs.onLog != nil {
		rs.onLog(entry)
	}
	return entry
}

// Logf is Log with formatting.
func (rs *ResourceState) Logf(sev Severity, format string, args ...any) LogEntry {
	return rs.Log(fmt.Sprintf(format, args...), sev)
}

// LogEntries returns the log, newest first.
func (rs *ResourceState) LogEntries() []LogEntry { return rs.journal.Entries() }

// Reset restores the start-of-session values.
func (rs *ResourceState) Reset() {
	rs.Photons = decimal.NewFromInt(rs.balance.StartingPhotons)
	rs.Lightyears = 0
	rs.TotalLightyears = 0
	rs.MapsCompleted = 0
	rs.Slots = make([]Item, rs.balance.SlotCount)
	rs.MapTimer = rs.MapTimerFor(0)
	rs.HasWon = false
	rs.journal.Clear()
	rs.Log("The Outrider is ready for warp...", SeverityInfo)
}

// --- Photons ---

// AddPhotons adds amount with no upper bound.
func (rs *ResourceState) AddPhotons(amount decimal.Decimal) {
	rs.Photons = rs.Photons.Add(amount)
}

// RemovePhotons deducts amount only when the balance covers it.
func (rs *ResourceState) RemovePhotons(amount decimal.Decimal) bool {
	if rs.Photons.LessThan(amount) {
		return false
	}
	rs.Photons = rs.Photons.Sub(amount)
	return true
}

// TotalPhotonRate sums the rate of every slotted battery.
func (rs *ResourceState) TotalPhotonRate() decimal.Decimal {
	total := decimal.Zero
	for _, it := range rs.Slots {
		if b, ok := it.(*Battery); ok {
			total = total.Add(b.Rate)
		}
	}
	return total
}

// --- Lightyears ---

// AddLightyears adds amount, capped at the win distance.
// It reports whether the cap is reached; the caller edge-triggers the win via CheckWin.
func (rs *ResourceState) AddLightyears(amount int) bool {
	rs.Lightyears = min(rs.Lightyears+amount, rs.balance.WinDistance)
	if rs.Lightyears < 0 {
		rs.Lightyears = 0
	}
	return rs.Lightyears >= rs.balance.WinDistance
}

// RemoveLightyears deducts amount only when the balance covers it.
func (rs *ResourceState) RemoveLightyears(amount int) bool {
	if rs.Lightyears < amount {
		return false
	}
	rs.Lightyears -= amount
	return true
}

// ApplyLightyearDelta adds a signed change, flooring the balance at zero.
func (rs *ResourceState) ApplyLightyearDelta(delta int) {
	rs.Lightyears = Clamp(rs.Lightyears+delta, 0, rs.balance.WinDistance)
}

// CheckWin flips HasWon the first time the win distance is reached.
// It returns true only on that transition.
func (rs *ResourceState) CheckWin() bool {
	if rs.Lightyears >= rs.balance.WinDistance && !rs.HasWon {
		rs.HasWon = true
		return true
	}
	return false
}

// Progress is the distance covered over the whole session.
func (rs *ResourceState) Progress() int { return rs.TotalLightyears + rs.Lightyears }

// ProgressRatio is the share of the current map covered, in [0, 1].
func (rs *ResourceState) ProgressRatio() float64 {
	return float64(rs.Lightyears) / float64(rs.balance.WinDistance)
}

// --- Slots ---

// EmptySlotIndex returns the lowest free slot, or -1.
func (rs *ResourceState) EmptySlotIndex() int {
	for i, it := range rs.Slots {
		if it == nil {
			return i
		}
	}
	return -1
}

// HasEmptySlot reports whether a module can be added.
func (rs *ResourceState) HasEmptySlot() bool { return rs.EmptySlotIndex() >= 0 }

// AddSail installs a fresh sail in the lowest free slot. It returns nil when the inventory is full.
func (rs *ResourceState) AddSail(power int) *Sail {
	i := rs.EmptySlotIndex()
	if i < 0 {
		return nil
	}
	sail := &Sail{
		ID:         uuid.New(),
		Power:      max(1, power),
		Durability: rs.balance.SailMaxDurability,
	}
	rs.Slots[i] = sail
	return sail
}

// AddBattery installs a battery in the lowest free slot. It returns nil when the inventory is full.
func (rs *ResourceState) AddBattery(rate decimal.Decimal) *Battery {
	i := rs.EmptySlotIndex()
	if i < 0 {
		return nil
	}
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	battery := &Battery{ID: uuid.New(), Rate: rate}
	rs.Slots[i] = battery
	return battery
}

// RemoveSlot empties slot index and returns what it held.
// An out-of-range or empty slot returns nil.
func (rs *ResourceState) RemoveSlot(index int) Item {
	if index < 0 || index >= len(rs.Slots) || rs.Slots[index] == nil {
		return nil
	}
	removed := rs.Slots[index]
	rs.Slots[index] = nil
	return removed
}

// DestroyAllSails empties every sail slot, keeping batteries. It returns the number destroyed.
func (rs *ResourceState) DestroyAllSails() int {
	destroyed := 0
	for i, it := range rs.Slots {
		if _, ok := it.(*Sail); ok {
			rs.Slots[i] = nil
			destroyed++
		}
	}
	return destroyed
}

// SlotCounts tallies the inventory.
func (rs *ResourceState) SlotCounts() SlotCounts {
	counts := SlotCounts{TotalPhotonRate: decimal.Zero}
	for _, it := range rs.Slots {
		switch m := it.(type) {
		case *Sail:
			counts.Sails++
			if m.Functional() {
				counts.TotalPower += m.Power
			}
		case *Battery:
			counts.Batteries++
			counts.TotalPhotonRate = counts.TotalPhotonRate.Add(m.Rate)
		}
	}
	return counts
}

// --- Mining ---

// ProcessMiningCycle decays every functional sail and computes the distance produced.
// The caller applies LyGain through AddLightyears.
func (rs *ResourceState) ProcessMiningCycle() MiningResult {
	var res MiningResult
	sailsPresent := false

	// 1. Decay and sum power in one pass
	for _, it := range rs.Slots {
		sail, ok := it.(*Sail)
		if !ok {
			continue
		}
		sailsPresent = true
		if sail.Durability > 0 {
			sail.Durability = max(0, sail.Durability-RandRange(rs.rng, rs.balance.DecayMin, rs.balance.DecayMax))
		}
		if sail.Durability > 0 {
			res.TotalPower += sail.Power
			continue
		}

		// 2. Breakage is reported once
		if !sail.Broken {
			sail.Broken = true
			res.Broken = append(res.Broken, *sail)
			rs.Logf(SeverityError, "Sail [%dP] has broken down! It must be jettisoned.", sail.Power)
		}
	}

	// 3. Distance
	res.LyGain = res.TotalPower * RandRange(rs.rng, rs.balance.MiningMultMin, rs.balance.MiningMultMax)
	if res.LyGain > 0 {
		rs.Logf(SeveritySuccess, "Travelled %s lightyears. Total Power: %d.", FormatThousands(res.LyGain), res.TotalPower)
	} else if sailsPresent && res.TotalPower == 0 {
		res.Stalled = true
		rs.Log("Warning: All functioning Solar Sails have broken down.", SeverityError)
	}
	return res
}

// --- Map progression ---

// MapTimerFor returns the countdown for the map played after n completed maps.
func (rs *ResourceState) MapTimerFor(n int) int {
	return ScaledMapTimer(rs.durations, n, rs.balance.MapCyclePenalty, rs.balance.MinMapTimer)
}

// AdvanceToNextMap banks the current distance and arms the next map.
func (rs *ResourceState) AdvanceToNextMap() {
	rs.TotalLightyears += rs.Lightyears
	rs.MapsCompleted++
	rs.Lightyears = 0
	rs.HasWon = false
	rs.MapTimer = rs.MapTimerFor(rs.MapsCompleted)
}

// TickMapTimer counts down one second and reports whether the timer has expired.
func (rs *ResourceState) TickMapTimer() bool {
	if rs.MapTimer > 0 {
		rs.MapTimer--
	}
	return rs.MapTimer <= 0
}

// SlotViews flattens every slot.
func (rs *ResourceState) SlotViews() []SlotView {
	out := make([]SlotView, len(rs.Slots))
	for i, it := range rs.Slots {
		out[i] = ViewSlot(i, it)
	}
	return out
}
