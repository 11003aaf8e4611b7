/*
Package game
File: snapshot.go
Description:
    Read models. Every value returned here is a deep copy taken under the read
    lock, so callers may hold on to it (or serialize it) without racing ticks.
*/

package game

import "github.com/shopspring/decimal"

// Snapshot is the full read surface of a run.
type Snapshot struct {
	Phase           Phase            `json:"phase"`
	LossReason      string           `json:"loss_reason,omitempty"`
	HasWon          bool             `json:"has_won"`
	GameOver        bool             `json:"game_over"`
	Photons         decimal.Decimal  `json:"photons"`
	Lightyears      int              `json:"lightyears"`
	WinDistance     int              `json:"win_distance"`
	TotalLightyears int              `json:"total_lightyears"`
	Progress        int              `json:"progress"`
	ProgressRatio   float64          `json:"progress_ratio"`
	MapsCompleted   int              `json:"maps_completed"`
	SystemName      string           `json:"system_name"`
	MapTimer        int              `json:"map_timer"`
	MapClock        string           `json:"map_clock"` // MM:SS
	ShipPosition    MapNode          `json:"ship_position"`
	CraftCooldown   int              `json:"craft_cooldown"`
	Slots           []SlotView       `json:"slots"`
	Counts          SlotCounts       `json:"counts"`
	Market          MarketView       `json:"market"`
	Log             []LogEntry       `json:"log"`
	Encounter       *Encounter       `json:"encounter,omitempty"`
	LastResult      *EncounterResult `json:"last_result,omitempty"`
	Warp            WarpView         `json:"warp"`
	Debug           bool             `json:"debug"`
}

// Snapshot returns a deep copy of the run.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rs := g.res
	snap := Snapshot{
		Phase:           g.phase,
		LossReason:      g.lossReason,
		HasWon:          rs.HasWon,
		GameOver:        g.phase == PhaseLost,
		Photons:         rs.Photons,
		Lightyears:      rs.Lightyears,
		WinDistance:     g.cfg.Balance.WinDistance,
		TotalLightyears: rs.TotalLightyears,
		Progress:        rs.Progress(),
		ProgressRatio:   rs.ProgressRatio(),
		MapsCompleted:   rs.MapsCompleted,
		SystemName:      SystemName(g.cfg.SystemNames, rs.MapsCompleted),
		MapTimer:        rs.MapTimer,
		MapClock:        FormatMapTime(rs.MapTimer),
		ShipPosition:    ShipMapPosition(rs.ProgressRatio(), g.cfg.Chart),
		CraftCooldown:   g.cooldown,
		Slots:           rs.SlotViews(),
		Counts:          rs.SlotCounts(),
		Market:          g.market.View(),
		Log:             rs.LogEntries(),
		Encounter:       g.encounters.Active(),
		Warp:            g.warp.View(),
		Debug:           g.cfg.Debug,
	}
	if g.lastResult != nil {
		r := *g.lastResult
		snap.LastResult = &r
	}
	return snap
}

// Market returns the current market read model.
func (g *Game) Market() MarketView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.market.View()
}

// LogEntries returns the ship's log, newest first.
func (g *Game) LogEntries() []LogEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.res.LogEntries()
}

// Slots returns a copy of the inventory as concrete items.
func (g *Game) Slots() []Item {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Item, len(g.res.Slots))
	for i, it := range g.res.Slots {
		if it != nil {
			out[i] = it.clone()
		}
	}
	return out
}
