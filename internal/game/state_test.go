package game

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// quietRand never passes the encounter gate and rolls the minimum everywhere else.
var quietRand = constRand{f: 0.9}

func debugOn(cfg *Config) { cfg.Debug = true }

func TestCraftSail(t *testing.T) {
	g, rec := newTestGame(quietRand, nil)

	sail, err := g.CraftSail()
	if err != nil {
		t.Fatalf("CraftSail: unexpected error %v", err)
	}
	if sail.Power != 500 || sail.Durability != 100 {
		t.Fatalf("CraftSail: unexpected sail %+v", sail)
	}

	snap := g.Snapshot()
	if !snap.Photons.IsZero() {
		t.Fatalf("Photons: expected 0 got %s", snap.Photons)
	}
	if snap.CraftCooldown != 10 {
		t.Fatalf("CraftCooldown: expected 10 got %d", snap.CraftCooldown)
	}
	if snap.Counts.Sails != 1 || snap.Slots[0].Kind != KindSail {
		t.Fatalf("Slots: expected a sail in slot 0 got %+v", snap.Slots[0])
	}
	if rec.count(EventCraft) != 1 {
		t.Fatalf("events: expected one craft event got %d", rec.count(EventCraft))
	}
}

func TestCraftRefusalsLeaveStateUnchanged(t *testing.T) {
	g, _ := newTestGame(quietRand, nil)
	g.CraftSail()

	if _, err := g.CraftSail(); !errors.Is(err, ErrCraftCooldown) {
		t.Fatalf("CraftSail: expected ErrCraftCooldown got %v", err)
	}
	for range 10 {
		g.TickCooldown()
	}
	before := g.Snapshot()
	if _, err := g.CraftSail(); !errors.Is(err, ErrInsufficientPhotons) {
		t.Fatalf("CraftSail: expected ErrInsufficientPhotons got %v", err)
	}
	if _, err := g.CraftBattery(); !errors.Is(err, ErrInsufficientLightyears) {
		t.Fatalf("CraftBattery: expected ErrInsufficientLightyears got %v", err)
	}
	after := g.Snapshot()
	if !after.Photons.Equal(before.Photons) || after.Counts.Sails != before.Counts.Sails || after.CraftCooldown != 0 {
		t.Fatalf("refusal: expected no change, before %+v after %+v", before.Counts, after.Counts)
	}
}

func TestCraftBattery(t *testing.T) {
	g, _ := newTestGame(quietRand, debugOn)
	g.MintLightyears()

	b, err := g.CraftBattery()
	if err != nil {
		t.Fatalf("CraftBattery: unexpected error %v", err)
	}
	if !b.Rate.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("Rate: expected 4 got %s", b.Rate)
	}
	snap := g.Snapshot()
	if snap.Lightyears != 245000 || snap.CraftCooldown != 5 {
		t.Fatalf("CraftBattery: expected 245000 LY and cooldown 5 got %d / %d", snap.Lightyears, snap.CraftCooldown)
	}

	g.TickPhotons()
	if got := g.Snapshot().Photons; !got.Equal(decimal.NewFromInt(254)) {
		t.Fatalf("TickPhotons: expected 254 got %s", got)
	}
}

func TestCraftInventoryFull(t *testing.T) {
	g, _ := newTestGame(quietRand, debugOn)
	g.MintPhotons()
	g.MintPhotons()

	for i := range 8 {
		if _, err := g.CraftSail(); err != nil {
			t.Fatalf("CraftSail %d: unexpected error %v", i, err)
		}
		for range 10 {
			g.TickCooldown()
		}
	}
	if _, err := g.CraftSail(); !errors.Is(err, ErrInventoryFull) {
		t.Fatalf("CraftSail: expected ErrInventoryFull got %v", err)
	}

	if _, err := g.RemoveSlot(2); err != nil {
		t.Fatalf("RemoveSlot: unexpected error %v", err)
	}
	if _, err := g.RemoveSlot(2); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("RemoveSlot empty: expected ErrInvalidSlot got %v", err)
	}
	if _, err := g.CraftSail(); err != nil {
		t.Fatalf("CraftSail after jettison: unexpected error %v", err)
	}
}

func TestMiningWinFiresOnce(t *testing.T) {
	g, rec := newTestGame(quietRand, func(cfg *Config) { cfg.Balance.WinDistance = 1000 })
	g.CraftSail()

	r := g.TickMining()
	if r.LyGain != 2500 {
		t.Fatalf("TickMining: expected gain 2500 got %d", r.LyGain)
	}
	snap := g.Snapshot()
	if snap.Lightyears != 1000 || !snap.HasWon || snap.Phase != PhaseWon {
		t.Fatalf("win: unexpected snapshot ly %d won %v phase %s", snap.Lightyears, snap.HasWon, snap.Phase)
	}
	if g.Active() {
		t.Fatalf("Active: expected false after a win")
	}

	g.TickMining()
	if rec.count(EventWin) != 1 {
		t.Fatalf("events: expected exactly one win got %d", rec.count(EventWin))
	}
	if _, err := g.CraftSail(); !errors.Is(err, ErrRunConcluded) {
		t.Fatalf("CraftSail after win: expected ErrRunConcluded got %v", err)
	}
}

func TestMapTimerExpiryLoses(t *testing.T) {
	g, rec := newTestGame(quietRand, func(cfg *Config) {
		cfg.MapDurations[0] = 2
		cfg.Balance.MinMapTimer = 1
	})

	g.TickMapTimer()
	if !g.Active() {
		t.Fatalf("Active: expected true with one second left")
	}
	g.TickMapTimer()

	snap := g.Snapshot()
	if !snap.GameOver || snap.LossReason != "timer" || snap.Phase != PhaseLost {
		t.Fatalf("expiry: unexpected %s / %q", snap.Phase, snap.LossReason)
	}
	ev, ok := rec.last(EventGameOver)
	if !ok || ev.Payload.(GameOverPayload).Reason != "timer" {
		t.Fatalf("events: expected a game_over with reason timer got %+v", ev)
	}
	if err := g.AdvanceToNextMap(); !errors.Is(err, ErrMapNotCleared) {
		t.Fatalf("AdvanceToNextMap after a loss: expected ErrMapNotCleared got %v", err)
	}
}

func TestBlackholeWarpOutBanksScore(t *testing.T) {
	g, rec := newTestGame(quietRand, debugOn)
	g.MintPhotons()
	g.CraftSail()
	g.MintLightyears()

	if err := g.EnterBlackhole(); err != nil {
		t.Fatalf("EnterBlackhole: unexpected error %v", err)
	}
	if err := g.EnterBlackhole(); !errors.Is(err, ErrWarpInProgress) {
		t.Fatalf("EnterBlackhole twice: expected ErrWarpInProgress got %v", err)
	}
	snap := g.Snapshot()
	if snap.Lightyears != 0 || snap.Counts.Sails != 0 {
		t.Fatalf("entry: expected cost paid and sails destroyed got %d LY / %d sails", snap.Lightyears, snap.Counts.Sails)
	}
	if rec.count(EventWarpStarted) != 1 {
		t.Fatalf("events: expected warp_started")
	}

	for range 10 {
		if _, running := g.StepWarp(); !running {
			t.Fatalf("StepWarp: expected to keep running")
		}
	}
	score, err := g.WarpOut()
	if err != nil || score != 1670 {
		t.Fatalf("WarpOut: expected 1670 got %d (%v)", score, err)
	}
	if got := g.Snapshot().Lightyears; got != 1670 {
		t.Fatalf("Lightyears: expected 1670 got %d", got)
	}
	if !g.Active() || g.WarpRunning() {
		t.Fatalf("after warp out: expected an active run with no warp")
	}
}

func TestBlackholeRequiresLightyears(t *testing.T) {
	g, _ := newTestGame(quietRand, nil)
	if err := g.EnterBlackhole(); !errors.Is(err, ErrInsufficientLightyears) {
		t.Fatalf("EnterBlackhole: expected ErrInsufficientLightyears got %v", err)
	}
}

func TestWarpCollisionLosesRun(t *testing.T) {
	g, _ := newTestGame(constRand{f: 0.5}, debugOn)
	g.MintLightyears()
	g.EnterBlackhole()
	g.ApplyWarpInput(InputLimit)

	running := true
	for i := 0; running && i < 300; i++ {
		_, running = g.StepWarp()
	}
	snap := g.Snapshot()
	if snap.Phase != PhaseLost || snap.LossReason != "warp" {
		t.Fatalf("collision: expected a warp loss got %s / %q", snap.Phase, snap.LossReason)
	}
	if snap.Warp.Phase != WarpFailure {
		t.Fatalf("Warp.Phase: expected resolved_failure got %s", snap.Warp.Phase)
	}
}

func TestWinAbortsRunningWarp(t *testing.T) {
	g, _ := newTestGame(quietRand, func(cfg *Config) {
		cfg.Debug = true
		cfg.Balance.BlackholeCost = 1000
		cfg.Balance.WinDistance = 250500
	})
	g.MintLightyears()
	if err := g.EnterBlackhole(); err != nil {
		t.Fatalf("EnterBlackhole: unexpected error %v", err)
	}
	g.MintLightyears()

	if g.Snapshot().Phase != PhaseWon {
		t.Fatalf("Phase: expected won")
	}
	if g.WarpRunning() {
		t.Fatalf("WarpRunning: expected the win to abort the minigame")
	}
	if _, err := g.WarpOut(); !errors.Is(err, ErrWarpNotRunning) {
		t.Fatalf("WarpOut: expected ErrWarpNotRunning got %v", err)
	}
}

func TestAdvanceToNextMap(t *testing.T) {
	g, rec := newTestGame(quietRand, func(cfg *Config) {
		cfg.Debug = true
		cfg.Balance.WinDistance = 250000
	})

	if err := g.AdvanceToNextMap(); !errors.Is(err, ErrMapNotCleared) {
		t.Fatalf("AdvanceToNextMap: expected ErrMapNotCleared got %v", err)
	}
	g.MintLightyears()
	if err := g.AdvanceToNextMap(); err != nil {
		t.Fatalf("AdvanceToNextMap: unexpected error %v", err)
	}

	snap := g.Snapshot()
	if snap.MapTimer != 210 || snap.MapsCompleted != 1 || snap.TotalLightyears != 250000 || snap.Lightyears != 0 {
		t.Fatalf("next map: unexpected timer %d maps %d total %d ly %d",
			snap.MapTimer, snap.MapsCompleted, snap.TotalLightyears, snap.Lightyears)
	}
	if snap.SystemName != DefaultConfig().SystemNames[1] {
		t.Fatalf("SystemName: expected the second system got %q", snap.SystemName)
	}
	if !g.Active() || rec.count(EventMapAdvanced) != 1 {
		t.Fatalf("next map: expected an active run and one map_advanced event")
	}
}

func TestResetAppliesStagedConfig(t *testing.T) {
	g, rec := newTestGame(quietRand, nil)
	g.CraftSail()

	next := DefaultConfig()
	next.Balance.StartingPhotons = 999
	g.StageConfig(next)
	if g.Config().Balance.StartingPhotons != 250 {
		t.Fatalf("StageConfig: expected the running config untouched")
	}

	g.ResetRun()
	snap := g.Snapshot()
	if !snap.Photons.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("Photons: expected 999 got %s", snap.Photons)
	}
	if snap.Counts.Sails != 0 || snap.CraftCooldown != 0 || snap.MapTimer != 330 {
		t.Fatalf("reset: unexpected snapshot %+v", snap.Counts)
	}
	if rec.count(EventReset) != 1 {
		t.Fatalf("events: expected one reset")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	g, _ := newTestGame(quietRand, nil)
	g.CraftSail()

	snap := g.Snapshot()
	snap.Slots[0].Power = 1
	snap.Log[0].Message = "tampered"

	fresh := g.Snapshot()
	if fresh.Slots[0].Power != 500 || fresh.Log[0].Message == "tampered" {
		t.Fatalf("Snapshot: expected copies to be independent")
	}

	items := g.Slots()
	items[0].(*Sail).Durability = 0
	if g.Slots()[0].(*Sail).Durability != 100 {
		t.Fatalf("Slots: expected cloned items")
	}
}

func TestDebugCommandsDisabled(t *testing.T) {
	g, _ := newTestGame(quietRand, nil)

	if err := g.MintLightyears(); !errors.Is(err, ErrDebugDisabled) {
		t.Fatalf("MintLightyears: expected ErrDebugDisabled got %v", err)
	}
	if err := g.MintPhotons(); !errors.Is(err, ErrDebugDisabled) {
		t.Fatalf("MintPhotons: expected ErrDebugDisabled got %v", err)
	}
	if _, err := g.ForceEncounter(); !errors.Is(err, ErrDebugDisabled) {
		t.Fatalf("ForceEncounter: expected ErrDebugDisabled got %v", err)
	}
}

func TestForceAndResolveEncounter(t *testing.T) {
	// 0.1 walks to the third catalog entry and wins its wager
	g, rec := newTestGame(constRand{f: 0.1}, debugOn)
	g.MintLightyears()

	enc, err := g.ForceEncounter()
	if err != nil || enc == nil || enc.Name != "The Ghost Market" {
		t.Fatalf("ForceEncounter: unexpected %+v (%v)", enc, err)
	}
	if g.ActiveEncounter() == nil || rec.count(EventEncounterTriggered) != 1 {
		t.Fatalf("ForceEncounter: expected an active encounter and one event")
	}

	res, err := g.ResolveEncounter(true)
	if err != nil || res.Outcome != OutcomeSuccess {
		t.Fatalf("ResolveEncounter: unexpected %+v (%v)", res, err)
	}
	if g.ActiveEncounter() != nil {
		t.Fatalf("ActiveEncounter: expected cleared")
	}
	last := g.LastEncounterResult()
	if last == nil || last.ID != res.ID {
		t.Fatalf("LastEncounterResult: expected the wagered result")
	}
	if got := g.Snapshot().Lightyears; got != 250000+res.Net {
		t.Fatalf("Lightyears: expected %d got %d", 250000+res.Net, got)
	}

	g.DismissEncounterResult()
	if g.LastEncounterResult() != nil {
		t.Fatalf("DismissEncounterResult: expected nil")
	}
	if _, err := g.ResolveEncounter(false); !errors.Is(err, ErrNoActiveEncounter) {
		t.Fatalf("ResolveEncounter: expected ErrNoActiveEncounter got %v", err)
	}
}

func TestCraftingCanTriggerEncounter(t *testing.T) {
	g, rec := newTestGame(constRand{f: 0.1}, debugOn)
	g.MintLightyears()

	g.CraftSail()
	if g.ActiveEncounter() == nil || rec.count(EventEncounterTriggered) != 1 {
		t.Fatalf("CraftSail: expected an encounter above the participation floor")
	}

	for range 10 {
		g.TickCooldown()
	}
	g.MintPhotons()
	g.CraftSail()
	if rec.count(EventEncounterTriggered) != 1 {
		t.Fatalf("CraftSail: expected no second encounter while one is active")
	}
}

func TestStartupLogIsPublished(t *testing.T) {
	g, rec := newTestGame(quietRand, nil)

	ev, ok := rec.last(EventLog)
	if !ok || ev.Message != "The Outrider is ready for warp..." {
		t.Fatalf("events: expected the startup log line got %+v", ev)
	}

	g.CraftSail()
	before := rec.count(EventLog)
	g.ResetRun()
	ev, _ = rec.last(EventLog)
	if rec.count(EventLog) != before+1 || ev.Message != "The Outrider is ready for warp..." {
		t.Fatalf("events: expected ResetRun to publish the startup log line got %+v", ev)
	}
}
