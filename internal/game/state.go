/*
Package game
File: state.go
Description:
    Manages the runtime state of a run.
    Game is the single writer over the resources, the market, the encounter
    engine and the warp minigame. Every command and every tick takes the lock
    for its whole transition, so a mining pass and the win check it may cause
    are atomic with respect to everything else.

    Game does not own any timer; the Scheduler drives the Tick* methods.
*/

package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Phase is the lifecycle of a run. Won and Lost are terminal until the next
// map or reset.
type Phase string

const (
	PhaseRunning Phase = "running"
	PhaseWon     Phase = "won"
	PhaseLost    Phase = "lost"
)

// Options carries the collaborators injected into a Game.
// Zero fields fall back to a clock-seeded source, the system clock and a no-op notifier.
type Options struct {
	Rand     Rand
	Clock    Clock
	Notifier Notifier
}

// Game is the orchestrator facade over one run.
type Game struct {
	// mu protects every field below. Any exported method MUST hold it.
	mu sync.RWMutex

	cfg     Config
	pending *Config // Applied at the next ResetRun
	rng     Rand
	clk     Clock
	notify  Notifier

	res        *ResourceState
	market     *MarketState
	encounters *EncounterEngine
	warp       *Warp

	phase      Phase
	lossReason string
	cooldown   int // Seconds before the next craft
	lastResult *EncounterResult
}

// NewGame builds a run in its reset state.
func NewGame(cfg Config, opts Options) *Game {
	g := &Game{
		cfg:    cfg,
		rng:    opts.Rand,
		clk:    opts.Clock,
		notify: opts.Notifier,
	}
	if g.rng == nil {
		g.rng = NewRand(cfg.Seed)
	}
	if g.clk == nil {
		g.clk = RealClock{}
	}
	if g.notify == nil {
		g.notify = nopNotifier{}
	}
	g.build()
	return g
}

// build (re)creates every component from the current configuration.
func (g *Game) build() {
	g.res = NewResourceState(g.cfg, g.rng, g.clk)
	publish := func(e LogEntry) { g.emit(EventLog, e.Severity, e.Message, e) }
	g.res.OnLog(publish)
	// The reset entries were written before the hook existed; replay them oldest first.
	entries := g.res.LogEntries()
	for i := len(entries) - 1; i >= 0; i-- {
		publish(entries[i])
	}
	g.market = NewMarketState(g.cfg.Market, g.rng)
	g.encounters = NewEncounterEngine(g.cfg.Encounters, g.rng)
	g.warp = NewWarp(g.cfg.Warp, g.rng)
	g.phase = PhaseRunning
	g.lossReason = ""
	g.cooldown = 0
	g.lastResult = nil
}

func (g *Game) emit(typ EventType, sev Severity, msg string, payload any) {
	g.notify.Publish(Event{
		ID:       uuid.New(),
		Type:     typ,
		Severity: sev,
		Message:  msg,
		At:       g.clk.Now(),
		Payload:  payload,
	})
}

// Config returns the configuration of the current run.
func (g *Game) Config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cfg
}

// StageConfig queues cfg for the next ResetRun.
func (g *Game) StageConfig(cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &cfg
}

// Active reports whether the fixed-interval domains should keep running.
func (g *Game) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase == PhaseRunning
}

// PowerUp logs the start of the fixed-interval loops.
func (g *Game) PowerUp() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.res.Log("The Outrider is powered up. System check nominal.", SeverityInfo)
}

// --- Terminal transitions (caller holds mu) ---

func (g *Game) win() {
	g.phase = PhaseWon
	g.abortWarp()
	msg := "Destination reached! The " + SystemName(g.cfg.SystemNames, g.res.MapsCompleted) + " jump is complete."
	g.res.Log(msg, SeveritySuccess)
	g.emit(EventWin, SeveritySuccess, msg, nil)
}

func (g *Game) lose(reason, msg string) {
	g.phase = PhaseLost
	g.lossReason = reason
	g.abortWarp()
	g.res.Log(msg, SeverityError)
	g.emit(EventGameOver, SeverityError, msg, GameOverPayload{Reason: reason})
}

func (g *Game) abortWarp() {
	if g.warp.Running() {
		g.warp.Reset()
	}
}

// checkWin fires the win transition on the first crossing of the win distance.
func (g *Game) checkWin() {
	if g.res.CheckWin() {
		g.win()
	}
}

// --- Crafting ---

// CraftSail builds a sail at the current market power.
func (g *Game) CraftSail() (Sail, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// 1. Gates
	cost := decimal.NewFromInt(g.cfg.Balance.SailCost)
	switch {
	case g.phase != PhaseRunning:
		return Sail{}, ErrRunConcluded
	case g.cooldown > 0:
		return Sail{}, ErrCraftCooldown
	case !g.res.HasEmptySlot():
		return Sail{}, ErrInventoryFull
	case g.res.Photons.LessThan(cost):
		return Sail{}, ErrInsufficientPhotons
	}

	// 2. Build and pay
	sail := g.res.AddSail(g.market.SailPower())
	g.res.RemovePhotons(cost)
	g.cooldown = g.cfg.Balance.SailCooldown

	msg := g.res.Logf(SeverityInfo, "Crafted new Solar Sail with %d Power.", sail.Power).Message
	g.emit(EventCraft, SeverityInfo, msg, CraftPayload{Slot: g.slotOf(sail)})

	// 3. Crafting may draw attention
	g.triggerEncounter()
	return *sail, nil
}

// CraftBattery builds a battery at the current market rate.
func (g *Game) CraftBattery() (Battery, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cost := g.cfg.Balance.BatteryCost
	switch {
	case g.phase != PhaseRunning:
		return Battery{}, ErrRunConcluded
	case g.cooldown > 0:
		return Battery{}, ErrCraftCooldown
	case !g.res.HasEmptySlot():
		return Battery{}, ErrInventoryFull
	case g.res.Lightyears < cost:
		return Battery{}, ErrInsufficientLightyears
	}

	battery := g.res.AddBattery(g.market.BatteryRate())
	g.res.RemoveLightyears(cost)
	g.cooldown = g.cfg.Balance.BatteryCooldown

	msg := g.res.Logf(SeverityInfo, "Crafted a Photon Battery with a rate of %s p/s, costing %s LY.",
		battery.Rate.StringFixed(2), FormatThousands(cost)).Message
	g.emit(EventCraft, SeverityInfo, msg, CraftPayload{Slot: g.slotOf(battery)})

	g.triggerEncounter()
	return *battery, nil
}

func (g *Game) slotOf(it Item) SlotView {
	for i, s := range g.res.Slots {
		if s == it {
			return ViewSlot(i, s)
		}
	}
	return ViewSlot(-1, it)
}

// RemoveSlot jettisons the module in slot index.
func (g *Game) RemoveSlot(index int) (SlotView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := g.res.RemoveSlot(index)
	if removed == nil {
		return SlotView{}, ErrInvalidSlot
	}
	g.res.Logf(SeverityInfo, "Jettisoned %s from inventory slot %d.", removed.Kind(), index+1)
	return ViewSlot(index, removed), nil
}

// --- Encounters ---

func (g *Game) triggerEncounter() *Encounter {
	enc := g.encounters.Trigger(g.res)
	if enc != nil {
		g.emit(EventEncounterTriggered, SeverityError, enc.Description, enc)
	}
	return enc
}

// TriggerRandomEncounter attempts an encounter through the normal gates.
func (g *Game) TriggerRandomEncounter() (*Encounter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRunning {
		return nil, ErrRunConcluded
	}
	return g.triggerEncounter(), nil
}

// ResolveEncounter settles the active encounter. A wagered result is kept
// as the last encounter result until dismissed.
func (g *Game) ResolveEncounter(riskIt bool) (EncounterResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRunning {
		return EncounterResult{}, ErrRunConcluded
	}

	res, err := g.encounters.Resolve(g.res, riskIt)
	if err != nil {
		return EncounterResult{}, err
	}
	if res.Risked() {
		kept := res
		g.lastResult = &kept
	}

	sev := SeverityInfo
	switch {
	case res.Outcome == OutcomeInsufficient || res.Outcome == OutcomeFailure:
		sev = SeverityError
	case res.Outcome == OutcomeSuccess && res.Net >= 0:
		sev = SeveritySuccess
	case res.Outcome == OutcomeSuccess:
		sev = SeverityError
	}
	g.emit(EventEncounterResolved, sev, res.Message, res)

	g.checkWin()
	return res, nil
}

// ActiveEncounter returns the pending encounter, or nil.
func (g *Game) ActiveEncounter() *Encounter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.encounters.Active()
}

// LastEncounterResult returns the last wagered result, or nil.
func (g *Game) LastEncounterResult() *EncounterResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.lastResult == nil {
		return nil
	}
	r := *g.lastResult
	return &r
}

// DismissEncounterResult forgets the last wagered result.
func (g *Game) DismissEncounterResult() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastResult = nil
}

// --- Black hole ---

// EnterBlackhole pays the entry cost, destroys every sail and starts the warp minigame.
// The cost is sunk whatever the outcome.
func (g *Game) EnterBlackhole() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cost := g.cfg.Balance.BlackholeCost
	switch {
	case g.phase != PhaseRunning:
		return ErrRunConcluded
	case g.warp.Running():
		return ErrWarpInProgress
	case g.res.Lightyears < cost:
		return ErrInsufficientLightyears
	}

	g.res.RemoveLightyears(cost)
	g.res.DestroyAllSails()
	g.res.Log("All sails destroyed! Entering black hole...", SeverityError)

	if err := g.warp.Start(g.onWarpSuccess, g.onWarpFailure); err != nil {
		return err
	}
	g.emit(EventWarpStarted, SeverityInfo, "", g.warp.View())
	return nil
}

// onWarpSuccess runs inside WarpOut with mu held.
func (g *Game) onWarpSuccess(score int) {
	g.res.Logf(SeveritySuccess, "Successfully warped out of the black hole! Gained %s lightyears.", FormatThousands(score))
	g.res.AddLightyears(score)
	g.checkWin()
}

// onWarpFailure runs inside StepWarp with mu held.
func (g *Game) onWarpFailure() {
	g.lose("warp", "Lost in the black hole! The Outrider is gone...")
}

// ApplyWarpInput sets the steering axis of the running minigame.
func (g *Game) ApplyWarpInput(value int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.warp.ApplyInput(value)
}

// WarpOut banks the minigame score.
func (g *Game) WarpOut() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.warp.WarpOut()
}

// StepWarp advances the minigame by one frame. It reports whether further frames are needed.
func (g *Game) StepWarp() (WarpView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.warp.Step()
	return g.warp.View(), g.warp.Running()
}

// WarpRunning reports whether the minigame is in progress.
func (g *Game) WarpRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.warp.Running()
}

// --- Map progression ---

// AdvanceToNextMap banks the cleared map and arms the next one.
func (g *Game) AdvanceToNextMap() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseWon {
		return ErrMapNotCleared
	}

	g.res.AdvanceToNextMap()
	g.encounters.Clear()
	g.phase = PhaseRunning

	msg := g.res.Logf(SeverityInfo, "Jumped to %s. Map timer: %s.",
		SystemName(g.cfg.SystemNames, g.res.MapsCompleted), FormatMapTime(g.res.MapTimer)).Message
	g.emit(EventMapAdvanced, SeverityInfo, msg, nil)
	return nil
}

// ResetRun restarts the session from scratch, applying any staged configuration.
func (g *Game) ResetRun() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		g.cfg = *g.pending
		g.pending = nil
	}
	g.build()
	g.emit(EventReset, SeverityInfo, "", nil)
}

// --- Ticks ---

// TickPhotons pays out the battery income.
func (g *Game) TickPhotons() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRunning {
		return
	}
	if rate := g.res.TotalPhotonRate(); rate.IsPositive() {
		g.res.AddPhotons(rate)
	}
}

// TickMining runs one mining/decay pass and evaluates the win condition.
func (g *Game) TickMining() MiningResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRunning || g.res.HasWon {
		return MiningResult{}
	}

	r := g.res.ProcessMiningCycle()
	for _, s := range r.Broken {
		g.emit(EventSailBroken, SeverityError, "", s)
	}
	sev := SeveritySuccess
	if r.LyGain == 0 {
		sev = SeverityInfo
	}
	g.emit(EventMining, sev, "", r)

	if r.LyGain > 0 {
		g.res.AddLightyears(r.LyGain)
		g.checkWin()
	}
	return r
}

// TickMapTimer counts the map clock down; expiry loses the run.
func (g *Game) TickMapTimer() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRunning || g.res.HasWon {
		return
	}
	if g.res.TickMapTimer() {
		g.lose("timer", "The map timer has expired. The Outrider has been caught...")
	}
}

// TickCooldown counts the craft lockout down.
func (g *Game) TickCooldown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cooldown > 0 {
		g.cooldown--
	}
}

// TickMarket moves both market gauges.
func (g *Game) TickMarket() MarketView {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRunning {
		return g.market.View()
	}
	view := g.market.MarketTick()
	g.emit(EventMarket, SeverityInfo, "", view)
	return view
}

// --- Debug ---

// MintLightyears grants the debug lightyear mint.
func (g *Game) MintLightyears() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.debugGate(); err != nil {
		return err
	}
	amount := g.cfg.Balance.DebugLightyearMint
	g.res.AddLightyears(amount)
	g.res.Logf(SeverityInfo, "TEST: Minted %s lightyears.", FormatThousands(amount))
	g.checkWin()
	return nil
}

// MintPhotons grants the debug photon mint.
func (g *Game) MintPhotons() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.debugGate(); err != nil {
		return err
	}
	amount := g.cfg.Balance.DebugPhotonMint
	g.res.AddPhotons(decimal.NewFromInt(amount))
	g.res.Logf(SeverityInfo, "TEST: Minted %s photons.", FormatThousands(int(amount)))
	return nil
}

// ForceEncounter activates an encounter bypassing the trigger gates.
func (g *Game) ForceEncounter() (*Encounter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.debugGate(); err != nil {
		return nil, err
	}
	g.res.Log("TEST: Forcing random encounter.", SeverityInfo)
	enc := g.encounters.Force(g.res)
	if enc != nil {
		g.emit(EventEncounterTriggered, SeverityError, enc.Description, enc)
	}
	return enc, nil
}

func (g *Game) debugGate() error {
	if !g.cfg.Debug {
		return ErrDebugDisabled
	}
	if g.phase != PhaseRunning {
		return ErrRunConcluded
	}
	return nil
}
