/*
Package game
File: scheduler.go
Description:
    Owns every timer of a run.
    Each fixed-interval domain (photon drip, mining, map clock, craft
    cooldown, market) gets its own goroutine and ticker. When a tick leaves the
    run concluded, the shared context is cancelled and every loop exits; the
    next Start (after a reset or a new map) brings them back.

    The warp minigame has its own frame loop, started on demand, which stops
    by itself once the minigame resolves.
*/

package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler drives a Game in real time.
type Scheduler struct {
	game *Game

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	warpLoop atomic.Bool
}

// NewScheduler returns a stopped scheduler for g.
func NewScheduler(g *Game) *Scheduler {
	closed := make(chan struct{})
	close(closed)
	return &Scheduler{game: g, done: closed}
}

// Start launches the fixed-interval loops. A running set of loops is stopped first.
// Stopping and launching happen under one lock, so concurrent calls leave exactly one set running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()

	timing := s.game.Config().Timing
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.game.PowerUp()

	var wg sync.WaitGroup
	run := func(ms int, tick func()) {
		wg.Add(1)
		go s.loop(loopCtx, cancel, &wg, Interval(ms), tick)
	}
	run(timing.PhotonDripMs, s.game.TickPhotons)
	run(timing.MiningMs, func() { s.game.TickMining() })
	run(timing.MapTimerMs, s.game.TickMapTimer)
	run(timing.CooldownMs, s.game.TickCooldown)
	run(timing.MarketMs, func() { s.game.TickMarket() })

	go func() {
		wg.Wait()
		close(done)
	}()
}

func (s *Scheduler) loop(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup, every time.Duration, tick func()) {
	defer wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
			// A concluded run tears down every loop, not just this one.
			if !s.game.Active() {
				cancel()
				return
			}
		}
	}
}

// Stop cancels the loops and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

// stop requires s.mu. The loops never take s.mu, so waiting here cannot deadlock.
func (s *Scheduler) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	<-s.done
}

// Restart is Stop followed by Start.
func (s *Scheduler) Restart(ctx context.Context) {
	s.Start(ctx)
}

// Done is closed once the current set of loops has exited.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// RunWarp steps the minigame at the configured frame rate until it resolves or ctx ends.
// onFrame (optional) receives every frame. Only one frame loop runs at a time;
// a second call returns immediately. A minigame started while the previous
// loop was winding down is picked up by that loop.
func (s *Scheduler) RunWarp(ctx context.Context, onFrame func(WarpView)) {
	for s.warpLoop.CompareAndSwap(false, true) {
		s.stepWarp(ctx, onFrame)
		s.warpLoop.Store(false)
		if ctx.Err() != nil || !s.game.WarpRunning() {
			return
		}
	}
}

func (s *Scheduler) stepWarp(ctx context.Context, onFrame func(WarpView)) {
	rate := s.game.Config().Warp.FrameRate
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			view, running := s.game.StepWarp()
			if onFrame != nil {
				onFrame(view)
			}
			if !running {
				return
			}
		}
	}
}
