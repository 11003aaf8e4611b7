package game

import (
	"sync"
	"time"
)

// scriptedRand replays queued values. Once a queue is empty it returns zero.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// constRand always returns the same values.
type constRand struct {
	i int
	f float64
}

func (c constRand) Intn(n int) int    { return c.i % n }
func (c constRand) Float64() float64 { return c.f }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(typ EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func newTestState(rng Rand) *ResourceState {
	return NewResourceState(DefaultConfig(), rng, newFakeClock())
}

func newTestGame(rng Rand, mutate func(*Config)) (*Game, *recorder) {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	rec := &recorder{}
	g := NewGame(cfg, Options{Rand: rng, Clock: newFakeClock(), Notifier: rec})
	return g, rec
}
