/*
Package game
File: warp.go
Description:
    The black hole warp minigame: a fixed-timestep lane dodger.
    Walls with a single gap scroll down the track; the player steers with an
    analog axis in [-100, 100] and may warp out at any time to bank the
    score, which grows with every survived frame. Touching a wall loses the run.

    Geometry is in logical units on a FieldWidth x FieldHeight field with y
    growing downwards. Horizontal positions (player, gap centres) are relative
    to the track centre line.

    Warp is not safe for concurrent use; the Game serializes access.
    The outcome callbacks run synchronously inside Step / WarpOut.
*/

package game

import "math"

// WarpPhase is the minigame state machine.
type WarpPhase string

const (
	WarpIdle    WarpPhase = "idle"
	WarpRunning WarpPhase = "running"
	WarpSuccess WarpPhase = "resolved_success"
	WarpFailure WarpPhase = "resolved_failure"
)

// InputLimit bounds the steering axis.
const InputLimit = 100

// Obstacle is a wall spanning the track with one gap.
type Obstacle struct {
	Y    float64 `json:"y"` // Top edge
	H    float64 `json:"h"`
	GapX float64 `json:"gap_x"` // Gap centre, relative to the track centre
	GapW float64 `json:"gap_w"`
}

// WarpView is the read model handed to renderers.
type WarpView struct {
	Phase         WarpPhase  `json:"phase"`
	Frames        int        `json:"frames"`
	Score         int        `json:"score"`
	Input         int        `json:"input"`
	PlayerX       float64    `json:"player_x"`
	Speed         float64    `json:"speed"`
	SpawnInterval int        `json:"spawn_interval"`
	Obstacles     []Obstacle `json:"obstacles"`
	FieldWidth    float64    `json:"field_width"`
	FieldHeight   float64    `json:"field_height"`
	TrackWidth    float64    `json:"track_width"`
	PlayerWidth   float64    `json:"player_width"`
}

// Warp holds one minigame session.
type Warp struct {
	cfg WarpConfig
	rng Rand

	phase         WarpPhase
	input         int
	playerX       float64
	obstacles     []Obstacle
	frames        int
	score         int
	speed         float64
	spawnInterval int

	onSuccess func(score int)
	onFailure func()
}

// NewWarp returns an idle minigame.
func NewWarp(cfg WarpConfig, rng Rand) *Warp {
	w := &Warp{cfg: cfg, rng: rng}
	w.Reset()
	return w
}

// Reset returns to idle and forgets the callbacks.
func (w *Warp) Reset() {
	w.phase = WarpIdle
	w.input = 0
	w.playerX = 0
	w.obstacles = nil
	w.frames = 0
	w.score = 0
	w.speed = w.cfg.BaseSpeed
	w.spawnInterval = w.cfg.SpawnInterval
	w.onSuccess = nil
	w.onFailure = nil
}

// Start begins a fresh session. Either callback may be nil.
func (w *Warp) Start(onSuccess func(score int), onFailure func()) error {
	if w.phase == WarpRunning {
		return ErrWarpInProgress
	}
	w.Reset()
	w.onSuccess = onSuccess
	w.onFailure = onFailure
	w.phase = WarpRunning
	return nil
}

// Running reports whether frames should be scheduled.
func (w *Warp) Running() bool { return w.phase == WarpRunning }

// Phase returns the current state.
func (w *Warp) Phase() WarpPhase { return w.phase }

// Score returns the score accumulated so far.
func (w *Warp) Score() int { return w.score }

// ApplyInput sets the steering axis, clamped to [-100, 100]. It takes effect on the next frame.
func (w *Warp) ApplyInput(value int) error {
	if w.phase != WarpRunning {
		return ErrWarpNotRunning
	}
	w.input = Clamp(value, -InputLimit, InputLimit)
	return nil
}

// WarpOut ends the session successfully and hands the score to the success callback.
func (w *Warp) WarpOut() (int, error) {
	if w.phase != WarpRunning {
		return 0, ErrWarpNotRunning
	}
	w.phase = WarpSuccess
	if w.onSuccess != nil {
		w.onSuccess(w.score)
	}
	return w.score, nil
}

// Step advances the simulation by one frame and returns the resulting phase.
// Outside the running phase it does nothing.
func (w *Warp) Step() WarpPhase {
	if w.phase != WarpRunning {
		return w.phase
	}
	frame := w.frames
	trackW := w.trackWidth()

	// 1. Steering
	maxDeviation := trackW/2 - w.cfg.PlayerWidth/2
	w.playerX = maxDeviation * float64(w.input) / InputLimit

	// 2. Difficulty ramp
	w.speed = w.cfg.BaseSpeed + float64(frame/w.cfg.SpeedEvery)*w.cfg.SpeedStep
	w.spawnInterval = max(w.cfg.MinSpawnInterval, w.cfg.SpawnInterval-(frame/w.cfg.SpawnEvery)*w.cfg.SpawnStep)

	// 3. Scroll walls and drop the ones past the bottom edge
	kept := w.obstacles[:0]
	for _, obs := range w.obstacles {
		obs.Y += w.speed
		if obs.Y < w.cfg.FieldHeight {
			kept = append(kept, obs)
		}
	}
	w.obstacles = kept

	// 4. Spawn after the grace period, on the interval
	if frame > w.cfg.GraceFrames && frame%w.spawnInterval == 0 {
		w.obstacles = append(w.obstacles, w.spawnObstacle(trackW))
	}

	// 5. Collision
	if w.collides() {
		w.phase = WarpFailure
		if w.onFailure != nil {
			w.onFailure()
		}
		return w.phase
	}

	w.frames++
	w.score = w.frames * w.cfg.ScorePerFrame
	return w.phase
}

func (w *Warp) trackWidth() float64 {
	return w.cfg.FieldWidth * w.cfg.TrackWidthRatio
}

// spawnObstacle places a gap of random width uniformly inside the track.
func (w *Warp) spawnObstacle(trackW float64) Obstacle {
	gapW := RandFloatRange(w.rng, trackW*w.cfg.MinGapRatio, trackW*w.cfg.MaxGapRatio)
	half := trackW / 2
	gapX := RandFloatRange(w.rng, -half+gapW/2, half-gapW/2)
	return Obstacle{Y: w.cfg.ObstacleSpawnY, H: w.cfg.ObstacleHeight, GapX: gapX, GapW: gapW}
}

// collides reports whether any vertically overlapping wall catches the player's hitbox.
func (w *Warp) collides() bool {
	playerH := w.cfg.PlayerWidth * w.cfg.PlayerHeightMult
	top := w.cfg.FieldHeight - w.cfg.FieldHeight*w.cfg.PlayerLift - playerH
	bottom := top + playerH
	left := w.playerX - w.cfg.PlayerWidth/2
	right := w.playerX + w.cfg.PlayerWidth/2

	for _, obs := range w.obstacles {
		if obs.Y+obs.H > top && obs.Y < bottom {
			if left < obs.GapX-obs.GapW/2 || right > obs.GapX+obs.GapW/2 {
				return true
			}
		}
	}
	return false
}

// View returns a copy of the session state.
func (w *Warp) View() WarpView {
	obstacles := make([]Obstacle, len(w.obstacles))
	copy(obstacles, w.obstacles)
	return WarpView{
		Phase:         w.phase,
		Frames:        w.frames,
		Score:         w.score,
		Input:         w.input,
		PlayerX:       roundTo(w.playerX, 2),
		Speed:         w.speed,
		SpawnInterval: w.spawnInterval,
		Obstacles:     obstacles,
		FieldWidth:    w.cfg.FieldWidth,
		FieldHeight:   w.cfg.FieldHeight,
		TrackWidth:    w.trackWidth(),
		PlayerWidth:   w.cfg.PlayerWidth,
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
