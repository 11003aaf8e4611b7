/*
Package game
File: config.go
Description:
    Loads the run configuration.
    The embedded 'default_config.yaml' is always decoded first; an operator
    file (if any) is then decoded on top of it so that it only needs to carry
    the keys it wants to change.
*/

package game

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MapCycleLength is the number of maps in one system cycle.
const MapCycleLength = 6

//go:embed default_config.yaml
var defaultConfigYAML []byte

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultConfig decodes the embedded configuration.
// The embedded file ships with the binary, so a decode failure is a build defect.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("game: embedded default config: %v", err))
	}
	return cfg
}

// LoadConfig reads the yaml file at path over the defaults and validates the result.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	// 1. Read the YAML file
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// 2. Overlay onto the defaults. yaml.v3 replaces whole sequences, so a
	// catalog given here fully replaces the default catalog.
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}

	// 3. Validate
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first inconsistency found in the configuration.
func (c Config) Validate() error {
	b := c.Balance
	switch {
	case b.WinDistance <= 0:
		return invalid("game_balance.win_distance must be positive")
	case b.SlotCount <= 0:
		return invalid("game_balance.slot_count must be positive")
	case b.SailMaxDurability <= 0:
		return invalid("game_balance.sail_max_durability must be positive")
	case b.DecayMin < 0 || b.DecayMin > b.DecayMax:
		return invalid("game_balance.decay_min must be within [0, decay_max]")
	case b.MiningMultMin < 0 || b.MiningMultMin > b.MiningMultMax:
		return invalid("game_balance.mining_mult_min must be within [0, mining_mult_max]")
	case b.StartingPhotons < 0 || b.SailCost < 0 || b.BatteryCost < 0 || b.BlackholeCost < 0:
		return invalid("game_balance costs must not be negative")
	}

	if len(c.MapDurations) != MapCycleLength {
		return invalid(fmt.Sprintf("map_durations needs %d entries, got %d", MapCycleLength, len(c.MapDurations)))
	}
	for i, d := range c.MapDurations {
		if d <= 0 {
			return invalid(fmt.Sprintf("map_durations[%d] must be positive", i))
		}
	}
	if len(c.SystemNames) == 0 {
		return invalid("system_names must not be empty")
	}

	t := c.Timing
	if t.PhotonDripMs <= 0 || t.MiningMs <= 0 || t.MapTimerMs <= 0 || t.CooldownMs <= 0 || t.MarketMs <= 0 {
		return invalid("timing intervals must be positive")
	}

	for name, g := range map[string]Gauge{
		"market.sun_intensity":          c.Market.SunIntensity,
		"market.substrate_conductivity": c.Market.SubstrateConductivity,
	} {
		if g.Min > g.Max || g.Initial < g.Min || g.Initial > g.Max || g.Step < 0 {
			return invalid(name + " bounds are not ordered")
		}
	}

	e := c.Encounters
	if !isChance(e.TriggerChance) {
		return invalid("encounters.trigger_chance must be within [0, 1]")
	}
	if e.FailureReward.Min > e.FailureReward.Max {
		return invalid("encounters.failure_reward bounds are not ordered")
	}
	for _, enc := range e.Catalog {
		if !isChance(enc.TriggerChance) || !isChance(enc.WinChance) {
			return invalid(fmt.Sprintf("encounter %q chances must be within [0, 1]", enc.Name))
		}
		if enc.MinReward > enc.MaxReward || enc.LyCost < 0 {
			return invalid(fmt.Sprintf("encounter %q rewards are not ordered", enc.Name))
		}
	}

	w := c.Warp
	switch {
	case w.FieldWidth <= 0 || w.FieldHeight <= 0:
		return invalid("warp field must have a positive size")
	case w.MinGapRatio <= 0 || w.MinGapRatio > w.MaxGapRatio || w.MaxGapRatio > 1:
		return invalid("warp gap ratios must satisfy 0 < min <= max <= 1")
	case w.FrameRate <= 0 || w.SpeedEvery <= 0 || w.SpawnEvery <= 0 || w.MinSpawnInterval <= 0:
		return invalid("warp pacing values must be positive")
	}
	return nil
}

// Interval converts a millisecond setting into a time.Duration.
func Interval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

func isChance(p float64) bool {
	return p >= 0 && p <= 1
}
