/*
Package game
File: models.go
Description:
    Defines the configuration schema of the Outrider run.
    Every tunable constant of the rules engine lives here and maps directly to
    the embedded 'default_config.yaml' (or an operator supplied override file).

    No logic is performed here; this file is strictly for type definitions.
*/

package game

// GameBalance stores the global economy constants of a run.
type GameBalance struct {
	WinDistance        int   `yaml:"win_distance" json:"win_distance"`                 // Lightyears needed to clear a map
	StartingPhotons    int64 `yaml:"starting_photons" json:"starting_photons"`         // Photons granted on reset
	SlotCount          int   `yaml:"slot_count" json:"slot_count"`                     // Inventory slots (sails + batteries)
	SailCost           int64 `yaml:"sail_cost" json:"sail_cost"`                       // Photons per crafted sail
	BatteryCost        int   `yaml:"battery_cost" json:"battery_cost"`                 // Lightyears per crafted battery
	SailMaxDurability  int   `yaml:"sail_max_durability" json:"sail_max_durability"`   // Durability of a fresh sail
	SailCooldown       int   `yaml:"sail_cooldown" json:"sail_cooldown"`               // Seconds of craft lockout after a sail
	BatteryCooldown    int   `yaml:"battery_cooldown" json:"battery_cooldown"`         // Seconds of craft lockout after a battery
	BlackholeCost      int   `yaml:"blackhole_cost" json:"blackhole_cost"`             // Lightyears to enter the warp minigame
	DecayMin           int   `yaml:"decay_min" json:"decay_min"`                       // Min durability lost per mining cycle
	DecayMax           int   `yaml:"decay_max" json:"decay_max"`                       // Max durability lost per mining cycle
	MiningMultMin      int   `yaml:"mining_mult_min" json:"mining_mult_min"`           // Min lightyears per power point per cycle
	MiningMultMax      int   `yaml:"mining_mult_max" json:"mining_mult_max"`           // Max lightyears per power point per cycle
	MinMapTimer        int   `yaml:"min_map_timer" json:"min_map_timer"`               // Floor of a scaled map timer (seconds)
	MapCyclePenalty    int   `yaml:"map_cycle_penalty" json:"map_cycle_penalty"`       // Seconds removed per completed system cycle
	DebugLightyearMint int   `yaml:"debug_lightyear_mint" json:"debug_lightyear_mint"` // Lightyears granted by the debug mint
	DebugPhotonMint    int64 `yaml:"debug_photon_mint" json:"debug_photon_mint"`       // Photons granted by the debug mint
}

// Range is an inclusive integer interval.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Gauge describes one fluctuating market value.
type Gauge struct {
	Min     int `yaml:"min" json:"min"`         // Hard lower clamp
	Max     int `yaml:"max" json:"max"`         // Hard upper clamp
	Initial int `yaml:"initial" json:"initial"` // Value after a reset
	Step    int `yaml:"step" json:"step"`       // Max absolute change per update tick
}

// MarketConfig drives the two external conditions that parameterize crafting.
type MarketConfig struct {
	SunIntensity          Gauge   `yaml:"sun_intensity" json:"sun_intensity"`
	SubstrateConductivity Gauge   `yaml:"substrate_conductivity" json:"substrate_conductivity"`
	SailPowerFactor       float64 `yaml:"sail_power_factor" json:"sail_power_factor"`     // sun * factor = sail power
	BatteryRateFactor     float64 `yaml:"battery_rate_factor" json:"battery_rate_factor"` // conductivity * factor = photon rate
}

// EncounterConfig holds the gates and fallback payout of the encounter system.
type EncounterConfig struct {
	MinLightyears int         `yaml:"min_lightyears" json:"min_lightyears"` // Participation floor
	TriggerChance float64     `yaml:"trigger_chance" json:"trigger_chance"` // Bernoulli gate before the catalog walk
	FailureReward Range       `yaml:"failure_reward" json:"failure_reward"` // Consolation range on a failed risk
	Catalog       []Encounter `yaml:"catalog" json:"catalog"`
}

// EncounterCategory is the flavour bucket of an encounter.
type EncounterCategory string

const (
	CategoryGain EncounterCategory = "gain"
	CategoryLoss EncounterCategory = "loss"
	CategoryMix  EncounterCategory = "mix"
)

// Encounter is a static definition from the catalog.
type Encounter struct {
	Name               string            `yaml:"name" json:"name"`
	TriggerChance      float64           `yaml:"trigger_chance" json:"trigger_chance"` // Weight in the cumulative walk
	LyCost             int               `yaml:"ly_cost" json:"ly_cost"`               // Lightyears wagered on "risk it"
	WinChance          float64           `yaml:"win_chance" json:"win_chance"`
	Category           EncounterCategory `yaml:"category" json:"category"`
	MinReward          int               `yaml:"min_reward" json:"min_reward"`
	MaxReward          int               `yaml:"max_reward" json:"max_reward"`
	Description        string            `yaml:"description" json:"description"`
	SuccessDescription string            `yaml:"success_description" json:"success_description"`
	FailureDescription string            `yaml:"failure_description" json:"failure_description"`
}

// WarpConfig is the geometry and pacing of the warp minigame, in logical units.
type WarpConfig struct {
	FieldWidth       float64 `yaml:"field_width" json:"field_width"`
	FieldHeight      float64 `yaml:"field_height" json:"field_height"`
	TrackWidthRatio  float64 `yaml:"track_width_ratio" json:"track_width_ratio"` // Track width as a share of the field
	PlayerWidth      float64 `yaml:"player_width" json:"player_width"`
	PlayerHeightMult float64 `yaml:"player_height_mult" json:"player_height_mult"` // Hitbox height = width * mult
	PlayerLift       float64 `yaml:"player_lift" json:"player_lift"`               // Share of the field kept below the player
	ObstacleHeight   float64 `yaml:"obstacle_height" json:"obstacle_height"`
	ObstacleSpawnY   float64 `yaml:"obstacle_spawn_y" json:"obstacle_spawn_y"`
	MinGapRatio      float64 `yaml:"min_gap_ratio" json:"min_gap_ratio"`
	MaxGapRatio      float64 `yaml:"max_gap_ratio" json:"max_gap_ratio"`
	GraceFrames      int     `yaml:"grace_frames" json:"grace_frames"`
	ScorePerFrame    int     `yaml:"score_per_frame" json:"score_per_frame"`
	BaseSpeed        float64 `yaml:"base_speed" json:"base_speed"`
	SpeedStep        float64 `yaml:"speed_step" json:"speed_step"` // Speed added every SpeedEvery frames
	SpeedEvery       int     `yaml:"speed_every" json:"speed_every"`
	SpawnInterval    int     `yaml:"spawn_interval" json:"spawn_interval"` // Initial frames between walls
	SpawnStep        int     `yaml:"spawn_step" json:"spawn_step"`         // Frames removed every SpawnEvery frames
	SpawnEvery       int     `yaml:"spawn_every" json:"spawn_every"`
	MinSpawnInterval int     `yaml:"min_spawn_interval" json:"min_spawn_interval"`
	FrameRate        int     `yaml:"frame_rate" json:"frame_rate"` // Frames per second driven by the scheduler
}

// Timing holds the fixed intervals of every scheduled domain, in milliseconds.
type Timing struct {
	PhotonDripMs int `yaml:"photon_drip_ms" json:"photon_drip_ms"`
	MiningMs     int `yaml:"mining_ms" json:"mining_ms"`
	MapTimerMs   int `yaml:"map_timer_ms" json:"map_timer_ms"`
	CooldownMs   int `yaml:"cooldown_ms" json:"cooldown_ms"`
	MarketMs     int `yaml:"market_ms" json:"market_ms"`
}

// MapNode is a point on the navigation chart.
type MapNode struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Chart holds the start and end nodes used to place the ship on the map.
type Chart struct {
	Start MapNode `yaml:"start" json:"start"`
	End   MapNode `yaml:"end" json:"end"`
}

// Config is the root configuration struct, mapping to the entire yaml file.
type Config struct {
	Balance      GameBalance     `yaml:"game_balance" json:"game_balance"`
	Market       MarketConfig    `yaml:"market" json:"market"`
	Encounters   EncounterConfig `yaml:"encounters" json:"encounters"`
	Warp         WarpConfig      `yaml:"warp" json:"warp"`
	Timing       Timing          `yaml:"timing" json:"timing"`
	MapDurations []int           `yaml:"map_durations" json:"map_durations"` // Base seconds per map in a 6-map cycle
	SystemNames  []string        `yaml:"system_names" json:"system_names"`
	Chart        Chart           `yaml:"chart" json:"chart"`
	Seed         int64           `yaml:"seed" json:"seed"`                   // 0 seeds from the clock
	Debug        bool            `yaml:"debug" json:"debug"`                 // Enables the mint/force commands
}
