package game

import "errors"

// Command refusals. A refused command leaves the run untouched.
var (
	ErrInsufficientPhotons    = errors.New("insufficient photons")
	ErrInsufficientLightyears = errors.New("insufficient lightyears")
	ErrInventoryFull          = errors.New("inventory full")
	ErrCraftCooldown          = errors.New("crafting is cooling down")
	ErrInvalidSlot            = errors.New("invalid or empty slot")
	ErrNoActiveEncounter      = errors.New("no active encounter")
	ErrRunConcluded           = errors.New("run has concluded")
	ErrMapNotCleared          = errors.New("map not cleared yet")
	ErrWarpInProgress         = errors.New("warp already in progress")
	ErrWarpNotRunning         = errors.New("warp is not running")
	ErrDebugDisabled          = errors.New("debug commands are disabled")
)
