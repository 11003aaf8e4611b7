/*
Package game
File: economy.go
Description:
    Handles the market simulation.
    Two gauges drift as bounded random walks on a fixed heartbeat:
    1. Sun Intensity, which sets the power of newly crafted sails.
    2. Substrate Conductivity, which sets the photon rate of new batteries.
    Already installed modules keep the values they were crafted with.
*/

package game

import "github.com/shopspring/decimal"

// MarketState tracks the current external conditions.
// Not safe for concurrent use; the Game serializes access.
type MarketState struct {
	cfg MarketConfig
	rng Rand

	SunIntensity          int
	SubstrateConductivity int
}

// MarketView is the read model of the market.
type MarketView struct {
	SunIntensity          int             `json:"sun_intensity"`
	SubstrateConductivity int             `json:"substrate_conductivity"`
	SailPower             int             `json:"sail_power"`
	BatteryRate           decimal.Decimal `json:"battery_rate"`
}

// NewMarketState returns a market at its initial values.
func NewMarketState(cfg MarketConfig, rng Rand) *MarketState {
	m := &MarketState{cfg: cfg, rng: rng}
	m.Reset()
	return m
}

// Reset restores the initial gauge values.
func (m *MarketState) Reset() {
	m.SunIntensity = m.cfg.SunIntensity.Initial
	m.SubstrateConductivity = m.cfg.SubstrateConductivity.Initial
}

// UpdateSunIntensity applies one random-walk step and returns the new value.
func (m *MarketState) UpdateSunIntensity() int {
	m.SunIntensity = walk(m.rng, m.SunIntensity, m.cfg.SunIntensity)
	return m.SunIntensity
}

// UpdateSubstrateConductivity applies one random-walk step and returns the new value.
func (m *MarketState) UpdateSubstrateConductivity() int {
	m.SubstrateConductivity = walk(m.rng, m.SubstrateConductivity, m.cfg.SubstrateConductivity)
	return m.SubstrateConductivity
}

// MarketTick is the heartbeat: both gauges move once.
func (m *MarketState) MarketTick() MarketView {
	m.UpdateSunIntensity()
	m.UpdateSubstrateConductivity()
	return m.View()
}

// SailPower is the power a sail crafted now would get.
// Formula: max(1, round(sun * factor))
func (m *MarketState) SailPower() int {
	p := decimal.NewFromInt(int64(m.SunIntensity)).
		Mul(decimal.NewFromFloat(m.cfg.SailPowerFactor)).
		Round(0).
		IntPart()
	return max(1, int(p))
}

// BatteryRate is the photon rate a battery crafted now would get, rounded to 2 decimals.
func (m *MarketState) BatteryRate() decimal.Decimal {
	return decimal.NewFromInt(int64(m.SubstrateConductivity)).
		Mul(decimal.NewFromFloat(m.cfg.BatteryRateFactor)).
		Round(2)
}

// View returns the current read model.
func (m *MarketState) View() MarketView {
	return MarketView{
		SunIntensity:          m.SunIntensity,
		SubstrateConductivity: m.SubstrateConductivity,
		SailPower:             m.SailPower(),
		BatteryRate:           m.BatteryRate(),
	}
}

// walk moves value by a uniform step in [-step, step], clamped to the gauge bounds.
func walk(r Rand, value int, g Gauge) int {
	return Clamp(value+RandRange(r, -g.Step, g.Step), g.Min, g.Max)
}
