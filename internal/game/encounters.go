/*
Package game
File: encounters.go
Description:
    Random encounters: probability-weighted events that offer the player a
    lightyear wager. At most one encounter is active at a time.

    Selection walks the catalog in order, accumulating each entry's trigger
    chance; the first entry whose running sum reaches the roll is chosen. The
    chances need not sum to 1: the remaining mass means "nothing happens".
*/

package game

import "github.com/google/uuid"

// EncounterOutcome classifies a resolution.
type EncounterOutcome string

const (
	OutcomeAvoided      EncounterOutcome = "avoided"
	OutcomeInsufficient EncounterOutcome = "insufficient_ly"
	OutcomeSuccess      EncounterOutcome = "success"
	OutcomeFailure      EncounterOutcome = "failure"
)

// EncounterResult records how an encounter was resolved.
type EncounterResult struct {
	ID          uuid.UUID        `json:"id"`
	Encounter   string           `json:"encounter"`
	Outcome     EncounterOutcome `json:"outcome"`
	Reward      int              `json:"reward"`
	Cost        int              `json:"cost"`
	Net         int              `json:"net"`
	Message     string           `json:"message"`               // Log line
	Description string           `json:"description,omitempty"` // Flavour text for the result popup
}

// Risked reports whether lightyears were actually wagered.
func (r EncounterResult) Risked() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeFailure
}

// SelectEncounter performs the cumulative walk for roll. It returns nil when
// the roll exceeds the total trigger mass.
func SelectEncounter(catalog []Encounter, roll float64) *Encounter {
	cumulative := 0.0
	for i := range catalog {
		cumulative += catalog[i].TriggerChance
		if roll <= cumulative {
			return &catalog[i]
		}
	}
	return nil
}

// EncounterEngine owns the active encounter.
// Not safe for concurrent use; the Game serializes access.
type EncounterEngine struct {
	cfg    EncounterConfig
	rng    Rand
	active *Encounter
}

// NewEncounterEngine returns an engine with no active encounter.
func NewEncounterEngine(cfg EncounterConfig, rng Rand) *EncounterEngine {
	return &EncounterEngine{cfg: cfg, rng: rng}
}

// Active returns a copy of the active encounter, or nil.
func (e *EncounterEngine) Active() *Encounter {
	if e.active == nil {
		return nil
	}
	c := *e.active
	return &c
}

// Clear drops the active encounter.
func (e *EncounterEngine) Clear() { e.active = nil }

// Trigger attempts to start an encounter.
// Gates: no encounter already active, lightyears at the participation floor,
// then a Bernoulli pass against the trigger chance before the catalog walk.
func (e *EncounterEngine) Trigger(rs *ResourceState) *Encounter {
	if e.active != nil || rs.Lightyears < e.cfg.MinLightyears {
		return nil
	}
	if e.rng.Float64() > e.cfg.TriggerChance {
		return nil
	}
	enc := SelectEncounter(e.cfg.Catalog, e.rng.Float64())
	if enc == nil {
		return nil
	}
	e.activate(rs, enc)
	return e.Active()
}

// Force starts an encounter regardless of the gates. When the walk selects
// nothing, an entry is picked uniformly instead.
func (e *EncounterEngine) Force(rs *ResourceState) *Encounter {
	if len(e.cfg.Catalog) == 0 {
		return nil
	}
	enc := SelectEncounter(e.cfg.Catalog, e.rng.Float64())
	if enc == nil {
		enc = &e.cfg.Catalog[e.rng.Intn(len(e.cfg.Catalog))]
	}
	e.activate(rs, enc)
	return e.Active()
}

func (e *EncounterEngine) activate(rs *ResourceState, enc *Encounter) {
	e.active = enc
	rs.Logf(SeverityError, "[ENCOUNTER ALERT]: %s detected.", enc.Name)
}

// Resolve settles the active encounter with the player's decision.
// The encounter is cleared in every case.
func (e *EncounterEngine) Resolve(rs *ResourceState, riskIt bool) (EncounterResult, error) {
	enc := e.active
	if enc == nil {
		return EncounterResult{}, ErrNoActiveEncounter
	}
	e.active = nil

	res := EncounterResult{ID: uuid.New(), Encounter: enc.Name}

	// 1. Declined
	if !riskIt {
		res.Outcome = OutcomeAvoided
		res.Message = "Avoided " + enc.Name + "."
		rs.Log(res.Message, SeverityInfo)
		return res, nil
	}

	// 2. Cannot cover the wager: nothing is deducted
	if rs.Lightyears < enc.LyCost {
		res.Outcome = OutcomeInsufficient
		res.Message = "Insufficient lightyears to engage " + enc.Name + "."
		rs.Log(res.Message, SeverityError)
		return res, nil
	}

	// 3. Roll the wager
	res.Cost = enc.LyCost
	sev := SeverityError
	if e.rng.Float64() < enc.WinChance {
		res.Outcome = OutcomeSuccess
		res.Reward = RandRange(e.rng, enc.MinReward, enc.MaxReward)
		res.Net = res.Reward - res.Cost
		res.Description = enc.SuccessDescription
		res.Message = "SUCCESS: Gained " + FormatThousands(res.Reward) + " lightyears from " + enc.Name +
			". (Net: " + FormatThousands(res.Net) + ")"
		if res.Net >= 0 {
			sev = SeveritySuccess
		}
	} else {
		res.Outcome = OutcomeFailure
		res.Reward = RandRange(e.rng, e.cfg.FailureReward.Min, e.cfg.FailureReward.Max)
		res.Net = res.Reward - res.Cost
		res.Description = enc.FailureDescription
		res.Message = "FAILURE: Only recovered " + FormatThousands(res.Reward) + " lightyears from " + enc.Name +
			". (Net: " + FormatThousands(res.Net) + ")"
	}

	// 4. Apply the net change, floored at zero
	rs.ApplyLightyearDelta(res.Net)
	rs.Log(res.Message, sev)
	return res, nil
}
