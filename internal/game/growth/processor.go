// Package growth converts finished battle results into persistent character
// growth: experience channels, relationship deltas, and personality drift.
//
// The processor proposes deltas; persisting them to the character record is
// the external collaborator's job. Only the performance history store is
// written here.
package growth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emberworks/companion/internal/game/battle"
	"github.com/emberworks/companion/internal/game/history"
	"github.com/emberworks/companion/internal/game/persona"
)

// Experience holds the three reward channels. All values are >= 0.
type Experience struct {
	// Combat is earned from damage dealt and kills.
	Combat int
	// Emotional is earned from exposure to emotion intensity during the fight.
	Emotional int
	// Relationship is earned from cooperative and support actions.
	Relationship int
}

// RelationshipDelta is the bounded intimacy/trust adjustment proposed to the
// character collaborator.
type RelationshipDelta struct {
	Intimacy float64
	Trust    float64
}

// Rewards is the full growth proposal computed from one battle.
type Rewards struct {
	Experience   Experience
	Gold         int
	Relationship RelationshipDelta
	// PersonalityGrowth maps trait names to deltas, populated only for
	// traits actually exercised in the battle.
	PersonalityGrowth map[string]float64
}

// Relationship delta bound: one battle never moves intimacy or trust by
// more than this in either direction.
const maxRelationshipDelta = 0.05

// Processor converts results into rewards and maintains performance history.
type Processor struct {
	store  history.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewProcessor creates a Processor writing to store.
//
// Precondition: store and logger must be non-nil.
func NewProcessor(store history.Store, logger *zap.Logger) *Processor {
	return &Processor{store: store, logger: logger, now: time.Now}
}

// ProcessBattleResults computes the growth proposal for a completed battle.
//
// Caller obligation: invoke exactly once per completed battle. The processor
// does not enforce this; a double call double-counts history and interactions.
//
// A malformed snapshot (nil, or missing traits) degrades to neutral defaults
// rather than discarding the completed battle; history and interaction side
// effects are skipped only when no character id is available.
//
// Postcondition: snap.Relationship.TotalInteractions is incremented by
// exactly 1 and snap.Relationship.LastInteraction set to now (when snap is
// usable); the character's history gains exactly one battle. A stalemate is
// recorded as a loss so won+lost always equals battles processed.
func (p *Processor) ProcessBattleResults(ctx context.Context, result *battle.Result, snap *persona.Snapshot) (*Rewards, error) {
	if result == nil {
		return nil, fmt.Errorf("growth: result must not be nil")
	}
	if snap == nil {
		p.logger.Warn("missing character snapshot, using neutral defaults",
			zap.String("battle_id", result.ID),
		)
		snap = persona.Neutral("")
	}

	rewards := &Rewards{
		Experience:        p.experience(result, snap),
		Gold:              result.Rewards.Gold,
		Relationship:      p.relationshipDelta(result, snap),
		PersonalityGrowth: p.personalityGrowth(result, snap),
	}

	if snap.ID == "" {
		return rewards, nil
	}

	now := p.now()
	snap.Relationship.TotalInteractions++
	snap.Relationship.LastInteraction = now

	won := result.Outcome == battle.OutcomeVictory
	rec, err := p.store.RecordBattle(ctx, snap.ID, won, now)
	if err != nil {
		return nil, fmt.Errorf("growth: recording battle history: %w", err)
	}

	p.logger.Info("battle rewards processed",
		zap.String("battle_id", result.ID),
		zap.String("character", snap.ID),
		zap.String("outcome", result.Outcome.String()),
		zap.Int("combat_xp", rewards.Experience.Combat),
		zap.Int("emotional_xp", rewards.Experience.Emotional),
		zap.Int("relationship_xp", rewards.Experience.Relationship),
		zap.Int("battles_won", rec.BattlesWon),
		zap.Int("battles_lost", rec.BattlesLost),
	)
	return rewards, nil
}

// experience computes the three reward channels. Every channel is >= 0.
func (p *Processor) experience(result *battle.Result, snap *persona.Snapshot) Experience {
	combat := result.Rewards.Experience + result.Stats.TotalDamageDealt/10

	turns := result.Turns
	if turns > 40 {
		turns = 40
	}
	emotional := 5 + int(25*snap.EmotionIntensity) + turns/4

	relationship := result.Stats.TotalHealing/10 + result.Stats.SupportSkillsUsed*3
	if result.Stats.TotalHealing > 0 {
		// Support play earns more for characters whose personality leans
		// that way.
		relationship = int(float64(relationship) * (1 + 0.5*snap.Traits.Caring))
	}

	return Experience{
		Combat:       floorZero(combat),
		Emotional:    floorZero(emotional),
		Relationship: floorZero(relationship),
	}
}

// relationshipDelta proposes bounded intimacy/trust adjustments driven by
// the outcome and by how closely companion behavior matched the character's
// personality bias.
func (p *Processor) relationshipDelta(result *battle.Result, snap *persona.Snapshot) RelationshipDelta {
	var d RelationshipDelta
	switch result.Outcome {
	case battle.OutcomeVictory:
		d.Intimacy = 0.02
		d.Trust = 0.03
	case battle.OutcomeDefeat:
		d.Intimacy = -0.01
		d.Trust = -0.015
	case battle.OutcomeStalemate:
		d.Trust = 0.005
	}

	// Behavior matching the personality bias deepens the bond.
	if result.Stats.TotalHealing > 0 && snap.Traits.Caring > 0.6 {
		d.Intimacy += 0.01
	}
	if result.Stats.CriticalHits > 0 && snap.Traits.Aggressive > 0.6 {
		d.Trust += 0.005
	}

	d.Intimacy = clampDelta(d.Intimacy)
	d.Trust = clampDelta(d.Trust)
	return d
}

// personalityGrowth builds the sparse trait delta map. Each delta follows a
// diminishing-returns curve as the trait approaches 1.0, and a trait only
// appears when the battle actually exercised it.
func (p *Processor) personalityGrowth(result *battle.Result, snap *persona.Snapshot) map[string]float64 {
	growth := make(map[string]float64)
	stats := result.Stats

	if stats.TotalHealing > 0 {
		growth["caring"] = 0.010 * (1 - snap.Traits.Caring)
	}
	if stats.SupportSkillsUsed > 0 {
		growth["supportive"] = 0.008 * (1 - snap.Traits.Supportive)
	}
	if result.Outcome == battle.OutcomeVictory && stats.TotalDamageDealt > 0 {
		growth["brave"] = 0.008 * (1 - snap.Traits.Brave)
	}
	if stats.CriticalHits > 0 {
		growth["aggressive"] = 0.005 * (1 - snap.Traits.Aggressive)
	}
	if result.Outcome == battle.OutcomeDefeat {
		growth["cautious"] = 0.006 * (1 - snap.Traits.Cautious)
	}

	for trait, delta := range growth {
		if delta <= 0 {
			delete(growth, trait)
		}
	}
	return growth
}

// GetPerformanceHistory returns the read-only history record for id.
func (p *Processor) GetPerformanceHistory(ctx context.Context, id string) (history.Record, error) {
	return p.store.Get(ctx, id)
}

func clampDelta(v float64) float64 {
	if v > maxRelationshipDelta {
		return maxRelationshipDelta
	}
	if v < -maxRelationshipDelta {
		return -maxRelationshipDelta
	}
	return v
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
