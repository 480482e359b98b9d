// Package setup decorates a base formation with character state before a
// battle is simulated.
package setup

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/emberworks/companion/internal/game/battle"
	"github.com/emberworks/companion/internal/game/history"
	"github.com/emberworks/companion/internal/game/persona"
)

// Relationship growth bounds. The bonus follows a diminishing-returns curve
// of the relationship level and never exceeds these fractions of the base.
const (
	maxHPGrowth      = 0.50
	maxAttackGrowth  = 0.30
	maxDefenseGrowth = 0.30
)

// DifficultyConfig tunes dynamic enemy scaling.
type DifficultyConfig struct {
	// Enabled toggles win-streak driven scaling.
	Enabled bool
	// MaxScale caps the enemy stat multiplier.
	MaxScale float64
}

// Adapter builds enhanced formations from character snapshots.
type Adapter struct {
	store      history.Store
	difficulty DifficultyConfig
	logger     *zap.Logger
}

// NewAdapter creates an Adapter reading performance history from store.
//
// Precondition: store and logger must be non-nil.
func NewAdapter(store history.Store, difficulty DifficultyConfig, logger *zap.Logger) *Adapter {
	return &Adapter{store: store, difficulty: difficulty, logger: logger}
}

// EnhanceFormation returns a decorated copy of base for the given character.
// The base formation is never mutated; calling twice with unchanged inputs
// (including the character's performance history) yields identical results.
//
//   - The companion unit receives the derived personality modifier vector.
//   - Companion maxHp/attack/defense get a bounded, monotonic bonus from the
//     relationship level (diminishing returns, never unbounded).
//   - The character's current emotion shifts companion critRate, accuracy,
//     and evasion through the persona emotion table, scaled by intensity.
//   - With difficulty enabled, enemy maxHp and attack scale up with the win
//     streak and relationship level, capped at MaxScale.
//
// Precondition: snap must be non-nil with a non-empty ID.
func (a *Adapter) EnhanceFormation(ctx context.Context, snap *persona.Snapshot, base *battle.Formation) (*battle.Formation, error) {
	if snap == nil || snap.ID == "" {
		return nil, fmt.Errorf("setup: character snapshot must have an id")
	}
	if base == nil {
		return nil, fmt.Errorf("setup: base formation must not be nil")
	}

	enhanced := base.Clone()

	if companion := enhanced.Companion(); companion != nil {
		a.applyPersonality(companion, snap)
		a.applyRelationshipGrowth(companion, snap)
		a.applyEmotion(companion, snap)
	}

	if a.difficulty.Enabled {
		rec, err := a.store.Get(ctx, snap.ID)
		if err != nil {
			return nil, fmt.Errorf("setup: reading performance history: %w", err)
		}
		a.applyDifficulty(enhanced, snap, rec)
	}

	return enhanced, nil
}

// applyPersonality attaches the derived modifier vector to the companion.
// The policy consumes this vector, never the raw trait map.
func (a *Adapter) applyPersonality(companion *battle.Unit, snap *persona.Snapshot) {
	m := persona.DeriveModifiers(snap.Traits)
	companion.Modifiers = battle.ModifierSet{
		Support:    m.Support,
		Aggression: m.Aggression,
		Caution:    m.Caution,
	}
}

// applyRelationshipGrowth raises companion stats with the relationship
// level. growthFactor is in [0,1) and saturates, so the bonus is bounded.
func (a *Adapter) applyRelationshipGrowth(companion *battle.Unit, snap *persona.Snapshot) {
	level := snap.Relationship.Level()
	factor := level / (level + 5)

	hpBonus := int(float64(companion.MaxHP) * maxHPGrowth * factor)
	companion.MaxHP += hpBonus
	companion.CurrentHP += hpBonus
	companion.Attack += int(float64(companion.Attack) * maxAttackGrowth * factor)
	companion.Defense += int(float64(companion.Defense) * maxDefenseGrowth * factor)

	a.logger.Debug("relationship growth applied",
		zap.String("companion", companion.ID),
		zap.Float64("level", level),
		zap.Int("hp_bonus", hpBonus),
	)
}

// applyEmotion shifts companion critRate/accuracy/evasion per the persona
// emotion table, scaled by the snapshot's intensity. Stats floor at zero.
func (a *Adapter) applyEmotion(companion *battle.Unit, snap *persona.Snapshot) {
	m := persona.ScaledModifier(snap.Emotion, snap.EmotionIntensity)
	companion.CritRate = floorZero(companion.CritRate + m.CritRate)
	companion.Accuracy = floorZero(companion.Accuracy + m.Accuracy)
	companion.Evasion = floorZero(companion.Evasion + m.Evasion)
}

// applyDifficulty scales enemy maxHp and attack as a bounded function of the
// character's win streak and relationship level.
func (a *Adapter) applyDifficulty(f *battle.Formation, snap *persona.Snapshot, rec history.Record) {
	scale := 1 + 0.08*float64(rec.CurrentStreak) + 0.02*snap.Relationship.Level()
	scale = math.Min(scale, a.difficulty.MaxScale)
	if scale <= 1 {
		return
	}

	for _, u := range f.EnemyTeam {
		u.MaxHP = int(float64(u.MaxHP) * scale)
		u.CurrentHP = int(float64(u.CurrentHP) * scale)
		if u.CurrentHP > u.MaxHP {
			u.CurrentHP = u.MaxHP
		}
		u.Attack = int(float64(u.Attack) * scale)
	}

	a.logger.Debug("dynamic difficulty applied",
		zap.String("character", snap.ID),
		zap.Int("win_streak", rec.CurrentStreak),
		zap.Float64("scale", scale),
	)
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
