// Package ai implements action-selection policies for the battle engine.
//
// The engine consumes the battle.Policy interface; this package provides the
// default heuristic, a deterministic stand-in for tests, and a Lua-scripted
// variant for custom behaviors.
package ai

import (
	"github.com/emberworks/companion/internal/game/battle"
	"github.com/emberworks/companion/internal/game/rng"
)

// Heuristic tuning defaults.
const (
	// DefaultSkillUseChance is the probability an eligible offensive skill
	// is used instead of a basic attack.
	DefaultSkillUseChance = 0.70
	// DefaultHealThreshold is the ally hp fraction below which the heal
	// override fires.
	DefaultHealThreshold = 0.35
	// DefaultSkillDamageMargin is how much a skill's expected damage must
	// exceed a basic attack to be considered.
	DefaultSkillDamageMargin = 5
)

// HeuristicConfig tunes the default policy.
type HeuristicConfig struct {
	SkillUseChance    float64
	HealThreshold     float64
	SkillDamageMargin int
}

// DefaultHeuristicConfig returns the documented default tuning.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		SkillUseChance:    DefaultSkillUseChance,
		HealThreshold:     DefaultHealThreshold,
		SkillDamageMargin: DefaultSkillDamageMargin,
	}
}

// HeuristicPolicy is the default decision strategy used for companions and
// enemies:
//
//  1. if a living ally's hp fraction is below the heal threshold and the
//     actor has an available heal skill, prefer healing that ally, weighted
//     by the actor's support modifier;
//  2. if an available offensive skill's expected damage beats a plain attack
//     by the margin, use it with the configured probability;
//  3. otherwise attack the living opposing unit with the lowest current hp.
type HeuristicPolicy struct {
	src rng.Source
	cfg HeuristicConfig
}

// NewHeuristicPolicy creates the default policy.
//
// Precondition: src must be non-nil.
func NewHeuristicPolicy(src rng.Source, cfg HeuristicConfig) *HeuristicPolicy {
	return &HeuristicPolicy{src: src, cfg: cfg}
}

// Decide implements battle.Policy.
func (p *HeuristicPolicy) Decide(actor *battle.Unit, allies, enemies []*battle.Unit) battle.Action {
	if ally, skill, ok := p.healOverride(actor, allies); ok {
		return battle.Action{Type: battle.ActionSkill, SkillID: skill.ID, TargetID: ally.ID}
	}

	target := WeakestLiving(enemies)
	if target == nil {
		return battle.Action{Type: battle.ActionAttack}
	}

	if skill := p.bestOffensiveSkill(actor, target); skill != nil {
		if rng.Chance(p.src, p.cfg.SkillUseChance) {
			return battle.Action{Type: battle.ActionSkill, SkillID: skill.ID, TargetID: target.ID}
		}
	}
	return battle.Action{Type: battle.ActionAttack, TargetID: target.ID}
}

// healOverride returns the ally to heal and the skill to use, if the
// override fires. The base chance rises with the actor's support modifier.
func (p *HeuristicPolicy) healOverride(actor *battle.Unit, allies []*battle.Unit) (*battle.Unit, *battle.Skill, bool) {
	var wounded *battle.Unit
	for _, a := range allies {
		if !a.IsAlive() || a.HPFraction() >= p.cfg.HealThreshold {
			continue
		}
		if wounded == nil || a.HPFraction() < wounded.HPFraction() {
			wounded = a
		}
	}
	if wounded == nil {
		return nil, nil, false
	}

	var heal *battle.Skill
	for _, s := range actor.Skills {
		if s.Type == battle.SkillSupport && s.AvailableTo(actor) {
			if heal == nil || s.HealAmount > heal.HealAmount {
				heal = s
			}
		}
	}
	if heal == nil {
		return nil, nil, false
	}

	chance := 0.6 + 0.4*actor.Modifiers.Support
	if !rng.Chance(p.src, chance) {
		return nil, nil, false
	}
	return wounded, heal, true
}

// bestOffensiveSkill returns the available offensive skill with the highest
// expected damage, provided it beats a plain attack by the margin.
func (p *HeuristicPolicy) bestOffensiveSkill(actor *battle.Unit, target *battle.Unit) *battle.Skill {
	attackDamage := expectedDamage(actor.Attack, target)
	var best *battle.Skill
	bestDamage := 0
	for _, s := range actor.Skills {
		if s.Type != battle.SkillOffensive || !s.AvailableTo(actor) {
			continue
		}
		d := expectedDamage(s.Damage+actor.Attack/2, target)
		if d > bestDamage {
			best, bestDamage = s, d
		}
	}
	if best == nil || bestDamage < attackDamage+p.cfg.SkillDamageMargin {
		return nil
	}
	return best
}

// expectedDamage mirrors the engine's pre-variance damage formula.
func expectedDamage(power int, target *battle.Unit) int {
	d := power - target.Defense/2
	if d < 1 {
		d = 1
	}
	return d
}

// WeakestLiving returns the living unit with the lowest current hp, ties
// broken by original order. Returns nil if none are alive.
func WeakestLiving(units []*battle.Unit) *battle.Unit {
	var weakest *battle.Unit
	for _, u := range units {
		if !u.IsAlive() {
			continue
		}
		if weakest == nil || u.CurrentHP < weakest.CurrentHP {
			weakest = u
		}
	}
	return weakest
}
