package battle

import (
	"fmt"

	"go.uber.org/zap"
)

// Hit chance bounds: even hopeless attacks land 5% of the time and sure
// things still miss 5% of the time.
const (
	minHitChance = 0.05
	maxHitChance = 0.95
)

// hitChance returns the probability that an attack with the given accuracy
// lands against the given evasion. Monotonic in accuracy - evasion, clamped
// to [minHitChance, maxHitChance].
func hitChance(accuracy, evasion int) float64 {
	p := float64(accuracy-evasion) / 100
	if p < minHitChance {
		return minHitChance
	}
	if p > maxHitChance {
		return maxHitChance
	}
	return p
}

// resolveAction resolves one decided action, appending log entries and
// updating statistics in place. A malformed action (unknown skill,
// unaffordable skill, missing target) is downgraded to a basic attack —
// a single bad action never aborts an otherwise-valid battle.
func (e *Engine) resolveAction(turn int, actor *Unit, action Action, allies, foes []*Unit, res *Result) {
	switch action.Type {
	case ActionSkill:
		skill, ok := actor.SkillByID(action.SkillID)
		if !ok {
			e.logger.Warn("unit decided unknown skill, falling back to attack",
				zap.String("battle_id", res.ID),
				zap.String("actor", actor.ID),
				zap.String("skill", action.SkillID),
			)
			e.resolveBasicAttack(turn, actor, action.TargetID, foes, res)
			return
		}
		if !skill.AvailableTo(actor) {
			e.logger.Debug("skill not available, falling back to attack",
				zap.String("battle_id", res.ID),
				zap.String("actor", actor.ID),
				zap.String("skill", skill.ID),
			)
			e.resolveBasicAttack(turn, actor, action.TargetID, foes, res)
			return
		}
		if skill.Type == SkillSupport {
			e.resolveSupportSkill(turn, actor, skill, action.TargetID, allies, res)
			return
		}
		e.resolveOffensiveSkill(turn, actor, skill, action.TargetID, foes, res)
	default:
		e.resolveBasicAttack(turn, actor, action.TargetID, foes, res)
	}
}

// resolveBasicAttack rolls a plain attack against the chosen (or default) foe.
func (e *Engine) resolveBasicAttack(turn int, actor *Unit, targetID string, foes []*Unit, res *Result) {
	target := pickTarget(targetID, foes)
	if target == nil {
		return
	}
	e.strike(turn, actor, target, actor.Attack, ActionAttack, "", res)
}

// resolveOffensiveSkill spends mp, sets the cooldown, and strikes one or all foes.
// Skill damage scales the base by the skill's damage plus half the caster's attack.
func (e *Engine) resolveOffensiveSkill(turn int, actor *Unit, skill *Skill, targetID string, foes []*Unit, res *Result) {
	actor.SpendMP(skill.MPCost)
	skill.Use()
	res.Stats.SkillsUsed++

	power := skill.Damage + actor.Attack/2
	if skill.Target == TargetAll {
		for _, target := range foes {
			if target.IsAlive() {
				e.strike(turn, actor, target, power, ActionSkill, skill.ID, res)
			}
		}
		return
	}
	target := pickTarget(targetID, foes)
	if target == nil {
		return
	}
	e.strike(turn, actor, target, power, ActionSkill, skill.ID, res)
}

// resolveSupportSkill spends mp, sets the cooldown, and heals the chosen
// ally (or the most wounded one), clamped so hp never exceeds maxHp.
func (e *Engine) resolveSupportSkill(turn int, actor *Unit, skill *Skill, targetID string, allies []*Unit, res *Result) {
	target := pickHealTarget(targetID, allies)
	if target == nil {
		return
	}
	actor.SpendMP(skill.MPCost)
	skill.Use()
	res.Stats.SkillsUsed++
	res.Stats.SupportSkillsUsed++

	// Small variance around the base heal amount.
	amount := int(float64(skill.HealAmount) * (0.9 + 0.2*e.src.Float64()))
	if amount < 1 {
		amount = 1
	}
	applied := target.Heal(amount)
	res.Stats.TotalHealing += applied

	res.appendLog(LogEntry{
		Turn:       turn,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     ActionSkill,
		TargetID:   target.ID,
		TargetName: target.Name,
		SkillID:    skill.ID,
		Healing:    applied,
		TargetHP:   target.CurrentHP,
		Narrative:  fmt.Sprintf("%s uses %s on %s, restoring %d hp.", actor.Name, skill.Name, target.Name, applied),
	})
}

// strike rolls one hit attempt with the given attack power against target.
func (e *Engine) strike(turn int, actor *Unit, target *Unit, power int, action ActionType, skillID string, res *Result) {
	entry := LogEntry{
		Turn:       turn,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		TargetID:   target.ID,
		TargetName: target.Name,
		SkillID:    skillID,
	}

	if e.src.Float64() >= hitChance(actor.Accuracy, target.Evasion) {
		res.Stats.MissedAttacks++
		entry.Missed = true
		entry.TargetHP = target.CurrentHP
		entry.Narrative = fmt.Sprintf("%s misses %s.", actor.Name, target.Name)
		res.appendLog(entry)
		return
	}

	base := power - target.Defense/2
	if base < 1 {
		base = 1
	}
	// Uniform damage factor in [0.8, 1.2].
	damage := int(float64(base) * (0.8 + 0.4*e.src.Float64()))
	if damage < 1 {
		damage = 1
	}
	if e.src.Float64()*100 < float64(actor.CritRate) {
		damage = damage * actor.CritDamage / 100
		if damage < 1 {
			damage = 1
		}
		res.Stats.CriticalHits++
		entry.Critical = true
	}

	target.ApplyDamage(damage)
	entry.Damage = damage
	entry.TargetHP = target.CurrentHP

	if actor.Role.PlayerSide() {
		res.Stats.TotalDamageDealt += damage
	} else {
		res.Stats.TotalDamageReceived += damage
	}

	verb := "hits"
	if entry.Critical {
		verb = "critically hits"
	}
	if target.IsAlive() {
		entry.Narrative = fmt.Sprintf("%s %s %s for %d damage.", actor.Name, verb, target.Name, damage)
	} else {
		entry.Narrative = fmt.Sprintf("%s %s %s for %d damage, defeating them.", actor.Name, verb, target.Name, damage)
	}
	res.appendLog(entry)
}

// pickTarget returns the foe with the given ID if it is alive, otherwise the
// first living foe, otherwise nil.
func pickTarget(targetID string, foes []*Unit) *Unit {
	if targetID != "" {
		for _, u := range foes {
			if u.ID == targetID && u.IsAlive() {
				return u
			}
		}
	}
	for _, u := range foes {
		if u.IsAlive() {
			return u
		}
	}
	return nil
}

// pickHealTarget returns the ally with the given ID if alive, otherwise the
// living ally with the lowest hp fraction, otherwise nil.
func pickHealTarget(targetID string, allies []*Unit) *Unit {
	if targetID != "" {
		for _, u := range allies {
			if u.ID == targetID && u.IsAlive() {
				return u
			}
		}
	}
	var lowest *Unit
	for _, u := range allies {
		if !u.IsAlive() {
			continue
		}
		if lowest == nil || u.HPFraction() < lowest.HPFraction() {
			lowest = u
		}
	}
	return lowest
}
