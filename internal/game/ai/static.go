package ai

import "github.com/emberworks/companion/internal/game/battle"

// StaticPolicy is a deterministic stand-in for tests: every actor performs a
// basic attack against the first living enemy in formation order.
type StaticPolicy struct{}

// NewStaticPolicy creates a StaticPolicy.
func NewStaticPolicy() *StaticPolicy { return &StaticPolicy{} }

// Decide implements battle.Policy.
func (p *StaticPolicy) Decide(actor *battle.Unit, allies, enemies []*battle.Unit) battle.Action {
	for _, u := range enemies {
		if u.IsAlive() {
			return battle.Action{Type: battle.ActionAttack, TargetID: u.ID}
		}
	}
	return battle.Action{Type: battle.ActionAttack}
}
