package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/emberworks/companion/internal/game/battle"
)

// ScriptedPolicy delegates action selection to a Lua script that defines
//
//	function decide(actor, allies, enemies) -> table
//
// where the returned table carries "action" ("attack" or "skill") and
// optional "target" and "skill" unit/skill IDs. Script errors or malformed
// returns fall back to the wrapped policy — a misbehaving script degrades
// behavior, never a battle.
//
// Not safe for concurrent use: a ScriptedPolicy owns one Lua VM and must be
// confined to a single battle run at a time.
type ScriptedPolicy struct {
	state    *lua.LState
	fallback battle.Policy
	logger   *zap.Logger
}

// NewScriptedPolicy compiles script into a fresh Lua VM.
//
// Precondition: fallback and logger must be non-nil.
// Postcondition: Returns an error if the script fails to load or does not
// define a decide function.
func NewScriptedPolicy(script string, fallback battle.Policy, logger *zap.Logger) (*ScriptedPolicy, error) {
	L := lua.NewState()
	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading policy script: %w", err)
	}
	if L.GetGlobal("decide").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("policy script must define a decide function")
	}
	return &ScriptedPolicy{state: L, fallback: fallback, logger: logger}, nil
}

// Close releases the Lua VM.
func (p *ScriptedPolicy) Close() {
	p.state.Close()
}

// Decide implements battle.Policy.
func (p *ScriptedPolicy) Decide(actor *battle.Unit, allies, enemies []*battle.Unit) battle.Action {
	L := p.state
	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("decide"),
		NRet:    1,
		Protect: true,
	}, unitTable(L, actor), unitsTable(L, allies), unitsTable(L, enemies))
	if err != nil {
		p.logger.Warn("policy script error, using fallback",
			zap.String("actor", actor.ID),
			zap.Error(err),
		)
		return p.fallback.Decide(actor, allies, enemies)
	}

	ret := L.Get(-1)
	L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		p.logger.Warn("policy script returned non-table, using fallback",
			zap.String("actor", actor.ID),
		)
		return p.fallback.Decide(actor, allies, enemies)
	}

	action := battle.Action{
		TargetID: lua.LVAsString(tbl.RawGetString("target")),
		SkillID:  lua.LVAsString(tbl.RawGetString("skill")),
	}
	switch lua.LVAsString(tbl.RawGetString("action")) {
	case "attack":
		action.Type = battle.ActionAttack
	case "skill":
		action.Type = battle.ActionSkill
	default:
		p.logger.Warn("policy script returned unknown action, using fallback",
			zap.String("actor", actor.ID),
		)
		return p.fallback.Decide(actor, allies, enemies)
	}
	return action
}

// unitTable converts a unit into the read-only view scripts receive.
func unitTable(L *lua.LState, u *battle.Unit) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(u.ID))
	L.SetField(tbl, "name", lua.LString(u.Name))
	L.SetField(tbl, "role", lua.LString(u.Role.String()))
	L.SetField(tbl, "hp", lua.LNumber(u.CurrentHP))
	L.SetField(tbl, "max_hp", lua.LNumber(u.MaxHP))
	L.SetField(tbl, "mp", lua.LNumber(u.CurrentMP))
	L.SetField(tbl, "attack", lua.LNumber(u.Attack))
	L.SetField(tbl, "defense", lua.LNumber(u.Defense))
	L.SetField(tbl, "hp_fraction", lua.LNumber(u.HPFraction()))
	L.SetField(tbl, "alive", lua.LBool(u.IsAlive()))

	skills := L.NewTable()
	for _, s := range u.Skills {
		st := L.NewTable()
		L.SetField(st, "id", lua.LString(s.ID))
		L.SetField(st, "type", lua.LString(s.Type.String()))
		L.SetField(st, "damage", lua.LNumber(s.Damage))
		L.SetField(st, "heal_amount", lua.LNumber(s.HealAmount))
		L.SetField(st, "mp_cost", lua.LNumber(s.MPCost))
		L.SetField(st, "available", lua.LBool(s.AvailableTo(u)))
		skills.Append(st)
	}
	L.SetField(tbl, "skills", skills)
	return tbl
}

func unitsTable(L *lua.LState, units []*battle.Unit) *lua.LTable {
	tbl := L.NewTable()
	for _, u := range units {
		tbl.Append(unitTable(L, u))
	}
	return tbl
}
