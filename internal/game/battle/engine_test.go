package battle

import (
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/emberworks/companion/internal/game/rng"
)

// fixedSource returns a constant for every draw, pinning down hit, crit, and
// variance rolls. v = 0 means every attack hits with the low variance bound;
// v = 0.99 means every attack misses.
type fixedSource struct{ v float64 }

func (s fixedSource) Intn(n int) int   { return 0 }
func (s fixedSource) Float64() float64 { return s.v }

// attackPolicy always basic-attacks the first living enemy.
type attackPolicy struct{}

func (attackPolicy) Decide(actor *Unit, allies, enemies []*Unit) Action {
	for _, u := range enemies {
		if u.IsAlive() {
			return Action{Type: ActionAttack, TargetID: u.ID}
		}
	}
	return Action{Type: ActionAttack}
}

// skillPolicy always asks for the given skill; the engine downgrades it to a
// basic attack whenever it is on cooldown or unknown.
type skillPolicy struct{ skillID string }

func (p skillPolicy) Decide(actor *Unit, allies, enemies []*Unit) Action {
	return Action{Type: ActionSkill, SkillID: p.skillID}
}

func newTestEngine(policy Policy, src Source, opts ...Option) *Engine {
	return NewEngine(policy, src, zap.NewNop(), opts...)
}

func TestExecuteBattleNilFormation(t *testing.T) {
	e := newTestEngine(attackPolicy{}, fixedSource{})
	if _, err := e.ExecuteBattle(nil); err == nil {
		t.Fatal("expected error for nil formation")
	}
}

func TestExecuteBattleInvalidFormation(t *testing.T) {
	e := newTestEngine(attackPolicy{}, fixedSource{})
	f := testFormation()
	f.EnemyTeam = nil
	if _, err := e.ExecuteBattle(f); err == nil {
		t.Fatal("expected error for empty enemy team")
	}
}

// TestExecuteBattleVictory runs a fully deterministic battle: every attack
// hits with the low variance bound and nothing crits.
func TestExecuteBattleVictory(t *testing.T) {
	f := testFormation()
	for _, u := range append(f.PlayerTeam, f.EnemyTeam...) {
		u.CritRate = 0
	}
	e := newTestEngine(attackPolicy{}, fixedSource{v: 0})

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}

	if res.Outcome != OutcomeVictory {
		t.Fatalf("Outcome = %s, want victory", res.Outcome)
	}
	// Hero 13/hit, companion 9/hit against the 60 hp goblin: dead on turn 3.
	if res.Turns != 3 {
		t.Fatalf("Turns = %d, want 3", res.Turns)
	}
	if res.ID == "" {
		t.Fatal("result must carry a battle id")
	}
	if res.Stats.TotalDamageDealt < 60 {
		t.Fatalf("TotalDamageDealt = %d, want >= 60", res.Stats.TotalDamageDealt)
	}
	if res.Stats.CriticalHits != 0 || res.Stats.MissedAttacks != 0 {
		t.Fatalf("unexpected crits/misses: %+v", res.Stats)
	}
	// Victory pays the 1.5x bonus on the level-0 goblin's 20 base exp.
	if res.Rewards.Experience != 30 || res.Rewards.Gold != 10 {
		t.Fatalf("Rewards = %+v, want {30 10}", res.Rewards)
	}
}

func TestExecuteBattleDefeat(t *testing.T) {
	f := &Formation{
		PlayerTeam: []*Unit{
			{ID: "p1", Name: "Hero", Role: RolePlayer, CurrentHP: 10, MaxHP: 10, Attack: 0, Speed: 1, Accuracy: 90, CritDamage: 150},
			{ID: "c1", Name: "Companion", Role: RoleCompanion, CurrentHP: 10, MaxHP: 10, Attack: 0, Speed: 1, Accuracy: 90, CritDamage: 150},
		},
		EnemyTeam: []*Unit{
			{ID: "e1", Name: "Ogre", Role: RoleEnemy, CurrentHP: 1000, MaxHP: 1000, Attack: 100, Speed: 20, Accuracy: 95, CritDamage: 150},
		},
	}
	e := newTestEngine(attackPolicy{}, fixedSource{v: 0})

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}
	if res.Outcome != OutcomeDefeat {
		t.Fatalf("Outcome = %s, want defeat", res.Outcome)
	}
	// One player-side unit dies per turn to the ogre's single action.
	if res.Turns != 2 {
		t.Fatalf("Turns = %d, want 2", res.Turns)
	}
	// No enemies fell, so defeat pays nothing.
	if res.Rewards != (BaseRewards{}) {
		t.Fatalf("Rewards = %+v, want zero", res.Rewards)
	}
}

func TestExecuteBattleStalemate(t *testing.T) {
	f := testFormation()
	for _, u := range append(f.PlayerTeam, f.EnemyTeam...) {
		u.CurrentHP = 100000
		u.MaxHP = 100000
	}
	e := newTestEngine(attackPolicy{}, fixedSource{v: 0}, WithTurnCap(5))

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}
	if res.Outcome != OutcomeStalemate {
		t.Fatalf("Outcome = %s, want stalemate", res.Outcome)
	}
	if res.Turns != 5 {
		t.Fatalf("Turns = %d, want 5", res.Turns)
	}
}

// TestExecuteBattleDoesNotMutateInput verifies the passed formation is
// untouched after a full battle.
func TestExecuteBattleDoesNotMutateInput(t *testing.T) {
	f := testFormation()
	e := newTestEngine(attackPolicy{}, fixedSource{v: 0})

	if _, err := e.ExecuteBattle(f); err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}

	if f.PlayerTeam[0].CurrentHP != 100 || f.PlayerTeam[1].CurrentHP != 80 {
		t.Fatalf("player team mutated: %d/%d", f.PlayerTeam[0].CurrentHP, f.PlayerTeam[1].CurrentHP)
	}
	if f.EnemyTeam[0].CurrentHP != 60 {
		t.Fatalf("enemy team mutated: %d", f.EnemyTeam[0].CurrentHP)
	}
}

func TestExecuteBattleAllMiss(t *testing.T) {
	f := testFormation()
	e := newTestEngine(attackPolicy{}, fixedSource{v: 0.99}, WithTurnCap(4))

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}
	if res.Outcome != OutcomeStalemate {
		t.Fatalf("Outcome = %s, want stalemate", res.Outcome)
	}
	// 3 units acting for 4 turns, all whiffing.
	if res.Stats.MissedAttacks != 12 {
		t.Fatalf("MissedAttacks = %d, want 12", res.Stats.MissedAttacks)
	}
	if res.Stats.TotalDamageDealt != 0 || res.Stats.TotalDamageReceived != 0 {
		t.Fatalf("damage recorded on misses: %+v", res.Stats)
	}
	for _, entry := range res.Log {
		if !entry.Missed {
			t.Fatalf("non-miss entry in all-miss battle: %+v", entry)
		}
	}
}

// TestSkillCooldownGatesUsage verifies a 2-turn-cooldown skill fires on turns
// 1 and 3 and downgrades to a basic attack on turn 2.
func TestSkillCooldownGatesUsage(t *testing.T) {
	f := &Formation{
		PlayerTeam: []*Unit{{
			ID: "p1", Name: "Mage", Role: RolePlayer,
			CurrentHP: 500, MaxHP: 500, CurrentMP: 100, MaxMP: 100,
			Attack: 10, Speed: 10, Accuracy: 95, CritDamage: 150,
			Skills: []*Skill{{ID: "bolt", Name: "Bolt", Damage: 50, MPCost: 5, CooldownTurns: 2, Type: SkillOffensive}},
		}},
		EnemyTeam: []*Unit{{
			ID: "e1", Name: "Golem", Role: RoleEnemy,
			CurrentHP: 5000, MaxHP: 5000, Attack: 0, Speed: 1, Accuracy: 95, CritDamage: 150,
		}},
	}
	e := newTestEngine(skillPolicy{skillID: "bolt"}, fixedSource{v: 0}, WithTurnCap(3))

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}

	actions := map[int]ActionType{}
	for _, entry := range res.Log {
		if entry.ActorID == "p1" {
			actions[entry.Turn] = entry.Action
		}
	}
	if actions[1] != ActionSkill || actions[2] != ActionAttack || actions[3] != ActionSkill {
		t.Fatalf("action pattern = %v, want skill/attack/skill", actions)
	}
	if res.Stats.SkillsUsed != 2 {
		t.Fatalf("SkillsUsed = %d, want 2", res.Stats.SkillsUsed)
	}
}

func TestUnknownSkillFallsBackToAttack(t *testing.T) {
	f := testFormation()
	e := newTestEngine(skillPolicy{skillID: "no-such-skill"}, fixedSource{v: 0}, WithTurnCap(2))

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}
	if res.Stats.SkillsUsed != 0 {
		t.Fatalf("SkillsUsed = %d, want 0", res.Stats.SkillsUsed)
	}
	for _, entry := range res.Log {
		if entry.Action != ActionAttack {
			t.Fatalf("entry action = %s, want attack", entry.Action)
		}
	}
}

func TestEnvironmentEffectsApply(t *testing.T) {
	f := testFormation()
	f.Environment = Environment{
		Name: "swamp",
		Effects: []EnvironmentEffect{
			{Name: "mire", Stat: "speed", Delta: -3, AppliesTo: AppliesAll},
			{Name: "ambush ground", Stat: "attack", Delta: 4, AppliesTo: AppliesEnemies},
		},
	}
	e := newTestEngine(attackPolicy{}, fixedSource{v: 0.99}, WithTurnCap(1))

	res, err := e.ExecuteBattle(f)
	if err != nil {
		t.Fatalf("ExecuteBattle: %v", err)
	}
	// mire hits all 3 units, ambush ground only the single enemy.
	if res.Stats.StatusEffectsApplied != 4 {
		t.Fatalf("StatusEffectsApplied = %d, want 4", res.Stats.StatusEffectsApplied)
	}
}

func TestTurnOrder(t *testing.T) {
	players := []*Unit{
		{ID: "p1", Speed: 10, CurrentHP: 1, MaxHP: 1},
		{ID: "p2", Speed: 15, CurrentHP: 1, MaxHP: 1},
		{ID: "dead", Speed: 99, CurrentHP: 0, MaxHP: 1},
	}
	enemies := []*Unit{
		{ID: "e1", Speed: 15, CurrentHP: 1, MaxHP: 1},
		{ID: "e2", Speed: 12, CurrentHP: 1, MaxHP: 1},
	}

	order := turnOrder(players, enemies)
	got := make([]string, len(order))
	for i, u := range order {
		got[i] = u.ID
	}

	// Speed descending; the p2/e1 tie keeps player-team-first order; the dead
	// unit never appears.
	want := []string{"p2", "e1", "e2", "p1"}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBaseRewards(t *testing.T) {
	enemies := []*Unit{
		{Level: 4, CurrentHP: 0, MaxHP: 10},
		{Level: 3, CurrentHP: 0, MaxHP: 10},
		{Level: 9, CurrentHP: 5, MaxHP: 10}, // survivor pays nothing
	}

	got := baseRewards(OutcomeVictory, enemies)
	// (20+20) + (20+15) = 75 exp, 1.5x bonus = 112; (10+12) + (10+9) = 41 gold.
	if got.Experience != 112 || got.Gold != 41 {
		t.Fatalf("victory rewards = %+v, want {112 41}", got)
	}

	got = baseRewards(OutcomeDefeat, enemies)
	if got.Experience != 75 || got.Gold != 41 {
		t.Fatalf("defeat rewards = %+v, want {75 41}", got)
	}
}

// TestExecuteBattleProperties drives random small formations through the
// engine and checks the invariants every battle must satisfy.
func TestExecuteBattleProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		genUnit := func(id string, role Role) *Unit {
			maxHP := rapid.IntRange(1, 300).Draw(t, id+"_hp")
			return &Unit{
				ID: id, Name: id, Role: role,
				Level:      rapid.IntRange(1, 10).Draw(t, id+"_level"),
				CurrentHP:  maxHP,
				MaxHP:      maxHP,
				Attack:     rapid.IntRange(0, 50).Draw(t, id+"_atk"),
				Defense:    rapid.IntRange(0, 50).Draw(t, id+"_def"),
				Speed:      rapid.IntRange(1, 30).Draw(t, id+"_spd"),
				Accuracy:   rapid.IntRange(0, 120).Draw(t, id+"_acc"),
				Evasion:    rapid.IntRange(0, 60).Draw(t, id+"_eva"),
				CritRate:   rapid.IntRange(0, 40).Draw(t, id+"_crit"),
				CritDamage: rapid.IntRange(100, 250).Draw(t, id+"_critdmg"),
			}
		}

		f := &Formation{
			PlayerTeam: []*Unit{genUnit("p1", RolePlayer)},
			EnemyTeam:  []*Unit{genUnit("e1", RoleEnemy)},
		}
		if rapid.Bool().Draw(t, "with_companion") {
			f.PlayerTeam = append(f.PlayerTeam, genUnit("c1", RoleCompanion))
		}
		if rapid.Bool().Draw(t, "second_enemy") {
			f.EnemyTeam = append(f.EnemyTeam, genUnit("e2", RoleEnemy))
		}

		cap := rapid.IntRange(1, 50).Draw(t, "turn_cap")
		seed := rapid.Int64().Draw(t, "seed")
		e := newTestEngine(attackPolicy{}, rng.NewSeededSource(seed), WithTurnCap(cap))

		res, err := e.ExecuteBattle(f)
		if err != nil {
			t.Fatalf("ExecuteBattle: %v", err)
		}

		if res.Turns < 1 || res.Turns > cap {
			t.Fatalf("Turns = %d, cap %d", res.Turns, cap)
		}
		if res.Outcome != OutcomeVictory && res.Outcome != OutcomeDefeat && res.Outcome != OutcomeStalemate {
			t.Fatalf("unknown outcome %d", res.Outcome)
		}
		if res.Outcome == OutcomeStalemate && res.Turns != cap {
			t.Fatalf("stalemate before cap: turns %d, cap %d", res.Turns, cap)
		}

		lastTurn := 0
		for _, entry := range res.Log {
			if entry.Turn < lastTurn {
				t.Fatal("log entries out of turn order")
			}
			lastTurn = entry.Turn
			if entry.TargetHP < 0 {
				t.Fatalf("negative target hp in log: %+v", entry)
			}
			if entry.Missed && entry.Damage != 0 {
				t.Fatalf("missed entry carries damage: %+v", entry)
			}
			if !entry.Missed && entry.Action == ActionAttack && entry.Damage < 1 {
				t.Fatalf("landed attack below 1 damage: %+v", entry)
			}
		}

		for name, v := range map[string]int{
			"damage_dealt": res.Stats.TotalDamageDealt, "damage_received": res.Stats.TotalDamageReceived,
			"healing": res.Stats.TotalHealing, "skills": res.Stats.SkillsUsed,
			"crits": res.Stats.CriticalHits, "misses": res.Stats.MissedAttacks,
		} {
			if v < 0 {
				t.Fatalf("negative stat %s = %d", name, v)
			}
		}
	})
}
