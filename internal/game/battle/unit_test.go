package battle

import "testing"

func testUnit() *Unit {
	return &Unit{
		ID: "u1", Name: "Test", Role: RoleCompanion, Level: 3,
		CurrentHP: 80, MaxHP: 100, CurrentMP: 30, MaxMP: 50,
		Attack: 20, Defense: 10, Speed: 12, Accuracy: 90, Evasion: 10,
		CritRate: 5, CritDamage: 150,
		Skills: []*Skill{
			{ID: "s1", Name: "Strike", Damage: 15, MPCost: 10, CooldownTurns: 2, Type: SkillOffensive},
		},
	}
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	u := testUnit()
	u.ApplyDamage(30)
	if u.CurrentHP != 50 {
		t.Fatalf("CurrentHP = %d, want 50", u.CurrentHP)
	}
	u.ApplyDamage(9999)
	if u.CurrentHP != 0 {
		t.Fatalf("CurrentHP = %d, want 0", u.CurrentHP)
	}
	if u.IsAlive() {
		t.Fatal("unit at 0 hp must not be alive")
	}
}

func TestHealClampsAtMax(t *testing.T) {
	u := testUnit()
	if applied := u.Heal(10); applied != 10 {
		t.Fatalf("applied = %d, want 10", applied)
	}
	if applied := u.Heal(9999); applied != 10 {
		t.Fatalf("applied = %d, want 10 (clamped)", applied)
	}
	if u.CurrentHP != u.MaxHP {
		t.Fatalf("CurrentHP = %d, want %d", u.CurrentHP, u.MaxHP)
	}
	if applied := u.Heal(5); applied != 0 {
		t.Fatalf("heal at full hp applied %d, want 0", applied)
	}
}

func TestHPFraction(t *testing.T) {
	u := testUnit()
	if got := u.HPFraction(); got != 0.8 {
		t.Fatalf("HPFraction = %g, want 0.8", got)
	}
	if got := (&Unit{}).HPFraction(); got != 0 {
		t.Fatalf("zero MaxHP fraction = %g, want 0", got)
	}
}

func TestSpendMP(t *testing.T) {
	u := testUnit()
	if !u.SpendMP(30) {
		t.Fatal("SpendMP(30) should succeed with 30 mp")
	}
	if u.CurrentMP != 0 {
		t.Fatalf("CurrentMP = %d, want 0", u.CurrentMP)
	}
	if u.SpendMP(1) {
		t.Fatal("SpendMP(1) should fail with 0 mp")
	}
	if u.SpendMP(-5) {
		t.Fatal("negative cost must be rejected")
	}
}

func TestSkillByID(t *testing.T) {
	u := testUnit()
	if _, ok := u.SkillByID("s1"); !ok {
		t.Fatal("s1 not found")
	}
	if _, ok := u.SkillByID("nope"); ok {
		t.Fatal("unknown skill found")
	}
}

func TestEffectLifecycle(t *testing.T) {
	u := testUnit()
	u.ApplyEffect(Effect{ID: "e1", Stat: "attack", Delta: 5, RemainingTurns: 2})
	if u.Attack != 25 {
		t.Fatalf("Attack = %d, want 25", u.Attack)
	}

	u.TickEffects()
	if u.Attack != 25 || len(u.Effects) != 1 {
		t.Fatalf("after tick 1: Attack = %d, effects = %d", u.Attack, len(u.Effects))
	}

	u.TickEffects()
	if u.Attack != 20 {
		t.Fatalf("expired effect not reverted: Attack = %d", u.Attack)
	}
	if len(u.Effects) != 0 {
		t.Fatalf("expired effect not removed: %d effects", len(u.Effects))
	}
}

// TestBattleLongEffectPersists verifies effects with RemainingTurns == -1 are
// never ticked down or reverted.
func TestBattleLongEffectPersists(t *testing.T) {
	u := testUnit()
	u.ApplyEffect(Effect{ID: "env", Stat: "speed", Delta: -3, RemainingTurns: -1})
	for i := 0; i < 10; i++ {
		u.TickEffects()
	}
	if u.Speed != 9 {
		t.Fatalf("Speed = %d, want 9", u.Speed)
	}
	if len(u.Effects) != 1 {
		t.Fatalf("effects = %d, want 1", len(u.Effects))
	}
}

func TestEffectStatFloorsAtZero(t *testing.T) {
	u := testUnit()
	u.ApplyEffect(Effect{ID: "e", Stat: "defense", Delta: -999, RemainingTurns: -1})
	if u.Defense != 0 {
		t.Fatalf("Defense = %d, want 0", u.Defense)
	}
}

func TestUnitCloneIsDeep(t *testing.T) {
	u := testUnit()
	u.Effects = []Effect{{ID: "e1", Stat: "attack", Delta: 2, RemainingTurns: 3}}
	cp := u.Clone()

	cp.CurrentHP = 1
	cp.Skills[0].CurrentCooldown = 2
	cp.Effects[0].RemainingTurns = 0

	if u.CurrentHP != 80 {
		t.Fatalf("original hp mutated: %d", u.CurrentHP)
	}
	if u.Skills[0].CurrentCooldown != 0 {
		t.Fatal("original skill mutated through clone")
	}
	if u.Effects[0].RemainingTurns != 3 {
		t.Fatal("original effect mutated through clone")
	}
}

func TestSkillCooldown(t *testing.T) {
	s := &Skill{ID: "s", MPCost: 10, CooldownTurns: 2}
	u := &Unit{CurrentMP: 10}

	if !s.AvailableTo(u) {
		t.Fatal("skill should be available")
	}
	s.Use()
	if s.Ready() || s.AvailableTo(u) {
		t.Fatal("skill on cooldown must not be available")
	}
	s.TickCooldown()
	s.TickCooldown()
	if !s.Ready() {
		t.Fatalf("CurrentCooldown = %d after two ticks", s.CurrentCooldown)
	}
	s.TickCooldown()
	if s.CurrentCooldown != 0 {
		t.Fatal("cooldown must not go negative")
	}

	u.CurrentMP = 5
	if s.AvailableTo(u) {
		t.Fatal("unaffordable skill must not be available")
	}
}

func TestRolePlayerSide(t *testing.T) {
	if !RolePlayer.PlayerSide() || !RoleCompanion.PlayerSide() {
		t.Fatal("player-side roles misclassified")
	}
	if RoleEnemy.PlayerSide() {
		t.Fatal("enemy classified as player side")
	}
}
