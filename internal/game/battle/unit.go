// Package battle implements the turn-based battle engine: combat primitives,
// the turn-resolution loop, and battle results.
package battle

// Role distinguishes the three side-roles a unit can hold.
type Role int

const (
	RolePlayer Role = iota
	RoleCompanion
	RoleEnemy
)

// String returns a human-readable role label.
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleCompanion:
		return "companion"
	case RoleEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// PlayerSide reports whether the role fights on the player's side.
func (r Role) PlayerSide() bool { return r != RoleEnemy }

// ModifierSet is the derived personality vector attached to companion units
// by battle setup. The action-selection policy reads it; raw personality
// traits never reach this package.
//
// Invariant: all fields are in [0,1].
type ModifierSet struct {
	Support    float64
	Aggression float64
	Caution    float64
}

// Effect is an active buff or debuff on a unit.
type Effect struct {
	// ID identifies the effect source (e.g. environment name).
	ID string
	// Name is the display label.
	Name string
	// Stat is the affected stat: "attack", "defense", "speed", "accuracy",
	// "evasion", or "crit_rate".
	Stat string
	// Delta is the applied stat change; negative for debuffs.
	Delta int
	// RemainingTurns counts down each full turn; -1 means battle-long.
	RemainingTurns int
}

// Unit is a transient stat-bearing participant in one battle.
//
// Invariant: 0 <= CurrentHP <= MaxHP, 0 <= CurrentMP <= MaxMP,
// IsAlive() iff CurrentHP > 0, all stat fields >= 0.
type Unit struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateID is the source template's ID, empty for hand-built units.
	TemplateID string
	// Name is the display name.
	Name string
	// Role is the unit's side-role.
	Role Role
	// Level is the unit's level.
	Level int

	CurrentHP int
	MaxHP     int
	CurrentMP int
	MaxMP     int

	Attack  int
	Defense int
	Speed   int
	// Accuracy and Evasion are whole percentage points.
	Accuracy int
	Evasion  int
	// CritRate is the critical chance in whole percentage points.
	CritRate int
	// CritDamage is the critical multiplier in percent (150 = 1.5x).
	CritDamage int

	// Effects is the list of active buffs and debuffs.
	Effects []Effect
	// Skills is the unit's skill list.
	Skills []*Skill
	// Modifiers is populated only for companion units.
	Modifiers ModifierSet
}

// IsAlive reports whether the unit can still act.
//
// Postcondition: Returns true iff CurrentHP > 0.
func (u *Unit) IsAlive() bool { return u.CurrentHP > 0 }

// HPFraction returns CurrentHP / MaxHP in [0,1]. Zero MaxHP yields 0.
func (u *Unit) HPFraction() float64 {
	if u.MaxHP <= 0 {
		return 0
	}
	return float64(u.CurrentHP) / float64(u.MaxHP)
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
//
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (u *Unit) ApplyDamage(amount int) {
	u.CurrentHP -= amount
	if u.CurrentHP < 0 {
		u.CurrentHP = 0
	}
}

// Heal raises CurrentHP by amount, clamped to MaxHP, and returns the amount
// actually applied.
//
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP <= MaxHP; returned value >= 0.
func (u *Unit) Heal(amount int) int {
	before := u.CurrentHP
	u.CurrentHP += amount
	if u.CurrentHP > u.MaxHP {
		u.CurrentHP = u.MaxHP
	}
	return u.CurrentHP - before
}

// SpendMP deducts cost from CurrentMP if affordable.
//
// Postcondition: Returns true and deducts iff CurrentMP >= cost.
func (u *Unit) SpendMP(cost int) bool {
	if cost < 0 || u.CurrentMP < cost {
		return false
	}
	u.CurrentMP -= cost
	return true
}

// SkillByID returns the unit's skill with the given ID.
//
// Postcondition: Returns (skill, true) if found, or (nil, false) otherwise.
func (u *Unit) SkillByID(id string) (*Skill, bool) {
	for _, s := range u.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// ApplyEffect appends e to the unit's active effects and applies its stat delta.
//
// Postcondition: The affected stat is shifted by e.Delta, floored at zero.
func (u *Unit) ApplyEffect(e Effect) {
	u.Effects = append(u.Effects, e)
	u.shiftStat(e.Stat, e.Delta)
}

// TickEffects decrements timed effects and reverts any that expire.
// Battle-long effects (RemainingTurns < 0) are untouched.
func (u *Unit) TickEffects() {
	kept := u.Effects[:0]
	for _, e := range u.Effects {
		if e.RemainingTurns < 0 {
			kept = append(kept, e)
			continue
		}
		e.RemainingTurns--
		if e.RemainingTurns <= 0 {
			u.shiftStat(e.Stat, -e.Delta)
			continue
		}
		kept = append(kept, e)
	}
	u.Effects = kept
}

func (u *Unit) shiftStat(stat string, delta int) {
	apply := func(v *int) {
		*v += delta
		if *v < 0 {
			*v = 0
		}
	}
	switch stat {
	case "attack":
		apply(&u.Attack)
	case "defense":
		apply(&u.Defense)
	case "speed":
		apply(&u.Speed)
	case "accuracy":
		apply(&u.Accuracy)
	case "evasion":
		apply(&u.Evasion)
	case "crit_rate":
		apply(&u.CritRate)
	}
}

// Clone returns a deep copy of the unit, including skills and effects.
func (u *Unit) Clone() *Unit {
	cp := *u
	cp.Effects = make([]Effect, len(u.Effects))
	copy(cp.Effects, u.Effects)
	cp.Skills = make([]*Skill, len(u.Skills))
	for i, s := range u.Skills {
		cp.Skills[i] = s.Clone()
	}
	return &cp
}
