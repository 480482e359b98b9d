package battle

// SkillType separates damage skills from heals.
type SkillType int

const (
	SkillOffensive SkillType = iota
	SkillSupport
)

// String returns a human-readable skill type label.
func (t SkillType) String() string {
	switch t {
	case SkillOffensive:
		return "offensive"
	case SkillSupport:
		return "support"
	default:
		return "unknown"
	}
}

// TargetType determines how many units a skill hits.
type TargetType int

const (
	TargetSingle TargetType = iota
	TargetAll
)

// String returns a human-readable target type label.
func (t TargetType) String() string {
	switch t {
	case TargetSingle:
		return "single"
	case TargetAll:
		return "all"
	default:
		return "unknown"
	}
}

// Skill is one usable ability on a unit.
//
// Invariant: CurrentCooldown >= 0 and CurrentCooldown <= CooldownTurns.
// Damage applies to offensive skills, HealAmount to support skills.
type Skill struct {
	ID   string
	Name string
	// Damage is the base damage for offensive skills.
	Damage int
	// HealAmount is the base heal for support skills.
	HealAmount int
	// MPCost is deducted from the caster on use.
	MPCost int
	// CooldownTurns is the cooldown set after use.
	CooldownTurns int
	// CurrentCooldown counts down by 1 at the end of each full turn.
	CurrentCooldown int
	// Target selects single-target or all-target resolution.
	Target TargetType
	// Type is offensive or support.
	Type SkillType
}

// Ready reports whether the skill is off cooldown.
func (s *Skill) Ready() bool { return s.CurrentCooldown == 0 }

// AvailableTo reports whether u can use the skill right now: off cooldown
// and affordable.
func (s *Skill) AvailableTo(u *Unit) bool {
	return s.Ready() && u.CurrentMP >= s.MPCost
}

// Use puts the skill on cooldown.
//
// Postcondition: CurrentCooldown == CooldownTurns.
func (s *Skill) Use() {
	s.CurrentCooldown = s.CooldownTurns
}

// TickCooldown decrements CurrentCooldown toward zero.
//
// Postcondition: CurrentCooldown >= 0.
func (s *Skill) TickCooldown() {
	if s.CurrentCooldown > 0 {
		s.CurrentCooldown--
	}
}

// Clone returns a copy of the skill.
func (s *Skill) Clone() *Skill {
	cp := *s
	return &cp
}
