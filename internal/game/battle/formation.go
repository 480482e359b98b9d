package battle

import "fmt"

// ConfigurationError reports a malformed formation rejected before any
// simulation work. No partial battle is possible once one is returned.
type ConfigurationError struct {
	// Field names the offending input (e.g. "player_team", "unit goblin-1.attack").
	Field string
	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("battle configuration: %s: %s", e.Field, e.Reason)
}

// Environment side selectors for environment effects.
const (
	AppliesAll     = "all"
	AppliesPlayers = "players"
	AppliesEnemies = "enemies"
)

// EnvironmentEffect is a stat shift the battle environment applies to one
// side (or both) at battle start.
type EnvironmentEffect struct {
	Name string `yaml:"name"`
	// Stat uses the Effect stat keys: attack, defense, speed, accuracy,
	// evasion, crit_rate.
	Stat  string `yaml:"stat"`
	Delta int    `yaml:"delta"`
	// AppliesTo is one of AppliesAll, AppliesPlayers, AppliesEnemies.
	AppliesTo string `yaml:"applies_to"`
}

// Environment is the battle's environment metadata.
type Environment struct {
	Name    string              `yaml:"name"`
	Effects []EnvironmentEffect `yaml:"effects"`
}

// Formation is the initial set of units for both sides plus environment
// metadata. Created once per battle request; the engine clones it, so a
// formation passed to ExecuteBattle is never mutated.
type Formation struct {
	PlayerTeam  []*Unit
	EnemyTeam   []*Unit
	Environment Environment
}

// Companion returns the first companion unit on the player team, or nil.
func (f *Formation) Companion() *Unit {
	for _, u := range f.PlayerTeam {
		if u.Role == RoleCompanion {
			return u
		}
	}
	return nil
}

// Clone returns a deep copy of the formation.
func (f *Formation) Clone() *Formation {
	cp := &Formation{Environment: f.Environment}
	cp.Environment.Effects = make([]EnvironmentEffect, len(f.Environment.Effects))
	copy(cp.Environment.Effects, f.Environment.Effects)
	cp.PlayerTeam = make([]*Unit, len(f.PlayerTeam))
	for i, u := range f.PlayerTeam {
		cp.PlayerTeam[i] = u.Clone()
	}
	cp.EnemyTeam = make([]*Unit, len(f.EnemyTeam))
	for i, u := range f.EnemyTeam {
		cp.EnemyTeam[i] = u.Clone()
	}
	return cp
}

// Validate checks the formation invariants the engine requires.
//
// Postcondition: nil return guarantees both teams are non-empty, every unit
// has non-negative core stats, hp/mp within bounds, and every skill has a
// sane cooldown state.
func (f *Formation) Validate() error {
	if len(f.PlayerTeam) == 0 {
		return &ConfigurationError{Field: "player_team", Reason: "must not be empty"}
	}
	if len(f.EnemyTeam) == 0 {
		return &ConfigurationError{Field: "enemy_team", Reason: "must not be empty"}
	}
	for _, u := range f.PlayerTeam {
		if err := validateUnit(u); err != nil {
			return err
		}
		if u.Role == RoleEnemy {
			return &ConfigurationError{Field: fmt.Sprintf("unit %s.role", u.ID), Reason: "enemy role on player team"}
		}
	}
	for _, u := range f.EnemyTeam {
		if err := validateUnit(u); err != nil {
			return err
		}
		if u.Role != RoleEnemy {
			return &ConfigurationError{Field: fmt.Sprintf("unit %s.role", u.ID), Reason: "non-enemy role on enemy team"}
		}
	}
	return nil
}

func validateUnit(u *Unit) error {
	if u == nil {
		return &ConfigurationError{Field: "unit", Reason: "must not be nil"}
	}
	field := func(name string) string { return fmt.Sprintf("unit %s.%s", u.ID, name) }
	if u.ID == "" {
		return &ConfigurationError{Field: "unit.id", Reason: "must not be empty"}
	}
	if u.MaxHP < 1 {
		return &ConfigurationError{Field: field("max_hp"), Reason: "must be >= 1"}
	}
	stats := map[string]int{
		"level": u.Level, "current_hp": u.CurrentHP, "current_mp": u.CurrentMP,
		"max_mp": u.MaxMP, "attack": u.Attack, "defense": u.Defense,
		"speed": u.Speed, "accuracy": u.Accuracy, "evasion": u.Evasion,
		"crit_rate": u.CritRate, "crit_damage": u.CritDamage,
	}
	for name, v := range stats {
		if v < 0 {
			return &ConfigurationError{Field: field(name), Reason: "must not be negative"}
		}
	}
	if u.CurrentHP > u.MaxHP {
		return &ConfigurationError{Field: field("current_hp"), Reason: "must not exceed max_hp"}
	}
	if u.CurrentMP > u.MaxMP {
		return &ConfigurationError{Field: field("current_mp"), Reason: "must not exceed max_mp"}
	}
	for _, s := range u.Skills {
		if s.CurrentCooldown > s.CooldownTurns {
			return &ConfigurationError{
				Field:  fmt.Sprintf("unit %s skill %s.current_cooldown", u.ID, s.ID),
				Reason: "must not exceed cooldown_turns",
			}
		}
	}
	return nil
}
