package battle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SkillTemplate defines a reusable skill loaded from YAML.
type SkillTemplate struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Damage        int    `yaml:"damage"`
	HealAmount    int    `yaml:"heal_amount"`
	MPCost        int    `yaml:"mp_cost"`
	CooldownTurns int    `yaml:"cooldown_turns"`
	TargetType    string `yaml:"target_type"` // "single" or "all"
	SkillType     string `yaml:"skill_type"`  // "offensive" or "support"
}

// UnitTemplate defines a reusable unit archetype loaded from YAML.
type UnitTemplate struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Role       string          `yaml:"role"` // "player", "companion", "enemy"
	Level      int             `yaml:"level"`
	MaxHP      int             `yaml:"max_hp"`
	MaxMP      int             `yaml:"max_mp"`
	Attack     int             `yaml:"attack"`
	Defense    int             `yaml:"defense"`
	Speed      int             `yaml:"speed"`
	Accuracy   int             `yaml:"accuracy"`
	Evasion    int             `yaml:"evasion"`
	CritRate   int             `yaml:"crit_rate"`
	CritDamage int             `yaml:"crit_damage"`
	Skills     []SkillTemplate `yaml:"skills"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Role parses,
// Level >= 1, MaxHP >= 1, and no stat or skill field is negative.
func (t *UnitTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("unit template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("unit template %q: name must not be empty", t.ID)
	}
	if _, err := parseRole(t.Role); err != nil {
		return fmt.Errorf("unit template %q: %w", t.ID, err)
	}
	if t.Level < 1 {
		return fmt.Errorf("unit template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("unit template %q: max_hp must be >= 1", t.ID)
	}
	for name, v := range map[string]int{
		"max_mp": t.MaxMP, "attack": t.Attack, "defense": t.Defense,
		"speed": t.Speed, "accuracy": t.Accuracy, "evasion": t.Evasion,
		"crit_rate": t.CritRate, "crit_damage": t.CritDamage,
	} {
		if v < 0 {
			return fmt.Errorf("unit template %q: %s must not be negative", t.ID, name)
		}
	}
	for _, s := range t.Skills {
		if err := s.validate(); err != nil {
			return fmt.Errorf("unit template %q: %w", t.ID, err)
		}
	}
	return nil
}

func (s SkillTemplate) validate() error {
	if s.ID == "" {
		return fmt.Errorf("skill template: id must not be empty")
	}
	if _, err := parseSkillType(s.SkillType); err != nil {
		return fmt.Errorf("skill template %q: %w", s.ID, err)
	}
	if _, err := parseTargetType(s.TargetType); err != nil {
		return fmt.Errorf("skill template %q: %w", s.ID, err)
	}
	for name, v := range map[string]int{
		"damage": s.Damage, "heal_amount": s.HealAmount,
		"mp_cost": s.MPCost, "cooldown_turns": s.CooldownTurns,
	} {
		if v < 0 {
			return fmt.Errorf("skill template %q: %s must not be negative", s.ID, name)
		}
	}
	return nil
}

func parseRole(s string) (Role, error) {
	switch s {
	case "player":
		return RolePlayer, nil
	case "companion":
		return RoleCompanion, nil
	case "enemy":
		return RoleEnemy, nil
	default:
		return 0, fmt.Errorf("role must be one of [player, companion, enemy], got %q", s)
	}
}

func parseSkillType(s string) (SkillType, error) {
	switch s {
	case "offensive":
		return SkillOffensive, nil
	case "support":
		return SkillSupport, nil
	default:
		return 0, fmt.Errorf("skill_type must be one of [offensive, support], got %q", s)
	}
}

func parseTargetType(s string) (TargetType, error) {
	switch s {
	case "single", "":
		return TargetSingle, nil
	case "all":
		return TargetAll, nil
	default:
		return 0, fmt.Errorf("target_type must be one of [single, all], got %q", s)
	}
}

// NewUnitFromTemplate instantiates a fresh unit from a validated template.
// The instance gets a new uuid, full hp/mp, and cold skill cooldowns.
//
// Precondition: tmpl must have passed Validate.
func NewUnitFromTemplate(tmpl *UnitTemplate) *Unit {
	role, _ := parseRole(tmpl.Role)
	u := &Unit{
		ID:         uuid.New().String(),
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Role:       role,
		Level:      tmpl.Level,
		CurrentHP:  tmpl.MaxHP,
		MaxHP:      tmpl.MaxHP,
		CurrentMP:  tmpl.MaxMP,
		MaxMP:      tmpl.MaxMP,
		Attack:     tmpl.Attack,
		Defense:    tmpl.Defense,
		Speed:      tmpl.Speed,
		Accuracy:   tmpl.Accuracy,
		Evasion:    tmpl.Evasion,
		CritRate:   tmpl.CritRate,
		CritDamage: tmpl.CritDamage,
	}
	for _, s := range tmpl.Skills {
		skillType, _ := parseSkillType(s.SkillType)
		targetType, _ := parseTargetType(s.TargetType)
		u.Skills = append(u.Skills, &Skill{
			ID:            s.ID,
			Name:          s.Name,
			Damage:        s.Damage,
			HealAmount:    s.HealAmount,
			MPCost:        s.MPCost,
			CooldownTurns: s.CooldownTurns,
			Target:        targetType,
			Type:          skillType,
		})
	}
	return u
}

// LoadTemplateFromBytes parses a single unit template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single UnitTemplate.
// Postcondition: Returns a validated *UnitTemplate, or an error.
func LoadTemplateFromBytes(data []byte) (*UnitTemplate, error) {
	var tmpl UnitTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*UnitTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading unit dir %q: %w", dir, err)
	}

	var templates []*UnitTemplate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
