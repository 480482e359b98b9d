package battle

// ActionType identifies what a unit intends to do on its turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAttack
	ActionSkill
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionSkill:
		return "skill"
	default:
		return "unknown"
	}
}

// Action is one decided action for an acting unit.
type Action struct {
	Type ActionType
	// TargetID is the intended target unit ID; empty lets the engine pick a
	// default target.
	TargetID string
	// SkillID is set for ActionSkill.
	SkillID string
}

// Policy is the per-actor decision strategy the engine invokes once per
// acting unit per turn. Defining the interface here keeps the engine
// decoupled from concrete policies and avoids a circular import.
type Policy interface {
	// Decide returns the action for actor given the living state of both
	// sides. Implementations must tolerate enemies with no living units.
	Decide(actor *Unit, allies, enemies []*Unit) Action
}

// Source is the subset of rng.Source used by battle resolution.
// Using a local interface avoids coupling primitives to the rng package.
type Source interface {
	Intn(n int) int
	Float64() float64
}
