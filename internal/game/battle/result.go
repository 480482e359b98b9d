package battle

// Outcome is the three-way terminal state of a battle.
type Outcome int

const (
	// OutcomeVictory means the enemy side was wiped out.
	OutcomeVictory Outcome = iota
	// OutcomeDefeat means the player side was wiped out.
	OutcomeDefeat
	// OutcomeStalemate means the turn cap was reached with both sides alive.
	OutcomeStalemate
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeStalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// LogEntry records one resolved action. The battle log is append-only and
// ordered, suitable for sequential playback.
type LogEntry struct {
	Turn       int
	ActorID    string
	ActorName  string
	Action     ActionType
	TargetID   string
	TargetName string
	SkillID    string
	Damage     int
	Healing    int
	Critical   bool
	Missed     bool
	// TargetHP is the target's hp after the action resolved.
	TargetHP  int
	Narrative string
}

// Statistics holds the aggregate counters for one battle.
//
// Invariant: all counters are >= 0. Damage counters are from the player
// side's perspective: dealt by the player side, received by the player side.
type Statistics struct {
	TotalDamageDealt     int
	TotalDamageReceived  int
	TotalHealing         int
	SkillsUsed           int
	SupportSkillsUsed    int
	CriticalHits         int
	MissedAttacks        int
	StatusEffectsApplied int
}

// BaseRewards are the raw battle rewards before character-aware processing.
type BaseRewards struct {
	Experience int
	Gold       int
}

// Result is the complete record of a finished battle. Immutable after the
// engine returns it; the result processor only reads it.
type Result struct {
	// ID uniquely identifies this battle run.
	ID string
	// Outcome is the terminal state.
	Outcome Outcome
	// Turns is the number of full turns elapsed.
	Turns int
	// Log is the ordered battle log.
	Log []LogEntry
	// Stats holds the aggregate counters.
	Stats Statistics
	// Rewards holds the base experience and gold.
	Rewards BaseRewards
}

func (r *Result) appendLog(e LogEntry) {
	r.Log = append(r.Log, e)
}
