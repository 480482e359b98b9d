// Package persona defines the read-only character snapshot consumed by battle
// setup and reward processing, plus the pure trait and emotion mappings.
//
// The persistent character record is owned by an external collaborator; this
// package only models the subset of fields the battle core reads.
package persona

import "time"

// Emotion is the companion's current emotional state.
type Emotion string

const (
	EmotionNeutral Emotion = "neutral"
	EmotionHappy   Emotion = "happy"
	EmotionExcited Emotion = "excited"
	EmotionAngry   Emotion = "angry"
	EmotionSad     Emotion = "sad"
	EmotionAnxious Emotion = "anxious"
	EmotionCalm    Emotion = "calm"
)

// Traits holds the named personality core traits, each in [0,1].
type Traits struct {
	Caring     float64
	Supportive float64
	Brave      float64
	Cautious   float64
	Aggressive float64
	Playful    float64
}

// Relationship holds the companion's relationship status with its player.
type Relationship struct {
	// IntimacyLevel is in [0,1].
	IntimacyLevel float64
	// TrustLevel is in [0,1].
	TrustLevel float64
	// TotalInteractions counts every processed interaction, battles included.
	TotalInteractions int
	// LastInteraction is the time of the most recent processed interaction.
	LastInteraction time.Time
}

// Level derives a scalar relationship level from intimacy, trust, and
// interaction count. Monotonic in all three inputs; interactions saturate
// at 100 so grinding alone cannot dominate.
//
// Postcondition: Returns a value in [0, 10].
func (r Relationship) Level() float64 {
	interactions := float64(r.TotalInteractions)
	if interactions > 100 {
		interactions = 100
	}
	return r.IntimacyLevel*4 + r.TrustLevel*4 + interactions/50
}

// Snapshot is the read-only view of a persistent character used by the
// battle core. Mutations to the underlying record are proposed as reward
// deltas, never written here.
type Snapshot struct {
	// ID is the stable character identifier.
	ID string
	// Traits is the personality core.
	Traits Traits
	// Relationship is the current relationship status.
	Relationship Relationship
	// Emotion is the current emotional state.
	Emotion Emotion
	// EmotionIntensity is in [0,1].
	EmotionIntensity float64
}

// Neutral returns a snapshot with all traits at 0.5, a neutral emotion, and
// an empty relationship. Used as the degradation fallback when a caller
// passes a malformed snapshot to reward processing.
func Neutral(id string) *Snapshot {
	return &Snapshot{
		ID: id,
		Traits: Traits{
			Caring: 0.5, Supportive: 0.5, Brave: 0.5,
			Cautious: 0.5, Aggressive: 0.5, Playful: 0.5,
		},
		Emotion:          EmotionNeutral,
		EmotionIntensity: 0.5,
	}
}
