package persona

// Modifiers is the derived personality vector attached to a companion unit.
// The action-selection policy consumes this vector, never the raw trait map.
//
// Invariant: all fields are in [0,1].
type Modifiers struct {
	// Support weights the heal-override probability.
	Support float64
	// Aggression weights offensive skill preference.
	Aggression float64
	// Caution weights target and risk assessment.
	Caution float64
}

// DeriveModifiers blends the named traits into the derived vector.
// The weights are fixed; callers must not re-derive from raw trait names.
//
// Postcondition: every field of the result is in [0,1].
func DeriveModifiers(t Traits) Modifiers {
	return Modifiers{
		Support:    clamp01(0.6*t.Caring + 0.4*t.Supportive),
		Aggression: clamp01(0.7*t.Aggressive + 0.3*t.Brave),
		Caution:    clamp01(0.7*t.Cautious + 0.3*(1-t.Brave)),
	}
}

// EmotionModifier is the deterministic stat shift applied to a companion
// for a given emotion, in whole percentage points at full intensity.
type EmotionModifier struct {
	CritRate int
	Accuracy int
	Evasion  int
}

// emotionTable is the authoritative emotion → stat shift mapping.
// Entries are applied scaled by the snapshot's EmotionIntensity.
var emotionTable = map[Emotion]EmotionModifier{
	EmotionNeutral: {CritRate: 0, Accuracy: 0, Evasion: 0},
	EmotionHappy:   {CritRate: 5, Accuracy: 5, Evasion: 0},
	EmotionExcited: {CritRate: 10, Accuracy: -5, Evasion: 0},
	EmotionAngry:   {CritRate: 15, Accuracy: -10, Evasion: -5},
	EmotionSad:     {CritRate: -5, Accuracy: -5, Evasion: 0},
	EmotionAnxious: {CritRate: 0, Accuracy: -10, Evasion: 10},
	EmotionCalm:    {CritRate: 0, Accuracy: 10, Evasion: 5},
}

// ModifierForEmotion returns the stat shift for e at full intensity.
// Unknown emotions map to the neutral (zero) modifier.
func ModifierForEmotion(e Emotion) EmotionModifier {
	if m, ok := emotionTable[e]; ok {
		return m
	}
	return emotionTable[EmotionNeutral]
}

// ScaledModifier returns the stat shift for e scaled by intensity in [0,1].
// Intensity outside [0,1] is clamped.
func ScaledModifier(e Emotion, intensity float64) EmotionModifier {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	m := ModifierForEmotion(e)
	return EmotionModifier{
		CritRate: int(float64(m.CritRate) * intensity),
		Accuracy: int(float64(m.Accuracy) * intensity),
		Evasion:  int(float64(m.Evasion) * intensity),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
