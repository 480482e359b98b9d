package growth

import (
	"context"
	"fmt"

	"github.com/emberworks/companion/internal/game/persona"
)

// Effectiveness is a read-only assessment of a character's battle
// performance, derived from their history and personality.
type Effectiveness struct {
	// OverallRating is in [0, 100].
	OverallRating float64
	Strengths     []string
	Weaknesses    []string
}

// GetBattleEffectiveness assesses snap against its performance history.
// Read-only: neither the snapshot nor the store is modified.
//
// Precondition: snap must be non-nil with a non-empty ID.
func (p *Processor) GetBattleEffectiveness(ctx context.Context, snap *persona.Snapshot) (*Effectiveness, error) {
	if snap == nil || snap.ID == "" {
		return nil, fmt.Errorf("growth: character snapshot must have an id")
	}
	rec, err := p.store.Get(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("growth: reading performance history: %w", err)
	}

	rating := 50 + rec.WinRate()*40
	streak := rec.CurrentStreak
	if streak > 5 {
		streak = 5
	}
	rating += float64(streak) * 2
	if rating > 100 {
		rating = 100
	}

	eff := &Effectiveness{OverallRating: rating}

	if rec.WinRate() >= 0.6 && rec.TotalBattles() >= 3 {
		eff.Strengths = append(eff.Strengths, "wins consistently")
	}
	if rec.CurrentStreak >= 3 {
		eff.Strengths = append(eff.Strengths, "on a winning streak")
	}
	if snap.Traits.Caring >= 0.7 || snap.Traits.Supportive >= 0.7 {
		eff.Strengths = append(eff.Strengths, "strong support play")
	}
	if snap.Traits.Brave >= 0.7 {
		eff.Strengths = append(eff.Strengths, "presses the attack")
	}

	if rec.TotalBattles() >= 3 && rec.WinRate() < 0.4 {
		eff.Weaknesses = append(eff.Weaknesses, "struggles to close out battles")
	}
	if snap.Traits.Cautious >= 0.8 {
		eff.Weaknesses = append(eff.Weaknesses, "hesitates on offense")
	}
	if snap.Traits.Caring <= 0.2 {
		eff.Weaknesses = append(eff.Weaknesses, "neglects wounded allies")
	}

	return eff, nil
}
