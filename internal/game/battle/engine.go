package battle

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTurnCap bounds the turn loop so adversarial stat configurations
// (mutually un-killable units) still terminate. Not a gameplay-tuning knob.
const DefaultTurnCap = 200

// Engine executes formations through the turn loop. An Engine is cheap and
// carries no per-battle state; each ExecuteBattle call is independent.
type Engine struct {
	policy    Policy
	src       Source
	logger    *zap.Logger
	turnCap   int
	turnDelay time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTurnCap overrides the default turn cap.
//
// Precondition: cap must be >= 1.
func WithTurnCap(cap int) Option {
	return func(e *Engine) {
		if cap >= 1 {
			e.turnCap = cap
		}
	}
}

// WithTurnDelay sets an optional pacing delay applied after each full turn,
// used only for presentation playback.
func WithTurnDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.turnDelay = d
		}
	}
}

// NewEngine creates an Engine using the given decision policy and random source.
//
// Precondition: policy, src, and logger must be non-nil.
func NewEngine(policy Policy, src Source, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		policy:  policy,
		src:     src,
		logger:  logger,
		turnCap: DefaultTurnCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteBattle runs f from its starting state to a terminal result.
//
// The formation is cloned before simulation, so f is never mutated. Returns
// a *ConfigurationError synchronously for malformed input; otherwise always
// a complete Result — there is no partial or streaming contract.
//
// Postcondition: result.Turns <= the configured turn cap; result.Outcome is
// Victory iff no enemy lives, Defeat iff no player-side unit lives,
// Stalemate iff the cap was reached with both sides alive.
func (e *Engine) ExecuteBattle(f *Formation) (*Result, error) {
	if f == nil {
		return nil, &ConfigurationError{Field: "formation", Reason: "must not be nil"}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	sim := f.Clone()
	res := &Result{ID: uuid.New().String()}

	e.applyEnvironment(sim, res)

	players := sim.PlayerTeam
	enemies := sim.EnemyTeam

	for turn := 1; turn <= e.turnCap; turn++ {
		order := turnOrder(players, enemies)
		for _, u := range order {
			// A unit killed earlier in the same turn does not act.
			if !u.IsAlive() {
				continue
			}
			if !hasLiving(players) || !hasLiving(enemies) {
				break
			}
			allies, foes := players, enemies
			if u.Role == RoleEnemy {
				allies, foes = enemies, players
			}
			action := e.policy.Decide(u, allies, foes)
			e.resolveAction(turn, u, action, allies, foes, res)
		}
		res.Turns = turn

		// Cooldowns tick for every living unit at the end of each full turn.
		for _, u := range order {
			if !u.IsAlive() {
				continue
			}
			for _, s := range u.Skills {
				s.TickCooldown()
			}
			u.TickEffects()
		}

		if !hasLiving(enemies) {
			res.Outcome = OutcomeVictory
			break
		}
		if !hasLiving(players) {
			res.Outcome = OutcomeDefeat
			break
		}
		if turn == e.turnCap {
			res.Outcome = OutcomeStalemate
			e.logger.Warn("battle reached turn cap",
				zap.String("battle_id", res.ID),
				zap.Int("turn_cap", e.turnCap),
			)
			break
		}

		if e.turnDelay > 0 {
			time.Sleep(e.turnDelay)
		}
	}

	res.Rewards = baseRewards(res.Outcome, enemies)

	e.logger.Info("battle complete",
		zap.String("battle_id", res.ID),
		zap.String("outcome", res.Outcome.String()),
		zap.Int("turns", res.Turns),
		zap.Int("damage_dealt", res.Stats.TotalDamageDealt),
		zap.Int("damage_received", res.Stats.TotalDamageReceived),
		zap.Int("healing", res.Stats.TotalHealing),
	)
	return res, nil
}

// applyEnvironment applies the formation's environment effects to the
// matching sides before the first turn.
func (e *Engine) applyEnvironment(sim *Formation, res *Result) {
	for _, env := range sim.Environment.Effects {
		var targets []*Unit
		switch env.AppliesTo {
		case AppliesPlayers:
			targets = sim.PlayerTeam
		case AppliesEnemies:
			targets = sim.EnemyTeam
		default:
			targets = append(append([]*Unit{}, sim.PlayerTeam...), sim.EnemyTeam...)
		}
		for _, u := range targets {
			u.ApplyEffect(Effect{
				ID:             sim.Environment.Name,
				Name:           env.Name,
				Stat:           env.Stat,
				Delta:          env.Delta,
				RemainingTurns: -1,
			})
			res.Stats.StatusEffectsApplied++
		}
		e.logger.Debug("environment effect applied",
			zap.String("environment", sim.Environment.Name),
			zap.String("effect", env.Name),
			zap.String("stat", env.Stat),
			zap.Int("delta", env.Delta),
		)
	}
}

// turnOrder returns all living units sorted by speed descending. Equal-speed
// ties keep the stable (team, original position) order: player team first,
// then enemy team, each in formation order.
func turnOrder(players, enemies []*Unit) []*Unit {
	order := make([]*Unit, 0, len(players)+len(enemies))
	for _, u := range players {
		if u.IsAlive() {
			order = append(order, u)
		}
	}
	for _, u := range enemies {
		if u.IsAlive() {
			order = append(order, u)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Speed > order[j].Speed
	})
	return order
}

func hasLiving(units []*Unit) bool {
	for _, u := range units {
		if u.IsAlive() {
			return true
		}
	}
	return false
}

// baseRewards computes raw experience and gold from defeated enemies.
// Victory applies a 1.5x experience bonus; stalemates and defeats still pay
// for enemies actually brought down.
func baseRewards(outcome Outcome, enemies []*Unit) BaseRewards {
	var rewards BaseRewards
	for _, u := range enemies {
		if u.IsAlive() {
			continue
		}
		rewards.Experience += 20 + 5*u.Level
		rewards.Gold += 10 + 3*u.Level
	}
	if outcome == OutcomeVictory {
		rewards.Experience = rewards.Experience * 3 / 2
	}
	return rewards
}
