// Package main provides a command-line battle simulator that runs the full
// pipeline: setup adapter, turn-resolution engine, and result processor.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/emberworks/companion/internal/config"
	"github.com/emberworks/companion/internal/game/ai"
	"github.com/emberworks/companion/internal/game/battle"
	"github.com/emberworks/companion/internal/game/growth"
	"github.com/emberworks/companion/internal/game/history"
	"github.com/emberworks/companion/internal/game/persona"
	"github.com/emberworks/companion/internal/game/rng"
	"github.com/emberworks/companion/internal/game/setup"
	"github.com/emberworks/companion/internal/observability"
	"github.com/emberworks/companion/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	unitsDir := flag.String("units-dir", "", "path to unit template YAML directory; empty = built-in demo units")
	policyScript := flag.String("policy-script", "", "path to a Lua policy script; empty = default heuristic")
	battles := flag.Int("battles", 1, "number of battles to simulate")
	seed := flag.Int64("seed", 0, "random seed; 0 = crypto source")
	useDB := flag.Bool("db", false, "persist performance history to postgres")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var src rng.Source
	if *seed != 0 {
		src = rng.NewSeededSource(*seed)
	} else {
		src = rng.NewCryptoSource()
	}

	var store history.Store = history.NewMemoryStore()
	if *useDB {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		store = postgres.NewHistoryRepository(pool.DB())
	}

	var policy battle.Policy = ai.NewHeuristicPolicy(src, ai.HeuristicConfig{
		SkillUseChance:    cfg.Battle.SkillUseChance,
		HealThreshold:     cfg.Battle.HealThreshold,
		SkillDamageMargin: cfg.Battle.SkillDamageMargin,
	})
	if *policyScript != "" {
		script, err := os.ReadFile(*policyScript)
		if err != nil {
			logger.Fatal("reading policy script", zap.Error(err))
		}
		scripted, err := ai.NewScriptedPolicy(string(script), policy, logger)
		if err != nil {
			logger.Fatal("loading policy script", zap.Error(err))
		}
		defer scripted.Close()
		policy = scripted
	}

	adapter := setup.NewAdapter(store, setup.DifficultyConfig{
		Enabled:  cfg.Difficulty.Enabled,
		MaxScale: cfg.Difficulty.MaxScale,
	}, logger)
	engine := battle.NewEngine(policy, src, logger,
		battle.WithTurnCap(cfg.Battle.TurnCap),
		battle.WithTurnDelay(cfg.Battle.TurnDelay),
	)
	processor := growth.NewProcessor(store, logger)

	snapshot := demoSnapshot()
	base, err := baseFormation(*unitsDir)
	if err != nil {
		logger.Fatal("building formation", zap.Error(err))
	}

	for i := 0; i < *battles; i++ {
		enhanced, err := adapter.EnhanceFormation(ctx, snapshot, base)
		if err != nil {
			logger.Fatal("enhancing formation", zap.Error(err))
		}
		result, err := engine.ExecuteBattle(enhanced)
		if err != nil {
			logger.Fatal("executing battle", zap.Error(err))
		}
		rewards, err := processor.ProcessBattleResults(ctx, result, snapshot)
		if err != nil {
			logger.Fatal("processing results", zap.Error(err))
		}
		logger.Info("simulation battle finished",
			zap.Int("battle", i+1),
			zap.String("outcome", result.Outcome.String()),
			zap.Int("turns", result.Turns),
			zap.Int("combat_xp", rewards.Experience.Combat),
			zap.Int("emotional_xp", rewards.Experience.Emotional),
			zap.Int("relationship_xp", rewards.Experience.Relationship),
			zap.Int("gold", rewards.Gold),
		)
	}

	rec, err := store.Get(ctx, snapshot.ID)
	if err != nil {
		logger.Fatal("reading performance history", zap.Error(err))
	}
	logger.Info("simulation complete",
		zap.Int("battles_won", rec.BattlesWon),
		zap.Int("battles_lost", rec.BattlesLost),
		zap.Int("current_streak", rec.CurrentStreak),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// demoSnapshot is the stand-in character used when no collaborator supplies one.
func demoSnapshot() *persona.Snapshot {
	return &persona.Snapshot{
		ID: "demo-companion",
		Traits: persona.Traits{
			Caring: 0.7, Supportive: 0.6, Brave: 0.5,
			Cautious: 0.4, Aggressive: 0.3, Playful: 0.6,
		},
		Relationship: persona.Relationship{
			IntimacyLevel:     0.4,
			TrustLevel:        0.5,
			TotalInteractions: 25,
		},
		Emotion:          persona.EmotionExcited,
		EmotionIntensity: 0.6,
	}
}

// baseFormation builds the battle formation, either from YAML templates in
// dir or from the built-in demo units.
func baseFormation(dir string) (*battle.Formation, error) {
	if dir != "" {
		templates, err := battle.LoadTemplates(dir)
		if err != nil {
			return nil, err
		}
		f := &battle.Formation{}
		for _, tmpl := range templates {
			u := battle.NewUnitFromTemplate(tmpl)
			if u.Role == battle.RoleEnemy {
				f.EnemyTeam = append(f.EnemyTeam, u)
			} else {
				f.PlayerTeam = append(f.PlayerTeam, u)
			}
		}
		return f, nil
	}

	return &battle.Formation{
		PlayerTeam: []*battle.Unit{
			{
				ID: "hero", Name: "Hero", Role: battle.RolePlayer, Level: 5,
				CurrentHP: 120, MaxHP: 120, CurrentMP: 40, MaxMP: 40,
				Attack: 25, Defense: 18, Speed: 12, Accuracy: 90, Evasion: 10,
				CritRate: 10, CritDamage: 150,
				Skills: []*battle.Skill{{
					ID: "power-strike", Name: "Power Strike", Damage: 20,
					MPCost: 8, CooldownTurns: 2, Type: battle.SkillOffensive,
				}},
			},
			{
				ID: "companion", Name: "Companion", Role: battle.RoleCompanion, Level: 5,
				CurrentHP: 100, MaxHP: 100, CurrentMP: 50, MaxMP: 50,
				Attack: 20, Defense: 15, Speed: 14, Accuracy: 88, Evasion: 12,
				CritRate: 8, CritDamage: 150,
				Skills: []*battle.Skill{
					{
						ID: "mend", Name: "Mend", HealAmount: 30,
						MPCost: 10, CooldownTurns: 1, Type: battle.SkillSupport,
					},
					{
						ID: "spark", Name: "Spark", Damage: 15,
						MPCost: 6, CooldownTurns: 2, Type: battle.SkillOffensive,
					},
				},
			},
		},
		EnemyTeam: []*battle.Unit{
			{
				ID: "goblin-1", Name: "Goblin Raider", Role: battle.RoleEnemy, Level: 4,
				CurrentHP: 80, MaxHP: 80, CurrentMP: 10, MaxMP: 10,
				Attack: 16, Defense: 10, Speed: 11, Accuracy: 85, Evasion: 8,
				CritRate: 5, CritDamage: 140,
			},
			{
				ID: "goblin-2", Name: "Goblin Scout", Role: battle.RoleEnemy, Level: 3,
				CurrentHP: 60, MaxHP: 60, CurrentMP: 10, MaxMP: 10,
				Attack: 14, Defense: 8, Speed: 15, Accuracy: 87, Evasion: 14,
				CritRate: 7, CritDamage: 140,
			},
		},
		Environment: battle.Environment{Name: "forest-clearing"},
	}, nil
}
