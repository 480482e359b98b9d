package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberworks/companion/internal/game/history"
)

// HistoryRepository is the durable history.Store implementation. The upsert
// in RecordBattle is a single statement, so concurrent updates to the same
// character id serialize on the row — the mutual exclusion the store
// contract requires.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

var _ history.Store = (*HistoryRepository)(nil)

// Get implements history.Store. Absent ids yield a zero record with
// CharacterID set and no error.
func (r *HistoryRepository) Get(ctx context.Context, id string) (history.Record, error) {
	var rec history.Record
	var last sql.NullTime
	err := r.db.QueryRow(ctx, `
		SELECT character_id, battles_won, battles_lost, current_streak, last_battle
		FROM battle_history WHERE character_id = $1`,
		id,
	).Scan(&rec.CharacterID, &rec.BattlesWon, &rec.BattlesLost, &rec.CurrentStreak, &last)
	if errors.Is(err, pgx.ErrNoRows) {
		return history.Record{CharacterID: id}, nil
	}
	if err != nil {
		return history.Record{}, fmt.Errorf("selecting battle history: %w", err)
	}
	if last.Valid {
		rec.LastBattle = last.Time
	}
	return rec, nil
}

// RecordBattle implements history.Store, upserting one battle outcome and
// returning the updated record.
func (r *HistoryRepository) RecordBattle(ctx context.Context, id string, won bool, at time.Time) (history.Record, error) {
	var rec history.Record
	var last sql.NullTime
	err := r.db.QueryRow(ctx, `
		INSERT INTO battle_history (character_id, battles_won, battles_lost, current_streak, last_battle)
		VALUES ($1,
		        CASE WHEN $2 THEN 1 ELSE 0 END,
		        CASE WHEN $2 THEN 0 ELSE 1 END,
		        CASE WHEN $2 THEN 1 ELSE 0 END,
		        $3)
		ON CONFLICT (character_id) DO UPDATE SET
			battles_won    = battle_history.battles_won    + CASE WHEN $2 THEN 1 ELSE 0 END,
			battles_lost   = battle_history.battles_lost   + CASE WHEN $2 THEN 0 ELSE 1 END,
			current_streak = CASE WHEN $2 THEN battle_history.current_streak + 1 ELSE 0 END,
			last_battle    = $3
		RETURNING character_id, battles_won, battles_lost, current_streak, last_battle`,
		id, won, at,
	).Scan(&rec.CharacterID, &rec.BattlesWon, &rec.BattlesLost, &rec.CurrentStreak, &last)
	if err != nil {
		return history.Record{}, fmt.Errorf("upserting battle history: %w", err)
	}
	if last.Valid {
		rec.LastBattle = last.Time
	}
	return rec, nil
}
