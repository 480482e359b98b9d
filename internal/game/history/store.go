// Package history tracks per-character battle performance aggregates.
//
// Records are created lazily on the first processed battle for a character
// id, grow monotonically, and are never deleted here. Concurrent battles for
// different character ids are fully independent; updates to one character's
// record must be mutually exclusive — RecordBattle for the same id must not
// interleave with a concurrent Get/RecordBattle pair (increment-then-read is
// not safe unsynchronized). Both implementations in this module (the mutex
// map below and the postgres upsert) provide that serialization.
package history

import (
	"context"
	"sync"
	"time"
)

// Record is one character's aggregate battle performance.
type Record struct {
	CharacterID string
	BattlesWon  int
	BattlesLost int
	// CurrentStreak counts consecutive wins; a loss resets it to zero.
	CurrentStreak int
	// LastBattle is the time the most recent battle was processed.
	LastBattle time.Time
}

// TotalBattles returns the number of processed battles for the character.
func (r Record) TotalBattles() int { return r.BattlesWon + r.BattlesLost }

// WinRate returns BattlesWon / TotalBattles, or 0 for an empty record.
func (r Record) WinRate() float64 {
	total := r.TotalBattles()
	if total == 0 {
		return 0
	}
	return float64(r.BattlesWon) / float64(total)
}

// Store is the performance history contract shared by the in-memory map and
// the postgres repository.
type Store interface {
	// Get returns the record for id. Absent ids yield a zero record with
	// CharacterID set and no error — lazy creation happens on RecordBattle.
	Get(ctx context.Context, id string) (Record, error)
	// RecordBattle upserts the outcome of one battle and returns the
	// updated record.
	RecordBattle(ctx context.Context, id string, won bool, at time.Time) (Record, error)
}

// MemoryStore is an in-process Store backed by a mutex-guarded map.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return rec, nil
	}
	return Record{CharacterID: id}, nil
}

// RecordBattle implements Store.
func (s *MemoryStore) RecordBattle(ctx context.Context, id string, won bool, at time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[id]
	rec.CharacterID = id
	if won {
		rec.BattlesWon++
		rec.CurrentStreak++
	} else {
		rec.BattlesLost++
		rec.CurrentStreak = 0
	}
	rec.LastBattle = at
	s.records[id] = rec
	return rec, nil
}
