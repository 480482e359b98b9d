package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestGetAbsentIDYieldsZeroRecord(t *testing.T) {
	store := NewMemoryStore()

	rec, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.CharacterID != "nobody" {
		t.Fatalf("CharacterID = %q", rec.CharacterID)
	}
	if rec.TotalBattles() != 0 || rec.CurrentStreak != 0 || !rec.LastBattle.IsZero() {
		t.Fatalf("absent record not zero: %+v", rec)
	}
}

func TestRecordBattleSequence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	for i, won := range []bool{true, true, false, true} {
		if _, err := store.RecordBattle(ctx, "char-1", won, at.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("RecordBattle: %v", err)
		}
	}

	rec, err := store.Get(ctx, "char-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.BattlesWon != 3 || rec.BattlesLost != 1 {
		t.Fatalf("record = %+v", rec)
	}
	// The loss reset the streak; the trailing win rebuilt it to 1.
	if rec.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", rec.CurrentStreak)
	}
	if !rec.LastBattle.Equal(at.Add(3 * time.Hour)) {
		t.Fatalf("LastBattle = %v", rec.LastBattle)
	}
}

func TestRecordsAreIndependentPerCharacter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.RecordBattle(ctx, "a", true, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordBattle(ctx, "b", false, time.Now()); err != nil {
		t.Fatal(err)
	}

	a, _ := store.Get(ctx, "a")
	b, _ := store.Get(ctx, "b")
	if a.BattlesWon != 1 || a.BattlesLost != 0 {
		t.Fatalf("a = %+v", a)
	}
	if b.BattlesWon != 0 || b.BattlesLost != 1 {
		t.Fatalf("b = %+v", b)
	}
}

func TestWinRate(t *testing.T) {
	if got := (Record{}).WinRate(); got != 0 {
		t.Fatalf("empty WinRate = %g", got)
	}
	if got := (Record{BattlesWon: 3, BattlesLost: 1}).WinRate(); got != 0.75 {
		t.Fatalf("WinRate = %g, want 0.75", got)
	}
}

// TestConcurrentRecordBattle hammers one record from many goroutines; the
// store must not lose updates.
func TestConcurrentRecordBattle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.RecordBattle(ctx, "char-1", true, time.Now()); err != nil {
				t.Errorf("RecordBattle: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := store.Get(ctx, "char-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.BattlesWon != workers || rec.CurrentStreak != workers {
		t.Fatalf("record = %+v, want %d wins", rec, workers)
	}
}

// TestRecordBattleProperties checks the aggregate invariants over arbitrary
// outcome sequences: totals match the processed count and the streak always
// equals the trailing run of wins.
func TestRecordBattleProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := NewMemoryStore()
		outcomes := rapid.SliceOfN(rapid.Bool(), 0, 50).Draw(t, "outcomes")

		var rec Record
		for _, won := range outcomes {
			var err error
			rec, err = store.RecordBattle(ctx, "char-1", won, time.Now())
			if err != nil {
				t.Fatalf("RecordBattle: %v", err)
			}
		}

		if len(outcomes) == 0 {
			return
		}
		if rec.TotalBattles() != len(outcomes) {
			t.Fatalf("TotalBattles = %d, want %d", rec.TotalBattles(), len(outcomes))
		}

		trailing := 0
		for i := len(outcomes) - 1; i >= 0 && outcomes[i]; i-- {
			trailing++
		}
		if rec.CurrentStreak != trailing {
			t.Fatalf("CurrentStreak = %d, want %d", rec.CurrentStreak, trailing)
		}
		if wr := rec.WinRate(); wr < 0 || wr > 1 {
			t.Fatalf("WinRate = %g", wr)
		}
	})
}
