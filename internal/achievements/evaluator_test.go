package achievements

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/storage/memory"
	"github.com/julianstephens/keepstreak/internal/storage/storagetest"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// seedHabit adds a boolean habit for userID that is done on each day
func seedHabit(t *testing.T, store *memory.Store, userID string, typ constants.HabitType, days ...string) models.Habit {
	t.Helper()
	ctx := context.Background()

	h := storagetest.NewHabit(userID, fmt.Sprintf("habit-%s-%d", typ, len(days)), 1)
	h.Type = typ
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	for _, d := range days {
		_, err := store.UpsertCompletion(ctx, userID, h.ID, storagetest.Day(d),
			func(models.Habit, *models.Completion) (models.Completion, error) {
				return models.Completion{Completed: true}, nil
			})
		if err != nil {
			t.Fatalf("UpsertCompletion failed: %v", err)
		}
	}
	return h
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestRunUnlocksMetAchievements(t *testing.T) {
	store := memory.NewStore()
	seedHabit(t, store, "u1", constants.HabitTypeGood, "2024-01-01", "2024-01-02", "2024-01-03")

	pub := &recordingPublisher{}
	e := NewEvaluator(store, WithClock(clock), WithPublisher(pub))

	res, err := e.Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"first_completion", "streak_3"}
	if !slices.Equal(res.Unlocked, want) {
		t.Errorf("Unlocked = %v, want %v", res.Unlocked, want)
	}

	unlocks, err := store.GetUnlocks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUnlocks failed: %v", err)
	}
	if len(unlocks) != 2 {
		t.Fatalf("expected 2 unlocks stored, got %d", len(unlocks))
	}
	for _, u := range unlocks {
		if u.Progress == nil {
			t.Errorf("unlock %s has no progress", u.AchievementID)
		}
		if !u.UnlockedAt.Equal(fixedNow) {
			t.Errorf("unlock %s at %v, want %v", u.AchievementID, u.UnlockedAt, fixedNow)
		}
	}

	if len(pub.keys) != 2 || pub.keys[0] != constants.EventAchievementUnlocked {
		t.Errorf("published keys = %v", pub.keys)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	seedHabit(t, store, "u1", constants.HabitTypeGood, "2024-01-06", "2024-01-07")
	e := NewEvaluator(store, WithClock(clock))

	first, err := e.Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if len(first.Unlocked) == 0 {
		t.Fatal("expected first run to unlock something")
	}

	second, err := e.Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if second.Unlocked == nil || len(second.Unlocked) != 0 {
		t.Errorf("second run Unlocked = %#v, want empty slice", second.Unlocked)
	}
}

func TestRunEmptyUser(t *testing.T) {
	e := NewEvaluator(memory.NewStore(), WithClock(clock))

	res, err := e.Run(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Unlocked == nil || len(res.Unlocked) != 0 {
		t.Errorf("Unlocked = %#v, want empty slice", res.Unlocked)
	}
}

func TestConcurrentRunsUnlockOnce(t *testing.T) {
	store := memory.NewStore()
	seedHabit(t, store, "u1", constants.HabitTypeGood, "2024-01-01", "2024-01-02", "2024-01-03")
	e := NewEvaluator(store, WithClock(clock))

	const runs = 8
	results := make([][]string, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Run(context.Background(), "u1")
			if err != nil {
				t.Errorf("Run failed: %v", err)
			}
			results[i] = res.Unlocked
		}(i)
	}
	wg.Wait()

	counts := make(map[string]int)
	for _, ids := range results {
		for _, id := range ids {
			counts[id]++
		}
	}
	for _, id := range []string{"first_completion", "streak_3"} {
		if counts[id] != 1 {
			t.Errorf("%s reported %d times across runs, want 1", id, counts[id])
		}
	}

	unlocks, _ := store.GetUnlocks(context.Background(), "u1")
	if len(unlocks) != 2 {
		t.Errorf("expected exactly 2 unlock rows, got %d", len(unlocks))
	}
}

func TestEvaluateSkipsHeldAchievements(t *testing.T) {
	e := NewEvaluator(memory.NewStore(), WithClock(clock))
	habits := []models.Habit{{
		ID: "h1", Goal: 1, Type: constants.HabitTypeGood,
		Completions: []models.Completion{{Date: storagetest.Day("2024-01-05"), Completed: true}},
	}}
	held := []models.AchievementUnlock{{UserID: "u1", AchievementID: "first_completion"}}

	got, err := e.Evaluate(context.Background(), "u1", habits, held)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if slices.Contains(got, "first_completion") {
		t.Errorf("held achievement was reported again: %v", got)
	}
}

func TestEvaluateIsolatesPanickingAndUnknownRules(t *testing.T) {
	e := NewEvaluator(memory.NewStore(), WithClock(clock))
	e.catalog = []models.AchievementDefinition{
		{ID: "explodes", Requirement: 1},
		{ID: "mystery", Requirement: 1},
		{ID: "always", Requirement: 1},
	}
	e.rules = map[string]Rule{
		"explodes": {Met: func(Input) bool { panic("bad record") }},
		"always":   {Met: func(Input) bool { return true }, Value: func(Input) float64 { return 1 }},
	}

	got, err := e.Evaluate(context.Background(), "u1", nil, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !slices.Equal(got, []string{"always"}) {
		t.Errorf("Unlocked = %v, want [always]", got)
	}
}

type flakyStore struct {
	*memory.Store
	failID     string
	conflictID string
}

func (s *flakyStore) CreateUnlock(ctx context.Context, unlock models.AchievementUnlock) error {
	switch unlock.AchievementID {
	case s.failID:
		return apperrors.Unavailable("create unlock", errors.New("disk full"))
	case s.conflictID:
		return fmt.Errorf("raced: %w", apperrors.ErrConflict)
	}
	return s.Store.CreateUnlock(ctx, unlock)
}

func TestEvaluatePersistenceFailuresAreIsolated(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore(), failID: "first_completion", conflictID: "streak_3"}
	seedHabit(t, store.Store, "u1", constants.HabitTypeGood, "2024-01-06", "2024-01-07", "2024-01-08")
	seedHabit(t, store.Store, "u1", constants.HabitTypeBad)
	seedHabit(t, store.Store, "u1", constants.HabitTypeTodo)

	e := NewEvaluator(store, WithClock(clock))
	res, err := e.Run(context.Background(), "u1")

	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable error, got %v", err)
	}
	if slices.Contains(res.Unlocked, "first_completion") {
		t.Error("failed unlock should not be reported")
	}
	if slices.Contains(res.Unlocked, "streak_3") {
		t.Error("conflicting unlock should not be reported")
	}
	if !slices.Contains(res.Unlocked, "variety_pack") || !slices.Contains(res.Unlocked, "weekend_warrior") {
		t.Errorf("remaining entries should still unlock, got %v", res.Unlocked)
	}
}

type brokenStore struct{ *memory.Store }

func (brokenStore) GetHabitsForUser(context.Context, string, bool) ([]models.Habit, error) {
	return nil, apperrors.Unavailable("list habits", errors.New("connection refused"))
}

func TestRunSurfacesLoadFailure(t *testing.T) {
	e := NewEvaluator(brokenStore{memory.NewStore()}, WithClock(clock))

	res, err := e.Run(context.Background(), "u1")
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable error, got %v", err)
	}
	if res.Unlocked == nil {
		t.Error("Unlocked should be an empty slice on failure")
	}
}

func TestDeletedHabitsDoNotCount(t *testing.T) {
	store := memory.NewStore()
	h := seedHabit(t, store, "u1", constants.HabitTypeGood, "2024-01-05")
	if err := store.DeleteHabit(context.Background(), "u1", h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	res, err := NewEvaluator(store, WithClock(clock)).Run(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Unlocked) != 0 {
		t.Errorf("deleted habit unlocked %v", res.Unlocked)
	}
}
