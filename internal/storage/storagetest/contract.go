// Package storagetest holds the behavioral checks every storage.Provider
// must pass. Provider packages call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/storage"
)

// Factory returns a fresh, initialized provider for one subtest
type Factory func(t *testing.T) storage.Provider

// Day parses a YYYY-MM-DD string as UTC midnight
func Day(s string) time.Time {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

// NewHabit builds a valid habit for userID
func NewHabit(userID, name string, goal int) models.Habit {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Habit{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       name,
		Color:      constants.DefaultHabitColor,
		Icon:       constants.DefaultHabitIcon,
		Type:       constants.HabitTypeGood,
		Repeat:     constants.DefaultHabitRepeat,
		Goal:       goal,
		ActiveDays: []int{1, 2, 3, 4, 5, 6, 7},
		StartDate:  Day("2024-01-01"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Run executes the provider contract against stores produced by factory
func Run(t *testing.T, factory Factory) {
	t.Run("HabitLifecycle", func(t *testing.T) { testHabitLifecycle(t, factory(t)) })
	t.Run("HabitsAreUserScoped", func(t *testing.T) { testUserScoping(t, factory(t)) })
	t.Run("UpsertCompletionIsDayKeyed", func(t *testing.T) { testUpsertDayKeyed(t, factory(t)) })
	t.Run("UpsertCompletionAbortsOnError", func(t *testing.T) { testUpsertAbort(t, factory(t)) })
	t.Run("UpsertCompletionUnknownHabit", func(t *testing.T) { testUpsertUnknownHabit(t, factory(t)) })
	t.Run("ConcurrentUpserts", func(t *testing.T) { testConcurrentUpserts(t, factory(t)) })
	t.Run("DeleteCompletion", func(t *testing.T) { testDeleteCompletion(t, factory(t)) })
	t.Run("UnlocksAreUnique", func(t *testing.T) { testUnlocksUnique(t, factory(t)) })
	t.Run("ConcurrentUnlocks", func(t *testing.T) { testConcurrentUnlocks(t, factory(t)) })
}

func testHabitLifecycle(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("u1", "Read", 1)
	h.ActiveDays = []int{1, 3, 5}
	end := Day("2024-12-31")
	h.EndDate = &end

	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, err := store.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != "Read" || got.Type != constants.HabitTypeGood || got.Goal != 1 {
		t.Errorf("unexpected habit: %+v", got)
	}
	if fmt.Sprint(got.ActiveDays) != "[1 3 5]" {
		t.Errorf("ActiveDays = %v, want [1 3 5]", got.ActiveDays)
	}
	if !got.StartDate.Equal(Day("2024-01-01")) {
		t.Errorf("StartDate = %v", got.StartDate)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("EndDate = %v, want %v", got.EndDate, end)
	}

	byName, err := store.GetHabitByName(ctx, "u1", "Read")
	if err != nil {
		t.Fatalf("GetHabitByName failed: %v", err)
	}
	if byName.ID != h.ID {
		t.Errorf("GetHabitByName returned %s, want %s", byName.ID, h.ID)
	}

	got.Goal = 3
	got.GoalUnit = "pages"
	if err := store.UpdateHabit(ctx, got); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	updated, err := store.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit after update failed: %v", err)
	}
	if updated.Goal != 3 || updated.GoalUnit != "pages" {
		t.Errorf("update not persisted: %+v", updated)
	}

	if err := store.DeleteHabit(ctx, "u1", h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := store.GetHabit(ctx, "u1", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted habit, got %v", err)
	}
	if err := store.DeleteHabit(ctx, "u1", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}

	live, err := store.GetHabitsForUser(ctx, "u1", false)
	if err != nil {
		t.Fatalf("GetHabitsForUser failed: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("expected no live habits, got %d", len(live))
	}
	all, err := store.GetHabitsForUser(ctx, "u1", true)
	if err != nil {
		t.Fatalf("GetHabitsForUser(includeDeleted) failed: %v", err)
	}
	if len(all) != 1 || all[0].DeletedAt == nil {
		t.Errorf("expected one deleted habit, got %+v", all)
	}

	if err := store.RestoreHabit(ctx, "u1", h.ID); err != nil {
		t.Fatalf("RestoreHabit failed: %v", err)
	}
	if _, err := store.GetHabit(ctx, "u1", h.ID); err != nil {
		t.Errorf("GetHabit after restore failed: %v", err)
	}
	if err := store.RestoreHabit(ctx, "u1", h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound restoring a live habit, got %v", err)
	}
}

func testUserScoping(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	mine := NewHabit("u1", "Walk", 1)
	theirs := NewHabit("u2", "Swim", 1)
	for _, h := range []models.Habit{mine, theirs} {
		if err := store.AddHabit(ctx, h); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}
	}

	if _, err := store.GetHabit(ctx, "u1", theirs.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's habit, got %v", err)
	}
	if _, err := store.GetHabitByName(ctx, "u1", "Swim"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound by name for another user's habit, got %v", err)
	}
	if err := store.DeleteHabit(ctx, "u1", theirs.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting another user's habit, got %v", err)
	}

	_, err := store.UpsertCompletion(ctx, "u1", theirs.ID, Day("2024-01-02"),
		func(models.Habit, *models.Completion) (models.Completion, error) {
			return models.Completion{Completed: true}, nil
		})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound upserting into another user's habit, got %v", err)
	}

	habits, err := store.GetHabitsForUser(ctx, "u1", false)
	if err != nil {
		t.Fatalf("GetHabitsForUser failed: %v", err)
	}
	if len(habits) != 1 || habits[0].ID != mine.ID {
		t.Errorf("expected only u1's habit, got %+v", habits)
	}
}

func testUpsertDayKeyed(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("u1", "Water", 8)
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	var sawExisting []bool
	set := func(progress float64) storage.CompletionFunc {
		return func(habit models.Habit, existing *models.Completion) (models.Completion, error) {
			if habit.Goal != 8 {
				t.Errorf("callback received goal %d, want 8", habit.Goal)
			}
			sawExisting = append(sawExisting, existing != nil)
			return models.Completion{Progress: progress, Completed: progress >= 8}, nil
		}
	}

	first, err := store.UpsertCompletion(ctx, "u1", h.ID, Day("2024-01-02").Add(9*time.Hour), set(3))
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := store.UpsertCompletion(ctx, "u1", h.ID, Day("2024-01-02").Add(22*time.Hour), set(8))
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if fmt.Sprint(sawExisting) != "[false true]" {
		t.Errorf("existing record visibility = %v, want [false true]", sawExisting)
	}
	if first.ID == "" || first.ID != second.ID {
		t.Errorf("expected the same record to be updated, got %q and %q", first.ID, second.ID)
	}
	if !second.Date.Equal(Day("2024-01-02")) {
		t.Errorf("Date = %v, want UTC midnight", second.Date)
	}

	got, err := store.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if len(got.Completions) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(got.Completions))
	}
	c := got.Completions[0]
	if c.Progress != 8 || !c.Completed || !c.Date.Equal(Day("2024-01-02")) {
		t.Errorf("unexpected stored completion: %+v", c)
	}

	if _, err := store.UpsertCompletion(ctx, "u1", h.ID, Day("2024-01-03"), set(1)); err != nil {
		t.Fatalf("third upsert failed: %v", err)
	}
	habits, err := store.GetHabitsForUser(ctx, "u1", false)
	if err != nil {
		t.Fatalf("GetHabitsForUser failed: %v", err)
	}
	if len(habits) != 1 || len(habits[0].Completions) != 2 {
		t.Fatalf("expected 2 completions across days, got %+v", habits)
	}
}

func testUpsertAbort(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("u1", "Run", 1)
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	sentinel := errors.New("rejected")
	_, err := store.UpsertCompletion(ctx, "u1", h.ID, Day("2024-01-02"),
		func(models.Habit, *models.Completion) (models.Completion, error) {
			return models.Completion{}, sentinel
		})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}

	got, err := store.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if len(got.Completions) != 0 {
		t.Errorf("expected no completions after aborted upsert, got %d", len(got.Completions))
	}
}

func testUpsertUnknownHabit(t *testing.T, store storage.Provider) {
	_, err := store.UpsertCompletion(context.Background(), "u1", uuid.New().String(), Day("2024-01-02"),
		func(models.Habit, *models.Completion) (models.Completion, error) {
			return models.Completion{Completed: true}, nil
		})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testConcurrentUpserts(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("u1", "Pushups", 100)
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpsertCompletion(ctx, "u1", h.ID, Day("2024-01-02"),
				func(_ models.Habit, existing *models.Completion) (models.Completion, error) {
					current := 0.0
					if existing != nil {
						current = existing.Progress
					}
					return models.Completion{Progress: current + 1}, nil
				})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent upsert failed: %v", err)
		}
	}

	got, err := store.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if len(got.Completions) != 1 {
		t.Fatalf("expected exactly one record for the day, got %d", len(got.Completions))
	}
	if got.Completions[0].Progress != workers {
		t.Errorf("Progress = %v, want %d (lost update)", got.Completions[0].Progress, workers)
	}
}

func testDeleteCompletion(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("u1", "Stretch", 1)
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	done := func(models.Habit, *models.Completion) (models.Completion, error) {
		return models.Completion{Completed: true}, nil
	}
	for _, d := range []string{"2024-01-02", "2024-01-03"} {
		if _, err := store.UpsertCompletion(ctx, "u1", h.ID, Day(d), done); err != nil {
			t.Fatalf("upsert %s failed: %v", d, err)
		}
	}

	if err := store.DeleteCompletion(ctx, "u1", h.ID, Day("2024-01-02").Add(5*time.Hour)); err != nil {
		t.Fatalf("DeleteCompletion failed: %v", err)
	}
	// Deleting a day with no record is a no-op
	if err := store.DeleteCompletion(ctx, "u1", h.ID, Day("2024-02-01")); err != nil {
		t.Fatalf("DeleteCompletion of empty day failed: %v", err)
	}
	if err := store.DeleteCompletion(ctx, "u2", h.ID, Day("2024-01-03")); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user, got %v", err)
	}

	got, err := store.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if len(got.Completions) != 1 || !got.Completions[0].Date.Equal(Day("2024-01-03")) {
		t.Errorf("unexpected completions after delete: %+v", got.Completions)
	}
}

func testUnlocksUnique(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	progress := 3.0
	unlock := models.AchievementUnlock{
		UserID:        "u1",
		AchievementID: "streak_3",
		UnlockedAt:    time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
		Progress:      &progress,
	}

	if err := store.CreateUnlock(ctx, unlock); err != nil {
		t.Fatalf("CreateUnlock failed: %v", err)
	}
	if err := store.CreateUnlock(ctx, unlock); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate unlock, got %v", err)
	}
	other := unlock
	other.UserID = "u2"
	if err := store.CreateUnlock(ctx, other); err != nil {
		t.Errorf("same achievement for another user should succeed, got %v", err)
	}

	unlocks, err := store.GetUnlocks(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUnlocks failed: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("expected 1 unlock, got %d", len(unlocks))
	}
	u := unlocks[0]
	if u.AchievementID != "streak_3" || u.ID == "" || !u.UnlockedAt.Equal(unlock.UnlockedAt) {
		t.Errorf("unexpected unlock: %+v", u)
	}
	if u.Progress == nil || *u.Progress != 3 {
		t.Errorf("Progress = %v, want 3", u.Progress)
	}
}

func testConcurrentUnlocks(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.CreateUnlock(ctx, models.AchievementUnlock{
				UserID:        "u1",
				AchievementID: "first_completion",
				UnlockedAt:    time.Now().UTC(),
			})
		}()
	}
	wg.Wait()
	close(results)

	created, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || conflicts != workers-1 {
		t.Errorf("created=%d conflicts=%d, want 1 and %d", created, conflicts, workers-1)
	}

	unlocks, err := store.GetUnlocks(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUnlocks failed: %v", err)
	}
	if len(unlocks) != 1 {
		t.Errorf("expected exactly 1 unlock row, got %d", len(unlocks))
	}
}
