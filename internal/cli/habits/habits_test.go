package habits

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/storage/memory"
	"github.com/julianstephens/keepstreak/internal/tracker"
)

// Wednesday
var fixedNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := memory.NewStore()
	svc := tracker.New(store, tracker.WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(svc.Wait)

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:   store,
		Service: svc,
		UserID:  constants.DefaultUserID,
		Out:     out,
	}, out
}

func addHabit(t *testing.T, ctx *cli.Context, cmd HabitAddCmd) {
	t.Helper()
	if cmd.Type == "" {
		cmd.Type = "Good"
	}
	if cmd.Days == "" {
		cmd.Days = "daily"
	}
	if cmd.Goal == 0 {
		cmd.Goal = 1
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add %q failed: %v", cmd.Name, err)
	}
}

func ptr(v float64) *float64 { return &v }

func TestHabitAddCmd(t *testing.T) {
	tests := []struct {
		name    string
		cmd     HabitAddCmd
		wantErr bool
	}{
		{name: "defaults", cmd: HabitAddCmd{Name: "Read", Type: "Good", Goal: 1, Days: "weekdays"}},
		{name: "quantified", cmd: HabitAddCmd{Name: "Water", Type: "good", Goal: 8, Unit: "glasses", Days: "daily"}},
		{name: "bad type", cmd: HabitAddCmd{Name: "Run", Type: "Great", Goal: 1, Days: "daily"}, wantErr: true},
		{name: "bad days", cmd: HabitAddCmd{Name: "Run", Type: "Good", Goal: 1, Days: "someday"}, wantErr: true},
		{name: "bad start", cmd: HabitAddCmd{Name: "Run", Type: "Good", Goal: 1, Days: "daily", Start: "tomorrow"}, wantErr: true},
		{name: "empty name", cmd: HabitAddCmd{Name: " ", Type: "Good", Goal: 1, Days: "daily"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestContext(t)
			err := tt.cmd.Run(ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("add failed: %v", err)
			}
			if !strings.Contains(out.String(), "Added habit: "+tt.cmd.Name) {
				t.Errorf("unexpected output: %q", out.String())
			}
		})
	}
}

func TestHabitAddCmd_DuplicateName(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read"})

	cmd := HabitAddCmd{Name: "read", Type: "Good", Goal: 1, Days: "daily"}
	if err := cmd.Run(ctx); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestHabitListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	list := HabitListCmd{}
	if err := list.Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No habits found") {
		t.Errorf("expected empty message, got %q", out.String())
	}

	addHabit(t, ctx, HabitAddCmd{Name: "Read"})
	addHabit(t, ctx, HabitAddCmd{Name: "Water", Goal: 8, Unit: "glasses"})
	done := HabitDoneCmd{Name: "Read"}
	if err := done.Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	out.Reset()
	if err := list.Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Read", "Water", "0/8", "Done today: 1/2"} {
		if !strings.Contains(got, want) {
			t.Errorf("list output missing %q:\n%s", want, got)
		}
	}
}

func TestHabitEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read"})

	if err := (&HabitEditCmd{Name: "Read"}).Run(ctx); err == nil {
		t.Error("expected an error when no flags are given")
	}

	edit := HabitEditCmd{Name: "read", Rename: "Read books", Goal: 20, Unit: "pages", Days: "mon,wed"}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	h, err := ctx.Service.FindHabit(context.Background(), ctx.UserID, "Read books", false)
	if err != nil {
		t.Fatalf("renamed habit not found: %v", err)
	}
	if h.Goal != 20 || h.GoalUnit != "pages" {
		t.Errorf("goal = %d %s, want 20 pages", h.Goal, h.GoalUnit)
	}
	if len(h.ActiveDays) != 2 || h.ActiveDays[0] != 1 || h.ActiveDays[1] != 3 {
		t.Errorf("active days = %v, want [1 3]", h.ActiveDays)
	}
}

func TestHabitDeleteAndRestore(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read"})

	if err := (&HabitRestoreCmd{Name: "Read"}).Run(ctx); err == nil {
		t.Error("restoring a live habit should fail")
	}
	if err := (&HabitDeleteCmd{Name: "Read"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&HabitDoneCmd{Name: "Read"}).Run(ctx); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("done on deleted habit: got %v, want not found", err)
	}

	out.Reset()
	if err := (&HabitRestoreCmd{Name: "Read"}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restored habit: Read") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitDoneCmd(t *testing.T) {
	tests := []struct {
		name       string
		goal       int
		cmd        HabitDoneCmd
		wantErr    error
		wantOutput string
	}{
		{name: "mark today", goal: 1, cmd: HabitDoneCmd{}, wantOutput: `Marked habit "Habit" for 2024-01-10`},
		{name: "undo", goal: 1, cmd: HabitDoneCmd{Undo: true}, wantOutput: "Unmarked"},
		{name: "past date", goal: 1, cmd: HabitDoneCmd{Date: "2024-01-08"}, wantOutput: "2024-01-08"},
		{name: "future date", goal: 1, cmd: HabitDoneCmd{Date: "2024-01-11"}, wantErr: apperrors.ErrFutureDate},
		{name: "progress reaching goal", goal: 8, cmd: HabitDoneCmd{Progress: ptr(8)}, wantOutput: "Marked habit \"Habit\" for 2024-01-10 (8/8)"},
		{name: "progress below goal", goal: 8, cmd: HabitDoneCmd{Progress: ptr(3)}, wantOutput: "Unmarked habit \"Habit\" for 2024-01-10 (3/8)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestContext(t)
			addHabit(t, ctx, HabitAddCmd{Name: "Habit", Goal: tt.goal})
			out.Reset()

			cmd := tt.cmd
			cmd.Name = "Habit"
			err := cmd.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("done failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOutput) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantOutput)
			}
		})
	}
}

func TestHabitProgressCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Water", Goal: 8})

	steps := []struct {
		cmd  HabitProgressCmd
		want string
	}{
		{HabitProgressCmd{Add: ptr(3)}, "3/8 in progress"},
		{HabitProgressCmd{Add: ptr(10)}, "8/8"},
		{HabitProgressCmd{Add: ptr(-2)}, "6/8 in progress"},
		{HabitProgressCmd{Set: ptr(-5)}, "0/8 in progress"},
	}
	for i, step := range steps {
		out.Reset()
		cmd := step.cmd
		cmd.Name = "Water"
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if !strings.Contains(out.String(), step.want) {
			t.Errorf("step %d: output %q does not contain %q", i, out.String(), step.want)
		}
	}

	if err := (&HabitProgressCmd{Name: "Water"}).Run(ctx); !errors.Is(err, apperrors.ErrMissingArgument) {
		t.Errorf("expected missing argument, got %v", err)
	}
}

func TestHabitClearCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read"})

	if err := (&HabitDoneCmd{Name: "Read"}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}
	if err := (&HabitClearCmd{Name: "Read"}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	h, err := ctx.Service.FindHabit(context.Background(), ctx.UserID, "Read", false)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(h.Completions) != 0 {
		t.Errorf("expected no completions, got %d", len(h.Completions))
	}
}

func TestHabitLogCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read", Start: "2024-01-01"})
	if err := (&HabitDoneCmd{Name: "Read", Date: "2024-01-09"}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	out.Reset()
	if err := (&HabitLogCmd{Days: 3}).Run(ctx); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "Read") {
		t.Fatalf("unexpected last line %q", last)
	}
	// 01/08 missed, 01/09 done, 01/10 missed
	if got := strings.TrimSpace(last[logNameWidth:]); got != ".     x     ." {
		t.Errorf("log cells = %q", got)
	}

	if err := (&HabitLogCmd{Days: 0}).Run(ctx); err == nil {
		t.Error("expected an error for zero days")
	}
}

func TestPad(t *testing.T) {
	if got := pad("Read", 8); got != "Read    " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("A very long habit name", 10); got != "A very ..." {
		t.Errorf("pad = %q", got)
	}
}
