package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncrementMutation(t *testing.T) {
	before := testutil.ToFloat64(MutationCount.WithLabelValues("record", "failed"))
	IncrementMutation("record", errors.New("boom"))
	if got := testutil.ToFloat64(MutationCount.WithLabelValues("record", "failed")); got != before+1 {
		t.Errorf("failed mutations = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(MutationCount.WithLabelValues("adjust", "success"))
	IncrementMutation("adjust", nil)
	if got := testutil.ToFloat64(MutationCount.WithLabelValues("adjust", "success")); got != before+1 {
		t.Errorf("successful mutations = %v, want %v", got, before+1)
	}
}

func TestIncrementUnlocked(t *testing.T) {
	before := testutil.ToFloat64(AchievementsUnlocked.WithLabelValues("streak_3"))
	IncrementUnlocked("streak_3")
	IncrementUnlocked("streak_3")
	if got := testutil.ToFloat64(AchievementsUnlocked.WithLabelValues("streak_3")); got != before+2 {
		t.Errorf("unlocked = %v, want %v", got, before+2)
	}
}

func TestIncrementEvaluationError(t *testing.T) {
	before := testutil.ToFloat64(EvaluationErrors.WithLabelValues("persist"))
	IncrementEvaluationError("persist")
	if got := testutil.ToFloat64(EvaluationErrors.WithLabelValues("persist")); got != before+1 {
		t.Errorf("evaluation errors = %v, want %v", got, before+1)
	}
}

func TestHistogramsCollect(t *testing.T) {
	RecordHTTPRequestDuration("GET", "/v1/stats", "200", 5*time.Millisecond)
	RecordEvaluation(time.Millisecond, nil)

	if n := testutil.CollectAndCount(HTTPRequestDuration); n == 0 {
		t.Error("expected HTTP request histogram series")
	}
	if n := testutil.CollectAndCount(EvaluationDuration); n == 0 {
		t.Error("expected evaluation histogram series")
	}
}
