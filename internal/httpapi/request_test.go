package httpapi

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/julianstephens/keepstreak/internal/errors"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSet bool
		want    float64
		wantErr error
	}{
		{"omitted", `{}`, false, 0, nil},
		{"null", `{"n": null}`, false, 0, nil},
		{"number", `{"n": 2.5}`, true, 2.5, nil},
		{"negative", `{"n": -1}`, true, -1, nil},
		{"numeric string", `{"n": " 4 "}`, true, 4, nil},
		{"word", `{"n": "four"}`, false, 0, apperrors.ErrInvalidProgress},
		{"bool", `{"n": false}`, false, 0, apperrors.ErrInvalidProgress},
		{"object", `{"n": {"v": 1}}`, false, 0, apperrors.ErrInvalidProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				N Number `json:"n"`
			}
			if err := json.Unmarshal([]byte(tt.input), &body); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			got, err := body.N.Ptr()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Ptr() error = %v, want %v", err, tt.wantErr)
			}
			if (got != nil) != tt.wantSet {
				t.Fatalf("Ptr() = %v, want set=%v", got, tt.wantSet)
			}
			if got != nil && *got != tt.want {
				t.Errorf("value = %v, want %v", *got, tt.want)
			}
		})
	}
}

func TestHabitRequestDates(t *testing.T) {
	req := habitRequest{Name: "Read", StartDate: "2024-01-01", EndDate: "2024-02-01T10:00:00Z"}
	h, err := req.toHabit("u1")
	if err != nil {
		t.Fatalf("toHabit failed: %v", err)
	}
	if h.UserID != "u1" || h.StartDate.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("habit = %+v", h)
	}
	if h.EndDate == nil || h.EndDate.Format("2006-01-02") != "2024-02-01" {
		t.Errorf("EndDate = %v, want 2024-02-01", h.EndDate)
	}

	req.EndDate = "soon"
	if _, err := req.toHabit("u1"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}
