package errors

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "sentinel error",
			err:      ErrFutureDate,
			expected: "Error: cannot record completions for future dates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	result := Formatf("habit %q not found", "Read")
	if result != `Error: habit "Read" not found` {
		t.Errorf("Formatf() = %q", result)
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "not found", err: fmt.Errorf("habit h1: %w", ErrNotFound), code: CodeNotFound, status: http.StatusNotFound},
		{name: "future date", err: ErrFutureDate, code: CodeFutureDate, status: http.StatusBadRequest},
		{name: "invalid progress", err: ErrInvalidProgress, code: CodeInvalidProgress, status: http.StatusBadRequest},
		{name: "missing argument", err: ErrMissingArgument, code: CodeMissingArgument, status: http.StatusBadRequest},
		{name: "invalid argument", err: fmt.Errorf("%w: goal must be at least 1", ErrInvalidArgument), code: CodeInvalidArgument, status: http.StatusBadRequest},
		{name: "conflict", err: ErrConflict, code: CodeConflict, status: http.StatusConflict},
		{name: "store unavailable", err: Unavailable("get habit", errors.New("database is locked")), code: CodeStoreUnavailable, status: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), code: CodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Code(tt.err)
			if code != tt.code {
				t.Errorf("Code() = %q, want %q", code, tt.code)
			}
			if status := StatusCode(code); status != tt.status {
				t.Errorf("StatusCode(%q) = %d, want %d", code, status, tt.status)
			}
		})
	}
}

func TestInvalidProgressIsInvalidArgument(t *testing.T) {
	if !errors.Is(ErrInvalidProgress, ErrInvalidArgument) {
		t.Error("ErrInvalidProgress should wrap ErrInvalidArgument")
	}
	if !errors.Is(ErrMissingArgument, ErrInvalidArgument) {
		t.Error("ErrMissingArgument should wrap ErrInvalidArgument")
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("list habits", cause)

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("expected ErrStoreUnavailable in chain")
	}
	if !errors.Is(err, cause) {
		t.Error("expected original cause in chain")
	}
	if Unavailable("noop", nil) != nil {
		t.Error("Unavailable(nil) should return nil")
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal_NilError$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
