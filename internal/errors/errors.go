package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/julianstephens/keepstreak/internal/logger"
)

var (
	// ErrNotFound is returned when a habit does not exist or belongs to another user
	ErrNotFound = goerrors.New("not found")
	// ErrFutureDate is returned when a completion targets a day after today
	ErrFutureDate = goerrors.New("cannot record completions for future dates")
	// ErrInvalidArgument is the parent of every client validation failure
	ErrInvalidArgument = goerrors.New("invalid argument")
	// ErrInvalidProgress is returned for non-numeric, NaN or infinite progress values
	ErrInvalidProgress = fmt.Errorf("%w: progress must be a finite number", ErrInvalidArgument)
	// ErrMissingArgument is returned when a progress update carries neither progress nor increment
	ErrMissingArgument = fmt.Errorf("%w: either progress or increment is required", ErrInvalidArgument)
	// ErrConflict is returned when a unique record already exists
	ErrConflict = goerrors.New("conflict")
	// ErrStoreUnavailable wraps failures of the underlying database
	ErrStoreUnavailable = goerrors.New("store unavailable")
)

// Stable machine-readable error codes
const (
	CodeNotFound         = "not_found"
	CodeFutureDate       = "future_date"
	CodeInvalidProgress  = "invalid_progress"
	CodeMissingArgument  = "missing_argument"
	CodeInvalidArgument  = "invalid_argument"
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeConflict         = "conflict"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// Code returns the machine-readable code for err. The most specific match wins.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, ErrNotFound):
		return CodeNotFound
	case goerrors.Is(err, ErrFutureDate):
		return CodeFutureDate
	case goerrors.Is(err, ErrInvalidProgress):
		return CodeInvalidProgress
	case goerrors.Is(err, ErrMissingArgument):
		return CodeMissingArgument
	case goerrors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case goerrors.Is(err, ErrConflict):
		return CodeConflict
	case goerrors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// StatusCode maps an error code to an HTTP status
func StatusCode(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeFutureDate, CodeInvalidProgress, CodeMissingArgument, CodeInvalidArgument, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Unavailable wraps a driver error so callers can match ErrStoreUnavailable
// while still reaching the original cause.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
