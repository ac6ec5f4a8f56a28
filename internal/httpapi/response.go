package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/logger"
)

const (
	codeUnauthorized = apperrors.CodeUnauthorized
	codeBadRequest   = apperrors.CodeBadRequest
)

// ErrorResponse is the error envelope returned by every endpoint
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err onto its stable code. Internal and store failures
// are logged and their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.Code(err)
	message := err.Error()
	switch code {
	case apperrors.CodeInternal, apperrors.CodeStoreUnavailable:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		if code == apperrors.CodeInternal {
			message = "internal error"
		} else {
			message = "store unavailable"
		}
	}
	writeErrorCode(w, r, code, message)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, apperrors.StatusCode(code), ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
