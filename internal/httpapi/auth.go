package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/keepstreak/internal/config"
)

const userIDHeader = "X-User-ID"

var (
	errMissingUser       = errors.New("X-User-ID header missing")
	errMissingAuthHeader = errors.New("authorization header missing")
	errInvalidAuthHeader = errors.New("authorization header is malformed")
	errMissingSubject    = errors.New("token carries neither userId nor sub claim")
)

// AuthenticatedUser is the caller extracted from a request
type AuthenticatedUser struct {
	UserID    string
	ExpiresAt int64
}

// Verifier identifies the user behind a request
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (AuthenticatedUser, error)
}

// NewVerifier constructs the Verifier for the configured auth mode
func NewVerifier(cfg config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case config.AuthHeader, "":
		return headerVerifier{}, nil
	case config.AuthJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("jwt auth requires a signing secret")
		}
		return &jwtVerifier{secret: []byte(cfg.JWTSecret)}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}

// headerVerifier trusts the X-User-ID header. Only suitable behind a gateway
// that sets it.
type headerVerifier struct{}

func (headerVerifier) Verify(_ context.Context, r *http.Request) (AuthenticatedUser, error) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		return AuthenticatedUser{}, errMissingUser
	}
	return AuthenticatedUser{UserID: userID}, nil
}

// jwtVerifier validates HS256 bearer tokens
type jwtVerifier struct {
	secret []byte
}

func (v *jwtVerifier) Verify(_ context.Context, r *http.Request) (AuthenticatedUser, error) {
	token, err := bearerToken(r)
	if err != nil {
		return AuthenticatedUser{}, err
	}

	t, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(5*time.Second))
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return AuthenticatedUser{}, jwt.ErrTokenMalformed
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return AuthenticatedUser{}, errMissingSubject
	}

	var expiresAt int64
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = int64(exp)
	}
	return AuthenticatedUser{UserID: userID, ExpiresAt: expiresAt}, nil
}

// SignToken issues an HS256 token for userID. The CLI uses it to mint tokens
// for local testing of jwt mode.
func SignToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"sub":    userID,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidAuthHeader
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errInvalidAuthHeader
	}
	return token, nil
}

type ctxKey string

const userCtxKey ctxKey = "keepstreak:user"

// Authenticate rejects requests the verifier cannot identify
func Authenticate(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := verifier.Verify(r.Context(), r)
			if err != nil {
				writeErrorCode(w, r, codeUnauthorized, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	value, ok := ctx.Value(userCtxKey).(AuthenticatedUser)
	return value, ok
}
