// Package auth guards the admin views.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Credentials struct {
	Username string
	Password string
}

type Principal struct {
	Username string
}

type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Principal, error)
}

// SharedCredential accepts a single configured username with a bcrypt
// password hash.
type SharedCredential struct {
	username     string
	passwordHash []byte
}

func NewSharedCredential(username, passwordHash string) (*SharedCredential, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &SharedCredential{
		username:     username,
		passwordHash: []byte(passwordHash),
	}, nil
}

func (s *SharedCredential) Authenticate(_ context.Context, creds Credentials) (Principal, error) {
	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(creds.Password))
	if !userOK || passErr != nil {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{Username: s.username}, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireAdmin authenticates requests with HTTP Basic credentials.
func RequireAdmin(authn Authenticator, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		principal, err := authn.Authenticate(r.Context(), Credentials{Username: username, Password: password})
		if err != nil {
			logger.Warn("admin authentication failed", "error", err, "username", username, "remote_addr", r.RemoteAddr)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
