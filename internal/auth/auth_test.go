package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestCredential(t *testing.T) *SharedCredential {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	cred, err := NewSharedCredential("admin", string(hash))
	require.NoError(t, err)
	return cred
}

func TestSharedCredential_Authenticate(t *testing.T) {
	cred := newTestCredential(t)

	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{name: "valid", creds: Credentials{Username: "admin", Password: "s3cret"}},
		{name: "wrong password", creds: Credentials{Username: "admin", Password: "nope"}, wantErr: true},
		{name: "wrong username", creds: Credentials{Username: "root", Password: "s3cret"}, wantErr: true},
		{name: "empty", creds: Credentials{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cred.Authenticate(context.Background(), tt.creds)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin", p.Username)
		})
	}
}

func TestNewSharedCredential(t *testing.T) {
	_, err := NewSharedCredential("admin", "plaintext")
	assert.Error(t, err)

	_, err = NewSharedCredential("", "")
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	cred := newTestCredential(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(cred, logger, next)

	t.Run("missing credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.SetBasicAuth("admin", "s3cret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "admin", seen.Username)
	})
}
