package appMiddleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-city-forecast/config"
)

func newTestStore(t *testing.T) *CredentialStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	store, err := NewCredentialStore([]config.StatsUser{
		{Username: "forecast", Password: "forecast"},
		{Username: "ops", PasswordHash: string(hash)},
	}, bcrypt.MinCost)
	require.NoError(t, err)
	return store
}

func TestCredentialStore_Check(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"plain password from config", "forecast", "forecast", true},
		{"pre-hashed password", "ops", "s3cret", true},
		{"wrong password", "forecast", "nope", false},
		{"unknown user", "ghost", "forecast", false},
		{"empty credentials", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Check(ctx, tt.username, tt.password))
		})
	}
}

func TestNewCredentialStore_RejectsBadInput(t *testing.T) {
	_, err := NewCredentialStore([]config.StatsUser{{Username: "x", PasswordHash: "not-bcrypt"}}, bcrypt.MinCost)
	require.Error(t, err)

	_, err = NewCredentialStore([]config.StatsUser{{Password: "x"}}, bcrypt.MinCost)
	require.Error(t, err)
}

func TestBasicAuth(t *testing.T) {
	store := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	protected := BasicAuth(store, "", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("recent cities"))
	}))

	t.Run("missing credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Basic realm="Please enter your credentials"`, rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "Unauthorized", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("wrong credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.SetBasicAuth("forecast", "wrong")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.SetBasicAuth("forecast", "forecast")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "recent cities", rec.Body.String())
	})
}
