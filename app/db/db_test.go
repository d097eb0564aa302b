package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-city-forecast/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDatabaseConfig(t *testing.T) {
	logger := discardLogger()

	t.Run("prefers DATABASE_URL", func(t *testing.T) {
		cfg := &config.Config{DatabaseURL: "postgres://u:p@db:5432/cities"}
		dbCfg, err := NewDatabaseConfig(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db:5432/cities", dbCfg.ConnectionURL)
	})

	t.Run("assembles from postgres section", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Repositories.Postgres.Host = "localhost"
		cfg.Repositories.Postgres.Port = "5432"
		cfg.Repositories.Postgres.Username = "postgres"
		cfg.Repositories.Postgres.Password = "secret"
		cfg.Repositories.Postgres.DB = "forecast"

		dbCfg, err := NewDatabaseConfig(cfg, logger)
		require.NoError(t, err)

		u, err := url.Parse(dbCfg.ConnectionURL)
		require.NoError(t, err)
		assert.Equal(t, "postgresql", u.Scheme)
		assert.Equal(t, "localhost:5432", u.Host)
		assert.Equal(t, "/forecast", u.Path)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
	})

	t.Run("missing host", func(t *testing.T) {
		_, err := NewDatabaseConfig(&config.Config{}, logger)
		require.Error(t, err)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewDatabaseConfig(nil, logger)
		require.Error(t, err)
	})
}

func TestRunMigrations_RejectsBadScheme(t *testing.T) {
	err := RunMigrations("mysql://localhost/forecast", discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database URL scheme")
}

func TestWaitForDB(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after a failed ping", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		ok := waitForDB(ctx, mock, discardLogger(), 3, time.Millisecond)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectPing().WillReturnError(errors.New("down"))
		mock.ExpectPing().WillReturnError(errors.New("down"))

		ok := waitForDB(ctx, mock, discardLogger(), 2, time.Millisecond)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
