package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/server/audit"
	"github.com/dmitrijs2005/secretvault/internal/server/config"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/revokedtokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMigrations struct {
	*repomanager.PostgresRepositoryManager
	err     error
	revoked *int
}

func (s stubMigrations) RunMigrations(context.Context, *sql.DB) error { return s.err }

func (s stubMigrations) RevokedTokens(db dbx.DBTX) revokedtokens.Repository {
	*s.revoked++
	return s.PostgresRepositoryManager.RevokedTokens(db)
}

type nopSink struct{}

func (nopSink) Write(context.Context, *models.AuditRecord) error { return nil }

// withSeams swaps the package-level constructors for the duration of a test.
func withSeams(t *testing.T, migrateErr error) sqlmock.Sqlmock {
	t.Helper()
	mock, _ := withSeamsCounting(t, migrateErr)
	return mock
}

// withSeamsCounting also reports how often the revoked tokens repository was requested.
func withSeamsCounting(t *testing.T, migrateErr error) (sqlmock.Sqlmock, *int) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origRM, origS3 := openDB, newRepositoryManager, newS3Archive
	t.Cleanup(func() {
		openDB, newRepositoryManager, newS3Archive = origOpen, origRM, origS3
	})

	revoked := new(int)
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager {
		return stubMigrations{PostgresRepositoryManager: repomanager.NewPostgresRepositoryManager(), err: migrateErr, revoked: revoked}
	}
	return mock, revoked
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.RevocationBackend = config.BackendMemory
	c.RateLimitBackend = config.BackendMemory
	c.LogLevel = "error"
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig()
	c.RevocationBackend = "etcd"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewApp_MigrationFailureClosesDB(t *testing.T) {
	mock := withSeams(t, errors.New("boom"))
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "migrations error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	mock := withSeams(t, nil)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.NotNil(t, app.sweeper)
	assert.Nil(t, app.redis)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_PostgresRevocationUsesRepository(t *testing.T) {
	_, revoked := withSeamsCounting(t, nil)

	c := testConfig()
	c.RevocationBackend = config.BackendPostgres

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer app.close()

	assert.Equal(t, 1, *revoked)
	assert.NotNil(t, app.sweeper)
}

func TestNewApp_RedisBackends(t *testing.T) {
	withSeams(t, nil)
	mr := miniredis.RunT(t)

	c := testConfig()
	c.RevocationBackend = config.BackendRedis
	c.RateLimitBackend = config.BackendRedis
	c.RedisAddr = mr.Addr()

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer app.close()

	assert.NotNil(t, app.redis)
	assert.Nil(t, app.sweeper, "redis expires revocations by TTL")
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	withSeams(t, nil)

	c := testConfig()
	c.RateLimitBackend = config.BackendRedis
	c.RedisAddr = "127.0.0.1:1"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "redis init error")
}

func TestNewApp_S3Archive(t *testing.T) {
	withSeams(t, nil)

	var got audit.S3Config
	newS3Archive = func(_ context.Context, c audit.S3Config) (audit.Sink, error) {
		got = c
		return nopSink{}, nil
	}

	c := testConfig()
	c.AuditS3Enabled = true
	c.S3Bucket = "audit-archive"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer app.close()
	assert.Equal(t, "audit-archive", got.Bucket)

	withSeams(t, nil)
	newS3Archive = func(context.Context, audit.S3Config) (audit.Sink, error) {
		return nil, errors.New("no credentials")
	}
	_, err = NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "s3 init error")
}
