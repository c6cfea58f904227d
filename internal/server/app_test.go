package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopaccounts/internal/server/config"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/mailtemplates"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopaccounts/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.RunMigrations = false
	c.LogLevel = "error"
	return c
}

func stubDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	old := openDB
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { openDB = old })
	return mock
}

func TestNewApp_UnknownHashScheme(t *testing.T) {
	c := testConfig()
	c.PasswordHashScheme = "md5"

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestNewApp_DBError(t *testing.T) {
	old := openDB
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("refused") }
	t.Cleanup(func() { openDB = old })

	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db init error")
}

func TestNewApp_UnknownTemplateSource(t *testing.T) {
	mock := stubDB(t)
	mock.ExpectClose()

	c := testConfig()
	c.MailTemplateSource = "ftp"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "unknown mail template source")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateSource(t *testing.T) {
	rm := repomanager.NewPostgresRepositoryManager()
	c := testConfig()

	src, err := templateSource(context.Background(), c, rm, nil)
	require.NoError(t, err)
	assert.IsType(t, &mailtemplates.PostgresRepository{}, src)

	var gotOpts mailtemplates.S3Options
	old := newS3Client
	newS3Client = func(_ context.Context, opts mailtemplates.S3Options) (mailtemplates.ObjectGetter, error) {
		gotOpts = opts
		return nil, nil
	}
	t.Cleanup(func() { newS3Client = old })

	c.MailTemplateSource = config.TemplateSourceS3
	src, err = templateSource(context.Background(), c, rm, nil)
	require.NoError(t, err)
	assert.IsType(t, &mailtemplates.S3Repository{}, src)
	assert.Equal(t, c.S3Bucket, gotOpts.Bucket)
	assert.Equal(t, c.S3RootUser, gotOpts.AccessKey)
	assert.Equal(t, c.S3Prefix, gotOpts.Prefix)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	mock := stubDB(t)
	mock.ExpectClose()

	flushed := false
	old := setupTelemetry
	setupTelemetry = func(context.Context, string, string) (telemetry.ShutdownFunc, error) {
		return func(context.Context) error { flushed = true; return nil }, nil
	}
	t.Cleanup(func() { setupTelemetry = old })

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
	assert.True(t, flushed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
