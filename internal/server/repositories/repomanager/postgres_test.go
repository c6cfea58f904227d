package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopaccounts/internal/server/migrations"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/countries"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/mailtemplates"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/roles"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	assert.IsType(t, &accounts.PostgresRepository{}, m.Accounts(db))
	assert.IsType(t, &roles.PostgresRepository{}, m.Roles(db))
	assert.IsType(t, &countries.PostgresRepository{}, m.Countries(db))
	assert.IsType(t, &mailtemplates.PostgresRepository{}, m.MailTemplates(db))
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_accounts.sql", "00002_seed.sql"}, files)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}

func TestOpenDB(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	t.Run("ok", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectPing()
		sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
			assert.Equal(t, "pgx", driverName)
			return db, nil
		}
		got, err := OpenDB(context.Background(), "postgres://x")
		require.NoError(t, err)
		assert.Same(t, db, got)
		_ = got.Close()
	})

	t.Run("ping fails", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectPing().WillReturnError(errors.New("refused"))
		sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }

		_, err := OpenDB(context.Background(), "postgres://x")
		assert.ErrorContains(t, err, "ping db: refused")
	})

	t.Run("open fails", func(t *testing.T) {
		sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

		_, err := OpenDB(context.Background(), "::")
		assert.ErrorContains(t, err, "open db: bad dsn")
	})
}
