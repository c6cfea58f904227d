// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
	"github.com/dmitrijs2005/shopaccounts/internal/server/migrations"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/countries"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/mailtemplates"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/roles"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	return roles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Countries(db dbx.DBTX) countries.Repository {
	return countries.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) MailTemplates(db dbx.DBTX) mailtemplates.Repository {
	return mailtemplates.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// OpenDB opens a pgx-backed *sql.DB for dsn and checks it is reachable.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
