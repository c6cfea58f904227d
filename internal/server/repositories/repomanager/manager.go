package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/countries"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/mailtemplates"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/roles"
)

// RepositoryManager vends repositories bound to a DBTX and migrates the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Roles(db dbx.DBTX) roles.Repository
	Countries(db dbx.DBTX) countries.Repository
	MailTemplates(db dbx.DBTX) mailtemplates.Repository
}
