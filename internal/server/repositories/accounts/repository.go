// Package accounts provides the account store: lookups, paging, search and
// the writes of the account lifecycle.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
)

// Repository is the account store contract.
//
// Lookups return common.ErrorNotFound when nothing matches. Insert and Save
// return common.ErrorConflict when the login is already taken.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindByLogin(ctx context.Context, login string) (*models.Account, error)
	Insert(ctx context.Context, account *models.Account) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, account *models.Account) error
	List(ctx context.Context, page models.Page) ([]*models.Account, error)
	Search(ctx context.Context, term string, page models.Page) ([]*models.Account, error)
	Count(ctx context.Context) (int64, error)
	CountSearch(ctx context.Context, term string) (int64, error)
}
