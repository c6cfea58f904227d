// Package roles provides the role catalog: roles are seeded by migrations
// and only ever looked up by name.
package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
)

type Repository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByName returns common.ErrorNotFound for unknown role names.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query := `
		SELECT id, name FROM roles
		WHERE name = $1
	`
	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}
