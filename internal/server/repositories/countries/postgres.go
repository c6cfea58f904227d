// Package countries answers whether a country can be used in customer
// addresses.
package countries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
)

type Repository interface {
	IsAvailable(ctx context.Context, iso3Code string) (bool, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// IsAvailable reports whether iso3Code is a known country open for
// delivery. Unknown and empty codes are unavailable.
func (r *PostgresRepository) IsAvailable(ctx context.Context, iso3Code string) (bool, error) {
	code := strings.ToUpper(strings.TrimSpace(iso3Code))
	if code == "" {
		return false, nil
	}

	query := `
		SELECT available FROM countries
		WHERE iso3_code = $1
	`
	var available bool
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&available); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return available, nil
}
