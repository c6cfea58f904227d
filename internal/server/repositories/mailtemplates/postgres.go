package mailtemplates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByNameAndLocale(ctx context.Context, name, locale string) (*models.MailTemplate, error) {
	query := `
		SELECT id, name, locale, subject, content FROM mail_templates
		WHERE name = $1 AND locale = $2
	`
	t := &models.MailTemplate{}
	err := r.db.QueryRowContext(ctx, query, name, locale).Scan(&t.ID, &t.Name, &t.Locale, &t.Subject, &t.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
