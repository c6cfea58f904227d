// Package mailtemplates resolves localised mail templates by name, from
// PostgreSQL or from an S3-compatible bucket.
package mailtemplates

import (
	"context"

	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
)

// Repository looks up a template by exact (name, locale). Missing
// templates yield common.ErrorNotFound.
type Repository interface {
	FindByNameAndLocale(ctx context.Context, name, locale string) (*models.MailTemplate, error)
}
