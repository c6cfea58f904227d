package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"github.com/google/uuid"
)

// loginConstraint is the unique constraint guarding accounts.login.
const loginConstraint = "accounts_login_key"

const selectAccount = `
	SELECT a.id, a.login, a.password, a.gender, a.first_name, a.last_name, a.phone_number,
		a.birth_date, a.preferred_locale, a.activated, a.action_token::text, a.disabled, a.newsletter_subscribed,
		ad.id, ad.street, ad.city, ad.zip_code, ad.country_iso3_code,
		dd.id, dd.street, dd.city, dd.zip_code, dd.country_iso3_code
	FROM accounts a
	LEFT JOIN addresses ad ON ad.id = a.address_id
	LEFT JOIN addresses dd ON dd.id = a.delivery_address_id`

const searchFilter = `
	WHERE a.login ILIKE $1 OR a.first_name ILIKE $1 OR a.last_name ILIKE $1 OR a.id::text = $2`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
// Multi-statement writes run in their own transaction when bound to a *sql.DB
// and join the caller's transaction when bound to a *sql.Tx.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if b, ok := r.db.(dbx.TxBeginner); ok {
		return dbx.WithTx(ctx, b, nil, fn)
	}
	return fn(ctx, r.db)
}

// FindByID returns the account with the given id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.findOne(ctx, selectAccount+`
	WHERE a.id = $1`, id)
}

// FindByLogin returns the account registered under login.
func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	return r.findOne(ctx, selectAccount+`
	WHERE a.login = $1`, login)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if account.Roles, err = loadRoles(ctx, r.db, account.ID); err != nil {
		return nil, err
	}
	return account, nil
}

// Insert stores a new account with its addresses and role links and sets
// the generated identities on it.
func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) (*models.Account, error) {
	err := r.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		addressID, err := insertAddress(ctx, tx, account.Address)
		if err != nil {
			return err
		}
		deliveryID, err := insertAddress(ctx, tx, account.DeliveryAddress)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO accounts (login, password, gender, first_name, last_name, phone_number, birth_date,
				address_id, delivery_address_id, preferred_locale, activated, action_token, disabled, newsletter_subscribed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`
		err = tx.QueryRowContext(ctx, query,
			account.Login, account.Password, account.Gender, account.FirstName, account.LastName, account.PhoneNumber,
			timeArg(account.BirthDate), addressID, deliveryID, account.PreferredLocale, account.Activated,
			tokenArg(account.ActionToken), account.Disabled, account.NewsletterSubscribed,
		).Scan(&account.ID)
		if err != nil {
			if dbx.IsUniqueViolation(err, loginConstraint) {
				return common.ErrorConflict
			}
			return fmt.Errorf("db error: %w", err)
		}

		return linkRoles(ctx, tx, account.ID, account.Roles)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Save overwrites the stored account with the given state, including its
// addresses and role links. Addresses are always bound to the rows the
// account already owns; client supplied address ids are ignored.
func (r *PostgresRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	err := r.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var currentAddress, currentDelivery sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT address_id, delivery_address_id FROM accounts
			WHERE id = $1
			FOR UPDATE
		`, account.ID).Scan(&currentAddress, &currentDelivery)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		var orphans []int64

		addressID, orphan, err := saveAddress(ctx, tx, currentAddress, account.Address)
		if err != nil {
			return err
		}
		orphans = append(orphans, orphan...)

		deliveryID, orphan, err := saveAddress(ctx, tx, currentDelivery, account.DeliveryAddress)
		if err != nil {
			return err
		}
		orphans = append(orphans, orphan...)

		query := `
			UPDATE accounts SET login = $2, password = $3, gender = $4, first_name = $5, last_name = $6,
				phone_number = $7, birth_date = $8, address_id = $9, delivery_address_id = $10,
				preferred_locale = $11, activated = $12, action_token = $13, disabled = $14,
				newsletter_subscribed = $15
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, query,
			account.ID, account.Login, account.Password, account.Gender, account.FirstName, account.LastName,
			account.PhoneNumber, timeArg(account.BirthDate), addressID, deliveryID,
			account.PreferredLocale, account.Activated, tokenArg(account.ActionToken), account.Disabled,
			account.NewsletterSubscribed,
		)
		if err != nil {
			if dbx.IsUniqueViolation(err, loginConstraint) {
				return common.ErrorConflict
			}
			return fmt.Errorf("db error: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM account_roles WHERE account_id = $1`, account.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := linkRoles(ctx, tx, account.ID, account.Roles); err != nil {
			return err
		}

		return deleteAddresses(ctx, tx, orphans)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes the account, its role links and its addresses.
func (r *PostgresRepository) Delete(ctx context.Context, account *models.Account) error {
	return r.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var addressID, deliveryID sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			DELETE FROM accounts
			WHERE id = $1
			RETURNING address_id, delivery_address_id
		`, account.ID).Scan(&addressID, &deliveryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		var orphans []int64
		for _, id := range []sql.NullInt64{addressID, deliveryID} {
			if id.Valid {
				orphans = append(orphans, id.Int64)
			}
		}
		return deleteAddresses(ctx, tx, orphans)
	})
}

// List returns a page of accounts ordered by id.
func (r *PostgresRepository) List(ctx context.Context, page models.Page) ([]*models.Account, error) {
	clause, args := pageClause(page, 1)
	return r.findMany(ctx, selectAccount+`
	ORDER BY a.id`+clause, args...)
}

// Search returns a page of accounts whose login, first or last name
// contains term (case-insensitive), or whose id equals term.
func (r *PostgresRepository) Search(ctx context.Context, term string, page models.Page) ([]*models.Account, error) {
	clause, args := pageClause(page, 3)
	args = append([]any{likePattern(term), term}, args...)
	return r.findMany(ctx, selectAccount+searchFilter+`
	ORDER BY a.id`+clause, args...)
}

// Count returns the number of stored accounts.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountSearch returns the number of accounts Search would match.
func (r *PostgresRepository) CountSearch(ctx context.Context, term string) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM accounts a` + searchFilter
	if err := r.db.QueryRowContext(ctx, query, likePattern(term), term).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) findMany(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, account := range result {
		if account.Roles, err = loadRoles(ctx, r.db, account.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func loadRoles(ctx context.Context, db dbx.DBTX, accountID int64) ([]models.Role, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.name FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = $1
		ORDER BY r.id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return roles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type nullAddress struct {
	id      sql.NullInt64
	street  sql.NullString
	city    sql.NullString
	zipCode sql.NullString
	country sql.NullString
}

func (n *nullAddress) dest() []any {
	return []any{&n.id, &n.street, &n.city, &n.zipCode, &n.country}
}

func (n *nullAddress) address() *models.Address {
	if !n.id.Valid {
		return nil
	}
	return &models.Address{
		ID:              n.id.Int64,
		Street:          n.street.String,
		City:            n.city.String,
		ZipCode:         n.zipCode.String,
		CountryIso3Code: n.country.String,
	}
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var birthDate sql.NullTime
	var token sql.NullString
	var address, delivery nullAddress

	dest := []any{
		&a.ID, &a.Login, &a.Password, &a.Gender, &a.FirstName, &a.LastName, &a.PhoneNumber,
		&birthDate, &a.PreferredLocale, &a.Activated, &token, &a.Disabled, &a.NewsletterSubscribed,
	}
	dest = append(dest, address.dest()...)
	dest = append(dest, delivery.dest()...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if birthDate.Valid {
		t := birthDate.Time
		a.BirthDate = &t
	}
	if token.Valid {
		parsed, err := uuid.Parse(token.String)
		if err != nil {
			return nil, fmt.Errorf("action token: %w", err)
		}
		a.ActionToken = &parsed
	}
	a.Address = address.address()
	a.DeliveryAddress = delivery.address()

	return a, nil
}

// insertAddress stores addr and returns its id as a query argument, or nil
// when there is no address.
func insertAddress(ctx context.Context, tx dbx.DBTX, addr *models.Address) (any, error) {
	if addr == nil {
		return nil, nil
	}
	query := `
		INSERT INTO addresses (street, city, zip_code, country_iso3_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, addr.Street, addr.City, addr.ZipCode, addr.CountryIso3Code).Scan(&addr.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return addr.ID, nil
}

// saveAddress reconciles one address slot of an account. It returns the id
// to store in the slot and the ids of address rows left without an owner.
func saveAddress(ctx context.Context, tx dbx.DBTX, current sql.NullInt64, addr *models.Address) (any, []int64, error) {
	if addr == nil {
		if current.Valid {
			return nil, []int64{current.Int64}, nil
		}
		return nil, nil, nil
	}

	if !current.Valid {
		id, err := insertAddress(ctx, tx, addr)
		return id, nil, err
	}

	addr.ID = current.Int64
	query := `
		UPDATE addresses SET street = $2, city = $3, zip_code = $4, country_iso3_code = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, addr.ID, addr.Street, addr.City, addr.ZipCode, addr.CountryIso3Code); err != nil {
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	return addr.ID, nil, nil
}

func deleteAddresses(ctx context.Context, tx dbx.DBTX, ids []int64) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func linkRoles(ctx context.Context, tx dbx.DBTX, accountID int64, roles []models.Role) error {
	for _, role := range roles {
		query := `
			INSERT INTO account_roles (account_id, role_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, accountID, role.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// pageClause renders LIMIT/OFFSET for the set bounds of page, numbering
// placeholders from next.
func pageClause(page models.Page, next int) (string, []any) {
	var b strings.Builder
	var args []any
	if page.Size != nil {
		fmt.Fprintf(&b, "\n\tLIMIT $%d", next)
		args = append(args, *page.Size)
		next++
	}
	if page.Start != nil {
		fmt.Fprintf(&b, "\n\tOFFSET $%d", next)
		args = append(args, *page.Start)
	}
	return b.String(), args
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func tokenArg(t *uuid.UUID) any {
	if t == nil {
		return nil
	}
	return t.String()
}
