// Package services contains server-side business logic. AccountService is the
// account manager: it validates and creates accounts, issues registration
// mails for self-registrations and serves the admin and self-service
// lookups.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/cryptox"
	"github.com/dmitrijs2005/shopaccounts/internal/dbx"
	"github.com/dmitrijs2005/shopaccounts/internal/logging"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"github.com/dmitrijs2005/shopaccounts/internal/server/notify"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/repomanager"
)

// Notifier sends a named, localised mail.
type Notifier interface {
	Notify(ctx context.Context, name, locale, to string, data any) error
}

// RegistrationData is the context registration mail templates render against.
type RegistrationData struct {
	Login           string
	ActionToken     string
	PreferredLocale string
	FirstName       string
	LastName        string
	Gender          string
}

var newActionToken = cryptox.NewActionToken

type AccountService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	notifier    Notifier
	logger      logging.Logger
}

func NewAccountService(db dbx.DBTX, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher,
	notifier Notifier, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		notifier:    notifier,
		logger:      logger.With("module", "accounts"),
	}
}

// Create validates and stores a new account on behalf of caller.
//
// The account always gets exactly the "user" role and a hashed password.
// End users additionally get an action token, stay inactive and are sent a
// registration mail; mail failures are logged and never fail the call.
// Admin-created accounts are active immediately.
func (s *AccountService) Create(ctx context.Context, caller models.Caller, account *models.Account) (*models.Account, error) {
	if account == nil {
		return nil, fmt.Errorf("%w: empty account", common.ErrorInvalidRequest)
	}
	if account.Persisted() {
		return nil, fmt.Errorf("%w: account id must not be set", common.ErrorInvalidRequest)
	}

	repo := s.repomanager.Accounts(s.db)

	_, err := repo.FindByLogin(ctx, account.Login)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: login %q already registered", common.ErrorConflict, account.Login)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up login: %w", err)
	}

	for _, addr := range []*models.Address{account.Address, account.DeliveryAddress} {
		if err := s.checkCountry(ctx, addr); err != nil {
			return nil, err
		}
	}

	role, err := s.repomanager.Roles(s.db).FindByName(ctx, common.RoleUser)
	if err != nil {
		// a missing seeded role is a server fault, not a bad request
		return nil, fmt.Errorf("%w: role %q missing: %v", common.ErrorInternal, common.RoleUser, err)
	}
	account.Roles = []models.Role{*role}

	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	account.Password = hash

	endUser := caller.IsEndUser()
	if endUser {
		token := newActionToken()
		account.ActionToken = &token
		account.Activated = false
	} else {
		account.ActionToken = nil
		account.Activated = true
	}

	created, err := repo.Insert(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	if endUser {
		if err := s.sendRegistration(ctx, created); err != nil {
			args := []any{"login", created.Login, "error", err}
			var nerr *notify.Error
			if errors.As(err, &nerr) {
				args = append(args, "stage", string(nerr.Stage))
			}
			s.logger.Warn(ctx, "registration mail not sent", args...)
		}
	}

	return created, nil
}

func (s *AccountService) checkCountry(ctx context.Context, addr *models.Address) error {
	if addr == nil || addr.CountryIso3Code == "" {
		return nil
	}
	ok, err := s.repomanager.Countries(s.db).IsAvailable(ctx, addr.CountryIso3Code)
	if err != nil {
		return fmt.Errorf("error checking country: %w", err)
	}
	if !ok {
		s.logger.Error(ctx, "country not available", "country", addr.CountryIso3Code)
		return fmt.Errorf("%w: country %q is not available", common.ErrorInvalidRequest, addr.CountryIso3Code)
	}
	return nil
}

// sendRegistration runs the registration mail for a freshly stored account.
// The returned error is for the caller to record only.
func (s *AccountService) sendRegistration(ctx context.Context, account *models.Account) error {
	if s.notifier == nil {
		return errors.New("no notifier configured")
	}
	data := RegistrationData{
		Login:           account.Login,
		PreferredLocale: account.PreferredLocale,
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		Gender:          account.Gender,
	}
	if account.ActionToken != nil {
		data.ActionToken = account.ActionToken.String()
	}
	return s.notifier.Notify(ctx, common.MailUserRegistration, account.PreferredLocale, account.Login, data)
}

// Delete removes the account with the given id.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Accounts(s.db)
	account, err := repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error finding account %d: %w", id, err)
	}
	if err := repo.Delete(ctx, account); err != nil {
		return fmt.Errorf("error deleting account %d: %w", id, err)
	}
	return nil
}

// Modify saves the descriptive fields of an existing account. Password,
// roles, login and the action token always keep their stored values.
func (s *AccountService) Modify(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account == nil || !account.Persisted() {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Accounts(s.db)
	existing, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("error finding account %d: %w", account.ID, err)
	}

	account.Password = existing.Password
	account.Roles = existing.Roles
	account.Login = existing.Login
	account.ActionToken = existing.ActionToken

	saved, err := repo.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error saving account %d: %w", account.ID, err)
	}
	return saved, nil
}

// FindAll returns a page of accounts, filtered by search when it is set.
func (s *AccountService) FindAll(ctx context.Context, search *string, page models.Page) ([]*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)
	var (
		list []*models.Account
		err  error
	)
	if term, ok := searchTerm(search); ok {
		list, err = repo.Search(ctx, term, page)
	} else {
		list, err = repo.List(ctx, page)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	return list, nil
}

func (s *AccountService) Find(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error finding account %d: %w", id, err)
	}
	return account, nil
}

// Count mirrors FindAll.
func (s *AccountService) Count(ctx context.Context, search *string) (int64, error) {
	repo := s.repomanager.Accounts(s.db)
	var (
		n   int64
		err error
	)
	if term, ok := searchTerm(search); ok {
		n, err = repo.CountSearch(ctx, term)
	} else {
		n, err = repo.Count(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("error counting accounts: %w", err)
	}
	return n, nil
}

// FindCurrent returns the caller's own account. The login comes only from
// the authenticated caller.
func (s *AccountService) FindCurrent(ctx context.Context, caller models.Caller) (*models.Account, error) {
	if caller.Login == "" {
		return nil, common.ErrorUnauthorized
	}
	account, err := s.repomanager.Accounts(s.db).FindByLogin(ctx, caller.Login)
	if err != nil {
		return nil, fmt.Errorf("error finding current account: %w", err)
	}
	return account, nil
}

func searchTerm(search *string) (string, bool) {
	if search == nil || *search == "" {
		return "", false
	}
	return *search, true
}
