// Package models holds the fully materialised records exchanged between the
// account service, its repositories and the transport layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a customer's registered identity.
//
// Password holds the stored hash once the account has been created; the
// plaintext only ever travels on the create path.
type Account struct {
	ID                   int64
	Login                string
	Password             string
	Gender               string
	FirstName            string
	LastName             string
	PhoneNumber          string
	BirthDate            *time.Time
	Address              *Address
	DeliveryAddress      *Address
	PreferredLocale      string
	Activated            bool
	ActionToken          *uuid.UUID
	Disabled             bool
	NewsletterSubscribed bool
	Roles                []Role
}

// Persisted reports whether the account already carries a store identity.
func (a *Account) Persisted() bool {
	return a.ID != 0
}

// RoleNames returns the names of the roles attached to the account.
func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Address is a postal address; CountryIso3Code is an ISO 3166-1 alpha-3 code.
type Address struct {
	ID              int64
	Street          string
	City            string
	ZipCode         string
	CountryIso3Code string
}

// Role is a named permission grouping.
type Role struct {
	ID   int64
	Name string
}

// MailTemplate is a localised mail subject and body template.
type MailTemplate struct {
	ID      int64
	Name    string
	Locale  string
	Subject string
	Content string
}

// Page carries optional pagination bounds. Nil fields mean "not bounded".
type Page struct {
	Start *int
	Size  *int
}
