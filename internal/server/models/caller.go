package models

import "github.com/dmitrijs2005/shopaccounts/internal/common"

// Caller is the authenticated identity an operation runs on behalf of.
// An anonymous caller has an empty Login and no roles.
type Caller struct {
	Login string
	Roles []string
}

// HasRole reports whether the caller holds role.
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsEndUser is true when the caller acts on their own behalf: either
// anonymous (self-registration) or holding exactly the "user" role.
func (c Caller) IsEndUser() bool {
	if len(c.Roles) == 0 {
		return c.Login == ""
	}
	for _, r := range c.Roles {
		if r != common.RoleUser {
			return false
		}
	}
	return true
}
