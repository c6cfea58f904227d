// Package auth mints and parses the HS256 caller tokens carried in the
// access_token metadata key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller's login and role names next to the registered
// claims.
type Claims struct {
	jwt.RegisteredClaims
	Login string   `json:"login"`
	Roles []string `json:"roles,omitempty"`
}

func GenerateToken(login string, roles []string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Login: login,
		Roles: roles,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns the caller it names.
// Expired tokens yield common.ErrTokenExpired, anything else that does not
// verify yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (models.Caller, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Caller{}, common.ErrTokenExpired
		}
		return models.Caller{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Login == "" {
		return models.Caller{}, common.ErrInvalidToken
	}

	return models.Caller{Login: claims.Login, Roles: claims.Roles}, nil
}
