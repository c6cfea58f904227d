// Package cryptox holds the credential primitives of the account service:
// password hashing schemes and registration action tokens.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Supported password hash schemes. SchemeSHA256 is the default and is
// deterministic: the same password always gives the same stored hash, so
// hashes stay comparable across components. SchemeArgon2ID salts every hash
// and gives that up; its hashes can only be checked with Verify.
const (
	SchemeSHA256   = "sha256"
	SchemeArgon2ID = "argon2id"
)

var (
	ErrUnknownScheme = errors.New("unknown password hash scheme")
	ErrMalformedHash = errors.New("malformed password hash")
)

// PasswordHasher turns a plaintext password into its stored form and checks
// candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

var (
	_ PasswordHasher = SHA256Hasher{}
	_ PasswordHasher = (*Argon2Hasher)(nil)
)

// NewPasswordHasher returns the hasher registered under scheme. An empty
// scheme selects SchemeSHA256.
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeArgon2ID:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// SHA256Hasher stores the lower-case hex SHA-256 digest of the password.
// It is deterministic, so existing hashes stay comparable.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(password, hash string) (bool, error) {
	candidate, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToLower(hash))) == 1, nil
}

// Argon2Hasher produces salted argon2id hashes in PHC string form:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type Argon2Hasher struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// NewArgon2Hasher uses the OWASP recommended baseline parameters.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (a *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.Memory,
		a.Iterations,
		a.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reads the parameters from hash itself, so hashes produced with
// older parameters keep verifying.
func (a *Argon2Hasher) Verify(password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != SchemeArgon2ID {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
