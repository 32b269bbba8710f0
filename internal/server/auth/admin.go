package auth

import (
	"crypto/subtle"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Admin validates the single administrative credential and exchanges it for
// a bearer token. Only the bcrypt hash of the password is held here; the
// configured plaintext is hashed once at startup and then discarded.
type Admin struct {
	username     string
	passwordHash []byte
	secretKey    []byte
	tokenTTL     time.Duration
}

func NewAdmin(username, passwordHash string, secretKey []byte, tokenTTL time.Duration) *Admin {
	return &Admin{
		username:     username,
		passwordHash: []byte(passwordHash),
		secretKey:    secretKey,
		tokenTTL:     tokenTTL,
	}
}

// Login checks the credential and returns a signed token on success.
func (a *Admin) Login(username, password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		return "", common.ErrorUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}
	return GenerateToken(a.username, a.secretKey, a.tokenTTL)
}

// Verify checks a bearer token and returns the authenticated subject.
func (a *Admin) Verify(token string) (string, error) {
	return GetSubjectFromToken(token, a.secretKey)
}

// HashPassword produces the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
