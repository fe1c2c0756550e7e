// Package hostauth verifies the shared host code and issues short-lived
// reconnect tokens so the dashboard can re-authenticate without retyping
// the code.
package hostauth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoCredential = errors.New("host code or host code hash must be configured")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const tokenSubject = "host"

// Config holds host authentication settings.
type Config struct {
	// Code is the plaintext shared secret. Ignored when CodeHash is set.
	Code string
	// CodeHash is a bcrypt hash of the shared secret.
	CodeHash string
	// TokenSecret signs reconnect tokens. Derived from the credential when empty.
	TokenSecret string
	// TokenTTL bounds reconnect token lifetime. Default: 12h.
	TokenTTL time.Duration
	Issuer   string
}

// Authenticator checks host credentials.
type Authenticator struct {
	code        string
	codeHash    []byte
	tokenSecret []byte
	tokenTTL    time.Duration
	issuer      string
}

// New builds an Authenticator from config.
func New(cfg Config) (*Authenticator, error) {
	if cfg.Code == "" && cfg.CodeHash == "" {
		return nil, ErrNoCredential
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "trivia-live"
	}

	secret := cfg.TokenSecret
	if secret == "" {
		// Fall back to the credential itself so tokens survive restarts
		// without extra configuration.
		secret = cfg.Code + cfg.CodeHash
	}

	a := &Authenticator{
		code:        cfg.Code,
		tokenSecret: []byte(secret),
		tokenTTL:    cfg.TokenTTL,
		issuer:      cfg.Issuer,
	}
	if cfg.CodeHash != "" {
		a.codeHash = []byte(cfg.CodeHash)
	}
	return a, nil
}

// VerifyCode reports whether code matches the configured credential.
func (a *Authenticator) VerifyCode(code string) bool {
	if code == "" {
		return false
	}
	if len(a.codeHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.codeHash, []byte(code)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.code), []byte(code)) == 1
}

// IssueToken creates a signed reconnect token.
func (a *Authenticator) IssueToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   tokenSubject,
		ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.tokenSecret)
}

// VerifyToken validates a reconnect token.
func (a *Authenticator) VerifyToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.tokenSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject != tokenSubject {
		return ErrInvalidToken
	}
	return nil
}
