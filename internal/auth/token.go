package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// TokenConfig carries the signing secret and lifetime for issued credentials.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// Tokens issues and verifies signed bearer credentials. It is a pure function
// of (token, current time, secret) and holds no mutable state.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens constructs a Tokens helper from configuration.
func NewTokens(cfg TokenConfig) *Tokens {
	return &Tokens{secret: []byte(cfg.Secret), ttl: cfg.TTL, now: time.Now}
}

// Issue mints a signed credential for the given account.
func (t *Tokens) Issue(user *User) (string, error) {
	now := t.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// TTL exposes the configured credential lifetime.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// VerifyHeader validates an Authorization header value of the exact form
// "Bearer <token>" and returns the verified claims. Any other header shape is
// reported as a missing credential; signature and expiry failures collapse to
// a single invalid-token error so callers cannot distinguish them.
func (t *Tokens) VerifyHeader(header string) (*Claims, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, shared.ErrNoCredential
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}
