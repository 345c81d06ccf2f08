// Package auth issues and verifies the bearer credentials protecting every
// authenticated endpoint.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

// DefaultTokenTTL matches the 7 day expiry issued on signup and login.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers malformed, tampered and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies HS256 JWTs whose subject is the user id.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue returns a signed token identifying userID.
func (m *TokenManager) Issue(userID string) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: m.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}

	now := time.Now()
	claims := jwt.Claims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify checks the signature and expiry and returns the user id the token
// was issued for. All failures collapse into ErrInvalidToken.
func (m *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	var claims jwt.Claims
	if err := parsed.Claims(m.secret, &claims); err != nil {
		return "", ErrInvalidToken
	}

	if err := claims.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
