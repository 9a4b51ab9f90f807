// Package auth issues and verifies player tokens. A token's subject is the
// player id, which doubles as the player's save slot.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer is the iss claim on every token.
const TokenIssuer = "scoundrel"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid player token")

// Issuer signs and checks HS256 player tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

// NewIssuer returns an Issuer signing with secret. Tokens expire after ttl.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, Now: time.Now}, nil
}

// NewPlayer allocates a fresh player id and its token.
func (i *Issuer) NewPlayer() (uuid.UUID, string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("player id: %w", err)
	}
	token, err := i.Issue(id)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, token, nil
}

// Issue signs a token for player.
func (i *Issuer) Issue(player uuid.UUID) (string, error) {
	if player == uuid.Nil {
		return "", errors.New("player id is required")
	}
	now := i.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   player.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns the player it was issued to.
func (i *Issuer) Verify(token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.Now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	player, err := uuid.Parse(claims.Subject)
	if err != nil || player == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return player, nil
}
