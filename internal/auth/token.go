package auth

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/golang-jwt/jwt/v4"
)

const DefaultTokenTTL = 24 * time.Hour

// Claims carries the caller identity inside a signed token
type Claims struct {
	UserId   string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for user valid for the issuer's TTL.
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	issuedAt := i.now()
	claims := Claims{
		UserId:   user.Id,
		Username: user.Username,
		Name:     user.Name,
		Currency: user.Currency,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns the identity
// it carries. Every failure wraps store.ErrUnauthorized.
func (i *TokenIssuer) Verify(token string) (*models.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: access token required", store.ErrUnauthorized)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, fmt.Errorf("%w: token expired", store.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", store.ErrUnauthorized)
	}
	if !parsed.Valid || claims.UserId == "" {
		return nil, fmt.Errorf("%w: invalid token", store.ErrUnauthorized)
	}

	return &models.Identity{
		Id:       claims.UserId,
		Username: claims.Username,
		Name:     claims.Name,
		Currency: claims.Currency,
	}, nil
}
