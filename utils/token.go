package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried inside a bearer token.
type Claims struct {
	UserID string
	Roles  []string
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue generates a signed token for the given user ID and roles
func (t *TokenIssuer) Issue(userID string, roles []string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"roles":  roles,
		"iat":    now.Unix(),
		"exp":    now.Add(t.ttl).Unix(),
	})

	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	// exp is optional in jwt-go v3, but every token we issue carries one
	if _, ok := mapClaims["exp"]; !ok {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	userID, _ := mapClaims["userId"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidToken)
	}

	claims := &Claims{UserID: userID}
	if raw, ok := mapClaims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	}
	return claims, nil
}
