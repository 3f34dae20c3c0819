// Package auth gates the composite API on JWT scopes. Reads require the
// product:read scope, writes product:write. An empty secret disables the
// gate entirely, for local development.
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Scopes recognized by the composite API.
const (
	ScopeProductRead  = "product:read"
	ScopeProductWrite = "product:write"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingScope = errors.New("required scope not granted")
)

// Claims carries the scope list alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scope"`
}

// HasScope checks whether the claims grant a scope.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Verifier validates bearer tokens and their scopes.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier, or nil when secret is empty.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify parses an Authorization header value and checks the required
// scope.
func (v *Verifier) Verify(authHeader, requiredScope string) (*Claims, error) {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if !claims.HasScope(requiredScope) {
		return nil, ErrMissingScope
	}
	return claims, nil
}
