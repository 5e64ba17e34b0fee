// Package jwt mints and validates the session tokens handed out when an
// identity is bootstrapped. The token only carries the resolved identity;
// privilege is re-derived by policy on every request.
package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload.
type Claims struct {
	Authenticated bool `json:"authenticated"`
	gojwt.RegisteredClaims
}

const issuer = "shiftwyse"

// Create creates a signed session token for the identity id.
func Create(id string, authenticated bool, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Authenticated: authenticated,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Validate checks the signature and expiry and returns the claims.
func Validate(tokenString string, secret string) (*Claims, error) {
	token, err := gojwt.ParseWithClaims(tokenString, &Claims{}, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.Issuer != issuer {
		return nil, fmt.Errorf("invalid issuer")
	}
	return claims, nil
}
