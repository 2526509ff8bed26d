package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is the authenticated owner extracted from a bearer token.
type Identity struct {
	OwnerID string
}

// TokenVerifier abstracts token verification. Issuance, refresh, and password
// handling live entirely outside this service.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type hmacVerifier struct {
	secret []byte
}

// NewHMACVerifier verifies HS256 bearer tokens whose subject claim is the
// owner id. Expiry is enforced by the JWT library.
func NewHMACVerifier(secret string) *hmacVerifier {
	return &hmacVerifier{secret: []byte(secret)}
}

func (v *hmacVerifier) Verify(_ context.Context, token string) (Identity, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token carries no subject")
	}
	return Identity{OwnerID: claims.Subject}, nil
}
