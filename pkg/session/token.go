package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/involex/involex/pkg/types"
)

// Claims is the persisted session token payload. Expiry is absolute: twelve
// hours from establishment, never refreshed by activity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenCodec signs and validates session tokens.
type tokenCodec struct {
	secret []byte
}

func newTokenCodec(secret string) *tokenCodec {
	if secret == "" {
		// Generate random key (sessions won't persist across restarts)
		b := make([]byte, 32)
		rand.Read(b)
		secret = hex.EncodeToString(b)
	}
	return &tokenCodec{secret: []byte(secret)}
}

func (c *tokenCodec) Create(email string, establishedAt time.Time) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(establishedAt.Add(types.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(establishedAt),
			Issuer:    "involex",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *tokenCodec) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
