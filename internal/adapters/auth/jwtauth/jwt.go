package jwtauth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pet-registry/internal/ports/auth"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	issuer   = "pet-registry"
	audience = "pet-registry-api"
)

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier emite y valida tokens HS256.
// Implementa ports/auth.AuthVerifier y users.TokenIssuer.
type Verifier struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func New(secret string, expiry time.Duration) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (v *Verifier) Issue(userID, email string) (string, error) {
	now := v.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(v.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(v.secret)
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (auth.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	if err != nil {
		return auth.Claims{}, ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{UserID: c.Subject, Email: c.Email}, nil
}
