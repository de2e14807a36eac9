package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the access token payload carrying the caller's role.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTProvider issues and resolves HS256 bearer tokens. The token subject is
// the actor id.
type JWTProvider struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func NewJWTProvider(signingKey, issuer string) *JWTProvider {
	return &JWTProvider{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

func (p *JWTProvider) Issue(a Actor, ttl time.Duration) (string, error) {
	if !a.Role.Valid() {
		return "", fmt.Errorf("issuing token: invalid role %q", a.Role)
	}

	now := p.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (p *JWTProvider) Resolve(_ context.Context, credential string) (Actor, error) {
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}

		return p.signingKey, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Actor{}, fmt.Errorf("%w: token has expired", ErrUnauthorized)
		}

		return Actor{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Actor{}, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return Actor{}, fmt.Errorf("%w: token is missing subject or role", ErrUnauthorized)
	}

	return Actor{ID: claims.Subject, Role: claims.Role}, nil
}
