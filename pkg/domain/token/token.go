// Package token issues short-lived tokens granting download access to
// one cohort's feature table.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const audience = "snpflow/features"

type Issuer struct {
	key []byte
	ttl time.Duration

	// overridable for tests.
	now func() time.Time
}

func NewIssuer(key string, ttl time.Duration) *Issuer {
	return &Issuer{key: []byte(key), ttl: ttl, now: time.Now}
}

// Issue mints a token granting download of cohortId's feature table
// until the TTL passes.
func (i *Issuer) Issue(cohortId string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   cohortId,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

// Verify checks that tok grants download of cohortId's feature table.
func (i *Issuer) Verify(tok string, cohortId string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tok, claims,
		func(t *jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject != cohortId {
		return ErrInvalidToken
	}
	return nil
}
