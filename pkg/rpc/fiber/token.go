package fiber

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// TokenService issues and validates API keys. An API key is an HS256 JWT whose
// issuer is the id of the client it was minted for.
type TokenService struct {
	Secret     []byte
	Expiration time.Duration
}

// New mints an API key for issuer.
func (s *TokenService) New(issuer uuid.UUID) (string, error) {
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Issuer:    issuer.String(),
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(s.Expiration).Unix(),
	})
	return claims.SignedString(s.Secret)
}

// Validate checks the signature and expiry of token and returns its issuer.
func (s *TokenService) Validate(token string) (uuid.UUID, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method %s", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "[rpc] - invalid api key")
	}
	return uuid.Parse(claims.Issuer)
}

// checkUnverified rejects a malformed or expired key without its secret, so a
// client can fail fast before a round trip.
func checkUnverified(token string) error {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return errors.Wrap(err, "[rpc] - malformed api key")
	}
	if err := claims.Valid(); err != nil {
		return errors.Wrap(err, "[rpc] - api key rejected")
	}
	return nil
}
