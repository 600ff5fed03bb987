// Package auth issues and verifies the session tokens the presentation
// shell carries between logins. A token binds the opaque user identifier to
// a signed HS256 JWT with a unique jti and a bounded lifetime.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/platform/logger"
)

type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
}

func NewTokenService(secret string, ttl time.Duration, baseLog *logger.Logger) TokenService {
	return &tokenService{
		secret: []byte(secret),
		ttl:    ttl,
		log:    baseLog.With("service", "tokens"),
	}
}

func (t *tokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, err, "sign token for %s", userID)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the user identifier.
func (t *tokenService) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Auth("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, err, "invalid token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", apperr.Auth("invalid token")
	}
	return claims.Subject, nil
}
