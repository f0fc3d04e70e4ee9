package httpserver

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const tokenIssuer = "mediapost"

var errInvalidToken = errors.New("invalid access token")

// tokens issues and verifies HS256 access tokens carrying the user ID as subject.
type tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func newTokens(secret string, ttl time.Duration, clock clockwork.Clock) *tokens {
	return &tokens{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Issue returns a signed token for userID and its lifetime in seconds.
func (t *tokens) Issue(userID int64) (string, int64, error) {
	now := t.clock.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, int64(t.ttl.Seconds()), nil
}

// Verify checks signature, issuer and expiry and returns the user ID.
func (t *tokens) Verify(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", errInvalidToken, claims.Subject)
	}
	return userID, nil
}
