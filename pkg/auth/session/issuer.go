package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TTL is the fixed lifetime of a session credential.
const TTL = 7 * 24 * time.Hour

var (
	ErrInvalidSignature = errors.New("session: invalid signature")
	ErrExpired          = errors.New("session: expired")
)

var signingMethod = jwt.SigningMethodHS256

// Claims is the payload carried by the session cookie.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer mints and verifies stateless session credentials.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIssuer builds an Issuer. The secret must be non-empty.
func NewIssuer(secret, issuer string) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock swaps the time source; used by tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a credential for subjectID valid for TTL.
func (i *Issuer) Issue(subjectID string) (string, error) {
	if strings.TrimSpace(subjectID) == "" {
		return "", errors.New("session subject is required")
	}
	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Malformed and forged tokens both
// report ErrInvalidSignature.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSignature)
	}
	return claims, nil
}
