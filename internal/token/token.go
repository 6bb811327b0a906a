package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired              = errors.New("token expired")
	ErrMalformed            = errors.New("malformed or tampered token")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// Claims defines the JWT payload.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256-signed identity tokens. Tokens are
// self-contained and never stored server-side; there is no revocation.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// New creates a token service with the given signing secret and token
// lifetime.
func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token asserting the given user identity.
func (s *Service) Issue(userID int) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiry of a token and returns the user
// id it asserts. The signing algorithm is checked explicitly: a token
// declaring anything other than HS256 is rejected regardless of whether
// its signature would otherwise validate.
func (s *Service) Verify(tokenString string) (int, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnsupportedAlgorithm
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedAlgorithm):
			return 0, ErrUnsupportedAlgorithm
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpired
		default:
			return 0, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, ErrMalformed
	}
	return claims.UserID, nil
}
