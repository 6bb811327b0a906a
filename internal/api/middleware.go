package api

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"order-management-service/internal/token"
)

const userIDContextKey = "user_id"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(tokenString string) (int, error)
}

// RequireAuth returns middleware that admits only requests carrying a
// valid "Authorization: Bearer <token>" header. The resolved user id is
// stored on the request-scoped context; the wrapped handler never runs on
// rejection. Expired and malformed tokens get distinct messages but the
// same 401 treatment.
func RequireAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: userIDContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			userID, err := verifier.Verify(auth)
			if err != nil {
				return nil, err
			}
			return userID, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			switch {
			case errors.Is(err, token.ErrExpired):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
			case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrUnsupportedAlgorithm):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			default:
				// Header missing, no Bearer prefix, or empty token.
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token missing"})
			}
		},
	})
}

// UserID returns the authenticated user id stored by RequireAuth.
func UserID(c echo.Context) int {
	id, _ := c.Get(userIDContextKey).(int)
	return id
}
