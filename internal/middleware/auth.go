package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*service.Identity, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the caller's identity on the context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fields := strings.Fields(c.Request().Header.Get(echo.HeaderAuthorization))
			if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header required (Bearer <token>)")
			}

			identity, err := verifier.Verify(c.Request().Context(), fields[1])
			if err != nil {
				switch {
				case errors.Is(err, service.ErrInvalidToken):
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				case errors.Is(err, service.ErrAccountDisabled):
					return echo.NewHTTPError(http.StatusForbidden, err.Error())
				}
				return err
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !CurrentIdentity(c).IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// CurrentIdentity returns the authenticated caller, or nil.
func CurrentIdentity(c echo.Context) *service.Identity {
	id, _ := c.Get(identityKey).(*service.Identity)
	return id
}

func SetIdentity(c echo.Context, id *service.Identity) {
	c.Set(identityKey, id)
}
