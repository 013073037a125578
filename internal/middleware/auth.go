// Package middleware provides Echo middleware for request authentication
// and role-based guards.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/auth"
	"github.com/aelshahawy/dokan/internal/domain"
)

const bearerPrefix = "Bearer "

// Authenticate resolves the bearer token into an Identity and attaches
// it to the request context. Requests without a valid token are
// rejected; downstream handlers can rely on the identity being present.
func Authenticate(tokens *auth.TokenStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return domain.Unauthorized("middleware.authenticate", "Missing bearer token")
			}

			ident, err := tokens.Lookup(c.Request().Context(), strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				return err
			}

			ctx := domain.NewContextWithIdentity(c.Request().Context(), ident)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRoles rejects authenticated requests whose identity has none of
// the given roles. Must run after Authenticate.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok {
				return domain.Unauthorized("middleware.require_roles", "Authentication required")
			}
			for _, role := range roles {
				if ident.Role == role {
					return next(c)
				}
			}
			return domain.Forbidden("middleware.require_roles", "You are not allowed to perform this action")
		}
	}
}
