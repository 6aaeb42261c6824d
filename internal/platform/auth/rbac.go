package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RolePlatformAdmin is the distinguished platform operator role. It passes
// every role gate.
const RolePlatformAdmin = "e-admin"

// PlatformOrganizationID is the id of the platform's own ("no organization")
// tenant, seeded by migration.
const PlatformOrganizationID int64 = 1

// RequireRole returns middleware that checks if the caller has one of the
// given roles. The platform admin role always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RolePlatformAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequirePlatformAdmin restricts a route to the platform operator.
func RequirePlatformAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if RoleFromContext(c.Request().Context()) != RolePlatformAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Unauthorized access. Admins only.")
			}
			return next(c)
		}
	}
}

// RequireOrganizationAdmin restricts a route to admins of collaborated
// organizations, i.e. role admin in any organization other than the
// platform's own.
func RequireOrganizationAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if RoleFromContext(ctx) != "admin" || OrganizationIDFromContext(ctx) == PlatformOrganizationID {
				return echo.NewHTTPError(http.StatusForbidden, "Unauthorized access. Admins only.")
			}
			return next(c)
		}
	}
}
