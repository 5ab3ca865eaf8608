package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/admin-portal/internal/model"
)

// RequirePermission returns a middleware that enforces that the caller's
// permission claim is one of the given values.  This is exact set
// membership, not an "at least" comparison on the ladder: a DEVELOPER is
// rejected from a route that lists only ADMINISTRATOR.  Every guarded
// route therefore enumerates every permission allowed to call it.  It
// assumes JWTAuth has already stored the permission in the context.
func RequirePermission(perms ...model.Permission) echo.MiddlewareFunc {
    // Build a set of allowed permissions for constant-time lookups.
    allowed := make(map[model.Permission]bool, len(perms))
    for _, p := range perms {
        allowed[p] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("permission")
            perm, ok := v.(model.Permission)
            if !ok || !allowed[perm] {
                // Missing or not in the route's set: 403.
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
