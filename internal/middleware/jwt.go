package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/admin-portal/internal/utils" // token parsing
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the verified claims into the request context.  The provided
// secret must match the one used when issuing tokens.  Protected routes
// wrap this middleware so handlers can read the caller's identity via
// c.Get("user_id"), c.Get("username"), c.Get("permission") and
// c.Get("role").  Anything other than a well-formed "Bearer <token>"
// header is rejected with 401 before the token is even parsed.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT; any other scheme is treated
            // the same as a missing header.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // ParseAccessToken verifies the HS256 signature and expiry and
            // fails closed: malformed, expired and badly signed tokens all
            // come back as the same generic error.
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            // Store the typed claims in the context for handlers and the
            // RequirePermission middleware downstream.
            c.Set("user_id", claims.UserID)
            c.Set("username", claims.Username)
            c.Set("permission", claims.Permission)
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}
