package middleware

// identity.go defines helpers shared across middleware files and handlers
// for reading the identity that JWTAuth stored in the Echo context.

import (
    "errors"

    "github.com/labstack/echo/v4"
)

// ErrNoIdentity is returned when the context holds no verified user id,
// i.e. the route was reached without passing through JWTAuth.
var ErrNoIdentity = errors.New("no authenticated identity in context")

// UserID extracts the authenticated user's id from the context.
func UserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get("user_id").(uint64); ok && id > 0 {
        return id, nil
    }
    return 0, ErrNoIdentity
}

// ActorID returns a pointer to the authenticated user's id, or nil when
// the request is unauthenticated.  Audit entries use nil for system
// actions, so this shape feeds straight into the recorder.
func ActorID(c echo.Context) *uint64 {
    if id, err := UserID(c); err == nil {
        return &id
    }
    return nil
}
