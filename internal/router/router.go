package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/admin-portal/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/admin-portal/internal/middleware" // import middleware for JWT authentication and permission gating
	"github.com/iliyamo/admin-portal/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The /healthz endpoint is used by load balancers and monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; the profile endpoint requires a valid
// bearer token but no particular permission.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that establish or inspect a session.  Register applies
	// the three-policy precedence (bootstrap / keyed / public) inside the
	// auth service; login and validate never require a token themselves.
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/register", a.Register)
	g.POST("/validate", a.Validate)

	// Profile echoes the verified claims back to the caller.  Any
	// authenticated permission level may read its own profile.
	g.GET("/profile", a.Profile, middleware.JWTAuth(jwtSecret))
}

// RegisterAdmin registers the guarded CRUD surface: users, access keys
// (chaves) and audit logs.  Reads are open to any authenticated caller;
// writes enumerate the exact permissions allowed to call them — the gate
// is set membership, so even a DEVELOPER is rejected from a route that
// does not list DEVELOPER explicitly.
func RegisterAdmin(e *echo.Echo, u *handler.UserHandler, k *handler.KeyHandler, l *handler.LogHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Every permission on the ladder may read listings once authenticated.
	writers := middleware.RequirePermission(model.PermissionAdministrator, model.PermissionDeveloper)

	// Users.  Listings go through the response cache; the cache key
	// varies on the bearer token so entries are per caller.
	auth.GET("/users", u.List, cache)
	auth.GET("/users/:id", u.Get)
	auth.POST("/users", u.Create, writers)
	auth.PUT("/users/:id", u.Update, writers)
	auth.DELETE("/users/:id", u.Delete, writers)
	auth.PUT("/users/:id/promote", u.Promote, writers)
	auth.PUT("/users/:id/demote", u.Demote, writers)

	// Access keys ("chaves" in the UI).  Creating or editing a key is a
	// privileged operation; reading the list is not.
	auth.GET("/chaves", k.List)
	auth.POST("/chaves", k.Create, writers)
	auth.PUT("/chaves/:id", k.Update, writers)

	// Audit logs: read the most recent entries, append new ones.
	auth.GET("/logs", l.List, cache)
	auth.POST("/logs", l.Create)
}
