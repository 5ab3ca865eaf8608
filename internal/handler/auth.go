package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // errors.Is against the service taxonomy
    "net/http" // HTTP status codes and primitives
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/admin-portal/internal/middleware" // identity helpers
    "github.com/iliyamo/admin-portal/internal/model"
    "github.com/iliyamo/admin-portal/internal/repository" // sentinel errors
    "github.com/iliyamo/admin-portal/internal/service"    // auth core
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type registerReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	AccessKey string `json:"accessKey"`
}
type validateReq struct {
	Token string `json:"token"`
}

func requestMeta(c echo.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
}

// Login: verify credentials and return a bearer token plus the redacted
// user view.  Unknown username and wrong password produce the exact same
// 401 body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Username, req.Password, requestMeta(c))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrAccountInactive):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is not active"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
}

// Register: create a user under one of the three registration policies and
// return the outcome message plus the redacted view.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
		Password:  req.Password,
		AccessKey: req.AccessKey,
	}, requestMeta(c))
	if err != nil {
		return registerError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func registerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUsernameExists), errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrKeyNotFound),
		errors.Is(err, service.ErrKeyInactive),
		errors.Is(err, service.ErrKeyExpired),
		errors.Is(err, service.ErrKeyExhausted):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
}

// Validate: verify a raw token and report its claims.  Verification
// failures come back with valid=false and no further detail.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := h.Auth.ValidateToken(ctx, req.Token)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "reason": "invalid token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user": echo.Map{
			"id":         claims.UserID,
			"username":   claims.Username,
			"permission": claims.Permission.String(),
			"role":       claims.Role,
			"expires_at": claims.ExpiresAt,
		},
	})
}

// Profile: return the verified claims attached to the request context by
// JWTAuth.  No database round-trip; the token is the source of truth here.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	perm, _ := c.Get("permission").(model.Permission)
	username, _ := c.Get("username").(string)
	role, _ := c.Get("role").(model.Role)
	return c.JSON(http.StatusOK, echo.Map{
		"id":         id,
		"username":   username,
		"permission": perm.String(),
		"role":       role,
	})
}
