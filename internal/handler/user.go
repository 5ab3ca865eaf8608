package handler // handler package contains user administration handlers

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/admin-portal/internal/config"
    "github.com/iliyamo/admin-portal/internal/middleware"
    "github.com/iliyamo/admin-portal/internal/model"
    "github.com/iliyamo/admin-portal/internal/repository"
    "github.com/iliyamo/admin-portal/internal/service"
    "github.com/iliyamo/admin-portal/internal/utils"
)

// UserHandler bundles dependencies for the /v1/users endpoints.  Reads are
// open to any authenticated caller; writes are gated to
// {ADMINISTRATOR, DEVELOPER} at the router.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Audit *service.Recorder
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, audit *service.Recorder) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Audit: audit}
}

func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// List handles GET /v1/users and returns every user as a redacted view.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		items = append(items, u.Public())
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, u.Public())
}

type createUserReq struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Password   string `json:"password"`
}

// Create handles POST /v1/users: a privileged user provisions an account
// directly, choosing its permission level.  The plaintext password is
// hashed before anything touches the database.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if n := len(req.Username); n < 1 || n > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 1-50 characters"})
	}
	if n := len(req.Email); n < 1 || n > 100 || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must be a valid address of 1-100 characters"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	perm, err := model.ParsePermission(strings.ToUpper(strings.TrimSpace(req.Permission)))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}
	u := model.User{
		Username:     req.Username,
		Email:        req.Email,
		Role:         role,
		Permission:   perm,
		PasswordHash: hash,
		Status:       model.UserActive,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Create(ctx, &u); err != nil {
		return userWriteError(c, err)
	}
	h.Audit.Record(ctx, middleware.ActorID(c), "user.create",
		fmt.Sprintf("created user %q with permission %s", u.Username, perm), requestMeta(c))
	return c.JSON(http.StatusCreated, u.Public())
}

type updateUserReq struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Permission *string `json:"permission"`
	Status     *string `json:"status"`
}

// Update handles PUT /v1/users/:id.  Only supplied fields change; the id
// is immutable and the password is not updatable through this endpoint.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if n := len(name); n < 1 || n > 50 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 1-50 characters"})
		}
		u.Username = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if n := len(email); n < 1 || n > 100 || !strings.Contains(email, "@") {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must be a valid address of 1-100 characters"})
		}
		u.Email = email
	}
	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		u.Role = role
	}
	if req.Permission != nil {
		perm, err := model.ParsePermission(strings.ToUpper(strings.TrimSpace(*req.Permission)))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		u.Permission = perm
	}
	if req.Status != nil {
		st := model.UserStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !model.ValidUserStatus(st) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be ACTIVE, INACTIVE or BLOCKED"})
		}
		u.Status = st
	}

	if err := h.Users.Update(ctx, &u); err != nil {
		return userWriteError(c, err)
	}
	h.Audit.Record(ctx, middleware.ActorID(c), "user.update",
		fmt.Sprintf("updated user %d", id), requestMeta(c))
	return c.JSON(http.StatusOK, u.Public())
}

// Delete handles DELETE /v1/users/:id.  Deletion is a soft delete: the
// account flips to INACTIVE and the row stays put.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, model.UserInactive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.Audit.Record(ctx, middleware.ActorID(c), "user.delete",
		fmt.Sprintf("deactivated user %d", id), requestMeta(c))
	return c.NoContent(http.StatusNoContent)
}

// Promote handles PUT /v1/users/:id/promote: move the user one rung up
// the permission ladder.  This stepping is the only place the ladder's
// ordering is consulted.
func (h *UserHandler) Promote(c echo.Context) error { return h.step(c, true) }

// Demote handles PUT /v1/users/:id/demote: one rung down.
func (h *UserHandler) Demote(c echo.Context) error { return h.step(c, false) }

func (h *UserHandler) step(c echo.Context, up bool) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	action := "user.demote"
	if up {
		u.Permission = u.Permission.Next()
		action = "user.promote"
	} else {
		u.Permission = u.Permission.Prev()
	}
	if err := h.Users.Update(ctx, &u); err != nil {
		return userWriteError(c, err)
	}
	h.Audit.Record(ctx, middleware.ActorID(c), action,
		fmt.Sprintf("user %d now %s", id, u.Permission), requestMeta(c))
	return c.JSON(http.StatusOK, u.Public())
}

func userWriteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
}
