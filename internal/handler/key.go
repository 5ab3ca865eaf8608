package handler // handler package contains access key handlers

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/admin-portal/internal/middleware"
    "github.com/iliyamo/admin-portal/internal/model"
    "github.com/iliyamo/admin-portal/internal/repository"
    "github.com/iliyamo/admin-portal/internal/service"
    "github.com/iliyamo/admin-portal/internal/utils"
)

// KeyHandler bundles dependencies for the /v1/chaves endpoints.
type KeyHandler struct {
	Keys  *repository.KeyRepo
	Audit *service.Recorder
}

func NewKeyHandler(keys *repository.KeyRepo, audit *service.Recorder) *KeyHandler {
	return &KeyHandler{Keys: keys, Audit: audit}
}

// keyView is the response shape for access keys.  The raw code is
// included: keys are shareable capabilities, not secrets from the
// portal's point of view.
type keyView struct {
	ID          uint64     `json:"id"`
	Key         string     `json:"key"`
	Type        string     `json:"type"`
	Permission  string     `json:"permission"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UseCount    uint32     `json:"use_count"`
	MaxUses     *uint32    `json:"max_uses,omitempty"`
	Status      string     `json:"status"`
	Description *string    `json:"description,omitempty"`
	CreatedBy   *uint64    `json:"created_by,omitempty"`
}

func toKeyView(k model.AccessKey) keyView {
	return keyView{
		ID:          k.ID,
		Key:         k.Key,
		Type:        string(k.Type),
		Permission:  k.Permission.String(),
		CreatedAt:   k.CreatedAt,
		ExpiresAt:   k.ExpiresAt,
		UseCount:    k.UseCount,
		MaxUses:     k.MaxUses,
		Status:      string(k.Status),
		Description: k.Description,
		CreatedBy:   k.CreatedBy,
	}
}

// List handles GET /v1/chaves.
func (h *KeyHandler) List(c echo.Context) error {
	keys, err := h.Keys.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]keyView, 0, len(keys))
	for _, k := range keys {
		items = append(items, toKeyView(k))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type createKeyReq struct {
	Key         string  `json:"key"`
	Type        string  `json:"type"`
	Permission  string  `json:"permission"`
	ExpiresAt   *string `json:"expires_at"`
	MaxUses     *uint32 `json:"max_uses"`
	Description *string `json:"description"`
}

// Create handles POST /v1/chaves.  The granted permission is fixed here
// forever and may never be VISITOR.  SINGLE_USE keys get max_uses pinned
// to 1; EXPIRING keys must carry an expiry.  When no code is supplied a
// random one is minted.
func (h *KeyHandler) Create(c echo.Context) error {
	var req createKeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	keyType := model.KeyType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !model.ValidKeyType(keyType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be PERMANENT, EXPIRING or SINGLE_USE"})
	}
	perm, err := model.ParsePermission(strings.ToUpper(strings.TrimSpace(req.Permission)))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if perm == model.PermissionVisitor {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a key may not grant VISITOR"})
	}

	code := strings.TrimSpace(req.Key)
	if code == "" {
		code, err = utils.RandomKeyCode(16)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not mint key code"})
		}
	}
	if len(code) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key must be at most 100 characters"})
	}

	var expires *time.Time
	if req.ExpiresAt != nil && strings.TrimSpace(*req.ExpiresAt) != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "expires_at must be RFC3339"})
		}
		tt := t.UTC()
		expires = &tt
	}
	if keyType == model.KeyExpiring && expires == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "EXPIRING keys require expires_at"})
	}

	maxUses := req.MaxUses
	if keyType == model.KeySingleUse {
		one := uint32(1)
		maxUses = &one
	}
	if maxUses != nil && *maxUses < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_uses must be at least 1"})
	}

	k := model.AccessKey{
		Key:         code,
		Type:        keyType,
		Permission:  perm,
		ExpiresAt:   expires,
		MaxUses:     maxUses,
		Status:      model.KeyActive,
		Description: req.Description,
		CreatedBy:   middleware.ActorID(c),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Keys.Create(ctx, &k); err != nil {
		if errors.Is(err, repository.ErrKeyCodeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "access key code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create key"})
	}
	h.Audit.Record(ctx, middleware.ActorID(c), "key.create",
		fmt.Sprintf("created %s key %d granting %s", keyType, k.ID, perm), requestMeta(c))
	return c.JSON(http.StatusCreated, toKeyView(k))
}

type updateKeyReq struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update handles PUT /v1/chaves/:id.  Only description and status are
// mutable; the code, type and granted permission never change.  Status
// may only be toggled between ACTIVE and INACTIVE by hand — USED and
// EXPIRED are set by the system.
func (h *KeyHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateKeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var status *model.KeyStatus
	if req.Status != nil {
		st := model.KeyStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if st != model.KeyActive && st != model.KeyInactive {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be ACTIVE or INACTIVE"})
		}
		status = &st
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Keys.Update(ctx, id, req.Description, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "key not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	k, err := h.Keys.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.Audit.Record(ctx, middleware.ActorID(c), "key.update",
		fmt.Sprintf("updated key %d", id), requestMeta(c))
	return c.JSON(http.StatusOK, toKeyView(k))
}
