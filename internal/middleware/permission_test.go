package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/admin-portal/internal/model"
)

func runGuard(t *testing.T, guard echo.MiddlewareFunc, perm any) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if perm != nil {
		c.Set("permission", perm)
	}
	h := guard(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	assert.NoError(t, h(c))
	return rec
}

func TestRequirePermissionExactMembership(t *testing.T) {
	guard := RequirePermission(model.PermissionAdministrator, model.PermissionDeveloper)

	// Membership is exact: OPERATOR sits below ADMINISTRATOR on the
	// promotion ladder but the ladder plays no part in authorization.
	rec := runGuard(t, guard, model.PermissionOperator)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runGuard(t, guard, model.PermissionAdministrator)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runGuard(t, guard, model.PermissionDeveloper)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermissionAboveListedSetRejected(t *testing.T) {
	guard := RequirePermission(model.PermissionAdministrator)

	// DEVELOPER outranks ADMINISTRATOR on the ladder yet is still
	// rejected from a route that lists only ADMINISTRATOR.
	rec := runGuard(t, guard, model.PermissionDeveloper)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionMissingClaim(t *testing.T) {
	guard := RequirePermission(model.PermissionDeveloper)

	rec := runGuard(t, guard, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A raw int smuggled into the context is not a verified claim.
	rec = runGuard(t, guard, 4)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
