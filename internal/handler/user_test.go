package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/admin-portal/internal/config"
	"github.com/iliyamo/admin-portal/internal/repository"
	"github.com/iliyamo/admin-portal/internal/service"
)

func newUserHandler(t *testing.T) (*UserHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{BcryptCost: 4}
	audit := &service.Recorder{Logs: repository.NewLogRepo(db)}
	return NewUserHandler(cfg, repository.NewUserRepo(db), audit), mock
}

func callWithID(t *testing.T, h echo.HandlerFunc, method, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h(c))
	return rec
}

func storedUserRow(perm int, status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(handlerUserCols).AddRow(
		7, "rui", "rui@example.com", "COORDINATOR", perm, "hash", status, now, now, nil, nil, nil)
}

func expectAuditInsert(mock sqlmock.Sqlmock) {
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestUserPromoteOneRung(t *testing.T) {
	h, mock := newUserHandler(t)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(storedUserRow(2, "ACTIVE"))
	mock.ExpectExec("UPDATE users SET").
		WithArgs("rui", "rui@example.com", "COORDINATOR", 3, "ACTIVE", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditInsert(mock)

	rec := callWithID(t, h.Promote, http.MethodPut, "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission":"ADMINISTRATOR"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPromoteCapsAtTop(t *testing.T) {
	h, mock := newUserHandler(t)

	// Promoting a DEVELOPER is a no-op, not an error.
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(storedUserRow(4, "ACTIVE"))
	mock.ExpectExec("UPDATE users SET").
		WithArgs("rui", "rui@example.com", "COORDINATOR", 4, "ACTIVE", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditInsert(mock)

	rec := callWithID(t, h.Promote, http.MethodPut, "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission":"DEVELOPER"`)
}

func TestUserDemoteFloorsAtBottom(t *testing.T) {
	h, mock := newUserHandler(t)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(storedUserRow(0, "ACTIVE"))
	mock.ExpectExec("UPDATE users SET").
		WithArgs("rui", "rui@example.com", "COORDINATOR", 0, "ACTIVE", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditInsert(mock)

	rec := callWithID(t, h.Demote, http.MethodPut, "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission":"VISITOR"`)
}

func TestUserDeleteIsSoft(t *testing.T) {
	h, mock := newUserHandler(t)

	// DELETE flips status to INACTIVE; no DELETE statement is ever issued.
	mock.ExpectExec("UPDATE users SET status").
		WithArgs("INACTIVE", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditInsert(mock)

	rec := callWithID(t, h.Delete, http.MethodDelete, "7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetUnknownIs404(t *testing.T) {
	h, mock := newUserHandler(t)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	rec := callWithID(t, h.Get, http.MethodGet, "99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserGetRedactsCredentials(t *testing.T) {
	h, mock := newUserHandler(t)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(storedUserRow(1, "ACTIVE"))

	rec := callWithID(t, h.Get, http.MethodGet, "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "recovery")
}

func TestUserCreateRejectsUnknownPermission(t *testing.T) {
	h, _ := newUserHandler(t)

	rec := postJSON(t, h.Create, "/v1/users",
		`{"username":"ana","email":"ana@example.com","role":"MANAGER","permission":"SUPERUSER","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserUpdatePartialFields(t *testing.T) {
	h, mock := newUserHandler(t)

	// Only the email is supplied; everything else keeps its stored value.
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(storedUserRow(2, "ACTIVE"))
	mock.ExpectExec("UPDATE users SET").
		WithArgs("rui", "new@example.com", "COORDINATOR", 2, "ACTIVE", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAuditInsert(mock)

	rec := callWithID(t, h.Update, http.MethodPut, "7", `{"email":"new@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateRejectsBadStatus(t *testing.T) {
	h, mock := newUserHandler(t)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(storedUserRow(2, "ACTIVE"))

	rec := callWithID(t, h.Update, http.MethodPut, "7", `{"status":"GONE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
