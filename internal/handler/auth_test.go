package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
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
	"github.com/iliyamo/admin-portal/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{JWTSecret: "handler-secret", TokenTTL: time.Hour, BcryptCost: 4}
	audit := &service.Recorder{Logs: repository.NewLogRepo(db)}
	svc := service.NewAuthService(cfg, db, repository.NewUserRepo(db), repository.NewKeyRepo(db), audit)
	return NewAuthHandler(svc), mock
}

func postJSON(t *testing.T, h echo.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

var handlerUserCols = []string{
	"id", "username", "email", "role", "permission", "password_hash",
	"status", "created_at", "updated_at", "last_login_at", "recovery_token", "recovery_expires_at",
}

func TestLoginEndpointIssuesToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("password123", 4)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("rui").
		WillReturnRows(sqlmock.NewRows(handlerUserCols).AddRow(
			1, "rui", "rui@example.com", "COORDINATOR", 2, hash, "ACTIVE", now, now, nil, nil, nil))
	mock.ExpectExec("UPDATE users SET last_login_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Login, "/v1/auth/login", `{"username":"rui","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Username   string `json:"username"`
			Permission string `json:"permission"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "rui", body.User.Username)
	assert.Equal(t, "OPERATOR", body.User.Permission)

	// The response never carries the stored hash.
	assert.NotContains(t, rec.Body.String(), hash)
}

func TestLoginEndpointUniform401(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("password123", 4)
	require.NoError(t, err)

	// Unknown username.
	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	recUnknown := postJSON(t, h.Login, "/v1/auth/login", `{"username":"ghost","password":"password123"}`)

	// Known username, wrong password.
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("rui").
		WillReturnRows(sqlmock.NewRows(handlerUserCols).AddRow(
			1, "rui", "rui@example.com", "COORDINATOR", 2, hash, "ACTIVE", now, now, nil, nil, nil))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	recWrong := postJSON(t, h.Login, "/v1/auth/login", `{"username":"rui","password":"nope"}`)

	// Both failures must be byte-identical to the caller.
	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.Equal(t, recUnknown.Body.String(), recWrong.Body.String())
}

func TestLoginEndpointInactiveAccount(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("password123", 4)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("rui").
		WillReturnRows(sqlmock.NewRows(handlerUserCols).AddRow(
			1, "rui", "rui@example.com", "COORDINATOR", 2, hash, "INACTIVE", now, now, nil, nil, nil))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Login, "/v1/auth/login", `{"username":"rui","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not active")
	assert.NotContains(t, rec.Body.String(), "access_token")
}

func TestRegisterEndpointCreated(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"username":"ana","email":"ana@example.com","role":"MANAGER","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission":"VISITOR"`)
}

func TestRegisterEndpointDuplicateIs409(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(sqlmockDuplicate("users.uq_users_username"))

	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"username":"ana","email":"ana@example.com","role":"MANAGER","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterEndpointBadRoleIs400(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"username":"ana","email":"ana@example.com","role":"WIZARD","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func sqlmockDuplicate(index string) error {
	return fmt.Errorf("Error 1062 (23000): Duplicate entry 'ana' for key '%s'", index)
}

func TestValidateEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)

	// Garbage token: HTTP 200 with valid=false, no reason detail.
	rec := postJSON(t, h.Validate, "/v1/auth/validate", `{"token":"not.a.token"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":false`)

	// Empty token is a request error, not a verification result.
	rec = postJSON(t, h.Validate, "/v1/auth/validate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
