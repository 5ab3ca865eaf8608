package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/admin-portal/internal/repository"
	"github.com/iliyamo/admin-portal/internal/service"
)

func newKeyHandler(t *testing.T) (*KeyHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	audit := &service.Recorder{Logs: repository.NewLogRepo(db)}
	return NewKeyHandler(repository.NewKeyRepo(db), audit), mock
}

func TestKeyCreateMintsCodeWhenOmitted(t *testing.T) {
	h, mock := newKeyHandler(t)

	mock.ExpectExec("INSERT INTO access_keys").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Create, "/v1/chaves", `{"type":"PERMANENT","permission":"OPERATOR"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var view struct {
		Key        string `json:"key"`
		Type       string `json:"type"`
		Permission string `json:"permission"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Key, 32) // 16 random bytes, hex encoded
	assert.Equal(t, "PERMANENT", view.Type)
	assert.Equal(t, "OPERATOR", view.Permission)
	assert.Equal(t, "ACTIVE", view.Status)
}

func TestKeyCreateRejectsVisitorGrant(t *testing.T) {
	h, _ := newKeyHandler(t)

	rec := postJSON(t, h.Create, "/v1/chaves", `{"type":"PERMANENT","permission":"VISITOR"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeyCreateSingleUsePinsMaxUses(t *testing.T) {
	h, mock := newKeyHandler(t)

	// Any caller-supplied max_uses is overridden for SINGLE_USE keys.
	mock.ExpectExec("INSERT INTO access_keys").
		WithArgs("alpha", "SINGLE_USE", 1, nil, uint32(1), "ACTIVE", nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(t, h.Create, "/v1/chaves",
		`{"key":"alpha","type":"SINGLE_USE","permission":"USER","max_uses":50}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"max_uses":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyCreateExpiringRequiresExpiry(t *testing.T) {
	h, _ := newKeyHandler(t)

	rec := postJSON(t, h.Create, "/v1/chaves", `{"type":"EXPIRING","permission":"USER"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expires_at")
}

func TestKeyCreateBadTimestamp(t *testing.T) {
	h, _ := newKeyHandler(t)

	rec := postJSON(t, h.Create, "/v1/chaves",
		`{"type":"EXPIRING","permission":"USER","expires_at":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeyCreateDuplicateCodeIs409(t *testing.T) {
	h, mock := newKeyHandler(t)

	mock.ExpectExec("INSERT INTO access_keys").
		WillReturnError(sqlmockDuplicate("access_keys.uq_access_keys_key_code"))

	rec := postJSON(t, h.Create, "/v1/chaves", `{"key":"alpha","type":"PERMANENT","permission":"USER"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestKeyUpdateRejectsSystemStatuses(t *testing.T) {
	h, _ := newKeyHandler(t)

	// USED and EXPIRED are system-owned; a caller may not set them.
	for _, status := range []string{"USED", "EXPIRED", "BROKEN"} {
		rec := callWithID(t, h.Update, http.MethodPut, "5", `{"status":"`+status+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, status)
	}
}

func TestKeyUpdateStatusToggle(t *testing.T) {
	h, mock := newKeyHandler(t)

	mock.ExpectQuery("FROM access_keys WHERE id").
		WithArgs(5).
		WillReturnRows(keyHandlerRow(5, "ACTIVE"))
	mock.ExpectExec("UPDATE access_keys SET description").
		WithArgs(nil, "INACTIVE", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM access_keys WHERE id").
		WithArgs(5).
		WillReturnRows(keyHandlerRow(5, "INACTIVE"))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := callWithID(t, h.Update, http.MethodPut, "5", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"INACTIVE"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func keyHandlerRow(id uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "key_code", "key_type", "permission", "created_at", "expires_at",
		"use_count", "max_uses", "status", "description", "created_by",
	}).AddRow(id, "alpha", "PERMANENT", 2, time.Now().UTC(), nil, 0, nil, status, nil, nil)
}
