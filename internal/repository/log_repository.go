package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/admin-portal/internal/model"
)

// LogRepo appends to and reads from the 'audit_logs' table.  The table is
// append-only; there are no update or delete statements here on purpose.
type LogRepo struct{ DB *sql.DB }

func NewLogRepo(db *sql.DB) *LogRepo { return &LogRepo{DB: db} }

// Insert appends one audit entry and populates its generated ID.
func (r *LogRepo) Insert(ctx context.Context, e *model.AuditLog) error {
	var userID any
	if e.UserID != nil {
		userID = *e.UserID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (user_id, action, detail, ip_address, user_agent) VALUES (?,?,?,?,?)",
		userID, e.Action, e.Detail, e.IPAddress, e.UserAgent)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListRecent returns the most recent entries, newest first.
func (r *LogRepo) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, action, detail, ip_address, user_agent, created_at FROM audit_logs ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditLog
	for rows.Next() {
		var (
			e      model.AuditLog
			userID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.Detail, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := uint64(userID.Int64)
			e.UserID = &id
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
