package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/admin-portal/internal/model"
)

// UserRepo provides CRUD operations over the 'users' table.  Password
// hashes go in and out of this layer as opaque strings; hashing itself
// happens in the service layer.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, role, permission, password_hash, status, created_at, updated_at, last_login_at, recovery_token, recovery_expires_at"

// scanUser reads one user row from either *sql.Row or *sql.Rows.
func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u        model.User
		perm     uint8
		lastLog  sql.NullTime
		recTok   sql.NullString
		recExp   sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &perm, &u.PasswordHash,
		&u.Status, &u.CreatedAt, &u.UpdatedAt, &lastLog, &recTok, &recExp)
	if err != nil {
		return model.User{}, err
	}
	u.Permission = model.Permission(perm)
	if lastLog.Valid {
		t := lastLog.Time
		u.LastLoginAt = &t
	}
	if recTok.Valid {
		s := recTok.String
		u.RecoveryToken = &s
	}
	if recExp.Valid {
		t := recExp.Time
		u.RecoveryExpiresAt = &t
	}
	return u, nil
}

// Create inserts a user and populates its generated ID and timestamps.
// Duplicate username/email violations are mapped onto sentinels.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, role, permission, password_hash, status) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, string(u.Role), uint8(u.Permission), u.PasswordHash, string(u.Status))
	if err != nil {
		return mapUserDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// CreateTx is Create scoped to an existing transaction.  Used by keyed
// registration so the user insert and the key consumption commit together.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, role, permission, password_hash, status) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, string(u.Role), uint8(u.Permission), u.PasswordHash, string(u.Status))
	if err != nil {
		return mapUserDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetByUsername fetches a user by exact username.  No case folding: logins
// are case-sensitive exact matches.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Count returns the total number of user rows, including inactive ones.
// A zero count selects the first-user bootstrap registration policy.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites the mutable profile fields of a user.  The id never
// changes; duplicate violations map onto the same sentinels as Create.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, role=?, permission=?, status=? WHERE id=?",
		u.Username, u.Email, string(u.Role), uint8(u.Permission), string(u.Status), u.ID)
	if err != nil {
		return mapUserDuplicate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row does not exist or nothing changed; distinguish.
		if _, gerr := r.GetByID(ctx, u.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// SetStatus flips the account status.  Setting INACTIVE is the system's
// soft delete; rows are never removed.
func (r *UserRepo) SetStatus(ctx context.Context, id uint64, status model.UserStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET status=? WHERE id=?", string(status), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
	}
	return nil
}

// UpdateLastLogin stamps the last successful login.  Callers treat this as
// best-effort; a failure here must not fail the login itself.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=NOW() WHERE id=?", id)
	return err
}
