package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/admin-portal/internal/model"
)

// KeyRepo provides operations over the 'access_keys' table.  Consumption
// during registration runs inside a transaction with a row lock so that a
// SINGLE_USE key can never be redeemed twice under concurrent submissions.
type KeyRepo struct{ DB *sql.DB }

func NewKeyRepo(db *sql.DB) *KeyRepo { return &KeyRepo{DB: db} }

const keyColumns = "id, key_code, key_type, permission, created_at, expires_at, use_count, max_uses, status, description, created_by"

func scanKey(row interface{ Scan(...any) error }) (model.AccessKey, error) {
	var (
		k       model.AccessKey
		perm    uint8
		expires sql.NullTime
		maxUses sql.NullInt64
		desc    sql.NullString
		creator sql.NullInt64
	)
	err := row.Scan(&k.ID, &k.Key, &k.Type, &perm, &k.CreatedAt, &expires,
		&k.UseCount, &maxUses, &k.Status, &desc, &creator)
	if err != nil {
		return model.AccessKey{}, err
	}
	k.Permission = model.Permission(perm)
	if expires.Valid {
		t := expires.Time
		k.ExpiresAt = &t
	}
	if maxUses.Valid {
		n := uint32(maxUses.Int64)
		k.MaxUses = &n
	}
	if desc.Valid {
		s := desc.String
		k.Description = &s
	}
	if creator.Valid {
		id := uint64(creator.Int64)
		k.CreatedBy = &id
	}
	return k, nil
}

// Create inserts an access key and populates its generated ID.
func (r *KeyRepo) Create(ctx context.Context, k *model.AccessKey) error {
	var expires any
	if k.ExpiresAt != nil {
		expires = k.ExpiresAt.UTC()
	}
	var maxUses any
	if k.MaxUses != nil {
		maxUses = *k.MaxUses
	}
	var desc any
	if k.Description != nil {
		desc = *k.Description
	}
	var creator any
	if k.CreatedBy != nil {
		creator = *k.CreatedBy
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_keys (key_code, key_type, permission, expires_at, max_uses, status, description, created_by) VALUES (?,?,?,?,?,?,?,?)",
		k.Key, string(k.Type), uint8(k.Permission), expires, maxUses, string(k.Status), desc, creator)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrKeyCodeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	k.ID = uint64(id)
	k.CreatedAt = time.Now().UTC()
	return nil
}

// GetByKey fetches a key by its shareable code.
func (r *KeyRepo) GetByKey(ctx context.Context, code string) (model.AccessKey, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+keyColumns+" FROM access_keys WHERE key_code = ? LIMIT 1", code)
	k, err := scanKey(row)
	if err == sql.ErrNoRows {
		return model.AccessKey{}, ErrNotFound
	}
	return k, err
}

// GetByID fetches a key by id.
func (r *KeyRepo) GetByID(ctx context.Context, id uint64) (model.AccessKey, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+keyColumns+" FROM access_keys WHERE id = ? LIMIT 1", id)
	k, err := scanKey(row)
	if err == sql.ErrNoRows {
		return model.AccessKey{}, ErrNotFound
	}
	return k, err
}

// List returns all keys, newest first.
func (r *KeyRepo) List(ctx context.Context) ([]model.AccessKey, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+keyColumns+" FROM access_keys ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AccessKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a key: description and status.
// The code, type and granted permission are fixed at creation.
func (r *KeyRepo) Update(ctx context.Context, id uint64, description *string, status *model.KeyStatus) error {
	k, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	desc := k.Description
	if description != nil {
		desc = description
	}
	st := k.Status
	if status != nil {
		st = *status
	}
	var descArg any
	if desc != nil {
		descArg = *desc
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE access_keys SET description=?, status=? WHERE id=?",
		descArg, string(st), id)
	return err
}

// GetByKeyForUpdate locks and returns a key row inside an open transaction.
// The FOR UPDATE lock serializes concurrent redemption attempts of the
// same code.
func (r *KeyRepo) GetByKeyForUpdate(ctx context.Context, tx *sql.Tx, code string) (model.AccessKey, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+keyColumns+" FROM access_keys WHERE key_code = ? LIMIT 1 FOR UPDATE", code)
	k, err := scanKey(row)
	if err == sql.ErrNoRows {
		return model.AccessKey{}, ErrNotFound
	}
	return k, err
}

// ConsumeTx increments a key's use counter inside an open transaction,
// flipping status to USED when the cap is reached.  The WHERE clause is a
// conditional guard: zero rows affected means the key was inactive or
// already exhausted and the caller must roll back.
func (r *KeyRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE access_keys
		 SET status = IF(max_uses IS NOT NULL AND use_count + 1 >= max_uses, 'USED', status),
		     use_count = use_count + 1
		 WHERE id = ? AND status = 'ACTIVE' AND (max_uses IS NULL OR use_count < max_uses)`,
		id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkExpired flips an EXPIRING key to EXPIRED.  Called when validation
// observes that the expiry has passed; harmless if already flipped.
func (r *KeyRepo) MarkExpired(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_keys SET status='EXPIRED' WHERE id=? AND status='ACTIVE'", id)
	return err
}
