// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// auth service and handlers to distinguish between failure scenarios
// without string matching MySQL errors themselves.  Uniqueness sentinels
// are produced by mapping duplicate-key (1062) errors onto the index that
// was violated; the unique indexes in the schema are the authoritative
// protection against races, not any read-then-write existence check.
package repository

import (
	"errors"
	"strings"
)

// ErrUsernameExists is returned when an insert or update collides with the
// unique index on users.username.  Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert or update collides with the
// unique index on users.email.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrKeyCodeExists is returned when an access key insert collides with the
// unique index on access_keys.key_code.
var ErrKeyCodeExists = errors.New("access key code already exists")

// ErrNotFound is returned when a row lookup by id or natural key matches
// nothing.  Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// mapUserDuplicate inspects a MySQL duplicate-key error (1062) from the
// users table and returns the matching sentinel.  Unknown duplicates fall
// through unchanged.
func mapUserDuplicate(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	switch {
	case strings.Contains(msg, "username"):
		return ErrUsernameExists
	case strings.Contains(msg, "email"):
		return ErrEmailExists
	}
	return err
}
