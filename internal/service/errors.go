// Package service holds the auth core: the single authority deciding who a
// request acts as and which permission a new account starts with.  The
// sentinel errors below form the service's taxonomy; handlers map them to
// HTTP statuses and never leak anything beyond their messages.
package service

import "errors"

// ErrInvalidCredentials covers both "no such user" and "wrong password".
// The two cases are deliberately indistinguishable to the caller so the
// login endpoint cannot be used to enumerate usernames.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountInactive is returned when the password matches but the account
// is INACTIVE or BLOCKED.  No token is ever issued for such accounts.
var ErrAccountInactive = errors.New("account is not active")

// ErrValidation flags malformed input (empty fields, bad lengths, unknown
// role).  Wrapped variants carry a human-readable reason.
var ErrValidation = errors.New("validation failed")

// Access key redemption failures.  Each reason is user-facing; a failed
// key never grants a partial permission and never silently downgrades the
// registration to Visitor.
var (
	ErrKeyNotFound  = errors.New("access key not found")
	ErrKeyInactive  = errors.New("access key is not active")
	ErrKeyExpired   = errors.New("access key has expired")
	ErrKeyExhausted = errors.New("access key has no uses left")
)
