package model

import "time"

// AuditLog is an append-only record of a security-relevant action.  Rows
// are never updated or deleted.  UserID is nullable because system actions
// (e.g. failed logins for unknown accounts) have no actor.
type AuditLog struct {
	ID        uint64    `json:"id"`
	UserID    *uint64   `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
