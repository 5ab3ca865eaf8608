// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditRecordedEvent is published whenever an audit entry is written.  It
// mirrors the stored row so downstream consumers can log or alert without
// querying the primary database.
type AuditRecordedEvent struct {
	EntryID   uint64  `json:"entry_id"`
	UserID    *uint64 `json:"user_id,omitempty"`
	Action    string  `json:"action"`
	Detail    string  `json:"detail"`
	IPAddress string  `json:"ip_address"`
	UserAgent string  `json:"user_agent"`
	CreatedAt string  `json:"created_at"`
}
