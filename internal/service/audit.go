package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/admin-portal/internal/model"
	"github.com/iliyamo/admin-portal/internal/queue"
	"github.com/iliyamo/admin-portal/internal/repository"
)

// RequestMeta carries the network facts recorded alongside every audit
// entry.  Handlers fill it from the incoming request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Recorder is the audit sink.  Record appends to the audit_logs table and
// mirrors the entry onto the audit.recorded queue.  Both halves are
// best-effort from the caller's point of view: an audit failure is logged
// but never fails the action being audited.
type Recorder struct {
	Logs *repository.LogRepo
	// Publish can be swapped out in tests; nil disables broker fan-out.
	Publish func(ctx context.Context, ev queue.AuditRecordedEvent) error
}

func NewRecorder(logs *repository.LogRepo) *Recorder {
	return &Recorder{Logs: logs, Publish: queue.PublishAuditRecorded}
}

// Record writes one audit entry.  userID is nil for system actions such as
// rejected logins for unknown accounts.
func (rec *Recorder) Record(ctx context.Context, userID *uint64, action, detail string, meta RequestMeta) {
	if rec == nil || rec.Logs == nil {
		return
	}
	entry := &model.AuditLog{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	if err := rec.Logs.Insert(ctx, entry); err != nil {
		log.Printf("audit: insert failed for %s: %v", action, err)
		return
	}
	if rec.Publish == nil {
		return
	}
	ev := queue.AuditRecordedEvent{
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Detail:    entry.Detail,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
	if err := rec.Publish(ctx, ev); err != nil {
		log.Printf("audit: publish failed for %s: %v", action, err)
	}
}
