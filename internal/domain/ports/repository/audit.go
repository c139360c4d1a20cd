package repository

import (
	"context"
	"time"

	"mentivio-widget/internal/domain/model"
)

// AuditLogRepository is the append-only compliance ledger. Append evicts
// the oldest entries FIFO once the cap is reached.
type AuditLogRepository interface {
	Append(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context) []model.AuditEntry
	// Prune drops entries older than the cutoff, independent of the cap.
	Prune(ctx context.Context, olderThan time.Time) (int, error)
	Reset(ctx context.Context) error
}

// CrisisLogRepository is the in-tab ring buffer of crisis events. Events
// are write-once; the buffer caps out by overwriting the oldest slot.
type CrisisLogRepository interface {
	Append(ctx context.Context, event model.CrisisEvent) error
	List(ctx context.Context) []model.CrisisEvent
}

// ConsentRepository stores the single consent record for the active scope.
type ConsentRepository interface {
	// Load returns the stored record; a read or parse failure is treated
	// as "no consent given".
	Load(ctx context.Context) (*model.ConsentRecord, bool)
	Save(ctx context.Context, record *model.ConsentRecord) error
	Reset(ctx context.Context) error
}
