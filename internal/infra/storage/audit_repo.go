package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/repository"
	ports "mentivio-widget/internal/domain/ports/storage"
)

const (
	auditLogCap    = 500
	crisisEventCap = 50
)

var _ repository.AuditLogRepository = (*AuditRepo)(nil)

// AuditRepo stores the compliance ledger as one JSON array under a single
// key, evicting FIFO past the cap.
type AuditRepo struct {
	backend ports.Backend
	log     *zerolog.Logger
}

func NewAuditRepo(backend ports.Backend, logger *zerolog.Logger) *AuditRepo {
	repoLog := logger.With().Str("component", "AuditRepo").Logger()
	return &AuditRepo{backend: backend, log: &repoLog}
}

func (a *AuditRepo) Append(ctx context.Context, entry model.AuditEntry) error {
	entries := a.List(ctx)
	entries = append(entries, entry)
	if len(entries) > auditLogCap {
		entries = entries[len(entries)-auditLogCap:]
	}
	return a.write(ctx, entries)
}

func (a *AuditRepo) List(ctx context.Context) []model.AuditEntry {
	raw, ok, err := a.backend.Get(ctx, keyAuditLog)
	if err != nil || !ok {
		return []model.AuditEntry{}
	}
	var entries []model.AuditEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		a.log.Warn().Err(err).Msg("unparsable audit log, starting empty")
		return []model.AuditEntry{}
	}
	if entries == nil {
		return []model.AuditEntry{}
	}
	return entries
}

func (a *AuditRepo) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	entries := a.List(ctx)
	kept := entries[:0]
	for _, e := range entries {
		if !e.Timestamp.Before(olderThan) {
			kept = append(kept, e)
		}
	}
	dropped := len(entries) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	if err := a.write(ctx, kept); err != nil {
		return 0, err
	}
	return dropped, nil
}

func (a *AuditRepo) Reset(ctx context.Context) error {
	return a.backend.Remove(ctx, keyAuditLog)
}

func (a *AuditRepo) write(ctx context.Context, entries []model.AuditEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal audit log: %w", err)
	}
	if err := a.backend.Set(ctx, keyAuditLog, string(data)); err != nil {
		return fmt.Errorf("store audit log: %w", err)
	}
	return nil
}

var _ repository.CrisisLogRepository = (*CrisisRepo)(nil)

// CrisisRepo keeps the crisis event ring buffer. It always writes to an
// ephemeral backend regardless of the session's scope: crisis snippets
// never touch persistent storage.
type CrisisRepo struct {
	backend ports.Backend
}

func NewCrisisRepo(backend ports.Backend) *CrisisRepo {
	return &CrisisRepo{backend: backend}
}

func (c *CrisisRepo) Append(ctx context.Context, event model.CrisisEvent) error {
	events := c.List(ctx)
	events = append(events, event)
	if len(events) > crisisEventCap {
		events = events[len(events)-crisisEventCap:]
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal crisis events: %w", err)
	}
	if err := c.backend.Set(ctx, keyCrisisEvents, string(data)); err != nil {
		return fmt.Errorf("store crisis events: %w", err)
	}
	return nil
}

func (c *CrisisRepo) List(ctx context.Context) []model.CrisisEvent {
	raw, ok, err := c.backend.Get(ctx, keyCrisisEvents)
	if err != nil || !ok {
		return []model.CrisisEvent{}
	}
	var events []model.CrisisEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return []model.CrisisEvent{}
	}
	if events == nil {
		return []model.CrisisEvent{}
	}
	return events
}
