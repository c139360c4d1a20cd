// File: internal/usecase/audit_uc.go
package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"mentivio-widget/internal/config"
	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/adapter"
	"mentivio-widget/internal/domain/ports/repository"
	"mentivio-widget/internal/domain/ports/storage"
	"mentivio-widget/internal/infra/metrics"
)

// Compile-time check
var _ AuditUseCase = (*auditUC)(nil)

// ExportArtifact is the downloadable snapshot of everything the widget
// holds for the user.
type ExportArtifact struct {
	GeneratedAt time.Time            `json:"generated_at"`
	SessionID   string               `json:"session_id"`
	Anonymous   bool                 `json:"anonymous"`
	Messages    []model.Message      `json:"messages"`
	Consent     *model.ConsentRecord `json:"consent,omitempty"`
	AuditLog    []model.AuditEntry   `json:"audit_log,omitempty"`
}

type AuditUseCase interface {
	// LogEvent appends one ledger entry. It is a no-op while audit
	// logging is disabled and never returns an error: the ledger is
	// observational and must not disturb the conversation flow.
	LogEvent(ctx context.Context, event string, details map[string]any)
	// SetEnabled flips the audit-logging feature flag, typically from
	// the remote compliance status.
	SetEnabled(enabled bool)
	Export(ctx context.Context) (*ExportArtifact, error)
	// DeleteAll wipes the active backend, asks the remote store to drop
	// the session, and leaves the widget ready for a full restart.
	DeleteAll(ctx context.Context) error
	// SweepMessages and SweepAudit drop aged entries. Both are no-ops in
	// anonymous mode, where the ephemeral scope self-clears instead.
	SweepMessages(ctx context.Context) (int, error)
	SweepAudit(ctx context.Context) (int, error)
}

type auditUC struct {
	sessions  repository.SessionRepository
	auditLog  repository.AuditLogRepository
	consents  repository.ConsentRepository
	backend   storage.Backend
	remote    adapter.RemoteBackend
	anonymous bool
	enabled   atomic.Bool
	retention config.PrivacyConfig
	log       *zerolog.Logger
	now       func() time.Time
}

func NewAuditUseCase(
	sessions repository.SessionRepository,
	auditLog repository.AuditLogRepository,
	consents repository.ConsentRepository,
	backend storage.Backend,
	remote adapter.RemoteBackend,
	anonymous bool,
	retention config.PrivacyConfig,
	logger *zerolog.Logger,
) *auditUC {
	ucLog := logger.With().Str("component", "AuditUC").Logger()
	uc := &auditUC{
		sessions:  sessions,
		auditLog:  auditLog,
		consents:  consents,
		backend:   backend,
		remote:    remote,
		anonymous: anonymous,
		retention: retention,
		log:       &ucLog,
		now:       time.Now,
	}
	uc.enabled.Store(retention.AuditLogging)
	return uc
}

func (a *auditUC) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

func (a *auditUC) LogEvent(ctx context.Context, event string, details map[string]any) {
	if !a.enabled.Load() {
		return
	}
	sessionID, _ := a.sessions.CurrentID(ctx)
	entry := model.AuditEntry{
		ID:         ulid.Make().String(),
		Event:      event,
		Details:    details,
		Timestamp:  a.now(),
		SessionID:  sessionID,
		Anonymized: a.anonymous,
	}
	if err := a.auditLog.Append(ctx, entry); err != nil {
		a.log.Warn().Err(err).Str("event", event).Msg("audit append failed")
		return
	}
	metrics.IncAuditEvent(event)
}

func (a *auditUC) Export(ctx context.Context) (*ExportArtifact, error) {
	sessionID, _ := a.sessions.CurrentID(ctx)
	artifact := &ExportArtifact{
		GeneratedAt: a.now(),
		SessionID:   sessionID,
		Anonymous:   a.anonymous,
		Messages:    a.sessions.Load(ctx),
	}
	if rec, ok := a.consents.Load(ctx); ok {
		artifact.Consent = rec
	}
	// Anonymized entries carry no user identity worth exporting.
	if !a.anonymous {
		artifact.AuditLog = a.auditLog.List(ctx)
	}
	a.LogEvent(ctx, "data_exported", map[string]any{"messages": len(artifact.Messages)})
	return artifact, nil
}

func (a *auditUC) DeleteAll(ctx context.Context) error {
	a.LogEvent(ctx, "data_deletion_requested", nil)
	if sessionID, ok := a.sessions.CurrentID(ctx); ok {
		// Best effort; local deletion proceeds even if the remote is down.
		if err := a.remote.SessionClear(ctx, sessionID); err != nil {
			a.log.Warn().Err(err).Msg("remote session clear failed during deletion")
		}
	}
	if err := a.backend.Clear(ctx); err != nil {
		return err
	}
	metrics.IncSessionRotation("delete_all")
	a.log.Info().Msg("all user data deleted")
	return nil
}

func (a *auditUC) SweepMessages(ctx context.Context) (int, error) {
	if a.anonymous {
		return 0, nil
	}
	cutoff := a.now().AddDate(0, 0, -a.retention.MessageRetentionDays)
	dropped, err := a.sessions.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if dropped > 0 {
		metrics.AddRetentionDrops("messages", dropped)
		a.LogEvent(ctx, "retention_sweep", map[string]any{"ledger": "messages", "dropped": dropped})
	}
	return dropped, nil
}

func (a *auditUC) SweepAudit(ctx context.Context) (int, error) {
	if a.anonymous {
		return 0, nil
	}
	cutoff := a.now().AddDate(0, 0, -a.retention.AuditRetentionDays)
	dropped, err := a.auditLog.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if dropped > 0 {
		metrics.AddRetentionDrops("audit", dropped)
	}
	return dropped, nil
}
