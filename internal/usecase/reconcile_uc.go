// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/adapter"
	"mentivio-widget/internal/domain/ports/repository"
	"mentivio-widget/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// Source names which side of the divergence ended up on screen.
type Source string

const (
	SourceRotated Source = "rotated"
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
	SourceEmpty   Source = "empty"
)

type ReconcileResult struct {
	Source    Source
	SessionID string
	Messages  []model.Message
}

// ReconcileUseCase decides, once per initialization, whether the remote
// session store, the local cache, or neither supplies the conversation
// the user sees. Remote failure always degrades to the local fallback;
// only the inactivity timeout is allowed to destroy local state.
type ReconcileUseCase interface {
	Run(ctx context.Context) (*ReconcileResult, error)
}

type reconcileUC struct {
	sessions    repository.SessionRepository
	remote      adapter.RemoteBackend
	audit       AuditUseCase
	defaultLang model.LangCode
	inactivity  time.Duration
	probeDelay  time.Duration
	log         *zerolog.Logger
	now         func() time.Time
	// schedule defers fn; swapped out in tests to run synchronously.
	schedule func(d time.Duration, fn func())
}

func NewReconcileUseCase(
	sessions repository.SessionRepository,
	remote adapter.RemoteBackend,
	audit AuditUseCase,
	defaultLang model.LangCode,
	inactivity, probeDelay time.Duration,
	logger *zerolog.Logger,
) *reconcileUC {
	ucLog := logger.With().Str("component", "ReconcileUC").Logger()
	return &reconcileUC{
		sessions:    sessions,
		remote:      remote,
		audit:       audit,
		defaultLang: defaultLang,
		inactivity:  inactivity,
		probeDelay:  probeDelay,
		log:         &ucLog,
		now:         time.Now,
		schedule:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

func (r *reconcileUC) Run(ctx context.Context) (*ReconcileResult, error) {
	// Step 1: inactivity check. Terminal when it fires; the remote store
	// is never consulted for a session the user walked away from.
	if last, ok := r.sessions.LastActivity(ctx); ok && r.now().Sub(last) > r.inactivity {
		if err := r.sessions.Clear(ctx); err != nil {
			return nil, err
		}
		id, err := r.sessions.GetOrCreateID(ctx)
		if err != nil {
			return nil, err
		}
		metrics.IncSessionRotation("inactivity")
		metrics.IncReconcileOutcome(string(SourceRotated))
		r.audit.LogEvent(ctx, "session_rotated", map[string]any{"cause": "inactivity"})
		r.log.Info().Str("session_id", id).Msg("session rotated after inactivity")
		r.scheduleStatusProbe(id)
		return &ReconcileResult{Source: SourceRotated, SessionID: id, Messages: []model.Message{}}, nil
	}

	id, err := r.sessions.GetOrCreateID(ctx)
	if err != nil {
		return nil, err
	}

	// Step 2: remote restore attempt. Failures fall through; they never
	// clear local data.
	if messages, ok := r.tryRemoteRestore(ctx, id); ok {
		if err := r.sessions.Persist(ctx, messages); err != nil {
			return nil, err
		}
		metrics.IncReconcileOutcome(string(SourceRemote))
		r.audit.LogEvent(ctx, "session_restored", map[string]any{
			"restore_source": "remote",
			"remote_count":   len(messages),
		})
		r.scheduleStatusProbe(id)
		return &ReconcileResult{Source: SourceRemote, SessionID: id, Messages: messages}, nil
	}

	// Step 3: local fallback.
	local := r.sessions.Load(ctx)
	source := SourceLocal
	if len(local) == 0 {
		source = SourceEmpty
	}
	metrics.IncReconcileOutcome(string(source))
	r.scheduleStatusProbe(id)
	return &ReconcileResult{Source: source, SessionID: id, Messages: local}, nil
}

func (r *reconcileUC) tryRemoteRestore(ctx context.Context, sessionID string) ([]model.Message, bool) {
	status, err := r.remote.SessionStatus(ctx, sessionID)
	if err != nil {
		r.log.Debug().Err(err).Msg("remote status unavailable, using local fallback")
		return nil, false
	}
	if !status.Active {
		return nil, false
	}
	history, err := r.remote.SessionExport(ctx, sessionID)
	if err != nil {
		r.log.Debug().Err(err).Msg("remote export unavailable, using local fallback")
		return nil, false
	}
	if len(history) == 0 {
		return nil, false
	}
	messages := make([]model.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, r.mapRemote(m))
	}
	return messages, true
}

func (r *reconcileUC) mapRemote(m adapter.RemoteMessage) model.Message {
	role := model.RoleBot
	if m.Role == "user" {
		role = model.RoleUser
	}
	lang := model.LangCode(m.Language)
	if lang == "" {
		lang = r.defaultLang
	}
	emotion := m.Emotion
	if emotion == "" {
		emotion = model.EmotionNeutral
	}
	return model.Message{
		Role:      role,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Language:  lang,
		Emotion:   emotion,
	}
}

// Step 4: deferred status re-check, telemetry only. Whatever it learns
// never retroactively invalidates the displayed conversation.
func (r *reconcileUC) scheduleStatusProbe(sessionID string) {
	r.schedule(r.probeDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := r.remote.SessionStatus(ctx, sessionID)
		if err != nil {
			r.log.Debug().Err(err).Msg("deferred status probe failed")
			return
		}
		r.audit.LogEvent(ctx, "status_probe", map[string]any{"active": status.Active})
	})
}
