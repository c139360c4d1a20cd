package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/domain"
	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/adapter"
	"mentivio-widget/internal/domain/ports/repository"
	"mentivio-widget/internal/domain/ports/storage"
	"mentivio-widget/internal/infra/i18n"
	"mentivio-widget/internal/infra/metrics"
	"mentivio-widget/internal/usecase"
)

// Components bundles everything that is scope-dependent: swap the bundle
// and the widget is running against the other storage backend.
type Components struct {
	Backend   storage.Backend
	Sessions  repository.SessionRepository
	Consents  repository.ConsentRepository
	CrisisLog repository.CrisisLogRepository
	Audit     usecase.AuditUseCase
	Consent   usecase.ConsentUseCase
	Reconcile usecase.ReconcileUseCase
	Pipeline  usecase.PipelineUseCase
}

// ScopeFactory builds a component bundle for one storage scope. The
// wiring layer implements it; the facade only swaps bundles.
type ScopeFactory interface {
	Build(ctx context.Context, anonymous bool) (*Components, error)
}

type StartResult struct {
	ConsentRequired bool
	ConsentPrompt   string
	Policy          string
	Greeting        string
	Session         *usecase.ReconcileResult
}

// WidgetFacade composes the use cases into the operations the embedding
// surface calls. It owns the input-lock state the crisis flow requires.
type WidgetFacade struct {
	factory ScopeFactory
	remote  adapter.RemoteBackend
	tr      *i18n.Translator
	lang    model.LangCode
	log     *zerolog.Logger

	mu          sync.Mutex
	comps       *Components
	anonymous   bool
	inputLocked bool
	lockedTier  model.Tier
	hooks       usecase.Hooks
}

func NewWidgetFacade(
	ctx context.Context,
	factory ScopeFactory,
	remote adapter.RemoteBackend,
	tr *i18n.Translator,
	lang model.LangCode,
	anonymous bool,
	logger *zerolog.Logger,
) (*WidgetFacade, error) {
	comps, err := factory.Build(ctx, anonymous)
	if err != nil {
		return nil, fmt.Errorf("build components: %w", err)
	}
	facLog := logger.With().Str("component", "WidgetFacade").Logger()
	w := &WidgetFacade{
		factory:   factory,
		remote:    remote,
		tr:        tr,
		lang:      lang,
		log:       &facLog,
		comps:     comps,
		anonymous: anonymous,
	}
	w.wireHooks()
	return w, nil
}

// SetSurfaceHooks registers the surface-owned callbacks (typing timer,
// emergency view rendering). Lock bookkeeping stays with the facade. The
// pipeline closures read the current hooks per invocation, so swapping
// them mid-send is safe.
func (w *WidgetFacade) SetSurfaceHooks(hooks usecase.Hooks) {
	w.mu.Lock()
	w.hooks = hooks
	w.mu.Unlock()
}

func (w *WidgetFacade) surfaceHooks() usecase.Hooks {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hooks
}

func (w *WidgetFacade) wireHooks() {
	w.comps.Pipeline.SetHooks(usecase.Hooks{
		ClearTyping: func() {
			if h := w.surfaceHooks(); h.ClearTyping != nil {
				h.ClearTyping()
			}
		},
		ShowEmergencyView: func(tier model.Tier, view usecase.EmergencyView) {
			if h := w.surfaceHooks(); h.ShowEmergencyView != nil {
				h.ShowEmergencyView(tier, view)
			}
		},
		LockInput: func() {
			w.mu.Lock()
			w.inputLocked = true
			h := w.hooks
			w.mu.Unlock()
			if h.LockInput != nil {
				h.LockInput()
			}
		},
	})
}

// Start gates on consent, then reconciles session state. Safe to call
// again after in-page navigation: reconciliation is idempotent.
func (w *WidgetFacade) Start(ctx context.Context) (*StartResult, error) {
	comps := w.components()
	if comps.Consent.Required(ctx) {
		return &StartResult{
			ConsentRequired: true,
			ConsentPrompt:   w.tr.T("consent_prompt"),
			Policy:          w.tr.Policy(),
		}, nil
	}

	// The audit-logging flag follows the remote compliance status; a
	// failed check keeps the configured default.
	if status, err := w.remote.ComplianceStatus(ctx); err == nil {
		comps.Audit.SetEnabled(status.AuditLogging)
	}

	session, err := comps.Reconcile.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &StartResult{
		Greeting: w.tr.T("greeting"),
		Session:  session,
	}, nil
}

func (w *WidgetFacade) RecordConsent(ctx context.Context, accepted, analyticsOptIn, localStorageOptIn bool) error {
	_, err := w.components().Consent.Record(ctx, accepted, analyticsOptIn, localStorageOptIn)
	return err
}

func (w *WidgetFacade) Send(ctx context.Context, text string) (*usecase.SendOutcome, error) {
	if w.components().Consent.Required(ctx) {
		return nil, domain.ErrConsentRequired
	}
	if w.InputLocked() {
		return nil, domain.ErrInputLocked
	}
	outcome, err := w.components().Pipeline.Send(ctx, text)
	if err != nil {
		return nil, err
	}
	if outcome.Crisis != nil && outcome.Crisis.InputLocked {
		w.mu.Lock()
		w.inputLocked = true
		w.lockedTier = outcome.Crisis.Tier
		w.mu.Unlock()
	}
	return outcome, nil
}

// ConfirmCrisisResolved unlocks after an Immediate-tier intervention,
// once the user confirms help was received.
func (w *WidgetFacade) ConfirmCrisisResolved(ctx context.Context) error {
	return w.unlock(ctx, model.TierImmediate, "crisis_help_confirmed")
}

// ContinueAfterWarning unlocks after an Urgent-tier warning, when the
// user chooses to continue the conversation.
func (w *WidgetFacade) ContinueAfterWarning(ctx context.Context) error {
	return w.unlock(ctx, model.TierUrgent, "crisis_warning_continued")
}

func (w *WidgetFacade) unlock(ctx context.Context, tier model.Tier, event string) error {
	w.mu.Lock()
	if !w.inputLocked || w.lockedTier != tier {
		w.mu.Unlock()
		return domain.ErrInvalidArgument
	}
	w.inputLocked = false
	w.lockedTier = model.TierNone
	w.mu.Unlock()
	w.components().Audit.LogEvent(ctx, event, nil)
	return nil
}

func (w *WidgetFacade) InputLocked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inputLocked
}

// ClearHistory rotates the session: clear-then-recreate, never
// interleaved with anything else the facade drives.
func (w *WidgetFacade) ClearHistory(ctx context.Context) (string, error) {
	comps := w.components()
	priorID, hadSession := comps.Sessions.CurrentID(ctx)
	if err := comps.Sessions.Clear(ctx); err != nil {
		return "", err
	}
	newID, err := comps.Sessions.GetOrCreateID(ctx)
	if err != nil {
		return "", err
	}
	if hadSession {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := w.remote.SessionClear(ctx, priorID); err != nil {
				w.log.Debug().Err(err).Msg("remote session clear failed")
			}
		}()
	}
	metrics.IncSessionRotation("clear_history")
	comps.Audit.LogEvent(ctx, "history_cleared", map[string]any{"new_session": newID})
	return w.tr.T("history_cleared"), nil
}

// DeleteAllData wipes everything and reports that the surface must do a
// full reload.
func (w *WidgetFacade) DeleteAllData(ctx context.Context) (restartRequired bool, err error) {
	if err := w.components().Audit.DeleteAll(ctx); err != nil {
		return false, err
	}
	w.mu.Lock()
	w.inputLocked = false
	w.lockedTier = model.TierNone
	w.mu.Unlock()
	return true, nil
}

func (w *WidgetFacade) Export(ctx context.Context) (*usecase.ExportArtifact, error) {
	return w.components().Audit.Export(ctx)
}

// SetAnonymousMode switches storage scope. Enabling it purges the
// persistent keys outright and starts a fresh ephemeral session; data is
// never migrated between scopes.
func (w *WidgetFacade) SetAnonymousMode(ctx context.Context, enabled bool) error {
	w.mu.Lock()
	if enabled == w.anonymous {
		w.mu.Unlock()
		return nil
	}
	current := w.comps
	w.mu.Unlock()

	if enabled {
		if err := current.Backend.Clear(ctx); err != nil {
			return fmt.Errorf("purge persistent scope: %w", err)
		}
	}
	comps, err := w.factory.Build(ctx, enabled)
	if err != nil {
		return fmt.Errorf("rebuild components: %w", err)
	}
	if _, err := comps.Sessions.GetOrCreateID(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	w.comps = comps
	w.anonymous = enabled
	w.mu.Unlock()
	w.wireHooks()

	metrics.IncSessionRotation("anonymity_toggle")
	comps.Audit.LogEvent(ctx, "anonymity_toggled", map[string]any{"anonymous": enabled})
	w.log.Info().Bool("anonymous", enabled).Msg("storage scope switched")
	return nil
}

func (w *WidgetFacade) Anonymous() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.anonymous
}

// Audit exposes the current audit use case for callers that must follow
// scope swaps (the retention worker).
func (w *WidgetFacade) Audit() usecase.AuditUseCase {
	return w.components().Audit
}

func (w *WidgetFacade) components() *Components {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.comps
}
