//go:build !integration

package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/config"
	"mentivio-widget/internal/crisis"
	"mentivio-widget/internal/domain"
	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/adapter"
	ports "mentivio-widget/internal/domain/ports/storage"
	"mentivio-widget/internal/infra/i18n"
	istorage "mentivio-widget/internal/infra/storage"
	"mentivio-widget/internal/usecase"
)

// stubRemote answers every endpoint with a canned success.
type stubRemote struct {
	mu      sync.Mutex
	cleared []string
}

func (s *stubRemote) SessionStatus(context.Context, string) (adapter.SessionStatus, error) {
	return adapter.SessionStatus{Active: false}, nil
}

func (s *stubRemote) SessionExport(context.Context, string) ([]adapter.RemoteMessage, error) {
	return nil, nil
}

func (s *stubRemote) SessionClear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, sessionID)
	return nil
}

func (s *stubRemote) Chat(_ context.Context, req adapter.ChatRequest) (adapter.ChatReply, error) {
	return adapter.ChatReply{Response: "I hear you", Emotion: model.EmotionNeutral, SessionID: req.SessionID}, nil
}

func (s *stubRemote) ComplianceStatus(context.Context) (adapter.ComplianceStatus, error) {
	return adapter.ComplianceStatus{HIPAACompliant: true, GDPRCompliant: true, AuditLogging: true}, nil
}

func (s *stubRemote) ReportCrisis(context.Context, adapter.CrisisReport) error { return nil }

// testFactory is the real wiring over in-memory backends: the persistent
// scope is one shared MemoryBackend, the ephemeral scope a fresh one per
// build.
type testFactory struct {
	remote     adapter.RemoteBackend
	tr         *i18n.Translator
	logger     *zerolog.Logger
	persistent *istorage.MemoryBackend
	builds     int
}

func (f *testFactory) Build(_ context.Context, anonymous bool) (*Components, error) {
	f.builds++
	var backend ports.Backend = f.persistent
	if anonymous {
		backend = istorage.NewMemoryBackend()
	}
	sessions := istorage.NewSessionRepo(backend, f.logger)
	auditLog := istorage.NewAuditRepo(backend, f.logger)
	consents := istorage.NewConsentRepo(backend)
	crisisLog := istorage.NewCrisisRepo(istorage.NewMemoryBackend())

	privacy := config.PrivacyConfig{
		MessageRetentionDays: 30,
		AuditRetentionDays:   90,
		SweepInterval:        time.Hour,
		AuditLogging:         true,
	}
	audit := usecase.NewAuditUseCase(sessions, auditLog, consents, backend, f.remote, anonymous, privacy, f.logger)
	return &Components{
		Backend:   backend,
		Sessions:  sessions,
		Consents:  consents,
		CrisisLog: crisisLog,
		Audit:     audit,
		Consent:   usecase.NewConsentUseCase(consents, audit, anonymous, f.logger),
		Reconcile: usecase.NewReconcileUseCase(sessions, f.remote, audit, model.LangEnglish, 30*time.Minute, time.Hour, f.logger),
		Pipeline:  usecase.NewPipelineUseCase(sessions, f.remote, crisis.NewDetector(), crisisLog, audit, f.tr, model.LangEnglish, anonymous, 15, false, f.logger),
	}, nil
}

func newTestFacade(t *testing.T) (*WidgetFacade, *testFactory, *stubRemote) {
	t.Helper()
	logger := zerolog.Nop()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	remote := &stubRemote{}
	factory := &testFactory{
		remote:     remote,
		tr:         tr,
		logger:     &logger,
		persistent: istorage.NewMemoryBackend(),
	}
	facade, err := NewWidgetFacade(context.Background(), factory, remote, tr, model.LangEnglish, false, &logger)
	if err != nil {
		t.Fatalf("NewWidgetFacade: %v", err)
	}
	return facade, factory, remote
}

func acceptConsent(t *testing.T, facade *WidgetFacade) {
	t.Helper()
	if err := facade.RecordConsent(context.Background(), true, false, false); err != nil {
		t.Fatalf("RecordConsent: %v", err)
	}
}

func TestSendRequiresConsent(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newTestFacade(t)

	if _, err := facade.Send(ctx, "hello"); !errors.Is(err, domain.ErrConsentRequired) {
		t.Fatalf("pre-consent send err = %v, want ErrConsentRequired", err)
	}

	acceptConsent(t, facade)
	if _, err := facade.Send(ctx, "hello"); err != nil {
		t.Fatalf("Send after consent: %v", err)
	}
}

func TestHookSwapDuringCrisisSends(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newTestFacade(t)
	acceptConsent(t, facade)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				facade.SetSurfaceHooks(usecase.Hooks{LockInput: func() {}})
				facade.SetSurfaceHooks(usecase.Hooks{})
			}
		}
	}()

	for i := 0; i < 25; i++ {
		if _, err := facade.Send(ctx, "I want to kill myself"); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if err := facade.ConfirmCrisisResolved(ctx); err != nil {
			t.Fatalf("ConfirmCrisisResolved: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestStartConsentGate(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newTestFacade(t)

	res, err := facade.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !res.ConsentRequired {
		t.Fatal("first start must require consent")
	}
	if res.ConsentPrompt == "" || res.Policy == "" {
		t.Fatal("consent gate missing prompt or policy text")
	}
	if res.Session != nil {
		t.Fatal("no session work before consent")
	}

	acceptConsent(t, facade)
	res, err = facade.Start(ctx)
	if err != nil {
		t.Fatalf("Start after consent: %v", err)
	}
	if res.ConsentRequired {
		t.Fatal("consent gate did not clear")
	}
	if res.Greeting == "" || res.Session == nil {
		t.Fatalf("started result incomplete: %+v", res)
	}
	if res.Session.Source != usecase.SourceEmpty {
		t.Fatalf("fresh session source = %s", res.Session.Source)
	}
}

func TestCrisisLockAndUnlock(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newTestFacade(t)
	acceptConsent(t, facade)
	if _, err := facade.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	out, err := facade.Send(ctx, "I want to kill myself")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.Crisis == nil || out.Crisis.Tier != model.TierImmediate {
		t.Fatalf("crisis = %+v, want immediate", out.Crisis)
	}
	if !facade.InputLocked() {
		t.Fatal("input not locked after immediate crisis")
	}

	if _, err := facade.Send(ctx, "hello?"); !errors.Is(err, domain.ErrInputLocked) {
		t.Fatalf("locked send err = %v, want ErrInputLocked", err)
	}

	// The urgent unlock path does not fit an immediate lock.
	if err := facade.ContinueAfterWarning(ctx); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("wrong-tier unlock err = %v", err)
	}

	if err := facade.ConfirmCrisisResolved(ctx); err != nil {
		t.Fatalf("ConfirmCrisisResolved: %v", err)
	}
	if facade.InputLocked() {
		t.Fatal("input still locked after confirmation")
	}
	if _, err := facade.Send(ctx, "thank you, I called"); err != nil {
		t.Fatalf("Send after unlock: %v", err)
	}
}

func TestUrgentContinueUnlocks(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newTestFacade(t)
	acceptConsent(t, facade)

	out, err := facade.Send(ctx, "I keep wanting to hurt myself")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.Crisis == nil || out.Crisis.Tier != model.TierUrgent {
		t.Fatalf("crisis = %+v, want urgent", out.Crisis)
	}
	if !facade.InputLocked() {
		t.Fatal("input not locked after urgent warning")
	}
	if err := facade.ContinueAfterWarning(ctx); err != nil {
		t.Fatalf("ContinueAfterWarning: %v", err)
	}
	if facade.InputLocked() {
		t.Fatal("input still locked after continue")
	}
}

func TestClearHistoryRotatesSession(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newTestFacade(t)
	acceptConsent(t, facade)

	if _, err := facade.Send(ctx, "remember this"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	comps := facade.components()
	oldID, ok := comps.Sessions.CurrentID(ctx)
	if !ok {
		t.Fatal("no session after send")
	}

	notice, err := facade.ClearHistory(ctx)
	if err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if notice == "" {
		t.Fatal("no user-facing notice returned")
	}
	newID, ok := comps.Sessions.CurrentID(ctx)
	if !ok || newID == oldID {
		t.Fatalf("session not rotated: old=%s new=%s", oldID, newID)
	}
	if got := comps.Sessions.Load(ctx); len(got) != 0 {
		t.Fatalf("history survived clear: %+v", got)
	}
}

func TestSetAnonymousModePurgesPersistentScope(t *testing.T) {
	ctx := context.Background()
	facade, factory, _ := newTestFacade(t)
	acceptConsent(t, facade)
	if _, err := facade.Send(ctx, "sensitive note"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := facade.SetAnonymousMode(ctx, true); err != nil {
		t.Fatalf("SetAnonymousMode: %v", err)
	}
	if !facade.Anonymous() {
		t.Fatal("facade not in anonymous mode")
	}

	// The persistent scope was purged, not migrated.
	persistentSessions := istorage.NewSessionRepo(factory.persistent, factory.logger)
	if got := persistentSessions.Load(ctx); len(got) != 0 {
		t.Fatalf("persistent scope kept messages: %+v", got)
	}
	if _, ok := persistentSessions.CurrentID(ctx); ok {
		t.Fatal("persistent scope kept its session id")
	}

	// The new scope starts empty with its own session.
	comps := facade.components()
	if _, ok := comps.Sessions.CurrentID(ctx); !ok {
		t.Fatal("ephemeral scope has no session id")
	}
	if got := comps.Sessions.Load(ctx); len(got) != 0 {
		t.Fatalf("ephemeral scope inherited messages: %+v", got)
	}

	// Toggling to the current mode is a no-op.
	builds := factory.builds
	if err := facade.SetAnonymousMode(ctx, true); err != nil {
		t.Fatalf("repeated SetAnonymousMode: %v", err)
	}
	if factory.builds != builds {
		t.Fatal("no-op toggle rebuilt the components")
	}
}

func TestDeleteAllData(t *testing.T) {
	ctx := context.Background()
	facade, _, remote := newTestFacade(t)
	acceptConsent(t, facade)
	if _, err := facade.Send(ctx, "I want to kill myself"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !facade.InputLocked() {
		t.Fatal("expected locked input before deletion")
	}

	restart, err := facade.DeleteAllData(ctx)
	if err != nil {
		t.Fatalf("DeleteAllData: %v", err)
	}
	if !restart {
		t.Fatal("deletion must demand a restart")
	}
	if facade.InputLocked() {
		t.Fatal("deletion should release the input lock")
	}
	comps := facade.components()
	if got := comps.Sessions.Load(ctx); len(got) != 0 {
		t.Fatalf("messages survived deletion: %+v", got)
	}
	remote.mu.Lock()
	cleared := len(remote.cleared)
	remote.mu.Unlock()
	if cleared == 0 {
		t.Fatal("remote session not cleared during deletion")
	}
}
