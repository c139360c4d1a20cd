//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/config"
	"mentivio-widget/internal/domain"
	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/adapter"
	"mentivio-widget/internal/infra/storage"
)

// ---- Fakes ----

// fakeRemote lets each test script the remote backend per call.
type fakeRemote struct {
	mu       sync.Mutex
	statusFn func(sessionID string) (adapter.SessionStatus, error)
	exportFn func(sessionID string) ([]adapter.RemoteMessage, error)
	chatFn   func(req adapter.ChatRequest) (adapter.ChatReply, error)

	statusCalls int
	exportCalls int
	chatCalls   int
	cleared     []string
	reports     []adapter.CrisisReport
}

func (f *fakeRemote) SessionStatus(_ context.Context, sessionID string) (adapter.SessionStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	fn := f.statusFn
	f.mu.Unlock()
	if fn != nil {
		return fn(sessionID)
	}
	return adapter.SessionStatus{Active: false}, nil
}

func (f *fakeRemote) SessionExport(_ context.Context, sessionID string) ([]adapter.RemoteMessage, error) {
	f.mu.Lock()
	f.exportCalls++
	fn := f.exportFn
	f.mu.Unlock()
	if fn != nil {
		return fn(sessionID)
	}
	return nil, nil
}

func (f *fakeRemote) SessionClear(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, sessionID)
	return nil
}

func (f *fakeRemote) Chat(_ context.Context, req adapter.ChatRequest) (adapter.ChatReply, error) {
	f.mu.Lock()
	f.chatCalls++
	fn := f.chatFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return adapter.ChatReply{Response: "ok", Emotion: model.EmotionNeutral, SessionID: req.SessionID}, nil
}

func (f *fakeRemote) ComplianceStatus(context.Context) (adapter.ComplianceStatus, error) {
	return adapter.ComplianceStatus{HIPAACompliant: true, GDPRCompliant: true, AuditLogging: true}, nil
}

func (f *fakeRemote) ReportCrisis(_ context.Context, report adapter.CrisisReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeRemote) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}

func (f *fakeRemote) failAllRemote() {
	f.statusFn = func(string) (adapter.SessionStatus, error) {
		return adapter.SessionStatus{}, fmt.Errorf("dial: %w", domain.ErrRemoteUnavailable)
	}
	f.exportFn = func(string) ([]adapter.RemoteMessage, error) {
		return nil, fmt.Errorf("dial: %w", domain.ErrRemoteUnavailable)
	}
	f.chatFn = func(adapter.ChatRequest) (adapter.ChatReply, error) {
		return adapter.ChatReply{}, fmt.Errorf("dial: %w", domain.ErrRemoteUnavailable)
	}
}

// fakeLoc resolves every key to itself so copy assertions stay stable.
type fakeLoc struct{}

func (fakeLoc) T(key string, _ ...interface{}) string { return key }

// ---- Fixture wiring over the in-memory backend ----

type fixture struct {
	backend   *storage.MemoryBackend
	sessions  *storage.SessionRepo
	auditLog  *storage.AuditRepo
	consents  *storage.ConsentRepo
	crisisLog *storage.CrisisRepo
	remote    *fakeRemote
	audit     *auditUC
	logger    *zerolog.Logger
}

func newFixture(t *testing.T, anonymous bool) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	backend := storage.NewMemoryBackend()
	f := &fixture{
		backend:   backend,
		sessions:  storage.NewSessionRepo(backend, &logger),
		auditLog:  storage.NewAuditRepo(backend, &logger),
		consents:  storage.NewConsentRepo(backend),
		crisisLog: storage.NewCrisisRepo(storage.NewMemoryBackend()),
		remote:    &fakeRemote{},
		logger:    &logger,
	}
	f.audit = NewAuditUseCase(f.sessions, f.auditLog, f.consents, backend, f.remote, anonymous, config.PrivacyConfig{
		MessageRetentionDays: 30,
		AuditRetentionDays:   90,
		SweepInterval:        time.Hour,
		AuditLogging:         true,
	}, &logger)
	return f
}

func (f *fixture) auditEvents(ctx context.Context) []string {
	entries := f.auditLog.List(ctx)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Event)
	}
	return names
}

func hasEvent(events []string, name string) bool {
	for _, e := range events {
		if e == name {
			return true
		}
	}
	return false
}
