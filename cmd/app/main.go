// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/application"
	"mentivio-widget/internal/config"
	"mentivio-widget/internal/crisis"
	"mentivio-widget/internal/domain/model"
	ports "mentivio-widget/internal/domain/ports/storage"
	"mentivio-widget/internal/infra/backend"
	"mentivio-widget/internal/infra/i18n"
	"mentivio-widget/internal/infra/logging"
	"mentivio-widget/internal/infra/metrics"
	"mentivio-widget/internal/infra/sched"
	"mentivio-widget/internal/infra/storage"
	"mentivio-widget/internal/infra/web"
	"mentivio-widget/internal/usecase"
)

// scopeFactory builds a scope-dependent component bundle. The redis
// client is created lazily so anonymous-only runs never dial redis.
type scopeFactory struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	tr       *i18n.Translator
	detector *crisis.Detector
	remote   *backend.Client
	redis    storage.RedisClient
}

func (f *scopeFactory) Build(ctx context.Context, anonymous bool) (*application.Components, error) {
	scope := ports.ScopePersistent
	if anonymous {
		scope = ports.ScopeEphemeral
	}
	if scope == ports.ScopePersistent && f.redis == nil {
		client, err := storage.NewRedisClient(ctx, &f.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		f.redis = client
	}
	active, err := storage.Select(scope, f.redis, f.cfg.Redis.Prefix)
	if err != nil {
		return nil, err
	}

	sessions := storage.NewSessionRepo(active, f.logger)
	consents := storage.NewConsentRepo(active)
	auditLog := storage.NewAuditRepo(active, f.logger)
	// Crisis snippets stay out of persistent storage regardless of scope.
	crisisLog := storage.NewCrisisRepo(storage.NewMemoryBackend())

	lang := model.LangCode(f.cfg.Widget.Language)
	auditUC := usecase.NewAuditUseCase(sessions, auditLog, consents, active, f.remote, anonymous, f.cfg.Privacy, f.logger)
	consentUC := usecase.NewConsentUseCase(consents, auditUC, anonymous, f.logger)
	reconcileUC := usecase.NewReconcileUseCase(sessions, f.remote, auditUC, lang,
		f.cfg.Session.InactivityTimeout, f.cfg.Backend.ProbeDelay, f.logger)
	pipelineUC := usecase.NewPipelineUseCase(sessions, f.remote, f.detector, crisisLog, auditUC,
		f.tr, lang, anonymous, f.cfg.Session.ContextWindow, f.cfg.Runtime.Dev, f.logger)

	return &application.Components{
		Backend:   active,
		Sessions:  sessions,
		Consents:  consents,
		CrisisLog: crisisLog,
		Audit:     auditUC,
		Consent:   consentUC,
		Reconcile: reconcileUC,
		Pipeline:  pipelineUC,
	}, nil
}

// facadeAudit delegates to whatever audit use case the facade currently
// holds, so sweeps keep working across anonymity toggles.
type facadeAudit struct {
	facade *application.WidgetFacade
}

func (f facadeAudit) LogEvent(ctx context.Context, event string, details map[string]any) {
	f.facade.Audit().LogEvent(ctx, event, details)
}
func (f facadeAudit) SetEnabled(enabled bool) { f.facade.Audit().SetEnabled(enabled) }
func (f facadeAudit) Export(ctx context.Context) (*usecase.ExportArtifact, error) {
	return f.facade.Audit().Export(ctx)
}
func (f facadeAudit) DeleteAll(ctx context.Context) error { return f.facade.Audit().DeleteAll(ctx) }
func (f facadeAudit) SweepMessages(ctx context.Context) (int, error) {
	return f.facade.Audit().SweepMessages(ctx)
}
func (f facadeAudit) SweepAudit(ctx context.Context) (int, error) {
	return f.facade.Audit().SweepAudit(ctx)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted content)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- i18n ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Widget.Language)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Remote backend ----
	remote := backend.NewClient(&cfg.Backend, logger)

	// ---- Engine ----
	factory := &scopeFactory{
		cfg:      cfg,
		logger:   logger,
		tr:       tr,
		detector: crisis.NewDetector(),
		remote:   remote,
	}
	facade, err := application.NewWidgetFacade(ctx, factory, remote, tr,
		model.LangCode(cfg.Widget.Language), cfg.Widget.Anonymous, logger)
	if err != nil {
		log.Fatalf("widget: %v", err)
	}

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Retention worker ----
	// The facade rebuilds components on an anonymity toggle; the worker
	// always sweeps through the facade's current audit use case.
	worker := sched.NewRetentionWorker(cfg.Privacy.SweepInterval, facadeAudit{facade}, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Ops server ----
	srv := web.NewServer(facade, remote, cfg.Ops.APIKey, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Ops.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Initial reconcile ----
	start, err := facade.Start(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("initial reconcile failed")
	} else if start.ConsentRequired {
		logger.Info().Msg("waiting for consent before restoring conversation")
	} else {
		logger.Info().
			Str("source", string(start.Session.Source)).
			Str("session_id", start.Session.SessionID).
			Int("messages", len(start.Session.Messages)).
			Msg("conversation ready")
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	_ = server.Close()
	cancel()
}
