package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/usecase"
)

// RetentionWorker runs the message and audit sweeps once at startup and
// then on a fixed interval. Both sweeps no-op in anonymous mode, which
// the use case enforces.
type RetentionWorker struct {
	interval time.Duration
	audit    usecase.AuditUseCase
	log      *zerolog.Logger
}

func NewRetentionWorker(interval time.Duration, audit usecase.AuditUseCase, logger *zerolog.Logger) *RetentionWorker {
	wLog := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{interval: interval, audit: audit, log: &wLog}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting retention worker")
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	if n, err := w.audit.SweepMessages(ctx); err != nil {
		w.log.Error().Err(err).Msg("message retention sweep failed")
	} else if n > 0 {
		w.log.Info().Int("dropped", n).Msg("expired messages pruned")
	}
	if n, err := w.audit.SweepAudit(ctx); err != nil {
		w.log.Error().Err(err).Msg("audit retention sweep failed")
	} else if n > 0 {
		w.log.Info().Int("dropped", n).Msg("expired audit entries pruned")
	}
}
