// File: internal/usecase/consent_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/repository"
)

// Compile-time check
var _ ConsentUseCase = (*consentUC)(nil)

type ConsentUseCase interface {
	// Current returns the stored consent record, if any. A load failure
	// reads as "no consent given".
	Current(ctx context.Context) (*model.ConsentRecord, bool)
	// Required reports whether the consent prompt must be shown.
	Required(ctx context.Context) bool
	// Record stores the user's choices. Crisis escalation is hard-wired
	// on by the record constructor; there is no way to opt out of it.
	Record(ctx context.Context, accepted, analyticsOptIn, localStorageOptIn bool) (*model.ConsentRecord, error)
}

type consentUC struct {
	consents  repository.ConsentRepository
	audit     AuditUseCase
	anonymous bool
	log       *zerolog.Logger
}

func NewConsentUseCase(consents repository.ConsentRepository, audit AuditUseCase, anonymous bool, logger *zerolog.Logger) *consentUC {
	ucLog := logger.With().Str("component", "ConsentUC").Logger()
	return &consentUC{consents: consents, audit: audit, anonymous: anonymous, log: &ucLog}
}

func (c *consentUC) Current(ctx context.Context) (*model.ConsentRecord, bool) {
	return c.consents.Load(ctx)
}

func (c *consentUC) Required(ctx context.Context) bool {
	rec, ok := c.consents.Load(ctx)
	return !ok || !rec.Accepted
}

func (c *consentUC) Record(ctx context.Context, accepted, analyticsOptIn, localStorageOptIn bool) (*model.ConsentRecord, error) {
	rec := model.NewConsentRecord(accepted, analyticsOptIn, localStorageOptIn, c.anonymous)
	if err := c.consents.Save(ctx, rec); err != nil {
		return nil, err
	}
	c.audit.LogEvent(ctx, "consent_recorded", map[string]any{
		"accepted":             rec.Accepted,
		"analytics_opt_in":     rec.AnalyticsOptIn,
		"local_storage_opt_in": rec.LocalStorageOptIn,
		"crisis_escalation":    rec.CrisisEscalation,
	})
	c.log.Info().Bool("accepted", accepted).Msg("consent recorded")
	return rec, nil
}
