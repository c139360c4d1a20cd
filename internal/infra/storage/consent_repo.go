package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/repository"
	ports "mentivio-widget/internal/domain/ports/storage"
)

var _ repository.ConsentRepository = (*ConsentRepo)(nil)

type ConsentRepo struct {
	backend ports.Backend
}

func NewConsentRepo(backend ports.Backend) *ConsentRepo {
	return &ConsentRepo{backend: backend}
}

// Load returns (nil, false) on any read or parse failure: a consent
// record that cannot be read means the prompt must be shown again.
func (c *ConsentRepo) Load(ctx context.Context) (*model.ConsentRecord, bool) {
	raw, ok, err := c.backend.Get(ctx, keyUserConsent)
	if err != nil || !ok {
		return nil, false
	}
	var rec model.ConsentRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (c *ConsentRepo) Save(ctx context.Context, record *model.ConsentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal consent: %w", err)
	}
	if err := c.backend.Set(ctx, keyUserConsent, string(data)); err != nil {
		return fmt.Errorf("store consent: %w", err)
	}
	return nil
}

func (c *ConsentRepo) Reset(ctx context.Context) error {
	return c.backend.Remove(ctx, keyUserConsent)
}
