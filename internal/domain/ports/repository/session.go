package repository

import (
	"context"
	"time"

	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/storage"
)

// SessionRepository owns the session identifier and the locally cached
// message log, reading and writing through the active storage backend.
type SessionRepository interface {
	// GetOrCreateID returns the existing session id, generating and
	// persisting a fresh one (with an empty log) if none exists.
	GetOrCreateID(ctx context.Context) (string, error)

	// CurrentID returns the stored id without creating one.
	CurrentID(ctx context.Context) (string, bool)

	// Persist overwrites the stored message log and refreshes the
	// last-activity timestamp. Idempotent for an unchanged list.
	Persist(ctx context.Context, messages []model.Message) error

	// Load returns the cached log; absent or unparsable data yields an
	// empty list, never an error the caller has to handle.
	Load(ctx context.Context) []model.Message

	// Clear removes id, log and activity timestamp. It does not create a
	// replacement session.
	Clear(ctx context.Context) error

	// LastActivity reports the stored activity timestamp, if any.
	LastActivity(ctx context.Context) (time.Time, bool)

	// Prune drops messages older than the cutoff from the persisted log
	// and reports how many were removed.
	Prune(ctx context.Context, olderThan time.Time) (int, error)

	Scope() storage.Scope
}
