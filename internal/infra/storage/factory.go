package storage

import (
	"errors"

	ports "mentivio-widget/internal/domain/ports/storage"
)

var ErrMissingRedisClient = errors.New("persistent scope requires a redis client")

// Select picks the backend implementation for the requested scope. The
// choice is made once at construction; components never reach through to
// the other scope.
func Select(scope ports.Scope, client RedisClient, prefix string) (ports.Backend, error) {
	switch scope {
	case ports.ScopeEphemeral:
		return NewMemoryBackend(), nil
	case ports.ScopePersistent:
		if client == nil {
			return nil, ErrMissingRedisClient
		}
		return NewRedisBackend(client, prefix), nil
	default:
		return nil, errors.New("unknown storage scope")
	}
}
