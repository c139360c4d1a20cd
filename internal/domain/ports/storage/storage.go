package storage

import "context"

// Scope selects which backend a session lives in. It is chosen once per
// construction from the anonymity toggle and never mixed mid-session.
type Scope string

const (
	// ScopePersistent survives restarts of the embedding surface.
	ScopePersistent Scope = "persistent"
	// ScopeEphemeral is cleared when the process (tab) ends.
	ScopeEphemeral Scope = "ephemeral"
)

// Backend is the key-value contract both scopes implement. Values are
// JSON-serializable strings; typed access lives in the repositories, no
// other component touches raw keys.
type Backend interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key owned by this backend's namespace.
	Clear(ctx context.Context) error
	Scope() Scope
}
