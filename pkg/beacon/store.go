// store.go defines the optional key/value persistence surface.

package beacon

import "context"

// Storage keys used by the client. A Store implementation may namespace them
// further (the redis store prefixes them per app id).
const (
	// QueueStoreKey holds the serialized outgoing queue snapshot.
	QueueStoreKey = "beacon:queue"

	// SessionStoreKey holds the process session id within one session.
	SessionStoreKey = "beacon:session"
)

// Store is a best-effort key/value store used to carry the outgoing queue
// and the session id across reloads. It is never authoritative: every
// failure is swallowed by the caller, and a missing or corrupt value simply
// means starting empty.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
