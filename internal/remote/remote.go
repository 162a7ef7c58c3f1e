// Package remote defines the multi-device synchronization backend contract
// and its production implementations.
package remote

import (
	"context"

	"github.com/mirrorday/mirrorday/internal/models"
)

// Backend is the remote reminder store shared by every device. Errors are
// classified through apperr: network-class failures map to
// KindNetworkUnavailable, everything else remote-side to KindBackend.
type Backend interface {
	// FetchAll returns every reminder known to the backend, with RemoteRef set.
	FetchAll(ctx context.Context) ([]models.Reminder, error)

	// Save creates or overwrites the remote record and returns its reference.
	Save(ctx context.Context, r models.Reminder) (string, error)

	// Delete removes the remote record by reference.
	Delete(ctx context.Context, ref string) error
}

// Notifier delivers payload-free "something changed remotely" signals. The
// store's only reaction to a signal is a fresh fetch-and-merge.
type Notifier interface {
	// Changes returns the signal stream. The channel closes when the
	// notifier shuts down.
	Changes() <-chan struct{}

	// Close tears down the subscription.
	Close() error
}
