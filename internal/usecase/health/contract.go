package health

import "context"

// IndexPinger checks vector index backend availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an external provider's availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// SnapshotChecker reports whether a snapshot has been published.
type SnapshotChecker interface {
	Ready() bool
}
