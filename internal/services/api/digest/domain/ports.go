package domain

import "context"

// ReaderPort serves the digest read endpoints
type ReaderPort interface {
	// List returns the ranked clusters of the current snapshot for mode
	List(ctx context.Context, mode string, limit int) (ListOutput, error)

	// Get returns one cluster with its members hydrated
	Get(ctx context.Context, mode, id string) (ClusterDetail, error)
}
