// Package domain holds the clusters service contracts
package domain

import (
	"time"

	"cintel/internal/core/intel"
)

// Snapshot is the persisted clustering state for one window mode
type Snapshot struct {
	// Mode is the window policy this snapshot belongs to
	Mode string

	// WindowStart and WindowEnd are the window the snapshot was built for
	WindowStart time.Time
	WindowEnd   time.Time

	// RunID identifies the digest run that produced the snapshot
	RunID string

	// Clusters are the ranked clusters, descending score
	Clusters []intel.Cluster

	// CreatedAt is when the snapshot committed
	CreatedAt time.Time
}
