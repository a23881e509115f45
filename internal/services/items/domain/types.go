// Package domain holds the items service contracts
package domain

import (
	"time"

	"cintel/internal/core/fingerprint"
)

// ListInput filters the window listing
type ListInput struct {
	// Since and Until bound PublishedAt, inclusive on both ends
	Since time.Time
	Until time.Time

	// Projects restricts to the named projects when non-empty
	Projects []string

	// Limit caps the result, 0 means the service hard limit
	Limit int
}

// CachedFingerprint is one fingerprint cache row
type CachedFingerprint struct {
	ContentHash string
	FP          fingerprint.Fingerprint
}
