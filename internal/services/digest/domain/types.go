// Package domain holds the digest service contracts
package domain

import "time"

// RunResult summarizes one digest run
type RunResult struct {
	RunID string
	Mode  string

	WindowStart time.Time
	WindowEnd   time.Time

	// Items is how many window items entered the pass
	Items int

	// Clusters is the snapshot size after the pass
	Clusters int

	// Created, Joined, Merges and Skipped mirror the clustering stats
	Created int
	Joined  int
	Merges  int
	Skipped int

	// Anomalies counts invariant violations observed during the pass
	Anomalies int

	// CacheHits and CacheMisses report fingerprint cache effectiveness
	CacheHits   int
	CacheMisses int

	// Embedded is how many items received a fresh embedding this run
	Embedded int

	Elapsed time.Duration
}
