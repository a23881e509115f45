package domain

import "context"

// RunnerPort executes ingest passes
type RunnerPort interface {
	// RunOnce pulls every configured source once and upserts the results
	RunOnce(ctx context.Context) (Report, error)
}
