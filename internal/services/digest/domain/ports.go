package domain

import "context"

// RunnerPort executes digest runs
type RunnerPort interface {
	// Run executes one full pipeline pass for the given window mode
	Run(ctx context.Context, mode string) (RunResult, error)
}
