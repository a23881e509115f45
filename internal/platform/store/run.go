package store

import "context"

// RunInRun wraps ctx with a pipeline run id and calls fn inside the provided TxRunner
// repos inside fn see the run id via RunID(ctx)
func RunInRun(ctx context.Context, tx TxRunner, runID string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithRunID(ctx, runID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
