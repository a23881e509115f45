package fingerprint

import (
	"context"
	"runtime"
	"sync"

	"cintel/internal/core/intel"
)

// ExtractAll fingerprints items concurrently with at most workers goroutines
// output keeps input order; extraction is pure so no result depends on
// scheduling. Returns ctx.Err() when canceled mid batch
func ExtractAll(ctx context.Context, cfg Config, items []intel.Item, workers int) ([]Fingerprint, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cfg = cfg.WithDefaults()

	out := make([]Fingerprint, len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

loop:
	for i := range items {
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = Extract(cfg, items[i])
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
