package profile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ben-ranford/d7audit/internal/report"
)

// ProfileModules profiles each target on a bounded pool. Records come back
// in target order regardless of completion order.
func ProfileModules(ctx context.Context, targets []ModuleTarget, opts Options) ([]report.ModuleRecord, error) {
	return runOrdered(ctx, targets, opts.Workers, func(target ModuleTarget) report.ModuleRecord {
		return ProfileModule(target, opts)
	})
}

func ProfileThemes(ctx context.Context, targets []ThemeTarget, opts Options) ([]report.ThemeRecord, error) {
	return runOrdered(ctx, targets, opts.Workers, ProfileTheme)
}

func runOrdered[T, R any](ctx context.Context, targets []T, workers int, profile func(T) R) ([]R, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]R, len(targets))
	if len(targets) == 0 {
		return results, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workerLimit(workers, len(targets)))
	for i, target := range targets {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = profile(target)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func workerLimit(workers, units int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > units {
		workers = units
	}
	return workers
}
