package saga

import (
	"context"

	"github.com/sourcegraph/conc"
)

// SettleAll runs every fn concurrently and waits until all have settled.
// One fn failing never prevents another from running to completion. The
// returned slice holds each fn's error at its own index; callers doing
// best-effort cleanup typically log them and move on.
func SettleAll(ctx context.Context, fns ...func(ctx context.Context) error) []error {
	errs := make([]error, len(fns))

	var wg conc.WaitGroup
	for i, fn := range fns {
		i, fn := i, fn
		wg.Go(func() {
			errs[i] = fn(ctx)
		})
	}
	wg.Wait()

	return errs
}
