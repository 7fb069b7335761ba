// Package saga runs multi-step operations against independent remote
// services with compensating actions in place of a transaction. A failed
// step triggers the compensations of every previously completed step, in
// reverse order, so the caller is left with no partial side effects.
package saga

import (
	"context"
	"fmt"
	"log"
)

// Step is one unit of work in a saga. Compensate undoes the work of a
// completed Do; it is nil for steps with no side effects worth undoing.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Run executes steps in order. On the first failure it runs the
// compensations of all completed steps in reverse order, best-effort, and
// returns the original step error. Compensation failures are logged and do
// not mask the step error. Steps are never retried; a step failure is
// terminal for the invocation.
func Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := step.Do(ctx); err != nil {
			compensate(ctx, steps[:i])
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

// compensate undoes completed steps, most recent first. Every compensation
// runs regardless of earlier compensation failures. Compensations must run
// even when the step failed due to context cancellation, so they get a
// context detached from the caller's cancellation.
func compensate(ctx context.Context, completed []Step) {
	ctx = context.WithoutCancel(ctx)
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Printf("saga: compensate %s: %v", step.Name, err)
		}
	}
}
