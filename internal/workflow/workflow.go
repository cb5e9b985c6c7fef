// Package workflow runs a sequence of steps, undoing the completed ones when
// a step fails.
package workflow

import (
	"context"
	"log/slog"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
)

type Workflow struct {
	steps []Step
}

// Execute runs the steps in order. When a step fails, the failed step and
// every step before it are compensated in reverse order. Compensations run
// even if ctx is canceled, an interrupted publish must not leave half written
// state behind.
func (w *Workflow) Execute(ctx context.Context) error {
	for idx, step := range w.steps {
		stepCtx := slogx.WithAttrs(ctx, slog.String("step", step.Name()))

		slog.DebugContext(stepCtx, "executing step")

		executionErr := step.Execute(stepCtx)
		if executionErr == nil {
			continue
		}

		slog.DebugContext(stepCtx, "step failed, compensating", slogx.Error(executionErr))

		if compensationErrs := w.compensate(context.WithoutCancel(ctx), idx); compensationErrs != nil {
			return errors.WithStack(NewCompensationError(step.Name(), executionErr, compensationErrs...))
		}

		return errors.Wrapf(executionErr, "step '%s' failed", step.Name())
	}

	return nil
}

func (w *Workflow) compensate(ctx context.Context, fromIndex int) []error {
	errs := make([]error, 0)
	for idx := fromIndex; idx >= 0; idx -= 1 {
		step := w.steps[idx]

		if err := step.Compensate(ctx); err != nil {
			slog.WarnContext(ctx, "could not compensate step", slog.String("step", step.Name()), slogx.Error(err))
			errs = append(errs, errors.Wrapf(err, "step '%s'", step.Name()))
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func New(steps ...Step) *Workflow {
	return &Workflow{steps: steps}
}
