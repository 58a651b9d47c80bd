package finishing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/errors/k8serrors"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	k8srun "github.com/snpflow/snpflow/pkg/domain/run/k8s"
)

// initial value for task
func Seed() domain.RunCursor {
	return domain.RunCursor{
		Debounce: 30 * time.Second,
		Status: []domain.RunStatus{
			domain.Completing, domain.Aborting,
		},
	}
}

// Task for finishing loop.
//
// Captures the exit of a stopped run's Job, removes the Job, and settles
// the run as done or failed.
func Task(
	irun kdbrun.Interface,
	ik8s k8srun.Interface,
) recurring.Task[domain.RunCursor] {
	return func(ctx context.Context, value domain.RunCursor) (domain.RunCursor, bool, error) {
		nextCursor, statusChanged, err := irun.PickAndSetStatus(
			ctx, value,
			func(targetRun domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				var nextState domain.RunStatus
				switch targetRun.Status {
				case domain.Completing:
					nextState = domain.Done
				case domain.Aborting:
					nextState = domain.Failed
				default:
					return targetRun.Status, nil, fmt.Errorf(
						"unexpected run status: %s (run id: %s)",
						targetRun.Status, targetRun.Id,
					)
				}

				w, err := ik8s.FindWorker(ctx, targetRun.RunBody)
				if err != nil {
					if !k8serrors.AsMissingError(err) {
						return targetRun.Status, nil, err
					}
					// no Job is left for the run. Just settle it.
					return nextState, nil, nil
				}

				var exit *domain.RunExit
				if targetRun.Exit == nil {
					if e, ok := w.ExitCode(); ok {
						exit = &e
					}
				}

				if err := w.Close(); err != nil {
					return targetRun.Status, nil, err
				}

				return nextState, exit, nil
			},
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}

		cursorMoved := !value.Equal(nextCursor)
		return nextCursor, statusChanged || cursorMoved, err
	}
}
