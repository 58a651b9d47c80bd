package runmanagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	"github.com/snpflow/snpflow/pkg/conn/k8s/cluster"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/errors/k8serrors"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	k8srun "github.com/snpflow/snpflow/pkg/domain/run/k8s"
)

// initial value for task
func Seed() domain.RunCursor {
	return domain.RunCursor{
		Status: []domain.RunStatus{
			domain.Ready, domain.Starting, domain.Running,
		},
		Debounce: 30 * time.Second,
	}
}

// Task for run management loop.
//
// Spawns the filter Job of a ready run, and traces the Job of a started
// run to move the run along its lifecycle.
func Task(
	irun kdbrun.Interface,
	ik8s k8srun.Interface,
) recurring.Task[domain.RunCursor] {
	return func(ctx context.Context, value domain.RunCursor) (domain.RunCursor, bool, error) {
		nextCursor, statusChanged, err := irun.PickAndSetStatus(
			ctx, value,
			func(targetRun domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				w, err := ik8s.FindWorker(ctx, targetRun.RunBody)
				if err != nil {
					if !k8serrors.AsMissingError(err) {
						return targetRun.Status, nil, err
					}
					if targetRun.Status == domain.Ready {
						if _, err := ik8s.SpawnWorker(ctx, targetRun); err != nil && !k8serrors.AsConflict(err) {
							return targetRun.Status, nil, err
						}
						return domain.Starting, nil, nil
					}

					// the Job has gone without being observed to stop.
					return domain.Aborting, &domain.RunExit{
						Code:    254,
						Message: "worker for the run is not found",
					}, nil
				}

				var nextState domain.RunStatus
				switch s := w.JobStatus(ctx); s {
				case cluster.Pending:
					nextState = domain.Starting
				case cluster.Running:
					nextState = domain.Running
				case cluster.Succeeded:
					nextState = domain.Completing
				case cluster.Failed:
					nextState = domain.Aborting
				default:
					return targetRun.Status, nil, fmt.Errorf("unexpected worker status: %s", s)
				}

				// a ready run can only start. The rest follows at the next pick.
				if targetRun.Status == domain.Ready && nextState != domain.Aborting {
					nextState = domain.Starting
				}

				if nextState == targetRun.Status {
					return targetRun.Status, nil, nil
				}

				var exit *domain.RunExit
				if nextState == domain.Completing || nextState == domain.Aborting {
					if e, ok := w.ExitCode(); ok {
						exit = &e
					}
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
