package initialize

import (
	"context"
	"errors"
	"io/fs"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/errors/k8serrors"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	k8srun "github.com/snpflow/snpflow/pkg/domain/run/k8s"
)

// initial value for task
func Seed() domain.RunCursor {
	return domain.RunCursor{
		Status: []domain.RunStatus{domain.Waiting},
	}
}

// Task for initialize loop.
//
// Prepares waiting runs and sends them to ready: checks the VCF shard of
// the run is in place and the output directory exists.
//
// A waiting run whose shard is missing is sent to aborting with its exit
// recorded, instead of blocking the loop.
func Task(
	irun kdbrun.Interface,
	init k8srun.Interface,
) recurring.Task[domain.RunCursor] {
	return func(ctx context.Context, value domain.RunCursor) (domain.RunCursor, bool, error) {
		nextCursor, statusChanged, err := irun.PickAndSetStatus(
			ctx, value,
			func(targetRun domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				// a retried run may have its old Job left. Remove it first.
				if w, err := init.FindWorker(ctx, targetRun.RunBody); err == nil {
					if err := w.Close(); err != nil {
						return targetRun.Status, nil, err
					}
				} else if !k8serrors.AsMissingError(err) {
					return targetRun.Status, nil, err
				}

				if err := init.Initialize(ctx, targetRun); err != nil {
					if errors.Is(err, fs.ErrNotExist) {
						return domain.Aborting, &domain.RunExit{
							Code:    254,
							Message: "the VCF shard for the run is not found",
						}, nil
					}
					return targetRun.Status, nil, err
				}

				return domain.Ready, nil, nil
			},
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}

		cursorMoved := !value.Equal(nextCursor)
		return nextCursor, statusChanged || cursorMoved, err
	}
}
