package finishing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/snpflow/snpflow/cmd/loops/tasks/finishing"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/errors/k8serrors"
	kdbrunmock "github.com/snpflow/snpflow/pkg/domain/run/db/mock"
	k8srunmock "github.com/snpflow/snpflow/pkg/domain/run/k8s/mock"
	"github.com/snpflow/snpflow/pkg/domain/run/k8s/worker"
	workermock "github.com/snpflow/snpflow/pkg/domain/run/k8s/worker/mock"
)

func TestTask_Inside_of_PickAndSetStatus(t *testing.T) {

	newRun := func(status domain.RunStatus, exit *domain.RunExit) domain.Run {
		return domain.Run{
			RunBody: domain.RunBody{
				Id:         "run-1",
				CohortId:   "cohort-1",
				Chromosome: "chrX",
				Status:     status,
				WorkerName: "filter-run-run-1",
				Exit:       exit,
			},
			Cohort: domain.CohortBody{
				Id:      "cohort-1",
				Name:    "1kg-demo",
				VCFRoot: "datasets/1kg-demo",
			},
			OutputPath: "cohorts/cohort-1/variants/chrX.csv",
		}
	}

	type When struct {
		Run    domain.Run
		Worker func(t *testing.T, closed *bool) (worker.Worker, error)
	}

	type Then struct {
		Status domain.RunStatus
		Exit   *domain.RunExit
		Err    error

		WantClose bool
	}

	noWorker := func(t *testing.T, closed *bool) (worker.Worker, error) {
		return nil, k8serrors.NewMissing("job not found")
	}

	withWorker := func(exit *domain.RunExit, closeErr error) func(t *testing.T, closed *bool) (worker.Worker, error) {
		return func(t *testing.T, closed *bool) (worker.Worker, error) {
			w := workermock.New(t)
			w.Impl.ExitCode = func() (domain.RunExit, bool) {
				if exit == nil {
					return domain.RunExit{}, false
				}
				return *exit, true
			}
			w.Impl.Close = func() error {
				*closed = true
				return closeErr
			}
			return w, nil
		}
	}

	theory := func(when When, then Then) func(t *testing.T) {
		return func(t *testing.T) {
			ctx := context.Background()

			closed := false
			ik8s := k8srunmock.New(t)
			ik8s.Impl.FindWorker = func(ctx context.Context, r domain.RunBody) (worker.Worker, error) {
				if !r.Equal(&when.Run.RunBody) {
					t.Errorf("unexpected run body: %+v", r)
				}
				return when.Worker(t, &closed)
			}

			irun := kdbrunmock.NewRunInterface()
			irun.Impl.PickAndSetStatus = func(
				ctx context.Context, value domain.RunCursor,
				task func(domain.Run) (domain.RunStatus, *domain.RunExit, error),
			) (domain.RunCursor, bool, error) {
				status, exit, err := task(when.Run)

				if status != then.Status {
					t.Errorf("unexpected status: %s (expected: %s)", status, then.Status)
				}
				if (exit == nil) != (then.Exit == nil) ||
					(exit != nil && *exit != *then.Exit) {
					t.Errorf("unexpected exit: %+v (expected: %+v)", exit, then.Exit)
				}
				if !errors.Is(err, then.Err) {
					t.Errorf("unexpected error: %+v", err)
				}

				return value, false, nil
			}

			testee := finishing.Task(irun, ik8s)
			if _, _, err := testee(ctx, finishing.Seed()); err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}

			if closed != then.WantClose {
				t.Errorf("unexpected worker Close call: %v", closed)
			}
		}
	}

	t.Run("it settles a completing run without a Job as done", theory(
		When{Run: newRun(domain.Completing, nil), Worker: noWorker},
		Then{Status: domain.Done},
	))

	t.Run("it settles an aborting run without a Job as failed", theory(
		When{Run: newRun(domain.Aborting, nil), Worker: noWorker},
		Then{Status: domain.Failed},
	))

	t.Run("it captures the exit and removes the Job of a completing run", theory(
		When{
			Run:    newRun(domain.Completing, nil),
			Worker: withWorker(&domain.RunExit{Code: 0, Message: "Completed"}, nil),
		},
		Then{
			Status:    domain.Done,
			Exit:      &domain.RunExit{Code: 0, Message: "Completed"},
			WantClose: true,
		},
	))

	t.Run("it does not overwrite an already recorded exit", theory(
		When{
			Run:    newRun(domain.Aborting, &domain.RunExit{Code: 254, Message: "worker for the run is not found"}),
			Worker: withWorker(&domain.RunExit{Code: 1, Message: "Error"}, nil),
		},
		Then{Status: domain.Failed, WantClose: true},
	))

	{
		expectedErr := errors.New("fake error")
		t.Run("it keeps the run when the Job cannot be removed", theory(
			When{
				Run:    newRun(domain.Completing, nil),
				Worker: withWorker(nil, expectedErr),
			},
			Then{Status: domain.Completing, Err: expectedErr, WantClose: true},
		))

		t.Run("it keeps the run when finding its Job fails", theory(
			When{
				Run: newRun(domain.Aborting, nil),
				Worker: func(t *testing.T, closed *bool) (worker.Worker, error) {
					return nil, expectedErr
				},
			},
			Then{Status: domain.Aborting, Err: expectedErr},
		))
	}
}
