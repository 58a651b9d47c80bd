package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/conn/db/postgres/testenv"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/naming"
	kpgrun "github.com/snpflow/snpflow/pkg/domain/run/db/postgres"
)

// insert a cohort row so runs can reference it.
func seedCohort(ctx context.Context, t *testing.T, pool kpool.Pool, cohortId string) {
	t.Helper()
	if _, err := pool.Exec(
		ctx,
		`
		insert into "cohort" (
			"cohort_id", "name", "vcf_root", "sample_count",
			"biallelic_only", "min_maf", "max_missing_rate"
		)
		values ($1, $1, 'datasets/' || $1, 2, true, 0.05, 0.1)
		`,
		cohortId,
	); err != nil {
		t.Fatal(err)
	}
}

// insert a run row, with its debounce window already expired.
func seedRun(
	ctx context.Context, t *testing.T, pool kpool.Pool,
	runId string, cohortId string, chromosome string, status domain.RunStatus,
) {
	t.Helper()
	if _, err := pool.Exec(
		ctx,
		`
		insert into "run" (
			"run_id", "cohort_id", "chromosome", "status", "lifecycle_suspend_until"
		)
		values ($1, $2, $3, $4, now() - interval '1 hour')
		`,
		runId, cohortId, chromosome, string(status),
	); err != nil {
		t.Fatal(err)
	}
}

func getRunRow(
	ctx context.Context, t *testing.T, pool kpool.Pool, runId string,
) (status string, workerName string, exitCode *int16, exitMessage *string) {
	t.Helper()
	if err := pool.QueryRow(
		ctx,
		`
		select "status", "worker_name", "exit_code", "exit_message"
		from "run" where "run_id" = $1
		`,
		runId,
	).Scan(&status, &workerName, &exitCode, &exitMessage); err != nil {
		t.Fatal(err)
	}
	return
}

func TestRun_SetStatus(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(ctx, t)

	t.Run("it saves a legal transition", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Waiting)

		testee := kpgrun.New(pool)

		if err := testee.SetStatus(ctx, "run-1", domain.Ready); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		status, _, _, _ := getRunRow(ctx, t, pool, "run-1")
		if status != string(domain.Ready) {
			t.Errorf("unexpected status: %s", status)
		}
	})

	t.Run("it records the worker name when a run starts, and clears it at the end", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Ready)

		testee := kpgrun.New(pool)

		if err := testee.SetStatus(ctx, "run-1", domain.Starting); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if _, workerName, _, _ := getRunRow(ctx, t, pool, "run-1"); workerName != naming.Worker("run-1") {
			t.Errorf("unexpected worker name: %s", workerName)
		}

		for _, next := range []domain.RunStatus{
			domain.Running, domain.Completing, domain.Done,
		} {
			if err := testee.SetStatus(ctx, "run-1", next); err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
		}
		if _, workerName, _, _ := getRunRow(ctx, t, pool, "run-1"); workerName != "" {
			t.Errorf("worker name is not cleared: %s", workerName)
		}
	})

	t.Run("it rejects an illegal transition", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Waiting)

		testee := kpgrun.New(pool)

		err := testee.SetStatus(ctx, "run-1", domain.Done)
		if !errors.Is(err, domain.ErrInvalidRunStateChanging) {
			t.Fatalf("unexpected error: %+v", err)
		}

		status, _, _, _ := getRunRow(ctx, t, pool, "run-1")
		if status != string(domain.Waiting) {
			t.Errorf("status should be left as it was: %s", status)
		}
	})
}

func TestRun_PickAndSetStatus(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(ctx, t)

	t.Run("it picks a run by status and saves the transition with its exit", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Completing)
		seedRun(ctx, t, pool, "run-2", "cohort-1", "chr2", domain.Waiting)

		testee := kpgrun.New(pool)

		cursor := domain.RunCursor{
			Debounce: 30 * time.Second,
			Status:   []domain.RunStatus{domain.Completing, domain.Aborting},
		}
		nextCursor, ok, err := testee.PickAndSetStatus(
			ctx, cursor,
			func(r domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				if r.Id != "run-1" {
					t.Errorf("unexpected run is picked: %s", r.Id)
				}
				return domain.Done, &domain.RunExit{Code: 0, Message: "completed"}, nil
			},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if !ok {
			t.Error("status should be changed")
		}
		if nextCursor.Head != "run-1" {
			t.Errorf("unexpected cursor head: %s", nextCursor.Head)
		}

		status, _, exitCode, exitMessage := getRunRow(ctx, t, pool, "run-1")
		if status != string(domain.Done) {
			t.Errorf("unexpected status: %s", status)
		}
		if exitCode == nil || *exitCode != 0 || exitMessage == nil || *exitMessage != "completed" {
			t.Errorf("exit is not saved: (%v, %v)", exitCode, exitMessage)
		}
	})

	t.Run("it does not pick anything when no runs have the status", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Waiting)

		testee := kpgrun.New(pool)

		cursor := domain.RunCursor{
			Debounce: 30 * time.Second,
			Status:   []domain.RunStatus{domain.Completing},
		}
		nextCursor, ok, err := testee.PickAndSetStatus(
			ctx, cursor,
			func(r domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				t.Error("task should not be called")
				return r.Status, nil, nil
			},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if ok {
			t.Error("nothing should be changed")
		}
		if !nextCursor.Equal(cursor) {
			t.Errorf("cursor should be left as it was: %+v", nextCursor)
		}
	})

	t.Run("it debounces a run picked without a status change", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Running)

		testee := kpgrun.New(pool)

		cursor := domain.RunCursor{
			Debounce: time.Hour,
			Status:   []domain.RunStatus{domain.Running},
		}

		keep := func(r domain.Run) (domain.RunStatus, *domain.RunExit, error) {
			return r.Status, nil, nil
		}
		if _, ok, err := testee.PickAndSetStatus(ctx, cursor, keep); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		} else if ok {
			t.Error("nothing should be changed")
		}

		// picked just now. The run should be left alone until the debounce expires.
		if _, ok, err := testee.PickAndSetStatus(
			ctx, cursor,
			func(r domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				t.Error("task should not be called for a debounced run")
				return r.Status, nil, nil
			},
		); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		} else if ok {
			t.Error("nothing should be changed")
		}
	})

	t.Run("it rolls the transition back when task errors", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Completing)

		testee := kpgrun.New(pool)

		expectedErr := errors.New("fake error")
		cursor := domain.RunCursor{
			Debounce: 30 * time.Second,
			Status:   []domain.RunStatus{domain.Completing},
		}
		if _, ok, err := testee.PickAndSetStatus(
			ctx, cursor,
			func(r domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				return domain.Done, nil, expectedErr
			},
		); !errors.Is(err, expectedErr) {
			t.Fatalf("unexpected error: %+v", err)
		} else if ok {
			t.Error("nothing should be changed")
		}

		status, _, _, _ := getRunRow(ctx, t, pool, "run-1")
		if status != string(domain.Completing) {
			t.Errorf("status should be left as it was: %s", status)
		}
	})

	t.Run("it rejects an illegal transition from task", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Waiting)

		testee := kpgrun.New(pool)

		cursor := domain.RunCursor{
			Debounce: 30 * time.Second,
			Status:   []domain.RunStatus{domain.Waiting},
		}
		if _, ok, err := testee.PickAndSetStatus(
			ctx, cursor,
			func(r domain.Run) (domain.RunStatus, *domain.RunExit, error) {
				return domain.Done, nil, nil
			},
		); !errors.Is(err, domain.ErrInvalidRunStateChanging) {
			t.Fatalf("unexpected error: %+v", err)
		} else if ok {
			t.Error("nothing should be changed")
		}

		status, _, _, _ := getRunRow(ctx, t, pool, "run-1")
		if status != string(domain.Waiting) {
			t.Errorf("status should be left as it was: %s", status)
		}
	})
}

func TestRun_Retry(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(ctx, t)

	t.Run("it sends a failed run back to waiting, clearing its worker and exit", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		if _, err := pool.Exec(
			ctx,
			`
			insert into "run" (
				"run_id", "cohort_id", "chromosome", "status",
				"worker_name", "exit_code", "exit_message"
			)
			values ('run-1', 'cohort-1', 'chr1', $1, $2, 1, 'filter error')
			`,
			string(domain.Failed), naming.Worker("run-1"),
		); err != nil {
			t.Fatal(err)
		}

		testee := kpgrun.New(pool)

		if err := testee.Retry(ctx, "run-1"); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		status, workerName, exitCode, exitMessage := getRunRow(ctx, t, pool, "run-1")
		if status != string(domain.Waiting) {
			t.Errorf("unexpected status: %s", status)
		}
		if workerName != "" {
			t.Errorf("worker name is not cleared: %s", workerName)
		}
		if exitCode != nil || exitMessage != nil {
			t.Errorf("exit is not cleared: (%v, %v)", exitCode, exitMessage)
		}
	})

	t.Run("it rejects runs which have not failed", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		seedCohort(ctx, t, pool, "cohort-1")
		seedRun(ctx, t, pool, "run-1", "cohort-1", "chr1", domain.Running)

		testee := kpgrun.New(pool)

		if err := testee.Retry(ctx, "run-1"); !errors.Is(err, domain.ErrInvalidRunStateChanging) {
			t.Fatalf("unexpected error: %+v", err)
		}
	})
}
