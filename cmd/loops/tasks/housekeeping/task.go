package housekeeping

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	kdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db"
	"github.com/snpflow/snpflow/pkg/domain/naming"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	k8srun "github.com/snpflow/snpflow/pkg/domain/run/k8s"
)

// initial value for task
func Seed() struct{} {
	return struct{}{}
}

// Task for housekeeping loop.
//
// Scans the cohort directories under the storage root, and removes those
// whose cohort is no longer in the database. Deleting a cohort removes
// its records at once, but its files on the shared storage only here.
//
// Also sweeps worker Jobs left in the cluster without a live run: Jobs
// of deleted cohorts, and Jobs whose run settled but which were not
// removed, for example when the daemon stopped between the two.
func Task(
	l *log.Logger,
	icohort kdbcohort.Interface,
	irun kdbrun.Interface,
	ik8s k8srun.Interface,
	storageRoot string,
) recurring.Task[struct{}] {
	return func(ctx context.Context, value struct{}) (struct{}, bool, error) {
		removedFiles, err := pruneCohortFiles(ctx, l, icohort, storageRoot)
		if err != nil {
			return value, removedFiles, ignoreContextErr(err)
		}

		removedJobs, err := sweepOrphanedWorkers(ctx, l, irun, ik8s)
		if err != nil {
			return value, removedFiles || removedJobs, ignoreContextErr(err)
		}

		return value, removedFiles || removedJobs, nil
	}
}

func ignoreContextErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func pruneCohortFiles(
	ctx context.Context,
	l *log.Logger,
	icohort kdbcohort.Interface,
	storageRoot string,
) (bool, error) {
	root := filepath.Join(storageRoot, naming.CohortsRoot())

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	cohortIds := []string{}
	for _, e := range entries {
		if e.IsDir() {
			cohortIds = append(cohortIds, e.Name())
		}
	}
	if len(cohortIds) == 0 {
		return false, nil
	}

	known, err := icohort.Get(ctx, cohortIds)
	if err != nil {
		return false, err
	}

	removed := false
	for _, cohortId := range cohortIds {
		if _, ok := known[cohortId]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, cohortId)); err != nil {
			return removed, err
		}
		l.Printf("removed files of deleted cohort: %s", cohortId)
		removed = true
	}

	return removed, nil
}

func sweepOrphanedWorkers(
	ctx context.Context,
	l *log.Logger,
	irun kdbrun.Interface,
	ik8s k8srun.Interface,
) (bool, error) {
	workers, err := ik8s.FindAllWorkers(ctx)
	if err != nil {
		return false, err
	}
	if len(workers) == 0 {
		return false, nil
	}

	runIds := []string{}
	for _, w := range workers {
		runIds = append(runIds, w.RunId())
	}

	runs, err := irun.Get(ctx, runIds)
	if err != nil {
		return false, err
	}

	removed := false
	for _, w := range workers {
		run, ok := runs[w.RunId()]
		if ok && !run.Status.Terminal() {
			continue
		}
		if err := w.Close(); err != nil {
			return removed, err
		}
		l.Printf("removed worker job without a live run: run id = %s", w.RunId())
		removed = true
	}

	return removed, nil
}
