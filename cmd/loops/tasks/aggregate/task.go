package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	kdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db"
	kdbfeature "github.com/snpflow/snpflow/pkg/domain/feature/db"
	"github.com/snpflow/snpflow/pkg/domain/naming"
	"github.com/snpflow/snpflow/pkg/features"
)

// initial value for task
func Seed() struct{} {
	return struct{}{}
}

// Task for aggregate loop.
//
// Picks a cohort whose runs are all done, merges its chromosome CSVs
// into the feature table, and marks the table ready.
//
// When the merge fails, the table is marked broken with the cause logged.
// Only a context error leaves the table building; such a table is picked
// again once it has been untouched for rebuildAfter.
func Task(
	l *log.Logger,
	ifeature kdbfeature.Interface,
	icohort kdbcohort.Interface,
	storageRoot string,
	rebuildAfter time.Duration,
) recurring.Task[struct{}] {
	return func(ctx context.Context, value struct{}) (struct{}, bool, error) {
		cohortId, ok, err := ifeature.PickCohortToBuild(ctx, rebuildAfter)
		if err != nil || !ok {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				err = nil
			}
			return value, false, err
		}

		summary, err := build(ctx, icohort, storageRoot, cohortId)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return value, false, nil
			}

			l.Printf("feature table of cohort %s is broken: %s", cohortId, err)
			if err := ifeature.SetBroken(ctx, cohortId); err != nil {
				return value, true, err
			}
			return value, true, nil
		}

		if err := ifeature.SetReady(
			ctx, cohortId,
			naming.FeatureTableCSV(cohortId),
			summary.Rows, summary.Cols, summary.VariantsPerChromosome,
		); err != nil {
			return value, true, err
		}

		l.Printf(
			"feature table of cohort %s is ready (%d samples x %d variants)",
			cohortId, summary.Rows, summary.Cols,
		)
		return value, true, nil
	}
}

func build(
	ctx context.Context,
	icohort kdbcohort.Interface,
	storageRoot string,
	cohortId string,
) (features.Summary, error) {
	cohorts, err := icohort.Get(ctx, []string{cohortId})
	if err != nil {
		return features.Summary{}, err
	}
	cohort, ok := cohorts[cohortId]
	if !ok {
		return features.Summary{}, fmt.Errorf("cohort %s is not found", cohortId)
	}

	return features.Build(storageRoot, cohort)
}
