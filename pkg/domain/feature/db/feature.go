package db

import (
	"context"
	"time"

	"github.com/snpflow/snpflow/pkg/domain"
)

type Interface interface {
	// get feature tables by cohort ids. Tables not found are just omitted.
	Get(ctx context.Context, cohortId []string) (map[string]domain.FeatureTable, error)

	// pick a cohort whose runs are all done and whose feature table is
	// absent, and mark the table as building.
	//
	// A table left building and untouched for rebuildAfter is picked
	// again, so a build interrupted by a daemon restart is retried
	// instead of staying building forever.
	//
	// The pick skips rows locked by other callers, so concurrent daemons
	// do not build the same table twice.
	//
	// # Returns
	//
	// - string: id of the picked cohort. Meaningless when bool is false.
	//
	// - bool: true when a cohort is picked.
	//
	// - error
	PickCohortToBuild(ctx context.Context, rebuildAfter time.Duration) (string, bool, error)

	// mark a building feature table as ready, recording where it is and
	// its dimensions.
	//
	// perChromosome holds variant counts keyed by chromosome name.
	SetReady(ctx context.Context, cohortId string, path string, rows int, cols int, perChromosome map[string]int) error

	// mark a building feature table as broken.
	SetBroken(ctx context.Context, cohortId string) error
}
