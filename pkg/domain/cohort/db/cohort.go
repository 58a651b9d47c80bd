package db

import (
	"context"

	"github.com/snpflow/snpflow/pkg/domain"
)

type Interface interface {
	// register a new cohort and fan out one waiting run per chromosome.
	//
	// Registration and fan-out happen in one transaction: either the cohort
	// exists with all of its runs, or nothing is written.
	//
	// The passed cohort's Id and CreatedAt are ignored and assigned here.
	//
	// # Returns
	//
	// - string: id of the new cohort.
	//
	// - []string: ids of the fanned-out runs, in chromosome order.
	//
	// - error: ErrCohortNameConflict when another cohort already has the
	// same name.
	Register(ctx context.Context, cohort domain.Cohort) (string, []string, error)

	// search cohort ids matching query. Sorted by creation time.
	Find(ctx context.Context, query domain.CohortFindQuery) ([]string, error)

	// get cohorts by ids. Cohorts not found are just omitted from the result.
	Get(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error)

	// delete a cohort with its runs, feature table and cluster jobs.
	//
	// # Returns
	//
	// - error: ErrCohortHasLiveRuns when any run of the cohort is not
	// terminal yet, ErrMissing when no such cohort exists.
	Delete(ctx context.Context, cohortId string) error
}
