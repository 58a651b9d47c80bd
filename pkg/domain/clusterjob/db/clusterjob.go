package db

import (
	"context"

	"github.com/snpflow/snpflow/pkg/domain"
)

type Interface interface {
	// create a new cluster job in created status.
	//
	// # Returns
	//
	// - string: id of the new cluster job.
	//
	// - error: ErrFeatureTableNotReady when the cohort's feature table is
	// not ready, ErrInvalidClusterK when k is less than 2,
	// ErrMissing when no such cohort exists.
	New(ctx context.Context, cohortId string, k int) (string, error)

	// search cluster job ids matching query. Sorted by update time.
	Find(ctx context.Context, query domain.ClusterJobFindQuery) ([]string, error)

	// get cluster jobs by ids. Jobs not found are just omitted from the result.
	Get(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error)

	// pick a cluster job whose status is in cursor, and pass it to task.
	//
	// The picked job is the one least recently picked among matches,
	// and it is locked during task.
	//
	// When task returns an updated job, its status transition is verified
	// and the status, remote id and message are persisted.
	// Other fields of the returned job are ignored.
	//
	// # Returns
	//
	// - domain.ClusterJobCursor: cursor pointing the picked job.
	// When no job is picked, the passed cursor is returned as it is.
	//
	// - bool: true when the status is changed.
	//
	// - error
	PickAndSetStatus(
		ctx context.Context,
		cursor domain.ClusterJobCursor,
		task func(domain.ClusterJob) (domain.ClusterJob, error),
	) (domain.ClusterJobCursor, bool, error)
}
