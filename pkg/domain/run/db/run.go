package db

import (
	"context"

	"github.com/snpflow/snpflow/pkg/domain"
)

type Interface interface {
	// search run ids matching query.
	//
	// Returned ids are sorted by (updated at, run id).
	Find(ctx context.Context, query domain.RunFindQuery) ([]string, error)

	// get runs by ids. Runs not found are just omitted from the result.
	Get(ctx context.Context, runId []string) (map[string]domain.Run, error)

	// update run status.
	//
	// When the run starts, its worker name is recorded. When the run
	// reaches a terminal status, the worker name is cleared.
	//
	// # Returns
	//
	// - error: ErrInvalidRunStateChanging (when newStatus is not next of
	// the current status), ErrMissing (when run is not found for runId).
	SetStatus(ctx context.Context, runId string, newStatus domain.RunStatus) error

	// pick the next run of cursor, and change its status to the return
	// value of task.
	//
	// The picked run is locked while task works on it. Runs picked recently
	// (within cursor.Debounce) without a status change are skipped.
	//
	// The exit returned by task, if not nil, is saved in the same
	// transaction as the status.
	//
	// # Returns
	//
	// - RunCursor: cursor pointing at the picked (and updated, if succeeded)
	// run. If no runs can be picked, the cursor is as it was passed.
	//
	// - bool: true only when a status is changed and saved in database.
	//
	// - error: error from task, or ErrInvalidRunStateChanging when task
	// returns a status which is not next of the current one.
	PickAndSetStatus(
		ctx context.Context,
		cursorFrom domain.RunCursor,
		task func(domain.Run) (domain.RunStatus, *domain.RunExit, error),
	) (domain.RunCursor, bool, error)

	// send a failed run back to waiting, clearing its worker and exit.
	//
	// # Returns
	//
	// - error: ErrInvalidRunStateChanging (when the run is not failed),
	// ErrMissing (when run is not found for runId).
	Retry(ctx context.Context, runId string) error
}
