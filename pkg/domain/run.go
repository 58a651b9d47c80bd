package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/snpflow/snpflow/pkg/utils/cmp"
)

type RunStatus string

const (
	// This Run is waiting to be initialized.
	Waiting RunStatus = "waiting"

	// This Run has everything needed to start as a filter Job.
	//
	// - the VCF shard for its chromosome is confirmed to exist
	// - the output location is prepared
	Ready RunStatus = "ready"

	// A filter Job for this Run has been requested.
	Starting RunStatus = "starting"

	// The filter Job is running.
	Running RunStatus = "running"

	// It is observed that the Run's Job has stopped successfully.
	Completing RunStatus = "completing"

	// It is observed, or decided, that the Run's Job has stopped unsuccessfully.
	Aborting RunStatus = "aborting"

	// This Run has been done, successfully. Its chromosome CSV is in place.
	Done RunStatus = "done"

	// This Run stopped with error.
	Failed RunStatus = "failed"
)

func (rs RunStatus) String() string {
	return string(rs)
}

func AsRunStatus(status string) (RunStatus, error) {
	switch status {
	case string(Waiting):
		return Waiting, nil
	case string(Ready):
		return Ready, nil
	case string(Starting):
		return Starting, nil
	case string(Running):
		return Running, nil
	case string(Completing):
		return Completing, nil
	case string(Aborting):
		return Aborting, nil
	case string(Done):
		return Done, nil
	case string(Failed):
		return Failed, nil
	default:
		return "", fmt.Errorf("'%s' is not RunStatus", status)
	}
}

// statuses of runs which still can write their chromosome CSV.
func ProcessingStatuses() []RunStatus {
	return []RunStatus{
		Waiting, Ready, Starting, Running, Completing, Aborting,
	}
}

func (rs RunStatus) HasStarted() bool {
	switch rs {
	case Waiting, Ready, Starting:
		return false
	default:
		return true
	}
}

func (rs RunStatus) Processing() bool {
	switch rs {
	case Running, Completing, Aborting:
		return true
	default:
		return false
	}
}

func (rs RunStatus) Terminal() bool {
	switch rs {
	case Done, Failed:
		return true
	default:
		return false
	}
}

// legal transitions of the run lifecycle.
//
//	waiting -> ready -> starting -> running -> completing -> done
//
// Any non-terminal status can fall to aborting, and aborting ends in failed.
// A failed run can be sent back to waiting (retry).
func (rs RunStatus) CanTransitTo(next RunStatus) bool {
	switch rs {
	case Waiting:
		return next == Ready || next == Aborting
	case Ready:
		return next == Starting || next == Aborting
	case Starting:
		return next == Running || next == Completing || next == Aborting
	case Running:
		return next == Completing || next == Aborting
	case Completing:
		return next == Done
	case Aborting:
		return next == Failed
	case Failed:
		return next == Waiting
	default:
		return false
	}
}

type RunCursor struct {
	// Id of run which was picked at last time.
	Head string

	// interval to not pick the same run again without a status change.
	Debounce time.Duration

	// status of run which is picked.
	Status []RunStatus
}

func (r RunCursor) Equal(other RunCursor) bool {
	return r.Head == other.Head &&
		cmp.SliceContentEq(r.Status, other.Status)
}

// parameter to query runs.
//
// When all dimensions match a run, this query matches the run.
// Nil or empty dimensions mean "match any".
type RunFindQuery struct {
	CohortId   []string
	Chromosome []string
	Status     []RunStatus

	// match if run's updated time is equal or later than UpdatedSince.
	UpdatedSince *time.Time

	// match if run's updated time is earlier than UpdatedUntil.
	UpdatedUntil *time.Time
}

func (rfq RunFindQuery) Equal(other RunFindQuery) bool {
	return cmp.SliceContentEq(rfq.CohortId, other.CohortId) &&
		cmp.SliceContentEq(rfq.Chromosome, other.Chromosome) &&
		cmp.SliceContentEq(rfq.Status, other.Status) &&
		((rfq.UpdatedSince == nil && other.UpdatedSince == nil) ||
			(rfq.UpdatedSince != nil && other.UpdatedSince != nil && rfq.UpdatedSince.Equal(*other.UpdatedSince))) &&
		((rfq.UpdatedUntil == nil && other.UpdatedUntil == nil) ||
			(rfq.UpdatedUntil != nil && other.UpdatedUntil != nil && rfq.UpdatedUntil.Equal(*other.UpdatedUntil)))
}

type RunExit struct {
	Code    uint8
	Message string
}

// Core part of run: one filtering job for a (cohort, chromosome) pair.
type RunBody struct {
	Id         string
	CohortId   string
	Chromosome string
	Status     RunStatus

	// Name of the k8s Job filtering this chromosome, if any.
	//
	// When there is no Job for the run, this is left as zero-value.
	WorkerName string

	// last update timestamp.
	UpdatedAt time.Time

	// Exit status of the run, if any.
	Exit *RunExit
}

func (rb *RunBody) Equal(o *RunBody) bool {
	if (rb == nil) || (o == nil) {
		return (rb == nil) && (o == nil)
	}

	return rb.Id == o.Id &&
		rb.CohortId == o.CohortId &&
		rb.Chromosome == o.Chromosome &&
		rb.Status == o.Status &&
		rb.WorkerName == o.WorkerName &&
		rb.UpdatedAt.Equal(o.UpdatedAt) &&
		((rb.Exit == nil && o.Exit == nil) ||
			(rb.Exit != nil && o.Exit != nil && *rb.Exit == *o.Exit))
}

type Run struct {
	RunBody

	// cohort the run belongs to, with filter settings the Job needs.
	Cohort CohortBody

	// path of the chromosome CSV this run writes, relative to the storage root.
	OutputPath string
}

func (r *Run) Equal(other *Run) bool {
	return r.RunBody.Equal(&other.RunBody) &&
		r.Cohort.Equal(&other.Cohort) &&
		r.OutputPath == other.OutputPath
}

var (
	ErrRunIsProtected          = errors.New("the run is protected")
	ErrWorkerActive            = fmt.Errorf("%w: possibly running", ErrRunIsProtected)
	ErrInvalidRunStateChanging = errors.New("cannot change run state")
)

func NewErrInvalidRunStateChanging(from, to RunStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidRunStateChanging, from, to)
}
