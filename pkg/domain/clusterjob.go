package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/snpflow/snpflow/pkg/utils/cmp"
)

type ClusterJobStatus string

const (
	// the job is recorded, but not submitted to the clustering service yet.
	ClusterCreated ClusterJobStatus = "created"

	// the job is accepted by the clustering service.
	ClusterSubmitted ClusterJobStatus = "submitted"

	// the clustering service reports the training is in progress.
	ClusterTraining ClusterJobStatus = "training"

	// the clustering service reports completion. Assignments are available.
	ClusterDone ClusterJobStatus = "done"

	// submission or training failed.
	ClusterFailed ClusterJobStatus = "failed"
)

func (cs ClusterJobStatus) String() string {
	return string(cs)
}

func AsClusterJobStatus(status string) (ClusterJobStatus, error) {
	switch status {
	case string(ClusterCreated):
		return ClusterCreated, nil
	case string(ClusterSubmitted):
		return ClusterSubmitted, nil
	case string(ClusterTraining):
		return ClusterTraining, nil
	case string(ClusterDone):
		return ClusterDone, nil
	case string(ClusterFailed):
		return ClusterFailed, nil
	default:
		return "", fmt.Errorf("'%s' is not ClusterJobStatus", status)
	}
}

func (cs ClusterJobStatus) Terminal() bool {
	return cs == ClusterDone || cs == ClusterFailed
}

func (cs ClusterJobStatus) CanTransitTo(next ClusterJobStatus) bool {
	switch cs {
	case ClusterCreated:
		return next == ClusterSubmitted || next == ClusterFailed
	case ClusterSubmitted:
		return next == ClusterTraining || next == ClusterDone || next == ClusterFailed
	case ClusterTraining:
		return next == ClusterDone || next == ClusterFailed
	default:
		return false
	}
}

// delegation of one feature table to the managed clustering service.
type ClusterJob struct {
	Id       string
	CohortId string
	Status   ClusterJobStatus

	// requested number of clusters.
	K int

	// id of the training on the clustering service side.
	//
	// Empty until the job is submitted.
	RemoteId string

	// error message from the clustering service, if any.
	Message string

	UpdatedAt time.Time
}

func (cj *ClusterJob) Equal(o *ClusterJob) bool {
	if (cj == nil) || (o == nil) {
		return (cj == nil) && (o == nil)
	}
	return cj.Id == o.Id &&
		cj.CohortId == o.CohortId &&
		cj.Status == o.Status &&
		cj.K == o.K &&
		cj.RemoteId == o.RemoteId &&
		cj.Message == o.Message &&
		cj.UpdatedAt.Equal(o.UpdatedAt)
}

type ClusterJobFindQuery struct {
	CohortId []string
	Status   []ClusterJobStatus
}

type ClusterJobCursor struct {
	// Id of cluster job which was picked at last time.
	Head string

	// interval to not pick the same job again without a status change.
	Debounce time.Duration

	// status of cluster job which is picked.
	Status []ClusterJobStatus
}

func (c ClusterJobCursor) Equal(other ClusterJobCursor) bool {
	return c.Head == other.Head &&
		cmp.SliceContentEq(c.Status, other.Status)
}

// one sample's cluster membership, as reported by the clustering service.
type ClusterAssignment struct {
	SampleId string
	Cluster  int
}

var ErrInvalidClusterStateChanging = errors.New("cannot change cluster job state")

// the requested number of clusters is out of range.
var ErrInvalidClusterK = errors.New("cluster count should be 2 or more")

func NewErrInvalidClusterStateChanging(from, to ClusterJobStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidClusterStateChanging, from, to)
}
