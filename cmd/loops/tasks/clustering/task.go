package clustering

import (
	"context"
	"errors"
	"time"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	"github.com/snpflow/snpflow/pkg/clusterer"
	"github.com/snpflow/snpflow/pkg/domain"
	kdbcluster "github.com/snpflow/snpflow/pkg/domain/clusterjob/db"
)

// initial value for task
func Seed() domain.ClusterJobCursor {
	return domain.ClusterJobCursor{
		Debounce: 15 * time.Second,
		Status: []domain.ClusterJobStatus{
			domain.ClusterCreated, domain.ClusterSubmitted, domain.ClusterTraining,
		},
	}
}

// Task for clustering loop.
//
// Submits created cluster jobs to the clustering service and polls
// submitted ones until they settle.
//
// featureURL builds the URL where the service downloads the feature
// table of a cohort.
//
// Errors the service answers with (bad request, rejected training) fail
// the job with the service's message. Transport errors leave the job as
// it is, to be retried at the next pick.
func Task(
	icluster kdbcluster.Interface,
	trainer clusterer.Interface,
	featureURL func(cohortId string) (string, error),
) recurring.Task[domain.ClusterJobCursor] {
	return func(ctx context.Context, value domain.ClusterJobCursor) (domain.ClusterJobCursor, bool, error) {
		nextCursor, statusChanged, err := icluster.PickAndSetStatus(
			ctx, value,
			func(job domain.ClusterJob) (domain.ClusterJob, error) {
				switch job.Status {
				case domain.ClusterCreated:
					return submit(ctx, trainer, featureURL, job)
				case domain.ClusterSubmitted, domain.ClusterTraining:
					return poll(ctx, trainer, job)
				}
				return job, nil
			},
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}

		cursorMoved := !value.Equal(nextCursor)
		return nextCursor, statusChanged || cursorMoved, err
	}
}

func submit(
	ctx context.Context,
	trainer clusterer.Interface,
	featureURL func(cohortId string) (string, error),
	job domain.ClusterJob,
) (domain.ClusterJob, error) {
	url, err := featureURL(job.CohortId)
	if err != nil {
		return job, err
	}

	remoteId, err := trainer.Submit(ctx, clusterer.TrainingSpec{
		FeatureURL: url,
		K:          job.K,
	})
	if err != nil {
		if svcerr, ok := clusterer.AsErrService(err); ok {
			job.Status = domain.ClusterFailed
			job.Message = svcerr.Message
			return job, nil
		}
		return job, err
	}

	job.Status = domain.ClusterSubmitted
	job.RemoteId = remoteId
	return job, nil
}

func poll(
	ctx context.Context,
	trainer clusterer.Interface,
	job domain.ClusterJob,
) (domain.ClusterJob, error) {
	status, err := trainer.Status(ctx, job.RemoteId)
	if err != nil {
		if svcerr, ok := clusterer.AsErrService(err); ok {
			job.Status = domain.ClusterFailed
			job.Message = svcerr.Message
			return job, nil
		}
		return job, err
	}

	switch status.State {
	case clusterer.StatePending:
		// accepted, not started. Keep waiting.
	case clusterer.StateTraining:
		job.Status = domain.ClusterTraining
	case clusterer.StateCompleted:
		job.Status = domain.ClusterDone
	case clusterer.StateFailed:
		job.Status = domain.ClusterFailed
		job.Message = status.Message
	}
	return job, nil
}
