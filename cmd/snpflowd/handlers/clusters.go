package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
	apierr "github.com/snpflow/snpflow/pkg/api/types/errors"
	"github.com/snpflow/snpflow/pkg/clusterer"
	"github.com/snpflow/snpflow/pkg/domain"
	kdbcluster "github.com/snpflow/snpflow/pkg/domain/clusterjob/db"
	kdberr "github.com/snpflow/snpflow/pkg/domain/errors"
	"github.com/snpflow/snpflow/pkg/utils/slices"
	kstrings "github.com/snpflow/snpflow/pkg/utils/strings"
)

func StartClusterHandler(dbCluster kdbcluster.Interface, paramCohortId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()
		cohortId := c.Param(paramCohortId)

		spec := apiclusters.Spec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("can not parse request body", err)
		}

		clusterJobId, err := dbCluster.New(ctx, cohortId, spec.K)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidClusterK) {
				return apierr.BadRequest(`"k" should be 2 or more`, err)
			}
			if errors.Is(err, domain.ErrFeatureTableNotReady) {
				return apierr.Conflict(
					"the feature table of the cohort is not ready",
					apierr.WithAdvice("wait for the aggregation to finish, then try again"),
					apierr.WithError(err),
				)
			}
			if errors.Is(err, kdberr.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}

		jobs, err := dbCluster.Get(ctx, []string{clusterJobId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		job, ok := jobs[clusterJobId]
		if !ok {
			return apierr.InternalServerError(errors.New("created cluster job is not found"))
		}

		return c.JSON(http.StatusOK, apiclusters.ComposeDetail(job))
	}
}

func FindClusterHandler(dbCluster kdbcluster.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		query := domain.ClusterJobFindQuery{
			CohortId: kstrings.SplitIfNotEmpty(c.QueryParam("cohort"), ","),
			Status:   []domain.ClusterJobStatus{},
		}
		for _, p := range kstrings.SplitIfNotEmpty(c.QueryParam("status"), ",") {
			s, err := domain.AsClusterJobStatus(p)
			if err != nil {
				return apierr.BadRequest(
					`"status" should be one of "created", "submitted", "training", "done" or "failed"`,
					err,
				)
			}
			query.Status = append(query.Status, s)
		}

		clusterJobIds, err := dbCluster.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		jobs, err := dbCluster.Get(ctx, clusterJobIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apiclusters.Detail, 0, len(jobs))
		for _, clusterJobId := range clusterJobIds {
			if job, ok := jobs[clusterJobId]; ok {
				resp = append(resp, apiclusters.ComposeDetail(job))
			}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetClusterHandler(dbCluster kdbcluster.Interface, paramClusterJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()
		clusterJobId := c.Param(paramClusterJobId)

		jobs, err := dbCluster.Get(ctx, []string{clusterJobId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		job, ok := jobs[clusterJobId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apiclusters.ComposeDetail(job))
	}
}

// fetch per-sample cluster assignments from the clustering service.
func GetAssignmentsHandler(dbCluster kdbcluster.Interface, trainer clusterer.Interface, paramClusterJobId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()
		clusterJobId := c.Param(paramClusterJobId)

		jobs, err := dbCluster.Get(ctx, []string{clusterJobId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		job, ok := jobs[clusterJobId]
		if !ok {
			return apierr.NotFound()
		}
		if job.Status != domain.ClusterDone {
			return apierr.Conflict(
				"the cluster job is not done",
				apierr.WithAdvice("wait for the training to finish, then try again"),
			)
		}

		assignments, err := trainer.Assignments(ctx, job.RemoteId)
		if err != nil {
			if se, ok := clusterer.AsErrService(err); ok {
				return apierr.ServiceUnavailable(
					"the clustering service rejected the request: "+se.Message, err,
				)
			}
			return apierr.InternalServerError(err)
		}

		resp := slices.Map(assignments, func(a clusterer.Assignment) apiclusters.Assignment {
			return apiclusters.ComposeAssignment(domain.ClusterAssignment{
				SampleId: a.SampleId, Cluster: a.Cluster,
			})
		})

		return c.JSON(http.StatusOK, resp)
	}
}
