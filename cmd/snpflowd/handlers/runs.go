package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	apierr "github.com/snpflow/snpflow/pkg/api/types/errors"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/snpflow/snpflow/pkg/domain"
	kdberr "github.com/snpflow/snpflow/pkg/domain/errors"
	"github.com/snpflow/snpflow/pkg/domain/errors/k8serrors"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	k8srun "github.com/snpflow/snpflow/pkg/domain/run/k8s"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
	kstrings "github.com/snpflow/snpflow/pkg/utils/strings"
)

func FindRunHandler(dbRun kdbrun.Interface) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		query, err := func(c echo.Context) (domain.RunFindQuery, error) {

			result := domain.RunFindQuery{
				CohortId:   kstrings.SplitIfNotEmpty(c.QueryParam("cohort"), ","),
				Chromosome: kstrings.SplitIfNotEmpty(c.QueryParam("chromosome"), ","),
				Status:     []domain.RunStatus{},
			}

			for _, p := range kstrings.SplitIfNotEmpty(c.QueryParam("status"), ",") {
				s, err := domain.AsRunStatus(p)
				if err != nil {
					return domain.RunFindQuery{}, apierr.BadRequest(
						`"status" should be one of "waiting", "ready", "starting", "running", "completing", "aborting", "done" or "failed"`,
						err,
					)
				}
				result.Status = append(result.Status, s)
			}

			since := c.QueryParam("since")
			if since != "" {
				t, err := rfctime.ParseRFC3339DateTime(since)
				if err != nil {
					return domain.RunFindQuery{}, apierr.BadRequest(
						`"since" should be a RFC3339 date-time format`,
						err,
					)
				}
				_t := t.Time()
				result.UpdatedSince = &_t
			}

			duration := c.QueryParam("duration")
			if duration != "" {
				if result.UpdatedSince == nil {
					return domain.RunFindQuery{}, apierr.BadRequest(
						`"duration" requires "since"`, nil,
					)
				}
				d, err := time.ParseDuration(duration)
				if err != nil {
					return domain.RunFindQuery{}, apierr.BadRequest(
						`"duration" should be a Go duration format`,
						err,
					)
				}
				_t := result.UpdatedSince.Add(d)
				result.UpdatedUntil = &_t
			}

			return result, nil
		}(c)

		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		runIds, err := dbRun.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		result, err := dbRun.Get(ctx, runIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apiruns.Detail, 0, len(result))
		for _, r := range runIds {
			resp = append(resp, apiruns.ComposeDetail(result[r]))
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetRunHandler(dbRun kdbrun.Interface, paramRunId string) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		runId := c.Param(paramRunId)
		ctx := c.Request().Context()

		runs, err := dbRun.Get(ctx, []string{runId})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		run, ok := runs[runId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apiruns.ComposeDetail(run))
	}
}

func AbortRunHandler(dbRun kdbrun.Interface, paramRunId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		runId := c.Param(paramRunId)
		ctx := c.Request().Context()

		if err := dbRun.SetStatus(ctx, runId, domain.Aborting); err != nil {
			if errors.Is(err, kdberr.ErrMissing) {
				return apierr.NotFound()
			}
			if errors.Is(err, domain.ErrInvalidRunStateChanging) {
				return apierr.Conflict(
					"the run can not be aborted",
					apierr.WithError(err),
				)
			}
			return apierr.InternalServerError(err)
		}

		runs, err := dbRun.Get(ctx, []string{runId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		run, ok := runs[runId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apiruns.ComposeDetail(run))
	}
}

func RetryRunHandler(dbRun kdbrun.Interface, paramRunId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		runId := c.Param(paramRunId)
		ctx := c.Request().Context()

		if err := dbRun.Retry(ctx, runId); err != nil {
			if errors.Is(err, kdberr.ErrMissing) {
				return apierr.NotFound()
			}
			if errors.Is(err, domain.ErrInvalidRunStateChanging) {
				return apierr.Conflict(
					"only failed runs can be retried",
					apierr.WithError(err),
				)
			}
			return apierr.InternalServerError(err)
		}

		runs, err := dbRun.Get(ctx, []string{runId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		run, ok := runs[runId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apiruns.ComposeDetail(run))
	}
}

// stream the log of the run's filter container.
func GetRunLogHandler(dbRun kdbrun.Interface, ik8s k8srun.Interface, paramRunId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		runId := c.Param(paramRunId)
		ctx := c.Request().Context()

		runs, err := dbRun.Get(ctx, []string{runId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		run, ok := runs[runId]
		if !ok {
			return apierr.NotFound()
		}

		w, err := ik8s.FindWorker(ctx, run.RunBody)
		if err != nil {
			if k8serrors.AsMissingError(err) {
				return apierr.NewErrorMessage(
					http.StatusNotFound,
					"the run has no worker now",
					apierr.WithError(err),
				)
			}
			return apierr.InternalServerError(err)
		}

		rc, err := w.Log(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		defer rc.Close()

		return c.Stream(http.StatusOK, "text/plain", rc)
	}
}
