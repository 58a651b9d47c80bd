package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	apierr "github.com/snpflow/snpflow/pkg/api/types/errors"
	"github.com/snpflow/snpflow/pkg/domain"
	kdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db"
	kdberr "github.com/snpflow/snpflow/pkg/domain/errors"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	kstrings "github.com/snpflow/snpflow/pkg/utils/strings"
)

func RegisterCohortHandler(dbCohort kdbcohort.Interface, dbRun kdbrun.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		spec := apicohorts.CohortSpec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("can not parse request body", err)
		}
		if spec.Name == "" || spec.VCFRoot == "" {
			return apierr.BadRequest(`"name" and "vcfRoot" are required`, nil)
		}
		if spec.SampleCount <= 0 {
			return apierr.BadRequest(`"sampleCount" should be 1 or more`, nil)
		}
		if len(spec.Chromosomes) == 0 {
			return apierr.BadRequest(`"chromosomes" should not be empty`, nil)
		}
		{
			seen := map[string]bool{}
			for _, chromosome := range spec.Chromosomes {
				if chromosome == "" || seen[chromosome] {
					return apierr.BadRequest(`"chromosomes" should be unique and not empty`, nil)
				}
				seen[chromosome] = true
			}
		}

		cohortId, _, err := dbCohort.Register(ctx, domain.Cohort{
			CohortBody: domain.CohortBody{
				Name:        spec.Name,
				VCFRoot:     spec.VCFRoot,
				SampleCount: spec.SampleCount,
				Filter: domain.FilterSpec{
					BiallelicOnly:  spec.Filter.BiallelicOnly,
					MinMAF:         spec.Filter.MinMAF,
					MaxMissingRate: spec.Filter.MaxMissingRate,
				},
			},
			Chromosomes: spec.Chromosomes,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidFilterSpec) {
				return apierr.BadRequest(err.Error(), err)
			}
			if errors.Is(err, domain.ErrCohortNameConflict) {
				return apierr.Conflict(
					err.Error(),
					apierr.WithAdvice("pick another name or delete the existing cohort"),
					apierr.WithError(err),
				)
			}
			return apierr.InternalServerError(err)
		}

		detail, ok, err := composeCohortDetail(ctx, dbCohort, dbRun, cohortId)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if !ok {
			return apierr.InternalServerError(errors.New("registered cohort is not found"))
		}

		return c.JSON(http.StatusOK, detail)
	}
}

func FindCohortHandler(dbCohort kdbcohort.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		query := domain.CohortFindQuery{
			Name: kstrings.SplitIfNotEmpty(c.QueryParam("name"), ","),
		}

		cohortIds, err := dbCohort.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		cohorts, err := dbCohort.Get(ctx, cohortIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apicohorts.Summary, 0, len(cohorts))
		for _, cohortId := range cohortIds {
			if cohort, ok := cohorts[cohortId]; ok {
				resp = append(resp, apicohorts.ComposeSummary(cohort.CohortBody))
			}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetCohortHandler(dbCohort kdbcohort.Interface, dbRun kdbrun.Interface, paramCohortId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()
		cohortId := c.Param(paramCohortId)

		detail, ok, err := composeCohortDetail(ctx, dbCohort, dbRun, cohortId)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, detail)
	}
}

func DeleteCohortHandler(dbCohort kdbcohort.Interface, paramCohortId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		cohortId := c.Param(paramCohortId)

		if err := dbCohort.Delete(ctx, cohortId); err != nil {
			if errors.Is(err, kdberr.ErrMissing) {
				return apierr.NotFound()
			}
			if errors.Is(err, domain.ErrCohortHasLiveRuns) {
				return apierr.Conflict(
					"the cohort has runs which are not finished",
					apierr.WithAdvice("stop the runs or wait for them, then delete again"),
					apierr.WithError(err),
				)
			}
			return apierr.InternalServerError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// build cohort Detail, with its runs in chromosome order.
func composeCohortDetail(
	ctx context.Context,
	dbCohort kdbcohort.Interface,
	dbRun kdbrun.Interface,
	cohortId string,
) (apicohorts.Detail, bool, error) {
	cohorts, err := dbCohort.Get(ctx, []string{cohortId})
	if err != nil {
		return apicohorts.Detail{}, false, err
	}
	cohort, ok := cohorts[cohortId]
	if !ok {
		return apicohorts.Detail{}, false, nil
	}

	runIds, err := dbRun.Find(ctx, domain.RunFindQuery{CohortId: []string{cohortId}})
	if err != nil {
		return apicohorts.Detail{}, false, err
	}
	runs, err := dbRun.Get(ctx, runIds)
	if err != nil {
		return apicohorts.Detail{}, false, err
	}

	byChromosome := map[string]domain.RunBody{}
	for _, r := range runs {
		byChromosome[r.Chromosome] = r.RunBody
	}
	ordered := []domain.RunBody{}
	for _, chromosome := range cohort.Chromosomes {
		if r, ok := byChromosome[chromosome]; ok {
			ordered = append(ordered, r)
		}
	}

	return apicohorts.ComposeDetail(cohort, ordered), true, nil
}
