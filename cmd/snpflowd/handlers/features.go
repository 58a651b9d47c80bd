package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	apierr "github.com/snpflow/snpflow/pkg/api/types/errors"
	apifeatures "github.com/snpflow/snpflow/pkg/api/types/features"
	"github.com/snpflow/snpflow/pkg/domain"
	kdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db"
	kdbfeature "github.com/snpflow/snpflow/pkg/domain/feature/db"
	"github.com/snpflow/snpflow/pkg/domain/token"
)

func GetFeatureHandler(dbCohort kdbcohort.Interface, dbFeature kdbfeature.Interface, paramCohortId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()
		cohortId := c.Param(paramCohortId)

		cohorts, err := dbCohort.Get(ctx, []string{cohortId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if _, ok := cohorts[cohortId]; !ok {
			return apierr.NotFound()
		}

		tables, err := dbFeature.Get(ctx, []string{cohortId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		ft, ok := tables[cohortId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apifeatures.ComposeDetail(ft))
	}
}

// issue a short-lived token granting download of the cohort's feature table.
func GetFeatureTokenHandler(dbFeature kdbfeature.Interface, issuer *token.Issuer, paramCohortId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()
		cohortId := c.Param(paramCohortId)

		tables, err := dbFeature.Get(ctx, []string{cohortId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		ft, ok := tables[cohortId]
		if !ok {
			return apierr.NotFound()
		}
		if ft.Status != domain.FeatureReady {
			return apierr.Conflict(
				"the feature table is not ready",
				apierr.WithAdvice("wait for the aggregation to finish, then try again"),
			)
		}

		tok, err := issuer.Issue(cohortId)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, apifeatures.Token{Token: tok})
	}
}

// stream the merged feature table CSV. Access is granted by token, so
// the clustering service can fetch it without an account.
func DownloadFeatureHandler(dbFeature kdbfeature.Interface, issuer *token.Issuer, storageRoot string, paramCohortId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		cohortId := c.Param(paramCohortId)

		tok := c.QueryParam("token")
		if tok == "" {
			return apierr.Unauthorized(`"token" is required`, nil)
		}
		if err := issuer.Verify(tok, cohortId); err != nil {
			return apierr.Unauthorized("the token is expired or not for the cohort", err)
		}

		tables, err := dbFeature.Get(ctx, []string{cohortId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		ft, ok := tables[cohortId]
		if !ok {
			return apierr.NotFound()
		}
		if ft.Status != domain.FeatureReady {
			return apierr.Conflict(
				"the feature table is not ready",
				apierr.WithAdvice("wait for the aggregation to finish, then try again"),
			)
		}

		f, err := os.Open(filepath.Join(storageRoot, filepath.FromSlash(ft.Path)))
		if err != nil {
			return apierr.InternalServerError(err)
		}
		defer f.Close()

		return c.Stream(http.StatusOK, "text/csv", f)
	}
}
