package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	handlers "github.com/snpflow/snpflow/cmd/snpflowd/handlers"
	httptestutil "github.com/snpflow/snpflow/internal/testutils/http"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/snpflow/snpflow/pkg/domain"
	mockdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db/mock"
	kdberr "github.com/snpflow/snpflow/pkg/domain/errors"
	mockdbrun "github.com/snpflow/snpflow/pkg/domain/run/db/mock"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
	"github.com/snpflow/snpflow/pkg/utils/slices"
	"github.com/snpflow/snpflow/pkg/utils/try"
)

func TestRegisterCohortHandler(t *testing.T) {

	t.Run("it registers a cohort and responds its detail", func(t *testing.T) {
		createdAt := try.To(rfctime.ParseRFC3339DateTime(
			"2025-10-30T12:34:56+00:00",
		)).OrFatal(t)

		registered := domain.Cohort{
			CohortBody: domain.CohortBody{
				Id: "cohort-1", Name: "1kg-eas", VCFRoot: "vcf/1kg-eas",
				SampleCount: 504,
				Filter: domain.FilterSpec{
					BiallelicOnly: true, MinMAF: 0.05, MaxMissingRate: 0.1,
				},
				CreatedAt: createdAt.Time(),
			},
			Chromosomes: []string{"chr1", "chr2"},
		}
		runs := []domain.Run{
			{
				RunBody: domain.RunBody{
					Id: "run-1", CohortId: "cohort-1", Chromosome: "chr1",
					Status: domain.Waiting, UpdatedAt: createdAt.Time(),
				},
				Cohort:     registered.CohortBody,
				OutputPath: "cohorts/cohort-1/chromosomes/chr1.csv",
			},
			{
				RunBody: domain.RunBody{
					Id: "run-2", CohortId: "cohort-1", Chromosome: "chr2",
					Status: domain.Waiting, UpdatedAt: createdAt.Time(),
				},
				Cohort:     registered.CohortBody,
				OutputPath: "cohorts/cohort-1/chromosomes/chr2.csv",
			},
		}

		mockCohort := mockdbcohort.NewCohortInterface()
		mockCohort.Impl.Register = func(ctx context.Context, cohort domain.Cohort) (string, []string, error) {
			return "cohort-1", []string{"run-1", "run-2"}, nil
		}
		mockCohort.Impl.Get = func(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error) {
			return map[string]domain.Cohort{"cohort-1": registered}, nil
		}
		mockRun := mockdbrun.NewRunInterface()
		mockRun.Impl.Find = func(ctx context.Context, query domain.RunFindQuery) ([]string, error) {
			return slices.Map(runs, func(r domain.Run) string { return r.Id }), nil
		}
		mockRun.Impl.Get = func(ctx context.Context, runId []string) (map[string]domain.Run, error) {
			return slices.ToMap(runs, func(r domain.Run) string { return r.Id }), nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/cohorts",
			strings.NewReader(`{
				"name": "1kg-eas", "vcfRoot": "vcf/1kg-eas", "sampleCount": 504,
				"chromosomes": ["chr1", "chr2"],
				"filter": {"biallelicOnly": true, "minMaf": 0.05, "maxMissingRate": 0.1}
			}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.RegisterCohortHandler(mockCohort, mockRun)
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		if len(mockCohort.Calls.Register) != 1 {
			t.Fatalf("Register: called %d times", len(mockCohort.Calls.Register))
		}
		{
			actual := mockCohort.Calls.Register[0]
			expected := domain.Cohort{
				CohortBody: domain.CohortBody{
					Name: "1kg-eas", VCFRoot: "vcf/1kg-eas", SampleCount: 504,
					Filter: domain.FilterSpec{
						BiallelicOnly: true, MinMAF: 0.05, MaxMissingRate: 0.1,
					},
				},
				Chromosomes: []string{"chr1", "chr2"},
			}
			if !actual.Equal(&expected) {
				t.Errorf(
					"unmatch: params for CohortInterface.Register:\n- actual: %+v\n- expected: %+v",
					actual, expected,
				)
			}
		}

		if respRec.Result().StatusCode != http.StatusOK {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusOK)
		}

		actual := apicohorts.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		expected := apicohorts.Detail{
			Summary: apicohorts.Summary{
				CohortId: "cohort-1", Name: "1kg-eas", VCFRoot: "vcf/1kg-eas",
				SampleCount: 504,
				Filter: apicohorts.FilterSpec{
					BiallelicOnly: true, MinMAF: 0.05, MaxMissingRate: 0.1,
				},
				CreatedAt: createdAt,
			},
			Chromosomes: []string{"chr1", "chr2"},
			Runs: []apiruns.Summary{
				{
					RunId: "run-1", CohortId: "cohort-1", Chromosome: "chr1",
					Status: string(domain.Waiting), UpdatedAt: createdAt,
				},
				{
					RunId: "run-2", CohortId: "cohort-1", Chromosome: "chr2",
					Status: string(domain.Waiting), UpdatedAt: createdAt,
				},
			},
		}
		if !actual.Equal(expected) {
			t.Errorf(
				"data does not match. (actual, expected) = \n(%+v, \n%+v)",
				actual, expected,
			)
		}
	})

	t.Run("it responds error", func(t *testing.T) {
		type when struct {
			body            string
			errorOnRegister error
		}
		type then struct {
			statusCode int
		}

		valid := `{
			"name": "c", "vcfRoot": "vcf/c", "sampleCount": 10,
			"chromosomes": ["chr1"], "filter": {}
		}`

		for name, testcase := range map[string]struct {
			when
			then
		}{
			"(Bad Request) when the body is not json": {
				when{body: `it is not json`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when name is missing": {
				when{body: `{"vcfRoot": "vcf/c", "sampleCount": 10, "chromosomes": ["chr1"]}`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when vcfRoot is missing": {
				when{body: `{"name": "c", "sampleCount": 10, "chromosomes": ["chr1"]}`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when sampleCount is zero": {
				when{body: `{"name": "c", "vcfRoot": "vcf/c", "sampleCount": 0, "chromosomes": ["chr1"]}`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when chromosomes is empty": {
				when{body: `{"name": "c", "vcfRoot": "vcf/c", "sampleCount": 10, "chromosomes": []}`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when chromosomes has duplication": {
				when{body: `{"name": "c", "vcfRoot": "vcf/c", "sampleCount": 10, "chromosomes": ["chr1", "chr1"]}`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when the filter spec is out of range": {
				when{
					body:            valid,
					errorOnRegister: domain.ErrInvalidFilterSpec,
				},
				then{statusCode: http.StatusBadRequest},
			},
			"(Conflict) when the cohort name is already used": {
				when{
					body:            valid,
					errorOnRegister: domain.ErrCohortNameConflict,
				},
				then{statusCode: http.StatusConflict},
			},
			"(Internal Server Error) when CohortInterface.Register causes error": {
				when{
					body:            valid,
					errorOnRegister: errors.New("fake error"),
				},
				then{statusCode: http.StatusInternalServerError},
			},
		} {
			t.Run(name, func(t *testing.T) {
				mockCohort := mockdbcohort.NewCohortInterface()
				mockCohort.Impl.Register = func(ctx context.Context, cohort domain.Cohort) (string, []string, error) {
					return "", nil, testcase.when.errorOnRegister
				}
				mockRun := mockdbrun.NewRunInterface()

				e := echo.New()
				c, _ := httptestutil.Post(
					e, "/api/cohorts", strings.NewReader(testcase.when.body),
					httptestutil.ContentType("application/json"),
				)

				testee := handlers.RegisterCohortHandler(mockCohort, mockRun)
				err := testee(c)
				if err == nil {
					t.Fatalf("no error but it is not expected result")
				}

				var echoErr *echo.HTTPError
				if !errors.As(err, &echoErr) {
					t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
				}
				if echoErr.Code != testcase.then.statusCode {
					t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, testcase.then.statusCode)
				}
			})
		}
	})
}

func TestFindCohortHandler(t *testing.T) {

	t.Run("it passes query and responds summaries", func(t *testing.T) {
		createdAt := try.To(rfctime.ParseRFC3339DateTime(
			"2025-10-30T12:34:56+00:00",
		)).OrFatal(t)

		cohorts := []domain.Cohort{
			{
				CohortBody: domain.CohortBody{
					Id: "cohort-1", Name: "1kg-eas", VCFRoot: "vcf/1kg-eas",
					SampleCount: 504, CreatedAt: createdAt.Time(),
				},
				Chromosomes: []string{"chr1"},
			},
			{
				CohortBody: domain.CohortBody{
					Id: "cohort-2", Name: "1kg-eur", VCFRoot: "vcf/1kg-eur",
					SampleCount: 503, CreatedAt: createdAt.Time(),
				},
				Chromosomes: []string{"chr1"},
			},
		}

		mockCohort := mockdbcohort.NewCohortInterface()
		mockCohort.Impl.Find = func(ctx context.Context, query domain.CohortFindQuery) ([]string, error) {
			return slices.Map(cohorts, func(c domain.Cohort) string { return c.Id }), nil
		}
		mockCohort.Impl.Get = func(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error) {
			return slices.ToMap(cohorts, func(c domain.Cohort) string { return c.Id }), nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/cohorts?name=1kg-eas,1kg-eur")

		testee := handlers.FindCohortHandler(mockCohort)
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		expectedQuery := domain.CohortFindQuery{Name: []string{"1kg-eas", "1kg-eur"}}
		if len(mockCohort.Calls.Find) != 1 ||
			!cmp.SliceContentEq(mockCohort.Calls.Find[0].Name, expectedQuery.Name) {
			t.Errorf(
				"unmatch: params for CohortInterface.Find:\n- actual: %+v\n- expected: %+v",
				mockCohort.Calls.Find, expectedQuery,
			)
		}

		actual := []apicohorts.Summary{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		expected := slices.Map(cohorts, func(c domain.Cohort) apicohorts.Summary {
			return apicohorts.ComposeSummary(c.CohortBody)
		})
		if !cmp.SliceEqWith(actual, expected, apicohorts.Summary.Equal) {
			t.Errorf(
				"data does not match. (actual, expected) = \n(%+v, \n%+v)",
				actual, expected,
			)
		}
	})

	t.Run("(Internal Server Error) when CohortInterface.Find causes error", func(t *testing.T) {
		mockCohort := mockdbcohort.NewCohortInterface()
		mockCohort.Impl.Find = func(ctx context.Context, query domain.CohortFindQuery) ([]string, error) {
			return nil, errors.New("fake error")
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/cohorts")

		testee := handlers.FindCohortHandler(mockCohort)
		err := testee(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusInternalServerError {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusInternalServerError)
		}
	})
}

func TestGetCohortHandler(t *testing.T) {

	t.Run("it responds the cohort with runs in chromosome order", func(t *testing.T) {
		createdAt := try.To(rfctime.ParseRFC3339DateTime(
			"2025-10-30T12:34:56+00:00",
		)).OrFatal(t)

		cohort := domain.Cohort{
			CohortBody: domain.CohortBody{
				Id: "cohort-1", Name: "1kg-eas", VCFRoot: "vcf/1kg-eas",
				SampleCount: 504, CreatedAt: createdAt.Time(),
			},
			Chromosomes: []string{"chr2", "chr1"},
		}
		runs := []domain.Run{
			{
				RunBody: domain.RunBody{
					Id: "run-1", CohortId: "cohort-1", Chromosome: "chr1",
					Status: domain.Done, UpdatedAt: createdAt.Time(),
				},
			},
			{
				RunBody: domain.RunBody{
					Id: "run-2", CohortId: "cohort-1", Chromosome: "chr2",
					Status: domain.Running, UpdatedAt: createdAt.Time(),
				},
			},
		}

		mockCohort := mockdbcohort.NewCohortInterface()
		mockCohort.Impl.Get = func(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error) {
			return map[string]domain.Cohort{"cohort-1": cohort}, nil
		}
		mockRun := mockdbrun.NewRunInterface()
		mockRun.Impl.Find = func(ctx context.Context, query domain.RunFindQuery) ([]string, error) {
			return slices.Map(runs, func(r domain.Run) string { return r.Id }), nil
		}
		mockRun.Impl.Get = func(ctx context.Context, runId []string) (map[string]domain.Run, error) {
			return slices.ToMap(runs, func(r domain.Run) string { return r.Id }), nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/cohorts/cohort-1")
		c.SetPath("/cohorts/:cohortId")
		c.SetParamNames("cohortId")
		c.SetParamValues("cohort-1")

		testee := handlers.GetCohortHandler(mockCohort, mockRun, "cohortId")
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		actual := apicohorts.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}

		// runs come back ordered by the cohort's chromosome order.
		expectedRuns := []apiruns.Summary{
			apiruns.ComposeSummary(runs[1].RunBody),
			apiruns.ComposeSummary(runs[0].RunBody),
		}
		if !cmp.SliceEqWith(actual.Runs, expectedRuns, apiruns.Summary.Equal) {
			t.Errorf(
				"runs do not match. (actual, expected) = \n(%+v, \n%+v)",
				actual.Runs, expectedRuns,
			)
		}
	})

	t.Run("(Not Found) when no such cohort exists", func(t *testing.T) {
		mockCohort := mockdbcohort.NewCohortInterface()
		mockCohort.Impl.Get = func(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error) {
			return map[string]domain.Cohort{}, nil
		}
		mockRun := mockdbrun.NewRunInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/cohorts/no-such-cohort")
		c.SetParamNames("cohortId")
		c.SetParamValues("no-such-cohort")

		testee := handlers.GetCohortHandler(mockCohort, mockRun, "cohortId")
		err := testee(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusNotFound {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusNotFound)
		}
	})
}

func TestDeleteCohortHandler(t *testing.T) {

	type when struct {
		errorOnDelete error
	}
	type then struct {
		statusCode int
		isErr      bool
	}

	for name, testcase := range map[string]struct {
		when
		then
	}{
		"it responds No Content when the cohort is deleted": {
			when{errorOnDelete: nil},
			then{statusCode: http.StatusNoContent},
		},
		"(Not Found) when no such cohort exists": {
			when{errorOnDelete: kdberr.ErrMissing},
			then{statusCode: http.StatusNotFound, isErr: true},
		},
		"(Conflict) when the cohort has non-terminal runs": {
			when{errorOnDelete: domain.ErrCohortHasLiveRuns},
			then{statusCode: http.StatusConflict, isErr: true},
		},
		"(Internal Server Error) when CohortInterface.Delete causes error": {
			when{errorOnDelete: errors.New("fake error")},
			then{statusCode: http.StatusInternalServerError, isErr: true},
		},
	} {
		t.Run(name, func(t *testing.T) {
			mockCohort := mockdbcohort.NewCohortInterface()
			mockCohort.Impl.Delete = func(ctx context.Context, cohortId string) error {
				return testcase.when.errorOnDelete
			}

			e := echo.New()
			c, respRec := httptestutil.Delete(e, "/api/cohorts/cohort-1")
			c.SetParamNames("cohortId")
			c.SetParamValues("cohort-1")

			testee := handlers.DeleteCohortHandler(mockCohort, "cohortId")
			err := testee(c)

			if !cmp.SliceEq(mockCohort.Calls.Delete, []string{"cohort-1"}) {
				t.Errorf(
					"unmatch: params for CohortInterface.Delete: %+v", mockCohort.Calls.Delete,
				)
			}

			if testcase.then.isErr {
				if err == nil {
					t.Fatalf("no error but it is not expected result")
				}
				var echoErr *echo.HTTPError
				if !errors.As(err, &echoErr) {
					t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
				}
				if echoErr.Code != testcase.then.statusCode {
					t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, testcase.then.statusCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("response is not illegal. error = %v", err)
			}
			if respRec.Result().StatusCode != testcase.then.statusCode {
				t.Errorf("status code %d != %d", respRec.Result().StatusCode, testcase.then.statusCode)
			}
		})
	}
}
