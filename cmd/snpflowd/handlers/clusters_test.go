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
	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
	"github.com/snpflow/snpflow/pkg/clusterer"
	mockclusterer "github.com/snpflow/snpflow/pkg/clusterer/mock"
	"github.com/snpflow/snpflow/pkg/domain"
	mockdbcluster "github.com/snpflow/snpflow/pkg/domain/clusterjob/db/mock"
	kdberr "github.com/snpflow/snpflow/pkg/domain/errors"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
	"github.com/snpflow/snpflow/pkg/utils/slices"
	"github.com/snpflow/snpflow/pkg/utils/try"
)

func TestStartClusterHandler(t *testing.T) {

	t.Run("it creates a cluster job and responds its detail", func(t *testing.T) {
		updatedAt := try.To(rfctime.ParseRFC3339DateTime(
			"2025-11-03T10:00:00+00:00",
		)).OrFatal(t)

		job := domain.ClusterJob{
			Id: "cluster-1", CohortId: "cohort-1",
			Status: domain.ClusterCreated, K: 3,
			UpdatedAt: updatedAt.Time(),
		}

		mockCluster := mockdbcluster.NewClusterJobInterface()
		mockCluster.Impl.New = func(ctx context.Context, cohortId string, k int) (string, error) {
			return "cluster-1", nil
		}
		mockCluster.Impl.Get = func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
			return map[string]domain.ClusterJob{"cluster-1": job}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/cohorts/cohort-1/clusters", strings.NewReader(`{"k": 3}`),
			httptestutil.ContentType("application/json"),
		)
		c.SetParamNames("cohortId")
		c.SetParamValues("cohort-1")

		testee := handlers.StartClusterHandler(mockCluster, "cohortId")
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		{
			expected := []struct {
				CohortId string
				K        int
			}{
				{CohortId: "cohort-1", K: 3},
			}
			if !cmp.SliceEq(mockCluster.Calls.New, expected) {
				t.Errorf(
					"unmatch: params for ClusterJobInterface.New:\n- actual: %+v\n- expected: %+v",
					mockCluster.Calls.New, expected,
				)
			}
		}

		actual := apiclusters.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		if expected := apiclusters.ComposeDetail(job); !actual.Equal(expected) {
			t.Errorf(
				"data does not match. (actual, expected) = \n(%+v, \n%+v)",
				actual, expected,
			)
		}
	})

	t.Run("it responds error", func(t *testing.T) {
		type when struct {
			body       string
			errorOnNew error
		}
		type then struct {
			statusCode int
		}

		for name, testcase := range map[string]struct {
			when
			then
		}{
			"(Bad Request) when the body is not json": {
				when{body: `it is not json`},
				then{statusCode: http.StatusBadRequest},
			},
			"(Bad Request) when k is too small": {
				when{body: `{"k": 1}`, errorOnNew: domain.ErrInvalidClusterK},
				then{statusCode: http.StatusBadRequest},
			},
			"(Conflict) when the feature table is not ready": {
				when{body: `{"k": 3}`, errorOnNew: domain.ErrFeatureTableNotReady},
				then{statusCode: http.StatusConflict},
			},
			"(Not Found) when no such cohort exists": {
				when{body: `{"k": 3}`, errorOnNew: kdberr.ErrMissing},
				then{statusCode: http.StatusNotFound},
			},
			"(Internal Server Error) when ClusterJobInterface.New causes error": {
				when{body: `{"k": 3}`, errorOnNew: errors.New("fake error")},
				then{statusCode: http.StatusInternalServerError},
			},
		} {
			t.Run(name, func(t *testing.T) {
				mockCluster := mockdbcluster.NewClusterJobInterface()
				mockCluster.Impl.New = func(ctx context.Context, cohortId string, k int) (string, error) {
					return "", testcase.when.errorOnNew
				}

				e := echo.New()
				c, _ := httptestutil.Post(
					e, "/api/cohorts/cohort-1/clusters", strings.NewReader(testcase.when.body),
					httptestutil.ContentType("application/json"),
				)
				c.SetParamNames("cohortId")
				c.SetParamValues("cohort-1")

				testee := handlers.StartClusterHandler(mockCluster, "cohortId")
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

func TestFindClusterHandler(t *testing.T) {

	t.Run("it passes query and responds details", func(t *testing.T) {
		updatedAt := try.To(rfctime.ParseRFC3339DateTime(
			"2025-11-03T10:00:00+00:00",
		)).OrFatal(t)

		jobs := []domain.ClusterJob{
			{
				Id: "cluster-1", CohortId: "cohort-1",
				Status: domain.ClusterDone, K: 3, RemoteId: "remote-1",
				UpdatedAt: updatedAt.Time(),
			},
			{
				Id: "cluster-2", CohortId: "cohort-1",
				Status: domain.ClusterTraining, K: 4, RemoteId: "remote-2",
				UpdatedAt: updatedAt.Time(),
			},
		}

		mockCluster := mockdbcluster.NewClusterJobInterface()
		mockCluster.Impl.Find = func(ctx context.Context, query domain.ClusterJobFindQuery) ([]string, error) {
			return slices.Map(jobs, func(j domain.ClusterJob) string { return j.Id }), nil
		}
		mockCluster.Impl.Get = func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
			return slices.ToMap(jobs, func(j domain.ClusterJob) string { return j.Id }), nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/clusters?cohort=cohort-1&status=done,training")

		testee := handlers.FindClusterHandler(mockCluster)
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		if len(mockCluster.Calls.Find) != 1 {
			t.Fatalf("Find: called %d times", len(mockCluster.Calls.Find))
		}
		{
			actual := mockCluster.Calls.Find[0]
			if !cmp.SliceContentEq(actual.CohortId, []string{"cohort-1"}) ||
				!cmp.SliceContentEq(actual.Status, []domain.ClusterJobStatus{
					domain.ClusterDone, domain.ClusterTraining,
				}) {
				t.Errorf("unmatch: params for ClusterJobInterface.Find: %+v", actual)
			}
		}

		actual := []apiclusters.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		expected := slices.Map(jobs, apiclusters.ComposeDetail)
		if !cmp.SliceEqWith(actual, expected, apiclusters.Detail.Equal) {
			t.Errorf(
				"data does not match. (actual, expected) = \n(%+v, \n%+v)",
				actual, expected,
			)
		}
	})

	t.Run("(Bad Request) when status in query is unknown value", func(t *testing.T) {
		mockCluster := mockdbcluster.NewClusterJobInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/clusters?status=unknown")

		testee := handlers.FindClusterHandler(mockCluster)
		err := testee(c)
		if err == nil {
			t.Fatalf("no error but it is not expected result")
		}
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusBadRequest {
			t.Fatalf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusBadRequest)
		}
	})
}

func TestGetClusterHandler(t *testing.T) {

	t.Run("it responds the cluster job", func(t *testing.T) {
		updatedAt := try.To(rfctime.ParseRFC3339DateTime(
			"2025-11-03T10:00:00+00:00",
		)).OrFatal(t)

		job := domain.ClusterJob{
			Id: "cluster-1", CohortId: "cohort-1",
			Status: domain.ClusterFailed, K: 3, RemoteId: "remote-1",
			Message:   "training diverged",
			UpdatedAt: updatedAt.Time(),
		}

		mockCluster := mockdbcluster.NewClusterJobInterface()
		mockCluster.Impl.Get = func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
			return map[string]domain.ClusterJob{"cluster-1": job}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/clusters/cluster-1")
		c.SetParamNames("clusterJobId")
		c.SetParamValues("cluster-1")

		testee := handlers.GetClusterHandler(mockCluster, "clusterJobId")
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		actual := apiclusters.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		if expected := apiclusters.ComposeDetail(job); !actual.Equal(expected) {
			t.Errorf(
				"data does not match. (actual, expected) = \n(%+v, \n%+v)",
				actual, expected,
			)
		}
	})

	t.Run("(Not Found) when no such cluster job exists", func(t *testing.T) {
		mockCluster := mockdbcluster.NewClusterJobInterface()
		mockCluster.Impl.Get = func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
			return map[string]domain.ClusterJob{}, nil
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/clusters/no-such-cluster")
		c.SetParamNames("clusterJobId")
		c.SetParamValues("no-such-cluster")

		testee := handlers.GetClusterHandler(mockCluster, "clusterJobId")
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

func TestGetAssignmentsHandler(t *testing.T) {

	t.Run("it responds assignments of a done job", func(t *testing.T) {
		job := domain.ClusterJob{
			Id: "cluster-1", CohortId: "cohort-1",
			Status: domain.ClusterDone, K: 2, RemoteId: "remote-1",
		}

		mockCluster := mockdbcluster.NewClusterJobInterface()
		mockCluster.Impl.Get = func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
			return map[string]domain.ClusterJob{"cluster-1": job}, nil
		}
		trainer := mockclusterer.New(t)
		trainer.Impl.Assignments = func(ctx context.Context, remoteId string) ([]clusterer.Assignment, error) {
			if remoteId != "remote-1" {
				t.Errorf("unmatch: remoteId passed to Assignments: %s", remoteId)
			}
			return []clusterer.Assignment{
				{SampleId: "NA00001", Cluster: 0},
				{SampleId: "NA00002", Cluster: 1},
			}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/clusters/cluster-1/assignments")
		c.SetParamNames("clusterJobId")
		c.SetParamValues("cluster-1")

		testee := handlers.GetAssignmentsHandler(mockCluster, trainer, "clusterJobId")
		if err := testee(c); err != nil {
			t.Fatalf("response is not illegal. error = %v", err)
		}

		actual := []apiclusters.Assignment{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not json: error = %v", err)
		}
		expected := []apiclusters.Assignment{
			{SampleId: "NA00001", Cluster: 0},
			{SampleId: "NA00002", Cluster: 1},
		}
		if !cmp.SliceEq(actual, expected) {
			t.Errorf(
				"data does not match. (actual, expected) = \n(%+v, \n%+v)",
				actual, expected,
			)
		}
	})

	t.Run("it responds error", func(t *testing.T) {
		type when struct {
			job                map[string]domain.ClusterJob
			errorOnAssignments error
		}
		type then struct {
			statusCode int
		}

		doneJob := map[string]domain.ClusterJob{
			"cluster-1": {
				Id: "cluster-1", CohortId: "cohort-1",
				Status: domain.ClusterDone, K: 2, RemoteId: "remote-1",
			},
		}

		for name, testcase := range map[string]struct {
			when
			then
		}{
			"(Not Found) when no such cluster job exists": {
				when{job: map[string]domain.ClusterJob{}},
				then{statusCode: http.StatusNotFound},
			},
			"(Conflict) when the job is not done": {
				when{job: map[string]domain.ClusterJob{
					"cluster-1": {
						Id: "cluster-1", CohortId: "cohort-1",
						Status: domain.ClusterTraining, K: 2, RemoteId: "remote-1",
					},
				}},
				then{statusCode: http.StatusConflict},
			},
			"(Service Unavailable) when the clustering service rejects the request": {
				when{
					job: doneJob,
					errorOnAssignments: &clusterer.ErrService{
						StatusCode: http.StatusNotFound, Message: "no such training",
					},
				},
				then{statusCode: http.StatusServiceUnavailable},
			},
			"(Internal Server Error) when the clustering service is unreachable": {
				when{
					job:                doneJob,
					errorOnAssignments: errors.New("fake transport error"),
				},
				then{statusCode: http.StatusInternalServerError},
			},
		} {
			t.Run(name, func(t *testing.T) {
				mockCluster := mockdbcluster.NewClusterJobInterface()
				mockCluster.Impl.Get = func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
					return testcase.when.job, nil
				}
				trainer := mockclusterer.New(t)
				trainer.Impl.Assignments = func(ctx context.Context, remoteId string) ([]clusterer.Assignment, error) {
					return nil, testcase.when.errorOnAssignments
				}

				e := echo.New()
				c, _ := httptestutil.Get(e, "/api/clusters/cluster-1/assignments")
				c.SetParamNames("clusterJobId")
				c.SetParamValues("cluster-1")

				testee := handlers.GetAssignmentsHandler(mockCluster, trainer, "clusterJobId")
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
