package mock

import (
	"context"
	"io"
	"testing"

	"github.com/snpflow/snpflow/cmd/snpflow/rest"
	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	apifeatures "github.com/snpflow/snpflow/pkg/api/types/features"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
)

type StartClusterArgs struct {
	CohortId string
	Spec     apiclusters.Spec
}

type FindClusterArgs struct {
	CohortId []string
	Status   []string
}

func New(t *testing.T) *mockClient {
	return &mockClient{t: t}
}

type mockClient struct {
	t    *testing.T
	Impl struct {
		RegisterCohort  func(ctx context.Context, spec apicohorts.CohortSpec) (apicohorts.Detail, error)
		FindCohort      func(ctx context.Context, name []string) ([]apicohorts.Summary, error)
		GetCohort       func(ctx context.Context, cohortId string) (apicohorts.Detail, error)
		DeleteCohort    func(ctx context.Context, cohortId string) error
		FindRun         func(ctx context.Context, query rest.FindRunParameter) ([]apiruns.Detail, error)
		GetRun          func(ctx context.Context, runId string) (apiruns.Detail, error)
		GetRunLog       func(ctx context.Context, runId string) (io.ReadCloser, error)
		Abort           func(ctx context.Context, runId string) (apiruns.Detail, error)
		Retry           func(ctx context.Context, runId string) (apiruns.Detail, error)
		GetFeature      func(ctx context.Context, cohortId string) (apifeatures.Detail, error)
		DownloadFeature func(ctx context.Context, cohortId string, handler func(io.Reader) error) error
		StartCluster    func(ctx context.Context, cohortId string, spec apiclusters.Spec) (apiclusters.Detail, error)
		FindCluster     func(ctx context.Context, cohortId []string, status []string) ([]apiclusters.Detail, error)
		GetCluster      func(ctx context.Context, clusterJobId string) (apiclusters.Detail, error)
		GetAssignments  func(ctx context.Context, clusterJobId string) ([]apiclusters.Assignment, error)
	}
	Calls struct {
		RegisterCohort  []apicohorts.CohortSpec
		FindCohort      [][]string
		GetCohort       []string
		DeleteCohort    []string
		FindRun         []rest.FindRunParameter
		GetRun          []string
		GetRunLog       []string
		Abort           []string
		Retry           []string
		GetFeature      []string
		DownloadFeature []string
		StartCluster    []StartClusterArgs
		FindCluster     []FindClusterArgs
		GetCluster      []string
		GetAssignments  []string
	}
}

var _ rest.Client = &mockClient{}

func (m *mockClient) RegisterCohort(ctx context.Context, spec apicohorts.CohortSpec) (apicohorts.Detail, error) {
	m.t.Helper()

	m.Calls.RegisterCohort = append(m.Calls.RegisterCohort, spec)
	if m.Impl.RegisterCohort == nil {
		m.t.Fatal("RegisterCohort is not ready to be called")
	}
	return m.Impl.RegisterCohort(ctx, spec)
}

func (m *mockClient) FindCohort(ctx context.Context, name []string) ([]apicohorts.Summary, error) {
	m.t.Helper()

	m.Calls.FindCohort = append(m.Calls.FindCohort, name)
	if m.Impl.FindCohort == nil {
		m.t.Fatal("FindCohort is not ready to be called")
	}
	return m.Impl.FindCohort(ctx, name)
}

func (m *mockClient) GetCohort(ctx context.Context, cohortId string) (apicohorts.Detail, error) {
	m.t.Helper()

	m.Calls.GetCohort = append(m.Calls.GetCohort, cohortId)
	if m.Impl.GetCohort == nil {
		m.t.Fatal("GetCohort is not ready to be called")
	}
	return m.Impl.GetCohort(ctx, cohortId)
}

func (m *mockClient) DeleteCohort(ctx context.Context, cohortId string) error {
	m.t.Helper()

	m.Calls.DeleteCohort = append(m.Calls.DeleteCohort, cohortId)
	if m.Impl.DeleteCohort == nil {
		m.t.Fatal("DeleteCohort is not ready to be called")
	}
	return m.Impl.DeleteCohort(ctx, cohortId)
}

func (m *mockClient) FindRun(ctx context.Context, query rest.FindRunParameter) ([]apiruns.Detail, error) {
	m.t.Helper()

	m.Calls.FindRun = append(m.Calls.FindRun, query)
	if m.Impl.FindRun == nil {
		m.t.Fatal("FindRun is not ready to be called")
	}
	return m.Impl.FindRun(ctx, query)
}

func (m *mockClient) GetRun(ctx context.Context, runId string) (apiruns.Detail, error) {
	m.t.Helper()

	m.Calls.GetRun = append(m.Calls.GetRun, runId)
	if m.Impl.GetRun == nil {
		m.t.Fatal("GetRun is not ready to be called")
	}
	return m.Impl.GetRun(ctx, runId)
}

func (m *mockClient) GetRunLog(ctx context.Context, runId string) (io.ReadCloser, error) {
	m.t.Helper()

	m.Calls.GetRunLog = append(m.Calls.GetRunLog, runId)
	if m.Impl.GetRunLog == nil {
		m.t.Fatal("GetRunLog is not ready to be called")
	}
	return m.Impl.GetRunLog(ctx, runId)
}

func (m *mockClient) Abort(ctx context.Context, runId string) (apiruns.Detail, error) {
	m.t.Helper()

	m.Calls.Abort = append(m.Calls.Abort, runId)
	if m.Impl.Abort == nil {
		m.t.Fatal("Abort is not ready to be called")
	}
	return m.Impl.Abort(ctx, runId)
}

func (m *mockClient) Retry(ctx context.Context, runId string) (apiruns.Detail, error) {
	m.t.Helper()

	m.Calls.Retry = append(m.Calls.Retry, runId)
	if m.Impl.Retry == nil {
		m.t.Fatal("Retry is not ready to be called")
	}
	return m.Impl.Retry(ctx, runId)
}

func (m *mockClient) GetFeature(ctx context.Context, cohortId string) (apifeatures.Detail, error) {
	m.t.Helper()

	m.Calls.GetFeature = append(m.Calls.GetFeature, cohortId)
	if m.Impl.GetFeature == nil {
		m.t.Fatal("GetFeature is not ready to be called")
	}
	return m.Impl.GetFeature(ctx, cohortId)
}

func (m *mockClient) DownloadFeature(ctx context.Context, cohortId string, handler func(io.Reader) error) error {
	m.t.Helper()

	m.Calls.DownloadFeature = append(m.Calls.DownloadFeature, cohortId)
	if m.Impl.DownloadFeature == nil {
		m.t.Fatal("DownloadFeature is not ready to be called")
	}
	return m.Impl.DownloadFeature(ctx, cohortId, handler)
}

func (m *mockClient) StartCluster(ctx context.Context, cohortId string, spec apiclusters.Spec) (apiclusters.Detail, error) {
	m.t.Helper()

	m.Calls.StartCluster = append(m.Calls.StartCluster, StartClusterArgs{CohortId: cohortId, Spec: spec})
	if m.Impl.StartCluster == nil {
		m.t.Fatal("StartCluster is not ready to be called")
	}
	return m.Impl.StartCluster(ctx, cohortId, spec)
}

func (m *mockClient) FindCluster(ctx context.Context, cohortId []string, status []string) ([]apiclusters.Detail, error) {
	m.t.Helper()

	m.Calls.FindCluster = append(m.Calls.FindCluster, FindClusterArgs{CohortId: cohortId, Status: status})
	if m.Impl.FindCluster == nil {
		m.t.Fatal("FindCluster is not ready to be called")
	}
	return m.Impl.FindCluster(ctx, cohortId, status)
}

func (m *mockClient) GetCluster(ctx context.Context, clusterJobId string) (apiclusters.Detail, error) {
	m.t.Helper()

	m.Calls.GetCluster = append(m.Calls.GetCluster, clusterJobId)
	if m.Impl.GetCluster == nil {
		m.t.Fatal("GetCluster is not ready to be called")
	}
	return m.Impl.GetCluster(ctx, clusterJobId)
}

func (m *mockClient) GetAssignments(ctx context.Context, clusterJobId string) ([]apiclusters.Assignment, error) {
	m.t.Helper()

	m.Calls.GetAssignments = append(m.Calls.GetAssignments, clusterJobId)
	if m.Impl.GetAssignments == nil {
		m.t.Fatal("GetAssignments is not ready to be called")
	}
	return m.Impl.GetAssignments(ctx, clusterJobId)
}
