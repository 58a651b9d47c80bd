package mock

import (
	"context"
	"errors"

	"github.com/snpflow/snpflow/pkg/domain"
	kdbcluster "github.com/snpflow/snpflow/pkg/domain/clusterjob/db"
	dbmock "github.com/snpflow/snpflow/pkg/domain/internal/db/mock"
)

type ClusterJobInterface struct {
	Impl struct {
		New              func(ctx context.Context, cohortId string, k int) (string, error)
		Find             func(ctx context.Context, query domain.ClusterJobFindQuery) ([]string, error)
		Get              func(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error)
		PickAndSetStatus func(ctx context.Context, cursor domain.ClusterJobCursor, task func(domain.ClusterJob) (domain.ClusterJob, error)) (domain.ClusterJobCursor, bool, error)
	}

	Calls struct {
		New dbmock.CallLog[struct {
			CohortId string
			K        int
		}]
		Find             dbmock.CallLog[domain.ClusterJobFindQuery]
		Get              dbmock.CallLog[[]string]
		PickAndSetStatus dbmock.CallLog[domain.ClusterJobCursor]
	}
}

func NewClusterJobInterface() *ClusterJobInterface {
	return &ClusterJobInterface{}
}

var _ kdbcluster.Interface = &ClusterJobInterface{}

func (m *ClusterJobInterface) New(ctx context.Context, cohortId string, k int) (string, error) {
	m.Calls.New = append(m.Calls.New, struct {
		CohortId string
		K        int
	}{CohortId: cohortId, K: k})
	if m.Impl.New != nil {
		return m.Impl.New(ctx, cohortId, k)
	}
	panic(errors.New("it should not be called"))
}

func (m *ClusterJobInterface) Find(ctx context.Context, query domain.ClusterJobFindQuery) ([]string, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *ClusterJobInterface) Get(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
	m.Calls.Get = append(m.Calls.Get, clusterJobId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, clusterJobId)
	}
	panic(errors.New("it should not be called"))
}

func (m *ClusterJobInterface) PickAndSetStatus(
	ctx context.Context,
	cursor domain.ClusterJobCursor,
	task func(domain.ClusterJob) (domain.ClusterJob, error),
) (domain.ClusterJobCursor, bool, error) {
	m.Calls.PickAndSetStatus = append(m.Calls.PickAndSetStatus, cursor)
	if m.Impl.PickAndSetStatus != nil {
		return m.Impl.PickAndSetStatus(ctx, cursor, task)
	}
	panic(errors.New("it should not be called"))
}
