package mock

import (
	"context"
	"testing"

	"github.com/snpflow/snpflow/pkg/clusterer"
)

type MockClusterer struct {
	t    *testing.T
	Impl struct {
		Submit      func(ctx context.Context, spec clusterer.TrainingSpec) (string, error)
		Status      func(ctx context.Context, remoteId string) (clusterer.TrainingStatus, error)
		Assignments func(ctx context.Context, remoteId string) ([]clusterer.Assignment, error)
	}
}

var _ clusterer.Interface = &MockClusterer{}

func New(t *testing.T) *MockClusterer {
	return &MockClusterer{t: t}
}

func (m *MockClusterer) Submit(ctx context.Context, spec clusterer.TrainingSpec) (string, error) {
	if m.Impl.Submit == nil {
		m.t.Fatal("Submit is not implemented")
	}
	return m.Impl.Submit(ctx, spec)
}

func (m *MockClusterer) Status(ctx context.Context, remoteId string) (clusterer.TrainingStatus, error) {
	if m.Impl.Status == nil {
		m.t.Fatal("Status is not implemented")
	}
	return m.Impl.Status(ctx, remoteId)
}

func (m *MockClusterer) Assignments(ctx context.Context, remoteId string) ([]clusterer.Assignment, error) {
	if m.Impl.Assignments == nil {
		m.t.Fatal("Assignments is not implemented")
	}
	return m.Impl.Assignments(ctx, remoteId)
}
