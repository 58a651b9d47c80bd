package mock

import (
	"context"
	"io"
	"testing"

	"github.com/snpflow/snpflow/pkg/conn/k8s/cluster"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/run/k8s/worker"
)

type Worker struct {
	t    *testing.T
	Impl struct {
		RunId     func() string
		JobStatus func(ctx context.Context) cluster.JobStatus
		ExitCode  func() (domain.RunExit, bool)
		Log       func(ctx context.Context) (io.ReadCloser, error)
		Close     func() error
	}
}

var _ worker.Worker = &Worker{}

func New(t *testing.T) *Worker {
	return &Worker{t: t}
}

func (m *Worker) RunId() string {
	if m.Impl.RunId == nil {
		m.t.Fatal("RunId is not implemented")
	}
	return m.Impl.RunId()
}

func (m *Worker) JobStatus(ctx context.Context) cluster.JobStatus {
	if m.Impl.JobStatus == nil {
		m.t.Fatal("JobStatus is not implemented")
	}
	return m.Impl.JobStatus(ctx)
}

func (m *Worker) ExitCode() (domain.RunExit, bool) {
	if m.Impl.ExitCode == nil {
		m.t.Fatal("ExitCode is not implemented")
	}
	return m.Impl.ExitCode()
}

func (m *Worker) Log(ctx context.Context) (io.ReadCloser, error) {
	if m.Impl.Log == nil {
		m.t.Fatal("Log is not implemented")
	}
	return m.Impl.Log(ctx)
}

func (m *Worker) Close() error {
	if m.Impl.Close == nil {
		m.t.Fatal("Close is not implemented")
	}
	return m.Impl.Close()
}
