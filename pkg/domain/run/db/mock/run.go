package mock

import (
	"context"
	"errors"

	"github.com/snpflow/snpflow/pkg/domain"
	dbmock "github.com/snpflow/snpflow/pkg/domain/internal/db/mock"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
)

type RunInterface struct {
	Impl struct {
		Find             func(ctx context.Context, query domain.RunFindQuery) ([]string, error)
		Get              func(ctx context.Context, runId []string) (map[string]domain.Run, error)
		SetStatus        func(ctx context.Context, runId string, newStatus domain.RunStatus) error
		PickAndSetStatus func(ctx context.Context, cursor domain.RunCursor, task func(domain.Run) (domain.RunStatus, *domain.RunExit, error)) (domain.RunCursor, bool, error)
		Retry            func(ctx context.Context, runId string) error
	}

	Calls struct {
		Find      dbmock.CallLog[domain.RunFindQuery]
		Get       dbmock.CallLog[[]string]
		SetStatus dbmock.CallLog[struct {
			RunId     string
			NewStatus domain.RunStatus
		}]
		PickAndSetStatus dbmock.CallLog[domain.RunCursor]
		Retry            dbmock.CallLog[string]
	}
}

func NewRunInterface() *RunInterface {
	return &RunInterface{}
}

var _ kdbrun.Interface = &RunInterface{}

func (m *RunInterface) Find(ctx context.Context, query domain.RunFindQuery) ([]string, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) Get(ctx context.Context, runId []string) (map[string]domain.Run, error) {
	m.Calls.Get = append(m.Calls.Get, runId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, runId)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) SetStatus(ctx context.Context, runId string, newStatus domain.RunStatus) error {
	m.Calls.SetStatus = append(m.Calls.SetStatus, struct {
		RunId     string
		NewStatus domain.RunStatus
	}{RunId: runId, NewStatus: newStatus})
	if m.Impl.SetStatus != nil {
		return m.Impl.SetStatus(ctx, runId, newStatus)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) PickAndSetStatus(
	ctx context.Context,
	cursor domain.RunCursor,
	task func(domain.Run) (domain.RunStatus, *domain.RunExit, error),
) (domain.RunCursor, bool, error) {
	m.Calls.PickAndSetStatus = append(m.Calls.PickAndSetStatus, cursor)
	if m.Impl.PickAndSetStatus != nil {
		return m.Impl.PickAndSetStatus(ctx, cursor, task)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) Retry(ctx context.Context, runId string) error {
	m.Calls.Retry = append(m.Calls.Retry, runId)
	if m.Impl.Retry != nil {
		return m.Impl.Retry(ctx, runId)
	}
	panic(errors.New("it should not be called"))
}
