package mock

import (
	"context"
	"errors"

	"github.com/snpflow/snpflow/pkg/domain"
	kdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db"
	dbmock "github.com/snpflow/snpflow/pkg/domain/internal/db/mock"
)

type CohortInterface struct {
	Impl struct {
		Register func(ctx context.Context, cohort domain.Cohort) (string, []string, error)
		Find     func(ctx context.Context, query domain.CohortFindQuery) ([]string, error)
		Get      func(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error)
		Delete   func(ctx context.Context, cohortId string) error
	}

	Calls struct {
		Register dbmock.CallLog[domain.Cohort]
		Find     dbmock.CallLog[domain.CohortFindQuery]
		Get      dbmock.CallLog[[]string]
		Delete   dbmock.CallLog[string]
	}
}

func NewCohortInterface() *CohortInterface {
	return &CohortInterface{}
}

var _ kdbcohort.Interface = &CohortInterface{}

func (m *CohortInterface) Register(ctx context.Context, cohort domain.Cohort) (string, []string, error) {
	m.Calls.Register = append(m.Calls.Register, cohort)
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, cohort)
	}
	panic(errors.New("it should not be called"))
}

func (m *CohortInterface) Find(ctx context.Context, query domain.CohortFindQuery) ([]string, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *CohortInterface) Get(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error) {
	m.Calls.Get = append(m.Calls.Get, cohortId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, cohortId)
	}
	panic(errors.New("it should not be called"))
}

func (m *CohortInterface) Delete(ctx context.Context, cohortId string) error {
	m.Calls.Delete = append(m.Calls.Delete, cohortId)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, cohortId)
	}
	panic(errors.New("it should not be called"))
}
