package mock

import (
	"context"
	"errors"
	"time"

	"github.com/snpflow/snpflow/pkg/domain"
	kdbfeature "github.com/snpflow/snpflow/pkg/domain/feature/db"
	dbmock "github.com/snpflow/snpflow/pkg/domain/internal/db/mock"
)

type FeatureInterface struct {
	Impl struct {
		Get               func(ctx context.Context, cohortId []string) (map[string]domain.FeatureTable, error)
		PickCohortToBuild func(ctx context.Context, rebuildAfter time.Duration) (string, bool, error)
		SetReady          func(ctx context.Context, cohortId string, path string, rows int, cols int, perChromosome map[string]int) error
		SetBroken         func(ctx context.Context, cohortId string) error
	}

	Calls struct {
		Get               dbmock.CallLog[[]string]
		PickCohortToBuild dbmock.CallLog[time.Duration]
		SetReady          dbmock.CallLog[struct {
			CohortId      string
			Path          string
			Rows          int
			Cols          int
			PerChromosome map[string]int
		}]
		SetBroken dbmock.CallLog[string]
	}
}

func NewFeatureInterface() *FeatureInterface {
	return &FeatureInterface{}
}

var _ kdbfeature.Interface = &FeatureInterface{}

func (m *FeatureInterface) Get(ctx context.Context, cohortId []string) (map[string]domain.FeatureTable, error) {
	m.Calls.Get = append(m.Calls.Get, cohortId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, cohortId)
	}
	panic(errors.New("it should not be called"))
}

func (m *FeatureInterface) PickCohortToBuild(ctx context.Context, rebuildAfter time.Duration) (string, bool, error) {
	m.Calls.PickCohortToBuild = append(m.Calls.PickCohortToBuild, rebuildAfter)
	if m.Impl.PickCohortToBuild != nil {
		return m.Impl.PickCohortToBuild(ctx, rebuildAfter)
	}
	panic(errors.New("it should not be called"))
}

func (m *FeatureInterface) SetReady(
	ctx context.Context, cohortId string, path string,
	rows int, cols int, perChromosome map[string]int,
) error {
	m.Calls.SetReady = append(m.Calls.SetReady, struct {
		CohortId      string
		Path          string
		Rows          int
		Cols          int
		PerChromosome map[string]int
	}{CohortId: cohortId, Path: path, Rows: rows, Cols: cols, PerChromosome: perChromosome})
	if m.Impl.SetReady != nil {
		return m.Impl.SetReady(ctx, cohortId, path, rows, cols, perChromosome)
	}
	panic(errors.New("it should not be called"))
}

func (m *FeatureInterface) SetBroken(ctx context.Context, cohortId string) error {
	m.Calls.SetBroken = append(m.Calls.SetBroken, cohortId)
	if m.Impl.SetBroken != nil {
		return m.Impl.SetBroken(ctx, cohortId)
	}
	panic(errors.New("it should not be called"))
}
