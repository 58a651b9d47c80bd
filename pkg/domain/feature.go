package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/snpflow/snpflow/pkg/utils/cmp"
)

// the feature table is not in building status, so it cannot be
// marked ready nor broken.
var ErrFeatureTableNotBuilding = errors.New("feature table is not building")

// the feature table is not ready, so it cannot be clustered nor downloaded.
var ErrFeatureTableNotReady = errors.New("feature table is not ready")

type FeatureTableStatus string

const (
	// not all runs of the cohort are done yet; no feature table exists.
	FeatureAbsent FeatureTableStatus = "absent"

	// per-chromosome CSVs are being merged.
	FeatureBuilding FeatureTableStatus = "building"

	// the feature table is written and readable.
	FeatureReady FeatureTableStatus = "ready"

	// merging failed. The table file, if any, should not be trusted.
	FeatureBroken FeatureTableStatus = "broken"
)

func (fs FeatureTableStatus) String() string {
	return string(fs)
}

func AsFeatureTableStatus(status string) (FeatureTableStatus, error) {
	switch status {
	case string(FeatureAbsent):
		return FeatureAbsent, nil
	case string(FeatureBuilding):
		return FeatureBuilding, nil
	case string(FeatureReady):
		return FeatureReady, nil
	case string(FeatureBroken):
		return FeatureBroken, nil
	default:
		return "", fmt.Errorf("'%s' is not FeatureTableStatus", status)
	}
}

// the aggregated samples x variants matrix of one cohort.
type FeatureTable struct {
	CohortId string
	Status   FeatureTableStatus

	// path of the merged CSV, relative to the storage root.
	// Empty unless Status is ready.
	Path string

	// sample rows and variant columns of the merged CSV.
	Rows int
	Cols int

	// variant counts per chromosome, keyed by chromosome name.
	VariantsPerChromosome map[string]int

	UpdatedAt time.Time
}

func (ft *FeatureTable) Equal(o *FeatureTable) bool {
	if (ft == nil) || (o == nil) {
		return (ft == nil) && (o == nil)
	}
	return ft.CohortId == o.CohortId &&
		ft.Status == o.Status &&
		ft.Path == o.Path &&
		ft.Rows == o.Rows &&
		ft.Cols == o.Cols &&
		cmp.MapEq(ft.VariantsPerChromosome, o.VariantsPerChromosome) &&
		ft.UpdatedAt.Equal(o.UpdatedAt)
}
