package features

import (
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
)

type Detail struct {
	CohortId string `json:"cohortId"`
	Status   string `json:"status"`

	// path of the merged CSV, relative to the storage root.
	// Empty unless the table is ready.
	Path string `json:"path,omitempty"`

	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`

	VariantsPerChromosome map[string]int `json:"variantsPerChromosome,omitempty"`

	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.CohortId == o.CohortId &&
		d.Status == o.Status &&
		d.Path == o.Path &&
		d.Rows == o.Rows &&
		d.Cols == o.Cols &&
		cmp.MapEq(d.VariantsPerChromosome, o.VariantsPerChromosome) &&
		d.UpdatedAt.Equal(&o.UpdatedAt)
}

// a download grant for one cohort's feature table.
type Token struct {
	Token string `json:"token"`
}

func ComposeDetail(ft domain.FeatureTable) Detail {
	return Detail{
		CohortId:              ft.CohortId,
		Status:                string(ft.Status),
		Path:                  ft.Path,
		Rows:                  ft.Rows,
		Cols:                  ft.Cols,
		VariantsPerChromosome: ft.VariantsPerChromosome,
		UpdatedAt:             rfctime.RFC3339(ft.UpdatedAt),
	}
}
