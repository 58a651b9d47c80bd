package cohorts

import (
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
	"github.com/snpflow/snpflow/pkg/utils/slices"
)

type FilterSpec struct {
	BiallelicOnly  bool    `json:"biallelicOnly" yaml:"biallelicOnly"`
	MinMAF         float64 `json:"minMaf" yaml:"minMaf"`
	MaxMissingRate float64 `json:"maxMissingRate" yaml:"maxMissingRate"`
}

// request body registering a new cohort.
type CohortSpec struct {
	Name        string     `json:"name" yaml:"name"`
	VCFRoot     string     `json:"vcfRoot" yaml:"vcfRoot"`
	SampleCount int        `json:"sampleCount" yaml:"sampleCount"`
	Chromosomes []string   `json:"chromosomes" yaml:"chromosomes"`
	Filter      FilterSpec `json:"filter" yaml:"filter"`
}

type Summary struct {
	CohortId    string          `json:"cohortId"`
	Name        string          `json:"name"`
	VCFRoot     string          `json:"vcfRoot"`
	SampleCount int             `json:"sampleCount"`
	Filter      FilterSpec      `json:"filter"`
	CreatedAt   rfctime.RFC3339 `json:"createdAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.CohortId == o.CohortId &&
		s.Name == o.Name &&
		s.VCFRoot == o.VCFRoot &&
		s.SampleCount == o.SampleCount &&
		s.Filter == o.Filter &&
		s.CreatedAt.Equal(&o.CreatedAt)
}

type Detail struct {
	Summary

	Chromosomes []string `json:"chromosomes"`

	// runs fanned out for the cohort, one per chromosome.
	Runs []apiruns.Summary `json:"runs"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEq(d.Chromosomes, o.Chromosomes) &&
		cmp.SliceEqWith(d.Runs, o.Runs, apiruns.Summary.Equal)
}

func ComposeSummary(c domain.CohortBody) Summary {
	return Summary{
		CohortId:    c.Id,
		Name:        c.Name,
		VCFRoot:     c.VCFRoot,
		SampleCount: c.SampleCount,
		Filter: FilterSpec{
			BiallelicOnly:  c.Filter.BiallelicOnly,
			MinMAF:         c.Filter.MinMAF,
			MaxMissingRate: c.Filter.MaxMissingRate,
		},
		CreatedAt: rfctime.RFC3339(c.CreatedAt),
	}
}

func ComposeDetail(c domain.Cohort, runs []domain.RunBody) Detail {
	return Detail{
		Summary:     ComposeSummary(c.CohortBody),
		Chromosomes: c.Chromosomes,
		Runs:        slices.Map(runs, apiruns.ComposeSummary),
	}
}
