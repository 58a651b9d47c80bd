package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/snpflow/snpflow/pkg/utils/cmp"
)

// settings passed to the containerized filter tool.
type FilterSpec struct {
	// keep biallelic SNPs only.
	BiallelicOnly bool

	// minimum minor allele frequency to keep a variant. 0 disables the filter.
	MinMAF float64

	// maximum per-variant missing genotype rate to keep a variant.
	// 1 disables the filter.
	MaxMissingRate float64
}

func (fs FilterSpec) Validate() error {
	if fs.MinMAF < 0 || 0.5 < fs.MinMAF {
		return fmt.Errorf("%w: min maf %f should be in [0, 0.5]", ErrInvalidFilterSpec, fs.MinMAF)
	}
	if fs.MaxMissingRate < 0 || 1 < fs.MaxMissingRate {
		return fmt.Errorf("%w: max missing rate %f should be in [0, 1]", ErrInvalidFilterSpec, fs.MaxMissingRate)
	}
	return nil
}

// Core part of cohort: a registered variant-call dataset.
//
// VCF shards of a cohort are expected at `<VCFRoot>/<chromosome>.vcf.gz`
// under the shared storage root.
type CohortBody struct {
	Id   string
	Name string

	// directory of per-chromosome VCF shards, relative to the storage root.
	VCFRoot string

	// number of samples in the cohort's sample manifest.
	SampleCount int

	Filter FilterSpec

	CreatedAt time.Time
}

func (cb *CohortBody) Equal(o *CohortBody) bool {
	if (cb == nil) || (o == nil) {
		return (cb == nil) && (o == nil)
	}
	return cb.Id == o.Id &&
		cb.Name == o.Name &&
		cb.VCFRoot == o.VCFRoot &&
		cb.SampleCount == o.SampleCount &&
		cb.Filter == o.Filter &&
		cb.CreatedAt.Equal(o.CreatedAt)
}

type Cohort struct {
	CohortBody

	// chromosomes the cohort is sharded by, in aggregation order.
	Chromosomes []string
}

func (c *Cohort) Equal(other *Cohort) bool {
	return c.CohortBody.Equal(&other.CohortBody) &&
		cmp.SliceEq(c.Chromosomes, other.Chromosomes)
}

// parameter to query cohorts. Nil or empty dimensions mean "match any".
type CohortFindQuery struct {
	Name []string
}

var (
	ErrInvalidFilterSpec  = errors.New("invalid filter spec")
	ErrCohortHasLiveRuns  = errors.New("the cohort has non-terminal runs")
	ErrCohortNameConflict = errors.New("cohort name is already used")
)
