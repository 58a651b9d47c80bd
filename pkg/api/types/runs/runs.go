package runs

import (
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
)

type Exit struct {
	Code    uint8  `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *Exit) Equal(o *Exit) bool {
	if (e == nil) || (o == nil) {
		return (e == nil) && (o == nil)
	}
	return *e == *o
}

type Summary struct {
	RunId      string          `json:"runId"`
	CohortId   string          `json:"cohortId"`
	Chromosome string          `json:"chromosome"`
	Status     string          `json:"status"`
	Exit       *Exit           `json:"exit,omitempty"`
	UpdatedAt  rfctime.RFC3339 `json:"updatedAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.RunId == o.RunId &&
		s.CohortId == o.CohortId &&
		s.Chromosome == o.Chromosome &&
		s.Status == o.Status &&
		s.Exit.Equal(o.Exit) &&
		s.UpdatedAt.Equal(&o.UpdatedAt)
}

type Detail struct {
	Summary

	// path of the chromosome CSV the run writes, relative to the storage root.
	OutputPath string `json:"outputPath"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		d.OutputPath == o.OutputPath
}

func ComposeSummary(r domain.RunBody) Summary {
	var exit *Exit
	if ex := r.Exit; ex != nil {
		exit = &Exit{
			Code:    ex.Code,
			Message: ex.Message,
		}
	}
	return Summary{
		RunId:      r.Id,
		CohortId:   r.CohortId,
		Chromosome: r.Chromosome,
		Status:     string(r.Status),
		Exit:       exit,
		UpdatedAt:  rfctime.RFC3339(r.UpdatedAt),
	}
}

func ComposeDetail(r domain.Run) Detail {
	return Detail{
		Summary:    ComposeSummary(r.RunBody),
		OutputPath: r.OutputPath,
	}
}
