package clusters

import (
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
)

// request body starting a clustering job.
type Spec struct {
	K int `json:"k" yaml:"k"`
}

type Detail struct {
	ClusterJobId string `json:"clusterJobId"`
	CohortId     string `json:"cohortId"`
	Status       string `json:"status"`
	K            int    `json:"k"`

	// id of the training on the clustering service side, once submitted.
	RemoteId string `json:"remoteId,omitempty"`

	// message from the clustering service, if any.
	Message string `json:"message,omitempty"`

	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.ClusterJobId == o.ClusterJobId &&
		d.CohortId == o.CohortId &&
		d.Status == o.Status &&
		d.K == o.K &&
		d.RemoteId == o.RemoteId &&
		d.Message == o.Message &&
		d.UpdatedAt.Equal(&o.UpdatedAt)
}

type Assignment struct {
	SampleId string `json:"sampleId"`
	Cluster  int    `json:"cluster"`
}

func ComposeDetail(cj domain.ClusterJob) Detail {
	return Detail{
		ClusterJobId: cj.Id,
		CohortId:     cj.CohortId,
		Status:       string(cj.Status),
		K:            cj.K,
		RemoteId:     cj.RemoteId,
		Message:      cj.Message,
		UpdatedAt:    rfctime.RFC3339(cj.UpdatedAt),
	}
}

func ComposeAssignment(a domain.ClusterAssignment) Assignment {
	return Assignment{
		SampleId: a.SampleId,
		Cluster:  a.Cluster,
	}
}
