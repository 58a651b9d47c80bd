package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	kprof "github.com/snpflow/snpflow/cmd/snpflow/config/profiles"
	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	apifeatures "github.com/snpflow/snpflow/pkg/api/types/features"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/snpflow/snpflow/pkg/utils/slices"
)

type Client interface {
	// RegisterCohort registers a new cohort and fans out its runs.
	//
	// Args
	//
	// - context.Context
	//
	// - apicohorts.CohortSpec: spec of cohort to be registered
	//
	// Returns
	//
	// - apicohorts.Detail: metadata of created cohort
	//
	// - error
	RegisterCohort(ctx context.Context, spec apicohorts.CohortSpec) (apicohorts.Detail, error)

	// FindCohort finds cohorts with given names.
	//
	// When names are empty, all cohorts are returned.
	FindCohort(ctx context.Context, name []string) ([]apicohorts.Summary, error)

	// GetCohort gets cohort detail with given cohortId.
	GetCohort(ctx context.Context, cohortId string) (apicohorts.Detail, error)

	// DeleteCohort deletes cohort with given cohortId.
	DeleteCohort(ctx context.Context, cohortId string) error

	// FindRun finds runs which satisfy all conditions in the parameter.
	FindRun(ctx context.Context, query FindRunParameter) ([]apiruns.Detail, error)

	// GetRun gets run detail with given runId.
	GetRun(ctx context.Context, runId string) (apiruns.Detail, error)

	// GetRunLog gets log of run with given runId.
	//
	// Returns
	//
	// - io.ReadCloser: stream of log
	//
	// - error
	GetRunLog(ctx context.Context, runId string) (io.ReadCloser, error)

	// Abort aborts run with given runId.
	Abort(ctx context.Context, runId string) (apiruns.Detail, error)

	// Retry retries run with given runId.
	Retry(ctx context.Context, runId string) (apiruns.Detail, error)

	// GetFeature gets the feature table status of the cohort.
	GetFeature(ctx context.Context, cohortId string) (apifeatures.Detail, error)

	// DownloadFeature downloads the merged feature table CSV of the cohort.
	//
	// Args
	//
	// - cohortId: identifier of the cohort
	//
	// - handler: function to be called for raw stream.
	// If handler returns an error, downloading is stopped and the error is returned.
	//
	// Returns
	//
	// - error: error occured when starting downloading.
	DownloadFeature(ctx context.Context, cohortId string, handler func(io.Reader) error) error

	// StartCluster starts a clustering job for the cohort.
	StartCluster(ctx context.Context, cohortId string, spec apiclusters.Spec) (apiclusters.Detail, error)

	// FindCluster finds cluster jobs with given cohortIds and statuses.
	FindCluster(ctx context.Context, cohortId []string, status []string) ([]apiclusters.Detail, error)

	// GetCluster gets cluster job detail with given clusterJobId.
	GetCluster(ctx context.Context, clusterJobId string) (apiclusters.Detail, error)

	// GetAssignments gets per-sample cluster assignments of the done cluster job.
	GetAssignments(ctx context.Context, clusterJobId string) ([]apiclusters.Assignment, error)
}

type client struct {
	httpclient *http.Client
	api        string
}

// create new client for Profile
//
// # Args
//
// - *kprof.Profile
//
// # Return
//
// - Client: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *kprof.Profile) (Client, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
	}

	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = slices.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
