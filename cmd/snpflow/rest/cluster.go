package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
)

func (c *client) StartCluster(ctx context.Context, cohortId string, spec apiclusters.Spec) (apiclusters.Detail, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return apiclusters.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("cohorts", cohortId, "clusters"), bytes.NewReader(b),
	)
	if err != nil {
		return apiclusters.Detail{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiclusters.Detail{}, err
	}
	defer resp.Body.Close()

	var created apiclusters.Detail
	if err := unmarshalJsonResponse(
		resp, &created,
		MessageFor{
			Status4xx: fmt.Sprintf("cluster job is not started for cohortId:%v", cohortId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiclusters.Detail{}, err
	}
	return created, nil
}

func (c *client) FindCluster(ctx context.Context, cohortId []string, status []string) ([]apiclusters.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("clusters"), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if 0 < len(cohortId) {
		q.Add("cohort", strings.Join(cohortId, ","))
	}
	if 0 < len(status) {
		q.Add("status", strings.Join(status, ","))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]apiclusters.Detail, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return found, nil
}

func (c *client) GetCluster(ctx context.Context, clusterJobId string) (apiclusters.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("clusters", clusterJobId), nil,
	)
	if err != nil {
		return apiclusters.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiclusters.Detail{}, err
	}
	defer resp.Body.Close()

	var found apiclusters.Detail
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("clusterJobId:%v is not found", clusterJobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiclusters.Detail{}, err
	}
	return found, nil
}

func (c *client) GetAssignments(ctx context.Context, clusterJobId string) ([]apiclusters.Assignment, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("clusters", clusterJobId, "assignments"), nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]apiclusters.Assignment, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("assignments of clusterJobId:%v are not available", clusterJobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return found, nil
}
