package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
)

// FindRunParameter is a query for FindRun.
//
// Zero fields are not sent to the server.
type FindRunParameter struct {
	// CohortId which runs to be found belong to
	CohortId []string

	// Chromosome which runs to be found filter
	Chromosome []string

	// Status in which runs to be found are
	Status []string

	// Since when runs to be found have been updated
	Since *time.Time

	// Duration from Since in which runs to be found have been updated
	Duration *time.Duration
}

func (c *client) FindRun(ctx context.Context, query FindRunParameter) ([]apiruns.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("runs"), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	paramMap := map[string][]string{
		"cohort":     query.CohortId,
		"chromosome": query.Chromosome,
		"status":     query.Status,
	}

	if query.Since != nil {
		paramMap["since"] = []string{query.Since.Format(rfctime.RFC3339DateTimeFormatZ)}
	}

	if query.Duration != nil {
		paramMap["duration"] = []string{query.Duration.String()}
	}

	for key, value := range paramMap {
		if len(value) > 0 {
			q.Add(key, strings.Join(value, ","))
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]apiruns.Detail, 0, 5)
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

func (c *client) GetRun(ctx context.Context, runId string) (apiruns.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("runs", runId), nil,
	)
	if err != nil {
		return apiruns.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiruns.Detail{}, err
	}
	defer resp.Body.Close()

	var found apiruns.Detail
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("runId:%v is not found", runId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiruns.Detail{}, err
	}
	return found, nil
}

func (c *client) GetRunLog(ctx context.Context, runId string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("runs", runId, "log"), nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get log of runId:%v", runId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return r, nil
}

func (c *client) Abort(ctx context.Context, runId string) (apiruns.Detail, error) {
	return c.putRunStatus(ctx, runId, "abort")
}

func (c *client) Retry(ctx context.Context, runId string) (apiruns.Detail, error) {
	return c.putRunStatus(ctx, runId, "retry")
}

func (c *client) putRunStatus(ctx context.Context, runId string, verb string) (apiruns.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("runs", runId, verb), nil,
	)
	if err != nil {
		return apiruns.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apiruns.Detail{}, err
	}
	defer resp.Body.Close()

	var updated apiruns.Detail
	if err := unmarshalJsonResponse(
		resp, &updated,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot %s runId:%v", verb, runId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiruns.Detail{}, err
	}
	return updated, nil
}
