package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
)

func (c *client) RegisterCohort(ctx context.Context, spec apicohorts.CohortSpec) (apicohorts.Detail, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return apicohorts.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("cohorts"), bytes.NewReader(b),
	)
	if err != nil {
		return apicohorts.Detail{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apicohorts.Detail{}, err
	}
	defer resp.Body.Close()

	var created apicohorts.Detail
	if err := unmarshalJsonResponse(
		resp, &created,
		MessageFor{
			Status4xx: fmt.Sprintf("cohort is not registered (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apicohorts.Detail{}, err
	}
	return created, nil
}

func (c *client) FindCohort(ctx context.Context, name []string) ([]apicohorts.Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("cohorts"), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if 0 < len(name) {
		q.Add("name", strings.Join(name, ","))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]apicohorts.Summary, 0, 5)
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

func (c *client) GetCohort(ctx context.Context, cohortId string) (apicohorts.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("cohorts", cohortId), nil,
	)
	if err != nil {
		return apicohorts.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apicohorts.Detail{}, err
	}
	defer resp.Body.Close()

	var found apicohorts.Detail
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("cohortId:%v is not found", cohortId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apicohorts.Detail{}, err
	}
	return found, nil
}

func (c *client) DeleteCohort(ctx context.Context, cohortId string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("cohorts", cohortId), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cohortId:%v can not be deleted", cohortId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}
