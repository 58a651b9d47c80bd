package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"

	apifeatures "github.com/snpflow/snpflow/pkg/api/types/features"
)

func (c *client) GetFeature(ctx context.Context, cohortId string) (apifeatures.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("cohorts", cohortId, "features"), nil,
	)
	if err != nil {
		return apifeatures.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apifeatures.Detail{}, err
	}
	defer resp.Body.Close()

	var found apifeatures.Detail
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("cohortId:%v is not found", cohortId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apifeatures.Detail{}, err
	}
	return found, nil
}

// getFeatureToken mints a download token for the feature table of the cohort.
func (c *client) getFeatureToken(ctx context.Context, cohortId string) (apifeatures.Token, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("cohorts", cohortId, "features", "token"), nil,
	)
	if err != nil {
		return apifeatures.Token{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return apifeatures.Token{}, err
	}
	defer resp.Body.Close()

	var tok apifeatures.Token
	if err := unmarshalJsonResponse(
		resp, &tok,
		MessageFor{
			Status4xx: fmt.Sprintf("the feature table of cohortId:%v is not downloadable", cohortId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apifeatures.Token{}, err
	}
	return tok, nil
}

func (c *client) DownloadFeature(ctx context.Context, cohortId string, handler func(io.Reader) error) error {
	tok, err := c.getFeatureToken(ctx, cohortId)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("cohorts", cohortId, "features", "content"), nil,
	)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	q.Add("token", tok.Token)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot download the feature table of cohortId:%v", cohortId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		return err
	}

	return handler(r)
}
