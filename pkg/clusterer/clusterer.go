// Package clusterer is a client for the hosted clustering service.
//
// The service trains a clustering model on a feature table it fetches
// itself, and reports per-sample cluster assignments when done.
package clusterer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/snpflow/snpflow/pkg/utils/retry"
)

// a training request.
type TrainingSpec struct {
	// where the service can fetch the feature table from.
	FeatureURL string `json:"featureUrl"`

	// wanted number of clusters.
	K int `json:"k"`
}

type TrainingState string

const (
	StatePending   TrainingState = "pending"
	StateTraining  TrainingState = "training"
	StateCompleted TrainingState = "completed"
	StateFailed    TrainingState = "failed"
)

type TrainingStatus struct {
	State   TrainingState `json:"state"`
	Message string        `json:"message,omitempty"`
}

type Assignment struct {
	SampleId string `json:"sampleId"`
	Cluster  int    `json:"cluster"`
}

// the service rejected a request. Not retried.
type ErrService struct {
	StatusCode int
	Message    string
}

func (e *ErrService) Error() string {
	return fmt.Sprintf("clustering service: %d: %s", e.StatusCode, e.Message)
}

func AsErrService(err error) (*ErrService, bool) {
	se := new(*ErrService)
	if errors.As(err, se) {
		return *se, true
	}
	return nil, false
}

type Interface interface {
	// Submit starts a training and returns its id on the service side.
	Submit(ctx context.Context, spec TrainingSpec) (string, error)

	// Status reports how a training is going.
	Status(ctx context.Context, remoteId string) (TrainingStatus, error)

	// Assignments returns the cluster membership of each sample.
	//
	// Meaningful only when Status reports StateCompleted.
	Assignments(ctx context.Context, remoteId string) ([]Assignment, error)
}

type client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	backoff  func() retry.Backoff
	timeout  time.Duration
}

var _ Interface = &client{}

type Option func(*client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *client) { c.http = h }
}

func WithBackoff(b func() retry.Backoff) Option {
	return func(c *client) { c.backoff = b }
}

func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.timeout = d }
}

func New(endpoint string, apiKey string, options ...Option) Interface {
	c := &client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     http.DefaultClient,
		backoff:  func() retry.Backoff { return retry.StaticBackoff(1 * time.Second) },
		timeout:  30 * time.Second,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *client) Submit(ctx context.Context, spec TrainingSpec) (string, error) {
	var resp struct {
		Id string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/trainings", spec, &resp); err != nil {
		return "", err
	}
	return resp.Id, nil
}

func (c *client) Status(ctx context.Context, remoteId string) (TrainingStatus, error) {
	var resp TrainingStatus
	err := c.call(
		ctx, http.MethodGet, "/trainings/"+url.PathEscape(remoteId), nil, &resp,
	)
	return resp, err
}

func (c *client) Assignments(ctx context.Context, remoteId string) ([]Assignment, error) {
	var resp struct {
		Assignments []Assignment `json:"assignments"`
	}
	err := c.call(
		ctx, http.MethodGet,
		"/trainings/"+url.PathEscape(remoteId)+"/assignments",
		nil, &resp,
	)
	return resp.Assignments, err
}

// call sends one JSON request, retrying on 429 and 5xx.
func (c *client) call(ctx context.Context, method string, path string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = b
	}

	_, err := retry.Blocking(ctx, c.backoff(), func() (struct{}, error) {
		req, err := http.NewRequestWithContext(
			ctx, method, c.endpoint+path, bytes.NewReader(body),
		)
		if err != nil {
			return struct{}{}, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || 500 <= resp.StatusCode {
			io.Copy(io.Discard, resp.Body)
			return struct{}{}, retry.ErrRetry
		}
		if 400 <= resp.StatusCode {
			message := struct {
				Message string `json:"message"`
			}{}
			if b, err := io.ReadAll(resp.Body); err == nil {
				json.Unmarshal(b, &message)
				if message.Message == "" {
					message.Message = string(b)
				}
			}
			return struct{}{}, &ErrService{
				StatusCode: resp.StatusCode, Message: message.Message,
			}
		}

		if out == nil {
			return struct{}{}, nil
		}
		return struct{}{}, json.NewDecoder(resp.Body).Decode(out)
	})

	return err
}
