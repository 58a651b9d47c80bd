package clusterer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/snpflow/snpflow/pkg/clusterer"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
	"github.com/snpflow/snpflow/pkg/utils/retry"
	"github.com/snpflow/snpflow/pkg/utils/try"
)

func fastBackoff() retry.Backoff {
	return retry.StaticBackoff(1 * time.Millisecond)
}

func TestSubmit(t *testing.T) {
	t.Run("when the service accepts the training, it returns the remote id", func(t *testing.T) {
		var gotSpec clusterer.TrainingSpec
		var gotAuth string
		svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/trainings" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotSpec); err != nil {
				t.Fatal(err)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "remote-training-1"})
		}))
		defer svc.Close()

		testee := clusterer.New(svc.URL, "test-api-key", clusterer.WithBackoff(fastBackoff))

		remoteId := try.To(testee.Submit(context.Background(), clusterer.TrainingSpec{
			FeatureURL: "https://snpflowd.example/api/cohorts/c1/features/content?token=xyz",
			K:          3,
		})).OrFatal(t)

		if remoteId != "remote-training-1" {
			t.Errorf("unexpected remote id: %s", remoteId)
		}
		if gotAuth != "Bearer test-api-key" {
			t.Errorf("unexpected authorization header: %s", gotAuth)
		}
		if gotSpec.K != 3 {
			t.Errorf("unexpected spec: %+v", gotSpec)
		}
	})

	t.Run("when the service keeps returning 500, it retries and then times out", func(t *testing.T) {
		attempts := 0
		svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts += 1
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer svc.Close()

		testee := clusterer.New(
			svc.URL, "",
			clusterer.WithBackoff(fastBackoff),
			clusterer.WithTimeout(50*time.Millisecond),
		)

		if _, err := testee.Submit(context.Background(), clusterer.TrainingSpec{K: 2}); err == nil {
			t.Errorf("expected error, got nil")
		}
		if attempts < 2 {
			t.Errorf("expected retries, got %d attempts", attempts)
		}
	})

	t.Run("when the service rejects with 400, it does not retry", func(t *testing.T) {
		attempts := 0
		svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts += 1
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "k is too large"})
		}))
		defer svc.Close()

		testee := clusterer.New(svc.URL, "", clusterer.WithBackoff(fastBackoff))

		_, err := testee.Submit(context.Background(), clusterer.TrainingSpec{K: 10000})
		se, ok := clusterer.AsErrService(err)
		if !ok {
			t.Fatalf("unexpected error: %v", err)
		}
		if se.StatusCode != http.StatusBadRequest || se.Message != "k is too large" {
			t.Errorf("unexpected service error: %+v", se)
		}
		if attempts != 1 {
			t.Errorf("expected a single attempt, got %d", attempts)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("it reports the state of the training", func(t *testing.T) {
		svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/trainings/remote-training-1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(clusterer.TrainingStatus{
				State: clusterer.StateTraining,
			})
		}))
		defer svc.Close()

		testee := clusterer.New(svc.URL, "", clusterer.WithBackoff(fastBackoff))

		status := try.To(testee.Status(context.Background(), "remote-training-1")).OrFatal(t)
		if status.State != clusterer.StateTraining {
			t.Errorf("unexpected status: %+v", status)
		}
	})
}

func TestAssignments(t *testing.T) {
	t.Run("it returns the cluster of each sample", func(t *testing.T) {
		svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/trainings/remote-training-1/assignments" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string][]clusterer.Assignment{
				"assignments": {
					{SampleId: "NA00001", Cluster: 0},
					{SampleId: "NA00002", Cluster: 2},
				},
			})
		}))
		defer svc.Close()

		testee := clusterer.New(svc.URL, "", clusterer.WithBackoff(fastBackoff))

		actual := try.To(testee.Assignments(context.Background(), "remote-training-1")).OrFatal(t)
		expected := []clusterer.Assignment{
			{SampleId: "NA00001", Cluster: 0},
			{SampleId: "NA00002", Cluster: 2},
		}
		if !cmp.SliceEq(actual, expected) {
			t.Errorf("unexpected assignments: (actual, expected) = (%v, %v)", actual, expected)
		}
	})
}
