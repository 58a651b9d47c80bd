package create_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/rest/mock"
	cohort_create "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cohort/create"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/internal/commandline"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/logger"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
	"github.com/snpflow/snpflow/pkg/utils/try"
)

func TestCreateCommand(t *testing.T) {

	cohortFile := `
name: 1kgp-chr-demo
vcfRoot: cohorts/1kgp-chr-demo/vcf
sampleCount: 2504
chromosomes:
    - chr21
    - chr22
filter:
    biallelicOnly: true
    minMaf: 0.01
    maxMissingRate: 0.05
`

	expectedSpec := apicohorts.CohortSpec{
		Name:        "1kgp-chr-demo",
		VCFRoot:     "cohorts/1kgp-chr-demo/vcf",
		SampleCount: 2504,
		Chromosomes: []string{"chr21", "chr22"},
		Filter: apicohorts.FilterSpec{
			BiallelicOnly:  true,
			MinMAF:         0.01,
			MaxMissingRate: 0.05,
		},
	}

	registered := apicohorts.Detail{
		Summary: apicohorts.Summary{
			CohortId:    "cohort-1",
			Name:        "1kgp-chr-demo",
			VCFRoot:     "cohorts/1kgp-chr-demo/vcf",
			SampleCount: 2504,
			Filter: apicohorts.FilterSpec{
				BiallelicOnly:  true,
				MinMAF:         0.01,
				MaxMissingRate: 0.05,
			},
			CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
				"2025-11-01T12:00:00+00:00",
			)).OrFatal(t),
		},
		Chromosomes: []string{"chr21", "chr22"},
		Runs: []apiruns.Summary{
			{
				RunId: "run-1", CohortId: "cohort-1", Chromosome: "chr21",
				Status: "waiting",
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2025-11-01T12:00:00+00:00",
				)).OrFatal(t),
			},
			{
				RunId: "run-2", CohortId: "cohort-1", Chromosome: "chr22",
				Status: "waiting",
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2025-11-01T12:00:00+00:00",
				)).OrFatal(t),
			},
		},
	}

	t.Run("when it is passed a cohort file, it registers the cohort and dumps the result", func(t *testing.T) {
		specFile := filepath.Join(t.TempDir(), "cohort.yaml")
		if err := os.WriteFile(specFile, []byte(cohortFile), os.FileMode(0644)); err != nil {
			t.Fatal(err)
		}

		client := mock.New(t)

		register := func(
			_ context.Context, _ krest.Client, spec apicohorts.CohortSpec,
		) (apicohorts.Detail, error) {
			if spec.Name != expectedSpec.Name ||
				spec.VCFRoot != expectedSpec.VCFRoot ||
				spec.SampleCount != expectedSpec.SampleCount ||
				spec.Filter != expectedSpec.Filter {
				t.Errorf(
					"wrong spec: (actual, expected) != (%+v, %+v)",
					spec, expectedSpec,
				)
			}

			return registered, nil
		}

		testee := cohort_create.Task(register)

		ctx := context.Background()
		stdout := new(strings.Builder)

		err := testee(
			ctx, logger.Null(), client,
			commandline.MockCommandline[struct{}]{
				Stdout_: stdout,
				Stderr_: io.Discard,
				Args_: map[string][]string{
					cohort_create.ARG_COHORT_FILE: {specFile},
				},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		actual := apicohorts.Detail{}
		if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
			t.Fatal(err)
		}
		if !actual.Equal(registered) {
			t.Errorf(
				"wrong output: (actual, expected) != (%+v, %+v)",
				actual, registered,
			)
		}
	})

	t.Run("when the cohort file is missing, it returns an error", func(t *testing.T) {
		client := mock.New(t)

		register := func(
			_ context.Context, _ krest.Client, _ apicohorts.CohortSpec,
		) (apicohorts.Detail, error) {
			t.Fatal("register should not be called")
			return apicohorts.Detail{}, nil
		}

		testee := cohort_create.Task(register)

		err := testee(
			context.Background(), logger.Null(), client,
			commandline.MockCommandline[struct{}]{
				Stdout_: io.Discard,
				Stderr_: io.Discard,
				Args_: map[string][]string{
					cohort_create.ARG_COHORT_FILE: {
						filepath.Join(t.TempDir(), "no-such-file.yaml"),
					},
				},
			},
			[]any{},
		)
		if err == nil {
			t.Fatal("expected error is not returned")
		}
	})

	t.Run("when the server rejects the cohort, it returns the error", func(t *testing.T) {
		specFile := filepath.Join(t.TempDir(), "cohort.yaml")
		if err := os.WriteFile(specFile, []byte(cohortFile), os.FileMode(0644)); err != nil {
			t.Fatal(err)
		}

		client := mock.New(t)
		expectedError := errors.New("fake error")

		register := func(
			_ context.Context, _ krest.Client, _ apicohorts.CohortSpec,
		) (apicohorts.Detail, error) {
			return apicohorts.Detail{}, expectedError
		}

		testee := cohort_create.Task(register)

		err := testee(
			context.Background(), logger.Null(), client,
			commandline.MockCommandline[struct{}]{
				Stdout_: io.Discard,
				Stderr_: io.Discard,
				Args_: map[string][]string{
					cohort_create.ARG_COHORT_FILE: {specFile},
				},
			},
			[]any{},
		)
		if !errors.Is(err, expectedError) {
			t.Errorf("unexpected error: %s", err)
		}
	})
}
