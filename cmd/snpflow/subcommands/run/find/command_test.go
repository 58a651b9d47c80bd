package find_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/rest/mock"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/internal/commandline"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/logger"
	run_find "github.com/snpflow/snpflow/cmd/snpflow/subcommands/run/find"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	kflag "github.com/snpflow/snpflow/pkg/commandline/flag"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
	"github.com/snpflow/snpflow/pkg/utils/rfctime"
	"github.com/snpflow/snpflow/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func TestFindCommand(t *testing.T) {

	found := []apiruns.Detail{
		{
			Summary: apiruns.Summary{
				RunId: "run-1", CohortId: "cohort-1", Chromosome: "chr21",
				Status: "done",
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2025-11-01T12:34:56+00:00",
				)).OrFatal(t),
			},
			OutputPath: "cohorts/cohort-1/chr21.csv",
		},
	}

	since := try.To(rfctime.ParseLooseRFC3339("2025-11-01")).OrFatal(t).Time()
	duration := 2*time.Hour + 30*time.Minute

	type When struct {
		flag run_find.Flag
	}

	type Then struct {
		query krest.FindRunParameter
		err   error
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)

			find := func(
				_ context.Context, _ *log.Logger, _ krest.Client,
				parameter krest.FindRunParameter,
			) ([]apiruns.Detail, error) {
				if !cmp.SliceEq(parameter.CohortId, then.query.CohortId) {
					t.Errorf(
						"wrong cohort: (actual, expected) != (%+v, %+v)",
						parameter.CohortId, then.query.CohortId,
					)
				}
				if !cmp.SliceEq(parameter.Chromosome, then.query.Chromosome) {
					t.Errorf(
						"wrong chromosome: (actual, expected) != (%+v, %+v)",
						parameter.Chromosome, then.query.Chromosome,
					)
				}
				if !cmp.SliceEq(parameter.Status, then.query.Status) {
					t.Errorf(
						"wrong status: (actual, expected) != (%+v, %+v)",
						parameter.Status, then.query.Status,
					)
				}
				if (parameter.Since == nil) != (then.query.Since == nil) {
					t.Errorf(
						"wrong since: (actual, expected) != (%+v, %+v)",
						parameter.Since, then.query.Since,
					)
				} else if parameter.Since != nil && !parameter.Since.Equal(*then.query.Since) {
					t.Errorf(
						"wrong since: (actual, expected) != (%+v, %+v)",
						parameter.Since, then.query.Since,
					)
				}
				if (parameter.Duration == nil) != (then.query.Duration == nil) {
					t.Errorf(
						"wrong duration: (actual, expected) != (%+v, %+v)",
						parameter.Duration, then.query.Duration,
					)
				} else if parameter.Duration != nil && *parameter.Duration != *then.query.Duration {
					t.Errorf(
						"wrong duration: (actual, expected) != (%+v, %+v)",
						parameter.Duration, then.query.Duration,
					)
				}

				return found, nil
			}

			testee := run_find.Task(find)

			stdout := new(strings.Builder)

			err := testee(
				context.Background(), logger.Null(), client,
				commandline.MockCommandline[run_find.Flag]{
					Stdout_: stdout,
					Stderr_: io.Discard,
					Flags_:  when.flag,
					Args_:   map[string][]string{},
				},
				[]any{},
			)
			if !errors.Is(err, then.err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if then.err != nil {
				return
			}

			actual := []apiruns.Detail{}
			if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
				t.Fatal(err)
			}
			if !cmp.SliceEqWith(actual, found, apiruns.Detail.Equal) {
				t.Errorf(
					"wrong output: (actual, expected) != (%+v, %+v)",
					actual, found,
				)
			}
		}
	}

	t.Run("when no flags are passed, it queries without conditions", theory(
		When{
			flag: run_find.Flag{
				Cohort:     &kflag.Argslice{},
				Chromosome: &kflag.Argslice{},
				Status:     &kflag.Argslice{},
				Since:      &kflag.OptionalLooseRFC3339{},
				Duration:   &kflag.OptionalDuration{},
			},
		},
		Then{
			query: krest.FindRunParameter{
				CohortId:   []string{},
				Chromosome: []string{},
				Status:     []string{},
			},
		},
	))

	t.Run("when flags are passed, it queries with them", theory(
		When{
			flag: run_find.Flag{
				Cohort:     &kflag.Argslice{"cohort-1"},
				Chromosome: &kflag.Argslice{"chr21", "chr22"},
				Status:     &kflag.Argslice{"failed"},
				Since: func() *kflag.OptionalLooseRFC3339 {
					s := &kflag.OptionalLooseRFC3339{}
					if err := s.Set("2025-11-01"); err != nil {
						t.Fatal(err)
					}
					return s
				}(),
				Duration: func() *kflag.OptionalDuration {
					d := &kflag.OptionalDuration{}
					if err := d.Set("2h30m"); err != nil {
						t.Fatal(err)
					}
					return d
				}(),
			},
		},
		Then{
			query: krest.FindRunParameter{
				CohortId:   []string{"cohort-1"},
				Chromosome: []string{"chr21", "chr22"},
				Status:     []string{"failed"},
				Since:      &since,
				Duration:   &duration,
			},
		},
	))

	t.Run("when --duration is passed without --since, it returns ErrUsage", func(t *testing.T) {
		client := mock.New(t)

		find := func(
			_ context.Context, _ *log.Logger, _ krest.Client,
			_ krest.FindRunParameter,
		) ([]apiruns.Detail, error) {
			t.Fatal("find should not be called")
			return nil, nil
		}

		testee := run_find.Task(find)

		err := testee(
			context.Background(), logger.Null(), client,
			commandline.MockCommandline[run_find.Flag]{
				Stdout_: io.Discard,
				Stderr_: io.Discard,
				Flags_: run_find.Flag{
					Cohort:     &kflag.Argslice{},
					Chromosome: &kflag.Argslice{},
					Status:     &kflag.Argslice{},
					Since:      &kflag.OptionalLooseRFC3339{},
					Duration: func() *kflag.OptionalDuration {
						d := &kflag.OptionalDuration{}
						if err := d.Set("24h"); err != nil {
							t.Fatal(err)
						}
						return d
					}(),
				},
				Args_: map[string][]string{},
			},
			[]any{},
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %s", err)
		}
	})
}
