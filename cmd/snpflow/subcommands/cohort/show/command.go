package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	"github.com/youta-t/flarc"
)

type Option struct {
	show func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) (apicohorts.Detail, error)
}

func WithShow(
	show func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) (apicohorts.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.show = show
		return dfc
	}
}

const ARG_COHORT_ID = "COHORT_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: RunShowCohort,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the Cohort information for the specified Cohort Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_COHORT_ID, Required: true,
				Help: "Id of the Cohort to be shown",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Return the Cohort information for the specified Cohort Id,
with the per-chromosome filtering Runs fanned out for it.
`),
	)
}

func Task(
	show func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) (apicohorts.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		cohortId := cl.Args()[ARG_COHORT_ID][0]

		found, err := show(ctx, client, cohortId)
		if err != nil {
			return fmt.Errorf("%w: Cohort Id:%s", err, cohortId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found Cohort")
		}
		return nil
	}
}

func RunShowCohort(
	ctx context.Context,
	client krest.Client,
	cohortId string,
) (apicohorts.Detail, error) {
	result, err := client.GetCohort(ctx, cohortId)
	if err != nil {
		return apicohorts.Detail{}, err
	}
	return result, nil
}
