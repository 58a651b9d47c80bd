package rm

import (
	"context"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	"github.com/youta-t/flarc"
)

type Option struct {
	remove func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) error
}

func WithRemover(
	remove func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) error,
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.remove = remove
		return opt
	}
}

const ARG_COHORT_ID = "COHORT_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		remove: RunDeleteCohort,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Delete Cohort for the specified Cohort Id.",
		struct{}{},
		flarc.Args{
			{
				Name:       ARG_COHORT_ID,
				Required:   true,
				Repeatable: false,
				Help:       "Id of the Cohort to be deleted.",
			},
		},
		common.NewTask(Task(option.remove)),
		flarc.WithDescription(`
Delete Cohort for the specified Cohort Id.

A Cohort with live Runs can not be deleted. Stop them first with "run stop".
`),
	)
}

func Task(
	remove func(context.Context, krest.Client, string) error,
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		cohortId := cl.Args()[ARG_COHORT_ID][0]
		if err := remove(ctx, client, cohortId); err == nil {
			logger.Printf("deleted Cohort Id:%v", cohortId)
		} else {
			return err
		}
		return nil
	}
}

func RunDeleteCohort(ctx context.Context, client krest.Client, cohortId string) error {
	err := client.DeleteCohort(ctx, cohortId)
	if err != nil {
		return err
	}

	return nil
}
