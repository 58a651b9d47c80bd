package retry

import (
	"context"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/youta-t/flarc"
)

type Option struct {
	retry func(
		ctx context.Context,
		client krest.Client,
		runId string,
	) (apiruns.Detail, error)
}

func WithRetrier(
	retry func(
		ctx context.Context,
		client krest.Client,
		runId string,
	) (apiruns.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.retry = retry
		return opt
	}
}

const ARG_RUNID = "RUN_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		retry: RunRetryRun,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Retry the failed Run for the specified Run Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the Run to be retried",
			},
		},
		common.NewTask(Task(option.retry)),
		flarc.WithDescription(`
Send the failed Run back to the queue and let it be filtered again.

Only failed Runs can be retried.
`),
	)
}

func Task(
	retry func(context.Context, krest.Client, string) (apiruns.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		runId := cl.Args()[ARG_RUNID][0]

		if _, err := retry(ctx, client, runId); err != nil {
			return err
		}
		logger.Printf("Run Id: %s is waiting to be filtered again.", runId)
		return nil
	}
}

func RunRetryRun(
	ctx context.Context, client krest.Client, runId string,
) (apiruns.Detail, error) {
	return client.Retry(ctx, runId)
}
