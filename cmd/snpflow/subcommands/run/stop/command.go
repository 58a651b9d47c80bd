package stop

import (
	"context"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/youta-t/flarc"
)

type Option struct {
	abort func(
		ctx context.Context,
		client krest.Client,
		runId string,
	) (apiruns.Detail, error)
}

func WithAborter(
	abort func(
		ctx context.Context,
		client krest.Client,
		runId string,
	) (apiruns.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.abort = abort
		return opt
	}
}

const ARG_RUNID = "RUN_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		abort: RunAbortRun,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Stop the Run for the specified Run Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the Run to be stopped",
			},
		},
		common.NewTask(Task(option.abort)),
		flarc.WithDescription(`
Abort the Run and let it be failed.

The worker Job of the Run is torn down, and the Run will not produce
its chromosome CSV. A failed Run can be started over with "retry".
`),
	)
}

func Task(
	abort func(context.Context, krest.Client, string) (apiruns.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		runId := cl.Args()[ARG_RUNID][0]

		if _, err := abort(ctx, client, runId); err != nil {
			return err
		}
		logger.Printf("Run Id: %s is aborting.", runId)
		return nil
	}
}

func RunAbortRun(
	ctx context.Context, client krest.Client, runId string,
) (apiruns.Detail, error) {
	return client.Abort(ctx, runId)
}
