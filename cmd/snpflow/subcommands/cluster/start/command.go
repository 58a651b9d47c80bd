package start

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
	"github.com/youta-t/flarc"
)

type Flags struct {
	K int `flag:"k" metavar:"N" help:"number of clusters to be trained. 2 or more."`
}

type Option struct {
	start func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
		spec apiclusters.Spec,
	) (apiclusters.Detail, error)
}

func WithStart(
	start func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
		spec apiclusters.Spec,
	) (apiclusters.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.start = start
		return dfc
	}
}

const ARG_COHORT_ID = "COHORT_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		start: RunStartCluster,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Start a clustering job for the specified Cohort.",
		Flags{
			K: 2,
		},
		flarc.Args{
			{
				Name: ARG_COHORT_ID, Required: true,
				Help: "Id of the Cohort whose feature table is to be clustered",
			},
		},
		common.NewTask(Task(option.start)),
		flarc.WithDescription(`
Start a clustering job on the hosted clustering service.

The feature table of the Cohort should be "ready" before starting.
The job is submitted in background; track it with "show".
`),
	)
}

func Task(
	start func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
		spec apiclusters.Spec,
	) (apiclusters.Detail, error),
) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		cohortId := cl.Args()[ARG_COHORT_ID][0]

		flags := cl.Flags()
		if flags.K < 2 {
			return fmt.Errorf("%w: --k should be 2 or more", flarc.ErrUsage)
		}

		created, err := start(ctx, client, cohortId, apiclusters.Spec{K: flags.K})
		if err != nil {
			return fmt.Errorf("failed to start a clustering job: %w", err)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(created); err != nil {
			logger.Panicf("fail to dump the created cluster job")
		}
		return nil
	}
}

func RunStartCluster(
	ctx context.Context,
	client krest.Client,
	cohortId string,
	spec apiclusters.Spec,
) (apiclusters.Detail, error) {
	result, err := client.StartCluster(ctx, cohortId, spec)
	if err != nil {
		return apiclusters.Detail{}, err
	}
	return result, nil
}
