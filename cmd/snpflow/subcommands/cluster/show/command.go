package show

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

type Option struct {
	show func(
		ctx context.Context,
		client krest.Client,
		clusterJobId string,
	) (apiclusters.Detail, error)
}

func WithShow(
	show func(
		ctx context.Context,
		client krest.Client,
		clusterJobId string,
	) (apiclusters.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.show = show
		return dfc
	}
}

const ARG_CLUSTER_JOB_ID = "CLUSTER_JOB_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: RunShowCluster,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the cluster job information for the specified cluster job Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_CLUSTER_JOB_ID, Required: true,
				Help: "Id of the cluster job to be shown",
			},
		},
		common.NewTask(Task(option.show)),
	)
}

func Task(
	show func(
		ctx context.Context,
		client krest.Client,
		clusterJobId string,
	) (apiclusters.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		clusterJobId := cl.Args()[ARG_CLUSTER_JOB_ID][0]

		found, err := show(ctx, client, clusterJobId)
		if err != nil {
			return fmt.Errorf("%w: cluster job Id:%s", err, clusterJobId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found cluster job")
		}
		return nil
	}
}

func RunShowCluster(
	ctx context.Context,
	client krest.Client,
	clusterJobId string,
) (apiclusters.Detail, error) {
	result, err := client.GetCluster(ctx, clusterJobId)
	if err != nil {
		return apiclusters.Detail{}, err
	}
	return result, nil
}
