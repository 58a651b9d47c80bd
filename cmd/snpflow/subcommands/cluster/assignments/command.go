package assignments

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
	get func(
		ctx context.Context,
		client krest.Client,
		clusterJobId string,
	) ([]apiclusters.Assignment, error)
}

func WithGet(
	get func(
		ctx context.Context,
		client krest.Client,
		clusterJobId string,
	) ([]apiclusters.Assignment, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.get = get
		return dfc
	}
}

const ARG_CLUSTER_JOB_ID = "CLUSTER_JOB_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		get: RunGetAssignments,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return per-sample cluster assignments of the specified cluster job.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_CLUSTER_JOB_ID, Required: true,
				Help: "Id of the done cluster job",
			},
		},
		common.NewTask(Task(option.get)),
		flarc.WithDescription(`
Return per-sample cluster assignments of the specified cluster job.

Assignments are available once the cluster job is "done".
`),
	)
}

func Task(
	get func(
		ctx context.Context,
		client krest.Client,
		clusterJobId string,
	) ([]apiclusters.Assignment, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		clusterJobId := cl.Args()[ARG_CLUSTER_JOB_ID][0]

		found, err := get(ctx, client, clusterJobId)
		if err != nil {
			return fmt.Errorf("%w: cluster job Id:%s", err, clusterJobId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump assignments")
		}
		return nil
	}
}

func RunGetAssignments(
	ctx context.Context,
	client krest.Client,
	clusterJobId string,
) ([]apiclusters.Assignment, error) {
	result, err := client.GetAssignments(ctx, clusterJobId)
	if err != nil {
		return nil, err
	}
	return result, nil
}
