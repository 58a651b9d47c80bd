package find

import (
	"context"
	"encoding/json"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apiclusters "github.com/snpflow/snpflow/pkg/api/types/clusters"
	kflag "github.com/snpflow/snpflow/pkg/commandline/flag"
	ptr "github.com/snpflow/snpflow/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Cohort *kflag.Argslice `flag:"cohort" alias:"c" help:"Find cluster jobs of this Cohort Id. Repeatable."`
	Status *kflag.Argslice `flag:"status" alias:"s" metavar:"created|submitted|training|done|failed" help:"Find cluster jobs in this status. Repeatable."`
}

type Option struct {
	find func(
		ctx context.Context,
		client krest.Client,
		cohortId []string,
		status []string,
	) ([]apiclusters.Detail, error)
}

func WithFind(
	find func(
		ctx context.Context,
		client krest.Client,
		cohortId []string,
		status []string,
	) ([]apiclusters.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.find = find
		return dfc
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		find: RunFindCluster,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Display cluster jobs that satisfy all specified conditions.",
		Flag{
			Cohort: &kflag.Argslice{},
			Status: &kflag.Argslice{},
		},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Display cluster jobs that satisfy all specified conditions.

If no condition is specified, all cluster jobs are displayed.

Example
-------

Finding cluster jobs of Cohort Id "cohort-1":

	{{ .Command }} --cohort cohort-1

Finding done OR failed cluster jobs:

	{{ .Command }} --status done --status failed
`),
	)
}

func Task(
	find func(
		ctx context.Context,
		client krest.Client,
		cohortId []string,
		status []string,
	) ([]apiclusters.Detail, error),
) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		cohort := ptr.SafeDeref(flags.Cohort)
		status := ptr.SafeDeref(flags.Status)

		found, err := find(ctx, client, cohort, status)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found cluster jobs")
		}
		return nil
	}
}

func RunFindCluster(
	ctx context.Context,
	client krest.Client,
	cohortId []string,
	status []string,
) ([]apiclusters.Detail, error) {
	result, err := client.FindCluster(ctx, cohortId, status)
	if err != nil {
		return nil, err
	}
	return result, nil
}
