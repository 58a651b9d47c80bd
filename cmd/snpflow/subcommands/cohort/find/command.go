package find

import (
	"context"
	"encoding/json"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	kflag "github.com/snpflow/snpflow/pkg/commandline/flag"
	ptr "github.com/snpflow/snpflow/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name *kflag.Argslice `flag:"name" alias:"n" help:"Find Cohorts with this name. Repeatable."`
}

type Option struct {
	find func(
		ctx context.Context,
		client krest.Client,
		name []string,
	) ([]apicohorts.Summary, error)
}

func WithFind(
	find func(
		ctx context.Context,
		client krest.Client,
		name []string,
	) ([]apicohorts.Summary, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.find = find
		return dfc
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		find: RunFindCohort,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Display Cohorts that satisfy all specified conditions.",
		Flag{
			Name: &kflag.Argslice{},
		},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Display Cohorts that satisfy all specified conditions.

If no condition is specified, all Cohorts are displayed.

Example
-------

Finding Cohorts with name "1kgp-chr-demo":

	{{ .Command }} --name 1kgp-chr-demo
	{{ .Command }} -n 1kgp-chr-demo

	(both above are equivalent)

Finding Cohorts with name "cohort-a" OR "cohort-b":

	{{ .Command }} --name cohort-a --name cohort-b
`),
	)
}

func Task(
	find func(
		ctx context.Context,
		client krest.Client,
		name []string,
	) ([]apicohorts.Summary, error),
) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		name := ptr.SafeDeref(flags.Name)

		found, err := find(ctx, client, name)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found Cohorts")
		}
		return nil
	}
}

func RunFindCohort(
	ctx context.Context,
	client krest.Client,
	name []string,
) ([]apicohorts.Summary, error) {
	result, err := client.FindCohort(ctx, name)
	if err != nil {
		return nil, err
	}
	return result, nil
}
