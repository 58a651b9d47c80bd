package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apifeatures "github.com/snpflow/snpflow/pkg/api/types/features"
	"github.com/youta-t/flarc"
)

type Option struct {
	show func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) (apifeatures.Detail, error)
}

func WithShow(
	show func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) (apifeatures.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.show = show
		return dfc
	}
}

const ARG_COHORT_ID = "COHORT_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: RunShowFeature,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the feature table status of the specified Cohort.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_COHORT_ID, Required: true,
				Help: "Id of the Cohort whose feature table is to be shown",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Return the feature table status of the specified Cohort.

The status is "absent" until all Runs of the Cohort are done,
"building" while merging, and "ready" when the table can be pulled.
`),
	)
}

func Task(
	show func(
		ctx context.Context,
		client krest.Client,
		cohortId string,
	) (apifeatures.Detail, error),
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
			logger.Panicf("fail to dump the feature table status")
		}
		return nil
	}
}

func RunShowFeature(
	ctx context.Context,
	client krest.Client,
	cohortId string,
) (apifeatures.Detail, error) {
	result, err := client.GetFeature(ctx, cohortId)
	if err != nil {
		return apifeatures.Detail{}, err
	}
	return result, nil
}
