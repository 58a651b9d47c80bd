package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	kflag "github.com/snpflow/snpflow/pkg/commandline/flag"
	ptr "github.com/snpflow/snpflow/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Cohort     *kflag.Argslice             `flag:"cohort" alias:"c" help:"Find Runs of this Cohort Id. Repeatable."`
	Chromosome *kflag.Argslice             `flag:"chromosome" help:"Find Runs filtering this chromosome. Repeatable."`
	Status     *kflag.Argslice             `flag:"status" alias:"s" metavar:"waiting|ready|starting|running|done|failed..." help:"Find Runs in this status. Repeatable."`
	Since      *kflag.OptionalLooseRFC3339 `flag:"since" help:"Find Runs only updated at this time or later."`
	Duration   *kflag.OptionalDuration     `flag:"duration" help:"Find Runs only updated in '--duration' from '--since'."`
}

type Option struct {
	find func(
		ctx context.Context,
		log *log.Logger,
		client krest.Client,
		parameter krest.FindRunParameter,
	) ([]apiruns.Detail, error)
}

func WithFind(
	find func(
		ctx context.Context,
		log *log.Logger,
		client krest.Client,
		parameter krest.FindRunParameter,
	) ([]apiruns.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.find = find
		return dfc
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		find: RunFindRun,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Find Runs that satisfy all specified conditions.",
		Flag{
			Cohort:     &kflag.Argslice{},
			Chromosome: &kflag.Argslice{},
			Status:     &kflag.Argslice{},
			Since:      &kflag.OptionalLooseRFC3339{},
			Duration:   &kflag.OptionalDuration{},
		},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Find Runs that satisfy all specified conditions.

If the same flag is passed multiple times, it will display Runs that satisfy any of the values.

To limit results with a timespan, use '--since' and '--duration'.

'--since' limits a result to Runs which have been updated at equal to or later than '--since'.
The '--since' is expected to be formatted in RFC3339, and it is also possible to omit sub-seconds, seconds, minutes, hours and time offsets.
When the time offset is omitted, it is assumed the local time. Other fields omitted are assumed to be zero.
Delimiter between the date and time can be "T" or " " (space), whichever equivalent.
For example, "2024-10-31T01:23:45.987Z", "2024-10-31 01:23" or "2024-10-31+09:00".

'--duration' limits a result to Runs which have been updated in '--duration' from '--since'.
'--duration' should be used in conjunction with '--since'.
Supported units are "ms" (milliseconds), "s" (seconds), "m" (minutes) and "h" (hours).
For example, "300ms", "1.5h" or "2h45m". Units are required. Negative duration is not supported.

Example
-------

Finding Runs of Cohort Id "cohort-1":

	{{ .Command }} --cohort cohort-1
	{{ .Command }} -c cohort-1

	(both above are equivalent)

Finding failed Runs of chromosome "chr21":

	{{ .Command }} --chromosome chr21 --status failed

Scan over Runs for day by day:

	{{ .Command }} --duration 24h --since 2024-01-01
	{{ .Command }} --duration 24h --since 2024-01-02
	{{ .Command }} --duration 24h --since 2024-01-03
	# And so on. There are no overwraps between days.
`),
	)
}

func Task(
	find func(
		ctx context.Context,
		log *log.Logger,
		client krest.Client,
		parameter krest.FindRunParameter,
	) ([]apiruns.Detail, error),
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
		chromosome := ptr.SafeDeref(flags.Chromosome)
		status := ptr.SafeDeref(flags.Status)
		since := flags.Since.Time()
		duration := flags.Duration.Duration()

		if since == nil && duration != nil {
			return fmt.Errorf("%w: --duration must be together with --since", flarc.ErrUsage)
		}

		parameter := krest.FindRunParameter{
			CohortId:   cohort,
			Chromosome: chromosome,
			Status:     status,
			Since:      since,
			Duration:   duration,
		}

		found, err := find(ctx, logger, client, parameter)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found Runs")
		}
		return nil
	}
}

func RunFindRun(
	ctx context.Context,
	logger *log.Logger,
	client krest.Client,
	parameter krest.FindRunParameter,
) ([]apiruns.Detail, error) {
	result, err := client.FindRun(ctx, parameter)
	if err != nil {
		return nil, err
	}

	return result, nil
}
