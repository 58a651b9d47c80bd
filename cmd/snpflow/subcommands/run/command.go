package run

import (
	run_find "github.com/snpflow/snpflow/cmd/snpflow/subcommands/run/find"
	run_retry "github.com/snpflow/snpflow/cmd/snpflow/subcommands/run/retry"
	run_show "github.com/snpflow/snpflow/cmd/snpflow/subcommands/run/show"
	run_stop "github.com/snpflow/snpflow/cmd/snpflow/subcommands/run/stop"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	show, err := run_show.New()
	if err != nil {
		return nil, err
	}
	find, err := run_find.New()
	if err != nil {
		return nil, err
	}
	stop, err := run_stop.New()
	if err != nil {
		return nil, err
	}
	retry, err := run_retry.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate filtering Runs.",
		struct{}{},
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("stop", stop),
		flarc.WithSubcommand("retry", retry),
	)
}
