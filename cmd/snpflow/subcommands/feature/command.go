package feature

import (
	feature_pull "github.com/snpflow/snpflow/cmd/snpflow/subcommands/feature/pull"
	feature_show "github.com/snpflow/snpflow/cmd/snpflow/subcommands/feature/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	show, err := feature_show.New()
	if err != nil {
		return nil, err
	}
	pull, err := feature_pull.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect and download feature tables.",
		struct{}{},
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("pull", pull),
	)
}
