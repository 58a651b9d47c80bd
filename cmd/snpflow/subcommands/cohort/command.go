package cohort

import (
	cohort_create "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cohort/create"
	cohort_find "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cohort/find"
	cohort_rm "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cohort/rm"
	cohort_show "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cohort/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	create, err := cohort_create.New()
	if err != nil {
		return nil, err
	}
	find, err := cohort_find.New()
	if err != nil {
		return nil, err
	}
	show, err := cohort_show.New()
	if err != nil {
		return nil, err
	}
	rm, err := cohort_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate Cohorts.",
		struct{}{},
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("rm", rm),
	)
}
