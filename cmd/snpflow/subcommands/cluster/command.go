package cluster

import (
	cluster_assignments "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cluster/assignments"
	cluster_find "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cluster/find"
	cluster_show "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cluster/show"
	cluster_start "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cluster/start"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	start, err := cluster_start.New()
	if err != nil {
		return nil, err
	}
	find, err := cluster_find.New()
	if err != nil {
		return nil, err
	}
	show, err := cluster_show.New()
	if err != nil {
		return nil, err
	}
	assignments, err := cluster_assignments.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate clustering jobs on the hosted service.",
		struct{}{},
		flarc.WithSubcommand("start", start),
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("assignments", assignments),
	)
}
