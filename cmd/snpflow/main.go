package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	subcluster "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cluster"
	subcohort "github.com/snpflow/snpflow/cmd/snpflow/subcommands/cohort"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	subfeature "github.com/snpflow/snpflow/cmd/snpflow/subcommands/feature"
	subinit "github.com/snpflow/snpflow/cmd/snpflow/subcommands/init"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/logger"
	subrun "github.com/snpflow/snpflow/cmd/snpflow/subcommands/run"
	subver "github.com/snpflow/snpflow/cmd/snpflow/subcommands/version"
	"github.com/snpflow/snpflow/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	cohort := try.To(subcohort.New()).OrFatal(logger)
	run := try.To(subrun.New()).OrFatal(logger)
	feature := try.To(subfeature.New()).OrFatal(logger)
	cluster := try.To(subcluster.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	snpflow := try.To(
		flarc.NewCommandGroup(
			"snpflow Commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("cohort", cohort),
			flarc.WithSubcommand("run", run),
			flarc.WithSubcommand("feature", feature),
			flarc.WithSubcommand("cluster", cluster),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, snpflow, flarc.WithHelp(true)))
}
