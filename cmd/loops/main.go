package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	configs "github.com/snpflow/snpflow/pkg/configs/backend"
	"github.com/snpflow/snpflow/pkg/domain/snpflow"
	"github.com/snpflow/snpflow/pkg/utils/args"
	"github.com/snpflow/snpflow/pkg/utils/filewatch"
	"github.com/snpflow/snpflow/pkg/utils/try"
)

func main() {
	logger := byLogger(log.Default(), WithTimestamp())
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	// call cancel() when this function exits
	defer cancel()

	// define command line flags
	//-- path to config file
	pconfig := flag.String(
		"config", os.Getenv("SNPFLOW_BACKEND_CONFIG"), "path to config file",
	)
	//-- which loop type to run
	loopType := args.Parser(AsLoopType)
	flag.Var(loopType, "type", "one of loop type")
	//-- loop policy
	policy := args.Parser(recurring.ParsePolicy)
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog).`+
			` "forever[:COOLDOWN]" = run forever until error. When backlog is over, `+
			`wait COOLDOWN (optional duration. default: 0) as interval.`+
			` "backlog" = run until error or backlog is over.`,
	)
	// parse command line flags
	flag.Parse()

	if !loopType.IsSet() {
		logger.Fatal("flag -type is required")
	}
	loopPolicy := recurring.Policy(recurring.Forever(0))
	if policy.IsSet() {
		loopPolicy = policy.Value()
	}

	{
		// restart (by the orchestrator) when the config is updated
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadBackendConfig(*pconfig)).OrFatal(logger)
	flow := try.To(snpflow.Default(ctx, conf.Cluster())).OrFatal(logger)

	logger.Printf(
		`start loop "%s" /w policy "%s"`,
		loopType.Value().String(), loopPolicy.String(),
	)

	err := StartLoop(
		ctx, logger, flow,
		LoopManifest{
			Type:   loopType.Value(),
			Policy: recurring.UntilError(loopPolicy),
		},
	)

	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Fatal(err, "(loop context is cancelled by:", context.Cause(ctx), ")")
	}
	logger.Fatal(err)
}
