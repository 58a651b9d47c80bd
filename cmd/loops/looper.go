package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/snpflow/snpflow/cmd/loops/recurring"
	"github.com/snpflow/snpflow/cmd/loops/tasks/aggregate"
	"github.com/snpflow/snpflow/cmd/loops/tasks/clustering"
	"github.com/snpflow/snpflow/cmd/loops/tasks/finishing"
	"github.com/snpflow/snpflow/cmd/loops/tasks/housekeeping"
	"github.com/snpflow/snpflow/cmd/loops/tasks/initialize"
	"github.com/snpflow/snpflow/cmd/loops/tasks/runmanagement"
	"github.com/snpflow/snpflow/pkg/clusterer"
	"github.com/snpflow/snpflow/pkg/domain/snpflow"
	"github.com/snpflow/snpflow/pkg/domain/token"
	"github.com/snpflow/snpflow/pkg/loop"
)

type LoggerOptions func(*log.Logger) *log.Logger

func byLogger(l *log.Logger, opt ...LoggerOptions) *log.Logger {
	for _, o := range opt {
		l = o(l)
	}
	return l
}

func Copied() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		return log.New(l.Writer(), l.Prefix(), l.Flags())
	}
}

func WithPrefix(pre string) LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

func WithTimestamp() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetFlags(l.Flags() | log.Ldate | log.Ltime | log.Lmicroseconds)
		return l
	}
}

// Wrapper for monitoring loop tasks
//
//	Log the start and end of each time a task is executed. Essentially, it executes a task.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	// counter for execution of the task
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		timestamp := time.Now()

		logger.Printf("task start: #0x%X: ", counter)

		// log at the end of the task
		defer func() {
			logger.Printf(
				"task end: #0x%X (takes %s): %s\n with value = %#v",
				counter, time.Since(timestamp), next, ret,
			)
		}()

		ret, next = task(ctx, t)
		return
	}
}

// Manifest for starting a loop, which determines how the loop should behave.
type LoopManifest struct {
	// which loop to run
	Type LoopType

	// Policy for the looping
	Policy recurring.Policy
}

// Start the loop named by manifest.Type, blocking until it breaks.
func StartLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	switch manifest.Type {
	case InitializeLoop:
		return startInitializeLoop(ctx, logger, flow, manifest)
	case RunManagementLoop:
		return startRunManagementLoop(ctx, logger, flow, manifest)
	case FinishingLoop:
		return startFinishingLoop(ctx, logger, flow, manifest)
	case AggregateLoop:
		return startAggregateLoop(ctx, logger, flow, manifest)
	case ClusteringLoop:
		return startClusteringLoop(ctx, logger, flow, manifest)
	case HousekeepingLoop:
		return startHousekeepingLoop(ctx, logger, flow, manifest)
	default:
		return fmt.Errorf("unknown loop type: %s", manifest.Type)
	}
}

func startInitializeLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	_, err := loop.Start(
		ctx, initialize.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[initialize loop]")),
			initialize.Task(
				flow.Run().Database(),
				flow.Run().K8s(),
			).Applied(manifest.Policy),
		),
		loop.WithTimeout(30*time.Second),
	)
	return err
}

func startRunManagementLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	_, err := loop.Start(
		ctx, runmanagement.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[run management loop]")),
			runmanagement.Task(
				flow.Run().Database(),
				flow.Run().K8s(),
			).Applied(manifest.Policy),
		),
		loop.WithTimeout(30*time.Second),
	)
	return err
}

func startFinishingLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	_, err := loop.Start(
		ctx, finishing.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[finishing loop]")),
			finishing.Task(
				flow.Run().Database(),
				flow.Run().K8s(),
			).Applied(manifest.Policy),
		),
		loop.WithTimeout(30*time.Second),
	)
	return err
}

// A feature table left building this long without progress is built again.
// Restarts interrupt a merge between pick and settle, so stale building
// rows must be re-picked eventually.
const featureRebuildAfter = 1 * time.Hour

func startAggregateLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	// no per-pass timeout. Merging a large cohort can take a while.
	l := byLogger(logger, Copied(), WithPrefix("[aggregate loop]"))
	_, err := loop.Start(
		ctx, aggregate.Seed(),
		monitor(
			l,
			aggregate.Task(
				l,
				flow.Feature().Database(),
				flow.Cohort().Database(),
				flow.Config().Storage().Root(),
				featureRebuildAfter,
			).Applied(manifest.Policy),
		),
	)
	return err
}

func startClusteringLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	cconf := flow.Config().Clusterer()
	tconf := flow.Config().Token()

	trainer := clusterer.New(
		cconf.Endpoint(), cconf.APIKey(),
		clusterer.WithTimeout(cconf.Timeout()),
	)
	issuer := token.NewIssuer(tconf.Key(), tconf.TTL())

	featureURL := func(cohortId string) (string, error) {
		tok, err := issuer.Issue(cohortId)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"%s/api/cohorts/%s/features/content?token=%s",
			strings.TrimSuffix(cconf.FeatureBaseURL(), "/"),
			cohortId, url.QueryEscape(tok),
		), nil
	}

	_, err := loop.Start(
		ctx, clustering.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[clustering loop]")),
			clustering.Task(
				flow.ClusterJob().Database(),
				trainer,
				featureURL,
			).Applied(manifest.Policy),
		),
		loop.WithTimeout(60*time.Second),
	)
	return err
}

func startHousekeepingLoop(
	ctx context.Context,
	logger *log.Logger,
	flow snpflow.Snpflow,
	manifest LoopManifest,
) error {
	l := byLogger(logger, Copied(), WithPrefix("[housekeeping loop]"))
	_, err := loop.Start(
		ctx, housekeeping.Seed(),
		monitor(
			l,
			housekeeping.Task(
				l,
				flow.Cohort().Database(),
				flow.Run().Database(),
				flow.Run().K8s(),
				flow.Config().Storage().Root(),
			).Applied(manifest.Policy),
		),
	)
	return err
}
