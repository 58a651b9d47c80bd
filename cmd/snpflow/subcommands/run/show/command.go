package show

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apiruns "github.com/snpflow/snpflow/pkg/api/types/runs"
	"github.com/youta-t/flarc"
)

type Option struct {
	showInfo ShowInfo
	showLog  ShowLog
}

type ShowInfo func(
	ctx context.Context,
	client krest.Client,
	runId string,
) (apiruns.Detail, error)

type ShowLog func(
	ctx context.Context,
	client krest.Client,
	out io.Writer,
	runId string,
) error

type Flags struct {
	Log bool `flag:"log" help:"display the log of that Run"`
}

func WithRunner(
	showInfo ShowInfo, showLog ShowLog,
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.showInfo = showInfo
		dfc.showLog = showLog
		return dfc
	}
}

const ARG_RUNID = "RUN_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		showInfo: RunShowRunForInfo,
		showLog:  RunShowRunForLog,
	}

	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the Run information for the specified Run Id.",
		Flags{
			Log: false,
		},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the Run to be shown",
			},
		},
		common.NewTask(Task(option.showInfo, option.showLog)),
		flarc.WithDescription(`
Return the Run information for the specified Run Id.

When --log is passed, it displays the log of the Run's filter container
on the console instead.
`),
	)
}

func Task(showInfo ShowInfo, showLog ShowLog) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		runId := cl.Args()[ARG_RUNID][0]

		flags := cl.Flags()
		if !flags.Log {
			found, err := showInfo(ctx, client, runId)
			if err != nil {
				return fmt.Errorf("%w: Run Id:%s", err, runId)
			}
			enc := json.NewEncoder(cl.Stdout())
			enc.SetIndent("", "    ")
			if err := enc.Encode(found); err != nil {
				logger.Panicf("fail to dump found Run")
			}
		} else {
			if err := showLog(ctx, client, cl.Stdout(), runId); err != nil {
				return err
			}
		}
		return nil
	}
}

func RunShowRunForInfo(
	ctx context.Context, client krest.Client, runId string,
) (apiruns.Detail, error) {
	result, err := client.GetRun(ctx, runId)
	if err != nil {
		return apiruns.Detail{}, err
	}
	return result, nil
}

func RunShowRunForLog(
	ctx context.Context, client krest.Client, out io.Writer, runId string,
) error {
	r, err := client.GetRunLog(ctx, runId)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(out, r)
	if err != nil {
		return err
	}
	return nil
}
