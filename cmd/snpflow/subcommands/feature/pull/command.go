package pull

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	kpath "github.com/snpflow/snpflow/pkg/utils/path"
	"github.com/youta-t/flarc"
)

type Option struct {
	progressOutput io.Writer
}

func WithProgressOutput(w io.Writer) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.progressOutput = w
		return opt
	}
}

const (
	ARG_COHORT_ID = "COHORT_ID"
	ARG_DEST      = "DEST"
)

const noBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{with string . "suffix"}} {{.}}{{end}}`

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		progressOutput: os.Stderr,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"download the feature table of a Cohort to your local filesystem.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_COHORT_ID, Required: true,
				Help: "Id of the Cohort whose feature table is to be downloaded.",
			},
			{
				Name: ARG_DEST, Required: false,
				Help: `
directory where the downloaded CSV will be located at.
If the directory does not exist, it will be created.
If you set "-", the CSV will be written to stdout.
Default: current directory ".".
`,
			},
		},
		common.NewTask(Task(option)),
		flarc.WithDescription(`
Download the merged feature table CSV of the Cohort.

The table can be pulled once it is "ready". Check with "show".

Example
-------

Pull the feature table of Cohort "cohort-1" as "./cohort-1.csv":

	{{ .Command }} cohort-1

Pull it into "/somewhere/cohort-1.csv":

	{{ .Command }} cohort-1 /somewhere

Pull it to stdout:

	{{ .Command }} cohort-1 -


(directory will be created if not exists)
`),
	)
}

func Task(option *Option) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		args := cl.Args()
		cohortId := args[ARG_COHORT_ID][0]

		dest := "."
		if 0 < len(args[ARG_DEST]) {
			dest = args[ARG_DEST][0]
		}

		if dest == "-" {
			return client.DownloadFeature(ctx, cohortId, func(r io.Reader) error {
				_, err := io.Copy(cl.Stdout(), r)
				return err
			})
		}

		dest, err := kpath.Resolve(dest)
		if err != nil {
			return fmt.Errorf("path resolving error for '%s': %w", dest, err)
		}
		dest = filepath.Join(filepath.Clean(dest), cohortId+".csv")

		return client.DownloadFeature(ctx, cohortId, func(r io.Reader) error {
			d := filepath.Dir(dest)
			if err := os.MkdirAll(d, os.FileMode(0777)); err != nil {
				return err
			}
			f, err := os.OpenFile(dest, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(0666))
			if err != nil {
				return err
			}
			defer f.Close()

			bar := noBar.New(-1)
			bar.SetWriter(option.progressOutput)
			bar.Set("prefix", fmt.Sprintf("Downloading to %s:", ellipsis(dest, 60)))
			bar.Start()
			w := bar.NewProxyWriter(f)
			defer w.Close()
			if _, err := io.Copy(w, r); err != nil {
				return err
			}
			return nil
		})
	}
}

func ellipsis(s string, length int) string {
	if len(s) <= length {
		return s
	}

	l := len(s)
	return "[...]" + s[l-length+5:]
}
