package create

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	krest "github.com/snpflow/snpflow/cmd/snpflow/rest"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	apicohorts "github.com/snpflow/snpflow/pkg/api/types/cohorts"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

type Option struct {
	register func(context.Context, krest.Client, apicohorts.CohortSpec) (apicohorts.Detail, error)
}

func WithRegister(
	register func(context.Context, krest.Client, apicohorts.CohortSpec) (apicohorts.Detail, error),
) func(*Option) *Option {
	return func(dfc *Option) *Option {
		dfc.register = register
		return dfc
	}
}

const ARG_COHORT_FILE = "COHORT_FILE"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		register: RegisterCohort,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Register a new Cohort and fan out its filtering Runs.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_COHORT_FILE, Required: true,
				Help: "Path to the Cohort file, in YAML or JSON.",
			},
		},
		common.NewTask(Task(option.register)),
		flarc.WithDescription(`
Register a new Cohort.

A Cohort file names the cohort, points to its VCF shards and declares
the variant filter to be applied. For example:

	name: 1kgp-chr-demo
	vcfRoot: cohorts/1kgp-chr-demo/vcf
	sampleCount: 2504
	chromosomes:
	    - chr20
	    - chr21
	    - chr22
	filter:
	    biallelicOnly: true
	    minMaf: 0.01
	    maxMissingRate: 0.05

On registration, one filtering Run per chromosome is created. Track them
with "{{ .Command }}" siblings under "run".
`),
	)
}

func Task(
	register func(context.Context, krest.Client, apicohorts.CohortSpec) (apicohorts.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client krest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		args := cl.Args()
		buf, err := os.ReadFile(args[ARG_COHORT_FILE][0])
		if err != nil {
			return fmt.Errorf("fail to read Cohort file: %w", err)
		}

		spec := new(apicohorts.CohortSpec)
		if err := yaml.Unmarshal(buf, spec); err != nil {
			return fmt.Errorf("fail to parse Cohort file: %w", err)
		}

		created, err := register(ctx, client, *spec)
		if err != nil {
			return fmt.Errorf("failed to register Cohort: %w", err)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(created); err != nil {
			return err
		}

		return nil
	}
}

func RegisterCohort(
	ctx context.Context,
	client krest.Client,
	spec apicohorts.CohortSpec,
) (apicohorts.Detail, error) {
	result, err := client.RegisterCohort(ctx, spec)
	if err != nil {
		return apicohorts.Detail{}, err
	}
	return result, nil
}
