package init

import (
	"context"
	"errors"
	"log"
	"os"

	prof "github.com/snpflow/snpflow/cmd/snpflow/config/profiles"
	"github.com/snpflow/snpflow/cmd/snpflow/subcommands/common"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

const ARG_PROFILE_FILE = "SNPFLOW_PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"initialize this directory as a snpflow-powered project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PROFILE_FILE, Required: true,
				Help: "filepath to a snpflow profile file, which you received from your admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
Register a new profile into your profile store.

A snpflow profile is a file which tells where your snpflowd server is.
"{{ .Command }}" registers the given profile into your profile store.

The name of the profile is given by "--profile" ( default: current filepath ).
`),
	)
}

func Task() common.TaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		profFile := cl.Args()[ARG_PROFILE_FILE][0]

		profStore, err := prof.LoadProfileStore(commonFlag.ProfileStore)
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			// ok.
			profStore = prof.ProfileStore{}
		} else if err != nil {
			logger.Printf(
				"failed to load profile store (%s) : %s", commonFlag.ProfileStore, err,
			)
			return err
		}

		profName := commonFlag.Profile
		newProf := new(prof.Profile)
		{
			content, err := os.ReadFile(profFile)
			if err != nil {
				logger.Printf("failed to read profile file (%s) : %s", profFile, err)
				return err
			}

			if err := yaml.Unmarshal(content, newProf); err != nil {
				logger.Printf("failed to parse profile file (%s) : %s", profFile, err)
				return err
			}
		}
		if err := newProf.Verify(); err != nil {
			logger.Printf("%s: %s", profFile, err)
			return err
		}

		profStore[profName] = newProf
		if err := profStore.Save(commonFlag.ProfileStore); err != nil {
			logger.Printf(
				"failed to save profile store (%s) : %s",
				commonFlag.ProfileStore, err,
			)
			return err
		}
		logger.Printf(
			"profile %s is saved to %s", profName, commonFlag.ProfileStore,
		)

		f, err := os.OpenFile(".snpflowprofile", os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0600))
		if err != nil {
			logger.Printf("failed to open .snpflowprofile : %s", err)
			return err
		}
		defer f.Close()
		f.Write([]byte(profName))

		return nil
	}
}
