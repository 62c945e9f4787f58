package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/itree/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write the default configuration files"
	initLongDescription  = `Write settings.json, icons.json, colors.json, and glyphs.json with their default contents.
Files are written to ./.itree unless --global selects ~/.itree.`
	initGlobalFlagName        = "global"
	initForceFlagName         = "force"
	initGlobalFlagDescription = "write to the global configuration directory"
	initForceFlagDescription  = "overwrite existing configuration files"
	initCompletedTemplate     = "configuration written to %s\n"
)

func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			directory, err := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if err != nil {
				return err
			}
			_, writeErr := fmt.Fprintf(command.OutOrStdout(), initCompletedTemplate, directory)
			return writeErr
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, initGlobalFlagName, "", false, initGlobalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, initForceFlagName, "", false, initForceFlagDescription)
	return initCommand
}
