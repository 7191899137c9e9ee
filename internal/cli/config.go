package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective parameters",
		Long: `Print the built-in defaults merged with --config as YAML.

The output is itself a valid config file, so it is a convenient starting point
for a new parameter set:

  resonator config > cavity.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(rootOpts, cmd)
		},
	}
	return cmd
}

func runConfig(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(cfg)
	}

	data, err := cfg.YAML()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode config", err)
	}
	_, err = formatter.Writer.Write(data)
	return err
}
