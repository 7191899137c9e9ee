package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/resonator/internal/config"
	"github.com/roach88/resonator/internal/plot"
	"github.com/roach88/resonator/internal/runid"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional .cue/.yaml override file

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs runid.Generator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the resonator CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resonator",
		Short: "Gaussian-beam calculations for a folded ring cavity",
		Long: `Resonator evaluates the ABCD round trip of a bow-tie enhancement cavity,
maps the incoupling beam to the crystal centre, traces the horizontal and
vertical beam radius around the cavity and estimates the laser power a
nanoparticle cluster needs to absorb a given number of photons.

All parameters have built-in defaults; --config overrides any subset of them
from a CUE or YAML file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			setupLogging(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "parameter file (.cue, .yaml or .yml)")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Add subcommands
	cmd.AddCommand(NewRoundTripCommand(opts))
	cmd.AddCommand(NewIncouplingCommand(opts))
	cmd.AddCommand(NewPropagateCommand(opts))
	cmd.AddCommand(NewAbsorptionCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// setupLogging installs the process-wide slog handler on the command's
// stderr and routes the plot rasteriser's diagnostics to it.
func setupLogging(cmd *cobra.Command, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	plot.SetLogger(logger)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the formatter for one command invocation and stamps
// it with a fresh run id.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	gen := opts.RunIDs
	if gen == nil {
		gen = runid.UUIDv7Generator{}
	}
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		RunID:     gen.Generate(),
	}
}

// loadConfig returns the defaults, overlaid with --config when given.
func loadConfig(opts *RootOptions, formatter *OutputFormatter) (*config.Config, error) {
	if opts.Config == "" {
		slog.Debug("using built-in parameters", "run_id", formatter.RunID)
		return config.Default(), nil
	}
	slog.Info("loading config", "path", opts.Config, "run_id", formatter.RunID)
	cfg, err := config.Load(opts.Config)
	if err != nil {
		code := errorCode(err)
		if code == ErrCodeGeneric {
			code = ErrCodeConfig
		}
		_ = formatter.Error(code, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}
