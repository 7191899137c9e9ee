package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/resonator/internal/optics"
	"github.com/roach88/resonator/internal/units"
)

// RoundTripOptions holds flags for the roundtrip command.
type RoundTripOptions struct {
	*RootOptions
	Tolerance float64 // overrides roundtrip.tolerance when set
}

// RoundTripResult is the JSON payload of the roundtrip command.
type RoundTripResult struct {
	Matrix        [2][2]float64 `json:"matrix"`
	QIn           complexValue  `json:"q_in"`
	QOut          complexValue  `json:"q_out"`
	RelativeError float64       `json:"relative_error"`
	Tolerance     float64       `json:"tolerance"`
	Consistent    bool          `json:"consistent"`
	Stability     float64       `json:"stability"`
	Stable        bool          `json:"stable"`
	EigenQ        *complexValue `json:"eigen_q,omitempty"`
	EigenWaist    float64       `json:"eigen_waist,omitempty"`
}

// NewRoundTripCommand creates the roundtrip command.
func NewRoundTripCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoundTripOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Check the crystal-centre beam against one cavity round trip",
		Long: `Compose the round-trip ABCD matrix from the crystal centre through the
short arm, both curved mirrors and the long arm back to the crystal centre,
then check whether the assumed crystal waist reproduces itself.

The cavity eigenmode is reported alongside, so an inconsistent waist can be
replaced by the self-consistent one.

Example:
  resonator roundtrip
  resonator roundtrip --tol 1e-3 --config cavity.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundTrip(opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Tolerance, "tol", 0, "relative tolerance of the self-consistency check (default from config, 1e-9)")

	return cmd
}

func runRoundTrip(opts *RoundTripOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	tol := cfg.RoundTrip.Tolerance
	if cmd.Flags().Changed("tol") {
		if err := optics.Positive("tol", opts.Tolerance); err != nil {
			return calculationError(formatter, "invalid tolerance", err)
		}
		tol = opts.Tolerance
	}

	formatter.VerboseLog("round trip tolerance %g", tol)
	report, err := optics.RoundTrip(cfg.RoundTrip.Params(), tol)
	if err != nil {
		return calculationError(formatter, "round trip failed", err)
	}
	slog.Info("round trip evaluated",
		"run_id", formatter.RunID,
		"relative_error", report.Check.RelativeError,
		"stability", report.Stability)

	result := RoundTripResult{
		Matrix:        report.Matrix.Rows(),
		QIn:           complexOf(report.Check.QIn),
		QOut:          complexOf(report.Check.QOut),
		RelativeError: report.Check.RelativeError,
		Tolerance:     tol,
		Consistent:    report.Check.Consistent,
		Stability:     report.Stability,
		Stable:        report.Stable,
	}
	if report.Stable {
		q := complexOf(report.EigenQ)
		result.EigenQ = &q
		result.EigenWaist = report.EigenWaist
	}

	if !report.Stable {
		// The report of the failed round trip goes out with the error.
		message := fmt.Sprintf("cavity has no eigenmode: (A+D)/2 = %g", report.Stability)
		if formatter.Format != "json" {
			writeRoundTrip(formatter, report, tol)
		}
		_ = formatter.Error(ErrCodeUnstable, message, result)
		return NewExitError(ExitFailure, message)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	writeRoundTrip(formatter, report, tol)
	return nil
}

func writeRoundTrip(formatter *OutputFormatter, report *optics.RoundTripReport, tol float64) {
	w := formatter.Writer
	fmt.Fprintln(w, "Round trip from the crystal centre")
	fmt.Fprintf(w, "  matrix           %s\n", formatMatrix(report.Matrix))
	fmt.Fprintf(w, "  q in             %s\n", formatQ(report.Check.QIn))
	fmt.Fprintf(w, "  q out            %s\n", formatQ(report.Check.QOut))
	fmt.Fprintf(w, "  relative error   %.3e (tolerance %g)\n", report.Check.RelativeError, tol)
	fmt.Fprintf(w, "  self-consistent  %s\n", yesNo(report.Check.Consistent))

	stable := "stable"
	if !report.Stable {
		stable = "unstable"
	}
	fmt.Fprintf(w, "  stability        %.6f (%s)\n", report.Stability, stable)
	if report.Stable {
		fmt.Fprintf(w, "  eigenmode q      %s\n", formatQ(report.EigenQ))
		fmt.Fprintf(w, "  eigenmode waist  %.2f µm\n", units.ToMicrometres(report.EigenWaist))
	}
}
