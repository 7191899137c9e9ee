package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/resonator/internal/optics"
	"github.com/roach88/resonator/internal/units"
)

// IncouplingResult is the JSON payload of the incoupling command.
type IncouplingResult struct {
	Matrix      [2][2]float64 `json:"matrix"`
	QIn         complexValue  `json:"q_in"`
	QOut        complexValue  `json:"q_out"`
	BeamRadius  float64       `json:"beam_radius"`
	WaistRadius float64       `json:"waist_radius"`
	WaistOffset float64       `json:"waist_offset"`

	ModulusRadius float64 `json:"modulus_radius"`
}

// NewIncouplingCommand creates the incoupling command.
func NewIncouplingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incoupling",
		Short: "Map the incoupling waist to the crystal centre",
		Long: `Propagate the waist at the incoupling plane on the long arm through the
tilted curved mirror and the short arm to the crystal centre, and report the
beam radius there together with the waist it belongs to.

A positive waist offset means the waist lies before the crystal centre.

The modulus radius |sqrt(-iλq/π)| is printed for comparison with older
calculations that quoted it as the crystal waist. It ignores the crystal
index and wavefront curvature, so it matches neither radius above.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncoupling(rootOpts, cmd)
		},
	}
	return cmd
}

func runIncoupling(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}

	report, err := optics.Incoupling(cfg.Incoupling.Params())
	if err != nil {
		return calculationError(formatter, "incoupling failed", err)
	}
	slog.Info("incoupling evaluated",
		"run_id", formatter.RunID,
		"beam_radius", report.BeamRadius,
		"waist_offset", report.WaistOffset)

	if formatter.Format == "json" {
		return formatter.Success(IncouplingResult{
			Matrix:      report.Matrix.Rows(),
			QIn:         complexOf(report.QIn),
			QOut:        complexOf(report.QOut),
			BeamRadius:  report.BeamRadius,
			WaistRadius: report.WaistRadius,
			WaistOffset: report.WaistOffset,

			ModulusRadius: report.ModulusRadius,
		})
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Incoupling beam at the crystal centre")
	fmt.Fprintf(w, "  matrix          %s\n", formatMatrix(report.Matrix))
	fmt.Fprintf(w, "  q in            %s\n", formatQ(report.QIn))
	fmt.Fprintf(w, "  q out           %s\n", formatQ(report.QOut))
	fmt.Fprintf(w, "  beam radius     %.2f µm\n", units.ToMicrometres(report.BeamRadius))
	fmt.Fprintf(w, "  waist radius    %.2f µm\n", units.ToMicrometres(report.WaistRadius))
	fmt.Fprintf(w, "  waist offset    %.3f mm\n", units.ToMillimetres(report.WaistOffset))
	fmt.Fprintf(w, "  modulus radius  %.2f µm\n", units.ToMicrometres(report.ModulusRadius))
	return nil
}
