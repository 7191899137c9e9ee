package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/resonator/internal/absorption"
	"github.com/roach88/resonator/internal/plot"
	"github.com/roach88/resonator/internal/units"
)

// AbsorptionOptions holds flags for the absorption command.
type AbsorptionOptions struct {
	*RootOptions
	PlotDir string // one PNG per scenario
}

// AbsorptionResult is the JSON payload of the absorption command.
type AbsorptionResult struct {
	*absorption.Report
	Plots []string `json:"plots,omitempty"`
}

// NewAbsorptionCommand creates the absorption command.
func NewAbsorptionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AbsorptionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "absorption",
		Short: "Estimate the laser power a cluster needs to absorb n photons",
		Long: `Compute the quasi-static absorption cross section of every configured
cluster material for every mass/velocity scenario, and the laser power needed
to absorb the configured number of photons while crossing the beam waist.

Example:
  resonator absorption
  resonator absorption --plot-dir ./plots`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAbsorption(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PlotDir, "plot-dir", "", "write one power-vs-waist PNG per scenario into this directory")

	return cmd
}

func runAbsorption(opts *AbsorptionOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	params := cfg.Absorption.Params()
	report, err := absorption.Evaluate(params)
	if err != nil {
		return calculationError(formatter, "absorption failed", err)
	}
	slog.Info("absorption evaluated", "run_id", formatter.RunID, "entries", len(report.Entries))
	for _, s := range params.Scenarios {
		formatter.VerboseLog("scenario %s: mass %.4g kg, velocity %g m/s, %d curves",
			s.Name, s.Mass, s.Velocity, len(report.CurvesFor(s.Name)))
	}

	result := AbsorptionResult{Report: report}
	if opts.PlotDir != "" {
		if err := os.MkdirAll(opts.PlotDir, 0o755); err != nil {
			return writeError(formatter, "failed to create plot directory", err)
		}
		for _, s := range params.Scenarios {
			curves := report.CurvesFor(s.Name)
			if len(curves) == 0 {
				continue
			}
			path := filepath.Join(opts.PlotDir, "power_"+slug(s.Name)+".png")
			if err := powerFigure(s, curves).SavePNG(path); err != nil {
				return writeError(formatter, "failed to write plot", err)
			}
			slog.Info("plot written", "run_id", formatter.RunID, "scenario", s.Name, "path", path)
			result.Plots = append(result.Plots, path)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	p := formatter.Printer()
	w := formatter.Writer
	p.Fprintf(w, "Absorption at %s nm (%s Hz), %s photons, %d waists\n",
		fmt.Sprintf("%.4g", params.Wavelength*1e9), fmt.Sprintf("%.4e", report.Frequency),
		fmt.Sprintf("%g", params.Photons), params.WaistPoints)
	for _, s := range params.Scenarios {
		fmt.Fprintf(w, "\nScenario %s (v = %g m/s)\n", s.Name, s.Velocity)
		for _, c := range report.CurvesFor(s.Name) {
			sigma := entryFor(report, c.Material, s.Name)
			last := len(c.Waists) - 1
			fmt.Fprintf(w, "  %-4s sigma = %.4e m²   P(%.4g µm) = %.4g mW   P(%.4g µm) = %.4g mW\n",
				c.Material, sigma,
				units.ToMicrometres(c.Waists[0]), units.ToMilliwatts(c.Powers[0]),
				units.ToMicrometres(c.Waists[last]), units.ToMilliwatts(c.Powers[last]))
		}
	}
	for _, path := range result.Plots {
		fmt.Fprintf(w, "Wrote plot to %s\n", path)
	}
	return nil
}

func entryFor(report *absorption.Report, material, scenario string) float64 {
	for _, e := range report.Entries {
		if e.Material == material && e.Scenario == scenario {
			return e.CrossSection
		}
	}
	return 0
}

// powerFigure plots required power against waist for one scenario.
func powerFigure(s absorption.Scenario, curves []absorption.Curve) *plot.Figure {
	fig := &plot.Figure{
		Title:  fmt.Sprintf("Required power, %s at %g m/s", s.Name, s.Velocity),
		XLabel: "waist w0 [µm]",
		YLabel: "power P [mW]",
	}
	for _, c := range curves {
		color := c.Color
		if color == "" {
			color = "#000000"
		}
		fig.Series = append(fig.Series, plot.Series{
			Label: c.Material,
			Color: color,
			X:     units.Scale(c.Waists, units.ToMicrometres),
			Y:     units.Scale(c.Powers, units.ToMilliwatts),
		})
	}
	return fig
}
