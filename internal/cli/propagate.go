package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/resonator/internal/optics"
	"github.com/roach88/resonator/internal/plot"
	"github.com/roach88/resonator/internal/propagate"
	"github.com/roach88/resonator/internal/units"
)

// PropagateOptions holds flags for the propagate command.
type PropagateOptions struct {
	*RootOptions
	Step    float64 // overrides propagation.step when set
	Plot    string  // PNG output path
	Samples bool    // include every sample in JSON output
	At      float64 // report the radius at this path position
}

// AxisSummary describes one polarization axis of a trace.
type AxisSummary struct {
	Min    propagate.Sample `json:"min"`
	Max    propagate.Sample `json:"max"`
	Final  propagate.Sample `json:"final"`
	FinalQ complexValue     `json:"final_q"`
}

// PointSummary is the beam radius of both axes at one path position.
type PointSummary struct {
	Z          float64 `json:"z"`
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
}

// PropagateResult is the JSON payload of the propagate command.
type PropagateResult struct {
	Segments   int              `json:"segments"`
	Samples    int              `json:"samples"`
	Length     float64          `json:"length"`
	Horizontal AxisSummary      `json:"horizontal"`
	Vertical   AxisSummary      `json:"vertical"`
	At         *PointSummary    `json:"at,omitempty"`
	Plot       string           `json:"plot,omitempty"`
	Trace      *propagate.Trace `json:"trace,omitempty"`
}

// NewPropagateCommand creates the propagate command.
func NewPropagateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PropagateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Trace the beam radius around the cavity",
		Long: `Walk the horizontal and vertical beam parameters from the crystal centre
around the cavity and sample the beam radius along the path.

Without propagation.segments in the config the standard round trip is used:
crystal half, crystal exit, short arm, tilted mirror, long arm, tilted mirror,
short arm, crystal entry, crystal half.

Example:
  resonator propagate --plot beam.png
  resonator propagate --step 1e-3 --format json --samples
  resonator propagate --at 0.2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropagate(opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Step, "step", 0, "sampling interval in metres (default from config, 1e-4)")
	cmd.Flags().StringVar(&opts.Plot, "plot", "", "write a PNG of w(z) to this path")
	cmd.Flags().BoolVar(&opts.Samples, "samples", false, "include every sample in JSON output")
	cmd.Flags().Float64Var(&opts.At, "at", 0, "report the beam radius at this position along the path, in metres")

	return cmd
}

func runPropagate(opts *PropagateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	params := cfg.Propagation.Beam()
	if cmd.Flags().Changed("step") {
		if err := optics.Positive("step", opts.Step); err != nil {
			return calculationError(formatter, "invalid step", err)
		}
		params.Step = opts.Step
	}
	segments, err := cfg.Propagation.Path()
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid segment list", err)
	}

	for i, s := range segments {
		formatter.VerboseLog("segment %d: %s", i, s.Kind())
	}
	slog.Debug("propagation starting", "run_id", formatter.RunID, "segments", len(segments), "step", params.Step)
	trace, err := propagate.Run(params, segments)
	if err != nil {
		return calculationError(formatter, "propagation failed", err)
	}
	slog.Info("propagation finished", "run_id", formatter.RunID, "samples", trace.Len(), "length", trace.Length)

	result := PropagateResult{
		Segments:   len(segments),
		Samples:    trace.Len(),
		Length:     trace.Length,
		Horizontal: summarize(trace, propagate.Horizontal, trace.QH),
		Vertical:   summarize(trace, propagate.Vertical, trace.QV),
	}
	if opts.Samples {
		result.Trace = trace
	}
	if cmd.Flags().Changed("at") {
		point, err := pointAt(trace, opts.At)
		if err != nil {
			return calculationError(formatter, "invalid position", err)
		}
		result.At = point
	}

	if opts.Plot != "" {
		if err := beamFigure(trace).SavePNG(opts.Plot); err != nil {
			return writeError(formatter, "failed to write plot", err)
		}
		slog.Info("plot written", "run_id", formatter.RunID, "path", opts.Plot)
		result.Plot = opts.Plot
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	p := formatter.Printer()
	w := formatter.Writer
	p.Fprintf(w, "Beam propagation over %d segments, %s mm\n", result.Segments, fmt.Sprintf("%.1f", units.ToMillimetres(result.Length)))
	p.Fprintf(w, "  samples     %d per axis\n", result.Samples)
	writeAxis(formatter, "horizontal", result.Horizontal)
	writeAxis(formatter, "vertical", result.Vertical)
	if result.At != nil {
		fmt.Fprintf(w, "  at %.1f mm    horizontal %.2f µm, vertical %.2f µm\n",
			units.ToMillimetres(result.At.Z),
			units.ToMicrometres(result.At.Horizontal), units.ToMicrometres(result.At.Vertical))
	}
	if result.Plot != "" {
		fmt.Fprintf(w, "Wrote plot to %s\n", result.Plot)
	}
	return nil
}

func summarize(trace *propagate.Trace, axis propagate.Axis, q optics.Q) AxisSummary {
	samples := trace.Samples(axis)
	e := trace.Extremes(axis)
	s := AxisSummary{Min: e.Min, Max: e.Max, FinalQ: complexOf(q)}
	if len(samples) > 0 {
		s.Final = samples[len(samples)-1]
	}
	return s
}

// pointAt looks up the first sample at or beyond z on both axes.
func pointAt(trace *propagate.Trace, z float64) (*PointSummary, error) {
	if z < 0 {
		return nil, &optics.ParamError{Field: "at", Value: z, Reason: "must not be negative"}
	}
	h, ok := trace.At(propagate.Horizontal, z)
	if !ok {
		return nil, &optics.ParamError{Field: "at", Value: z, Reason: "beyond the end of the path"}
	}
	v, _ := trace.At(propagate.Vertical, z)
	return &PointSummary{Z: h.Z, Horizontal: h.Radius, Vertical: v.Radius}, nil
}

func writeAxis(formatter *OutputFormatter, name string, s AxisSummary) {
	fmt.Fprintf(formatter.Writer, "  %-10s  min %.2f µm at %.1f mm, max %.2f µm at %.1f mm, final %.2f µm\n",
		name,
		units.ToMicrometres(s.Min.Radius), units.ToMillimetres(s.Min.Z),
		units.ToMicrometres(s.Max.Radius), units.ToMillimetres(s.Max.Z),
		units.ToMicrometres(s.Final.Radius))
}

// beamFigure plots both axes in millimetres and micrometres.
func beamFigure(trace *propagate.Trace) *plot.Figure {
	z := units.Scale(trace.Positions(), units.ToMillimetres)
	return &plot.Figure{
		Title:  "Waist size w(z) for a full round-trip",
		XLabel: "distance z [mm]",
		YLabel: "waist w(z) [µm]",
		Series: []plot.Series{
			{Label: "horizontal", Color: "#0000FF", X: z, Y: units.Scale(trace.Radii(propagate.Horizontal), units.ToMicrometres)},
			{Label: "vertical", Color: "#FF0000", X: z, Y: units.Scale(trace.Radii(propagate.Vertical), units.ToMicrometres)},
		},
	}
}
