package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resonator/internal/runid"
)

// execute runs the root command with args and a fixed run id.
func execute(t *testing.T, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{RunIDs: runid.NewFixedGenerator("run-1")})
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return stdout, stderr, err
}

func decodeResponse(t *testing.T, data []byte, payload interface{}) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	if payload != nil {
		require.NoError(t, json.Unmarshal(resp.Data, payload))
	}
	return resp.CLIResponse
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRoundTripText(t *testing.T) {
	out, stderr, err := execute(t, "roundtrip")
	require.NoError(t, err)
	golden(t).Assert(t, "roundtrip_text", out.Bytes())
	assert.Contains(t, stderr.String(), "round trip evaluated")
	assert.Contains(t, stderr.String(), "run_id=run-1")
}

func TestRoundTripJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "roundtrip")
	require.NoError(t, err)

	var result RoundTripResult
	resp := decodeResponse(t, out.Bytes(), &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.False(t, result.Consistent)
	assert.InDelta(t, 5.416e-3, result.RelativeError, 1e-6)
	assert.True(t, result.Stable)
	require.NotNil(t, result.EigenQ)
	assert.InDelta(t, 23.46e-6, result.EigenWaist, 0.01e-6)
}

func TestRoundTripToleranceFlag(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "roundtrip", "--tol", "1e-2")
	require.NoError(t, err)

	var result RoundTripResult
	decodeResponse(t, out.Bytes(), &result)
	assert.True(t, result.Consistent)
	assert.Equal(t, 1e-2, result.Tolerance)
}

func TestRoundTripInvalidTolerance(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "roundtrip", "--tol", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out.Bytes(), nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidParams, resp.Error.Code)
}

func TestRoundTripUnstable(t *testing.T) {
	path := writeConfig(t, "unstable.yaml", "roundtrip:\n  mirror_radius: 0.01\n")

	out, _, err := execute(t, "--config", path, "roundtrip")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "(unstable)")
	assert.Contains(t, out.String(), "Error [E005]")
	assert.NotContains(t, out.String(), "eigenmode waist")
}

func TestRoundTripUnstableJSON(t *testing.T) {
	path := writeConfig(t, "unstable.yaml", "roundtrip:\n  mirror_radius: 0.01\n")

	out, _, err := execute(t, "--config", path, "--format", "json", "roundtrip")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "cavity has no eigenmode")

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string          `json:"code"`
			Details RoundTripResult `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeUnstable, resp.Error.Code)
	assert.False(t, resp.Error.Details.Stable)
	assert.Greater(t, resp.Error.Details.Stability*resp.Error.Details.Stability, 1.0)
	assert.Nil(t, resp.Error.Details.EigenQ)
}

func TestRoundTripVerbose(t *testing.T) {
	_, stderr, err := execute(t, "-v", "roundtrip", "--tol", "1e-2")
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "round trip tolerance 0.01")
}

func TestIncouplingText(t *testing.T) {
	out, _, err := execute(t, "incoupling")
	require.NoError(t, err)
	golden(t).Assert(t, "incoupling_text", out.Bytes())
}

func TestIncouplingJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "incoupling")
	require.NoError(t, err)

	var result IncouplingResult
	decodeResponse(t, out.Bytes(), &result)
	assert.InDelta(t, 29.36e-6, result.BeamRadius, 0.01e-6)
	assert.InDelta(t, 22.54e-6, result.WaistRadius, 0.01e-6)
	assert.InDelta(t, 1.4767e-3, result.WaistOffset, 1e-6)
	assert.InDelta(t, 25.72e-6, result.ModulusRadius, 0.01e-6)
}

func TestPropagateText(t *testing.T) {
	out, stderr, err := execute(t, "propagate")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Beam propagation over 9 segments, 406.0 mm")
	assert.Contains(t, out.String(), "4,069 per axis")
	assert.Contains(t, out.String(), "horizontal")
	assert.Contains(t, out.String(), "vertical")
	assert.Contains(t, stderr.String(), "propagation finished")
}

func TestPropagateJSONWithSamples(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "propagate", "--samples", "--step", "1e-3")
	require.NoError(t, err)

	var result PropagateResult
	decodeResponse(t, out.Bytes(), &result)
	assert.Equal(t, 9, result.Segments)
	assert.InDelta(t, 0.406, result.Length, 1e-12)
	require.NotNil(t, result.Trace)
	assert.Len(t, result.Trace.Horizontal, result.Samples)
	assert.Len(t, result.Trace.Vertical, result.Samples)

	// The walk starts at the horizontal waist and the beam is widest on the
	// long arm just before the second curved mirror.
	assert.InDelta(t, 24.3e-6, result.Trace.Horizontal[0].Radius, 1e-12)
	assert.InDelta(t, 368.05e-6, result.Horizontal.Max.Radius, 0.01e-6)
	assert.InDelta(t, 0.3756, result.Horizontal.Max.Z, 1e-9)
	assert.InDelta(t, 348.77e-6, result.Vertical.Max.Radius, 0.01e-6)

	// The mismatched start waist comes back slightly tighter.
	assert.InDelta(t, 21.92e-6, result.Horizontal.Final.Radius, 0.01e-6)
	assert.InDelta(t, 0.406, result.Vertical.Final.Z, 1e-12)
}

func TestPropagateAt(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "propagate", "--step", "1e-3", "--samples", "--at", "0")
	require.NoError(t, err)

	var result PropagateResult
	decodeResponse(t, out.Bytes(), &result)
	require.NotNil(t, result.At)
	assert.Equal(t, 0.0, result.At.Z)
	assert.Equal(t, result.Trace.Horizontal[0].Radius, result.At.Horizontal)
	assert.InDelta(t, 25.7e-6, result.At.Vertical, 1e-12)

	text, _, err := execute(t, "propagate", "--step", "1e-3", "--at", "0")
	require.NoError(t, err)
	assert.Contains(t, text.String(), "at 0.0 mm    horizontal 24.30 µm, vertical 25.70 µm")
}

func TestPropagateAtBeyondPath(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "propagate", "--step", "1e-3", "--at", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out.Bytes(), nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "beyond the end of the path")
}

func TestPropagateVerboseListsSegments(t *testing.T) {
	out, stderr, err := execute(t, "-v", "--format", "json", "propagate", "--step", "1e-3")
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "segment 0: propagation")
	assert.Contains(t, stderr.String(), "segment 1: interface")
	assert.Contains(t, stderr.String(), "segment 3: mirror")
	assert.NotContains(t, out.String(), "segment 0:")
}

func TestPropagatePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beam.png")
	out, _, err := execute(t, "propagate", "--step", "1e-3", "--plot", path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wrote plot to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 960, cfg.Width)
}

func TestPropagateInvalidStep(t *testing.T) {
	out, _, err := execute(t, "propagate", "--step", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "Error [E003]")
}

func TestPropagateInvalidSegment(t *testing.T) {
	path := writeConfig(t, "segments.yaml", `propagation:
  segments:
    - {kind: propagation, length: 0.01, index: 1}
    - {kind: interface, ratio: 0, index: 1}
`)
	out, _, err := execute(t, "--config", path, "--format", "json", "propagate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out.Bytes(), nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidPath, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "segment 1")
}

func TestAbsorptionText(t *testing.T) {
	out, _, err := execute(t, "absorption")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Absorption at 226 nm")
	assert.Contains(t, text, "10 photons, 2 waists")
	assert.Contains(t, text, "Scenario 100 kDa (v = 130 m/s)")
	assert.Contains(t, text, "Scenario 1 MDa (v = 30 m/s)")
	assert.Contains(t, text, "Au   sigma = 4.8087e-19 m²")
	assert.Contains(t, text, "P(100 µm) = 421.2 mW")
}

func TestAbsorptionJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "absorption")
	require.NoError(t, err)

	var result struct {
		Frequency float64 `json:"frequency"`
		Entries   []struct {
			Material     string  `json:"material"`
			Scenario     string  `json:"scenario"`
			CrossSection float64 `json:"cross_section"`
		} `json:"entries"`
		Curves []struct {
			Powers []float64 `json:"powers"`
		} `json:"curves"`
	}
	decodeResponse(t, out.Bytes(), &result)
	require.Len(t, result.Entries, 8)
	assert.Equal(t, "Na", result.Entries[0].Material)
	assert.Equal(t, "100 kDa", result.Entries[0].Scenario)
	assert.InDelta(t, 4.283430569295682e-18, result.Entries[0].CrossSection, 1e-30)
	require.Len(t, result.Curves, 8)
	assert.InDelta(t, 0.04728189237644369, result.Curves[0].Powers[0], 1e-12)
}

func TestAbsorptionVerbose(t *testing.T) {
	_, stderr, err := execute(t, "--verbose", "absorption")
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "scenario 100 kDa:")
	assert.Contains(t, stderr.String(), "velocity 30 m/s, 4 curves")
}

func TestAbsorptionPlotDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	out, _, err := execute(t, "--format", "json", "absorption", "--plot-dir", dir)
	require.NoError(t, err)

	var result struct {
		Plots []string `json:"plots"`
	}
	decodeResponse(t, out.Bytes(), &result)
	assert.Equal(t, []string{
		filepath.Join(dir, "power_100_kda.png"),
		filepath.Join(dir, "power_1_mda.png"),
	}, result.Plots)
	for _, p := range result.Plots {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestConfigDefault(t *testing.T) {
	out, _, err := execute(t, "config")
	require.NoError(t, err)
	golden(t).Assert(t, "config_default", out.Bytes())
}

func TestConfigOverride(t *testing.T) {
	path := writeConfig(t, "cavity.cue", "propagation: {\n\twaist_h: 30e-6\n\tfold_angle: 10\n}\n")
	out, stderr, err := execute(t, "--config", path, "--format", "json", "config")
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "loading config")

	var result struct {
		Propagation struct {
			WaistH    float64 `json:"waist_h"`
			WaistV    float64 `json:"waist_v"`
			FoldAngle float64 `json:"fold_angle"`
		} `json:"propagation"`
	}
	decodeResponse(t, out.Bytes(), &result)
	assert.Equal(t, 30e-6, result.Propagation.WaistH)
	assert.Equal(t, 25.7e-6, result.Propagation.WaistV)
	assert.Equal(t, 10.0, result.Propagation.FoldAngle)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"schema_violation", "bad.cue", "roundtrip: wavelength: -902e-9\n", "wavelength"},
		{"unknown_field", "typo.yaml", "roundtrip:\n  wavelenght: 9.02e-7\n", "wavelenght"},
		{"unsupported_format", "cavity.toml", "", "unsupported config format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			out, _, err := execute(t, "--config", path, "--format", "json", "roundtrip")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out.Bytes(), nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeConfig, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.want)
		})
	}
}

func TestConfigMissingFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.cue"), "roundtrip")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
