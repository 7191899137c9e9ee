package cli

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/roach88/resonator/internal/config"
	"github.com/roach88/resonator/internal/optics"
	"github.com/roach88/resonator/internal/propagate"
)

// complexValue is a JSON-friendly complex number.
type complexValue struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

func complexOf(q optics.Q) complexValue {
	c := complex128(q)
	return complexValue{Re: real(c), Im: imag(c)}
}

// formatQ prints q in metres. A real part below 1e-12 of |q| is rounding
// noise and prints as zero.
func formatQ(q optics.Q) string {
	c := complex128(q)
	re := real(c)
	if math.Abs(re) < 1e-12*cmplx.Abs(c) {
		re = 0
	}
	return fmt.Sprintf("%.6g%+.6gi m", re, imag(c))
}

func formatMatrix(m optics.Matrix) string {
	return fmt.Sprintf("[[%.6g %.6g] [%.6g %.6g]]", m.A, m.B, m.C, m.D)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// errorCode classifies err for CLIError.Code.
func errorCode(err error) string {
	var paramErr *optics.ParamError
	var segErr *propagate.SegmentError
	var cfgErr *config.Error
	switch {
	case errors.As(err, &segErr):
		return ErrCodeInvalidPath
	case errors.As(err, &paramErr):
		return ErrCodeInvalidParams
	case errors.Is(err, optics.ErrUnstable), errors.Is(err, optics.ErrDegenerate):
		return ErrCodeUnstable
	case errors.As(err, &cfgErr):
		return ErrCodeConfig
	}
	return ErrCodeGeneric
}

// calculationError reports err and maps it to ExitFailure.
func calculationError(formatter *OutputFormatter, message string, err error) error {
	_ = formatter.Error(errorCode(err), fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(ExitFailure, message, err)
}

// writeError reports a failed file write and maps it to ExitCommandError.
func writeError(formatter *OutputFormatter, message string, err error) error {
	_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(ExitCommandError, message, err)
}

// slug turns a scenario name into a file name fragment.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
