// Package plot renders simple line charts to PNG.
//
// A Figure holds one or more series sharing a pair of linear axes. Render
// draws the frame, a dashed grid at "nice" tick values, the series polylines
// and a legend, using the gg software rasteriser. Values are drawn exactly as
// given; callers convert to display units before building the figure.
package plot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 640
)

var (
	// ErrNoSeries is returned when a figure has nothing to draw.
	ErrNoSeries = errors.New("figure has no series")

	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

// Series is one polyline.
type Series struct {
	Label string
	Color string // hex, e.g. "#1E90FF"
	Width float64
	X, Y  []float64
}

// Figure is a single-axes line chart.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series

	Width  int // DefaultWidth when zero
	Height int // DefaultHeight when zero
	Ticks  int // approximate tick count per axis, 6 when zero
}

// SetLogger routes the rasteriser's diagnostics to l.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

// Validate checks that every series is drawable.
func (f *Figure) Validate() error {
	if len(f.Series) == 0 {
		return ErrNoSeries
	}
	for i, s := range f.Series {
		if len(s.X) == 0 {
			return fmt.Errorf("series %d (%s): no points", i, s.Label)
		}
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %d (%s): %d x values but %d y values", i, s.Label, len(s.X), len(s.Y))
		}
	}
	return nil
}

// SavePNG renders the figure to a PNG file at path.
func (f *Figure) SavePNG(path string) (err error) {
	if err := f.Validate(); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing plot file: %w", closeErr)
		}
	}()
	return f.Render(file)
}

// Render rasterises the figure and writes it to w as PNG.
func (f *Figure) Render(w io.Writer) error {
	if err := f.Validate(); err != nil {
		return err
	}
	src, err := loadFont()
	if err != nil {
		return fmt.Errorf("loading plot font: %w", err)
	}

	width, height := f.Width, f.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	ticks := f.Ticks
	if ticks == 0 {
		ticks = 6
	}

	dc := gg.NewContext(width, height)
	defer func() { _ = dc.Close() }()
	dc.ClearWithColor(gg.White)

	area := frame{left: 80, top: 56, right: float64(width) - 24, bottom: float64(height) - 64}
	xmin, xmax, ymin, ymax := f.bounds()
	xt := NiceTicks(xmin, xmax, ticks)
	yt := NiceTicks(ymin, ymax, ticks)
	area.x0, area.x1 = xt[0], xt[len(xt)-1]
	area.y0, area.y1 = yt[0], yt[len(yt)-1]

	labelFace := src.Face(12)
	dc.SetFont(labelFace)
	if err := drawGrid(dc, area, xt, yt); err != nil {
		return err
	}
	for _, s := range f.Series {
		if err := drawSeries(dc, area, s); err != nil {
			return err
		}
	}
	if err := drawFrame(dc, area); err != nil {
		return err
	}
	if err := drawLegend(dc, area, f.Series); err != nil {
		return err
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(f.XLabel, (area.left+area.right)/2, area.bottom+44, 0.5, 0)
	dc.DrawStringAnchored(f.YLabel, area.left, area.top-10, 0.5, 0)
	dc.SetFont(src.Face(16))
	dc.DrawStringAnchored(f.Title, float64(width)/2, 28, 0.5, 0.5)

	return dc.EncodePNG(w)
}

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// bounds returns the data extent over all series, widened when flat.
func (f *Figure) bounds() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, s := range f.Series {
		for i := range s.X {
			if !finite(s.X[i]) || !finite(s.Y[i]) {
				continue
			}
			xmin, xmax = math.Min(xmin, s.X[i]), math.Max(xmax, s.X[i])
			ymin, ymax = math.Min(ymin, s.Y[i]), math.Max(ymax, s.Y[i])
		}
	}
	if math.IsInf(xmin, 1) {
		return 0, 1, 0, 1
	}
	xmin, xmax = widen(xmin, xmax)
	ymin, ymax = widen(ymin, ymax)
	return xmin, xmax, ymin, ymax
}

func widen(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	pad := math.Abs(lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NiceTicks returns evenly spaced round tick values covering [lo, hi] with
// roughly n intervals. The first tick is <= lo and the last >= hi.
func NiceTicks(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	lo, hi = widen(lo, hi)
	step := niceNum(niceNum(hi-lo, false)/float64(n-1), true)
	start := math.Floor(lo/step) * step
	end := math.Ceil(hi/step) * step

	var out []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > end+step/2 {
			break
		}
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

// niceNum rounds x to 1, 2, 5 or 10 times a power of ten.
func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	frac := x / math.Pow(10, exp)
	var nice float64
	switch {
	case round && frac < 1.5:
		nice = 1
	case round && frac < 3:
		nice = 2
	case round && frac < 7:
		nice = 5
	case round:
		nice = 10
	case frac <= 1:
		nice = 1
	case frac <= 2:
		nice = 2
	case frac <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * math.Pow(10, exp)
}

// FormatTick prints v with just enough decimals to tell ticks step apart.
func FormatTick(v, step float64) string {
	decimals := 0
	if step > 0 && step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// frame maps data coordinates into the pixel rectangle of the axes.
type frame struct {
	left, top, right, bottom float64
	x0, x1, y0, y1           float64
}

func (a frame) px(x float64) float64 {
	return a.left + (x-a.x0)/(a.x1-a.x0)*(a.right-a.left)
}

func (a frame) py(y float64) float64 {
	return a.bottom - (y-a.y0)/(a.y1-a.y0)*(a.bottom-a.top)
}

func drawGrid(dc *gg.Context, a frame, xt, yt []float64) error {
	xstep, ystep := xt[1]-xt[0], yt[1]-yt[0]

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetLineWidth(1)
	dc.SetDash(4, 3)
	for _, x := range xt {
		dc.DrawLine(a.px(x), a.top, a.px(x), a.bottom)
	}
	for _, y := range yt {
		dc.DrawLine(a.left, a.py(y), a.right, a.py(y))
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing grid: %w", err)
	}
	dc.ClearDash()

	dc.SetRGB(0.2, 0.2, 0.2)
	for _, x := range xt {
		dc.DrawStringAnchored(FormatTick(x, xstep), a.px(x), a.bottom+8, 0.5, 1)
	}
	for _, y := range yt {
		dc.DrawStringAnchored(FormatTick(y, ystep), a.left-8, a.py(y), 1, 0.35)
	}
	return nil
}

func drawSeries(dc *gg.Context, a frame, s Series) error {
	dc.SetHexColor(s.Color)
	width := s.Width
	if width == 0 {
		width = 1.5
	}
	dc.SetLineWidth(width)

	started := false
	for i := range s.X {
		if !finite(s.X[i]) || !finite(s.Y[i]) {
			started = false
			continue
		}
		if started {
			dc.LineTo(a.px(s.X[i]), a.py(s.Y[i]))
		} else {
			dc.MoveTo(a.px(s.X[i]), a.py(s.Y[i]))
			started = true
		}
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing series %s: %w", s.Label, err)
	}
	return nil
}

func drawFrame(dc *gg.Context, a frame) error {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(a.left, a.top, a.right-a.left, a.bottom-a.top)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing frame: %w", err)
	}
	return nil
}

func drawLegend(dc *gg.Context, a frame, series []Series) error {
	const (
		row    = 20.0
		swatch = 24.0
	)
	labelWidth := 0.0
	for _, s := range series {
		w, _ := dc.MeasureString(s.Label)
		labelWidth = math.Max(labelWidth, w)
	}
	boxW := swatch + labelWidth + 24
	boxH := row*float64(len(series)) + 8
	x := a.right - boxW - 10
	y := a.top + 10

	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawRectangle(x, y, boxW, boxH)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("drawing legend: %w", err)
	}
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, boxW, boxH)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("drawing legend: %w", err)
	}

	for i, s := range series {
		cy := y + 4 + row*(float64(i)+0.5)
		dc.SetHexColor(s.Color)
		dc.SetLineWidth(2)
		dc.DrawLine(x+8, cy, x+8+swatch, cy)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("drawing legend: %w", err)
		}
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(s.Label, x+16+swatch, cy, 0, 0.35)
	}
	return nil
}
