// Package plot renders generated numbers as a PNG scatter plot.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/config"
	"github.com/ib-77/cbd/pkg/filter"
)

var (
	ErrUnknownAxis   = errors.New("plot: unknown axis")
	ErrNothingToPlot = errors.New("plot: nothing to plot")
)

type Options struct {
	Width           int
	Height          int
	PointSize       float64
	PaletteRange    int
	YAxis           string
	Colorization    string
	IncludeBackbone bool
	// UpperBound and FilterName only feed the title.
	UpperBound int64
	FilterName string
}

func OptionsFromConfig(cfg config.Config) Options {
	o := Options{
		Width:           cfg.Plot.Width,
		Height:          cfg.Plot.Height,
		PointSize:       cfg.Plot.PointSize,
		PaletteRange:    cfg.Plot.PaletteRange,
		YAxis:           cfg.Plot.YAxis,
		Colorization:    cfg.Plot.Colorization,
		IncludeBackbone: cfg.Data.IncludeBackbone,
		UpperBound:      cfg.Data.UpperBound,
	}
	if cfg.Filter != nil {
		o.FilterName = cfg.Filter.Name
	}
	return o
}

func (o Options) axes() (y, c axis, err error) {
	y, ok := yAxes[o.YAxis]
	if !ok {
		return axis{}, axis{}, fmt.Errorf("%w: y axis %q", ErrUnknownAxis, o.YAxis)
	}
	c, ok = colorings[o.Colorization]
	if !ok {
		return axis{}, axis{}, fmt.Errorf("%w: colorization %q", ErrUnknownAxis, o.Colorization)
	}
	return y, c, nil
}

type Point struct {
	X      float64
	Y      float64
	Bucket int
}

// ColourBucket returns floor(paletteRange * value / max).
func ColourBucket(value, max float64, paletteRange int) int {
	return int(math.Floor(float64(paletteRange) * value / max))
}

// Prepare turns numbers into points. Backbone numbers are dropped unless
// IncludeBackbone is set. It fails with ErrNothingToPlot when no point is
// left or the colorization field is zero everywhere.
func Prepare(numbers []*collatz.Number, o Options) ([]Point, error) {
	y, c, err := o.axes()
	if err != nil {
		return nil, err
	}

	kept := make([]*collatz.Number, 0, len(numbers))
	maxColour := 0.0
	for _, n := range numbers {
		if n.IsBackbone && !o.IncludeBackbone {
			continue
		}
		kept = append(kept, n)
		v, _ := filter.Field(n, c.column)
		maxColour = max(maxColour, v)
	}
	if len(kept) == 0 || maxColour == 0 {
		return nil, ErrNothingToPlot
	}

	points := make([]Point, len(kept))
	for i, n := range kept {
		yv, _ := filter.Field(n, y.column)
		cv, _ := filter.Field(n, c.column)
		points[i] = Point{
			X:      float64(n.Value),
			Y:      yv,
			Bucket: ColourBucket(cv, maxColour, o.PaletteRange),
		}
	}
	return points, nil
}

// Title describes the plot: axis, colouring, sample size and the active
// filter.
func Title(o Options, points int) string {
	y, c, err := o.axes()
	if err != nil {
		return "Collatz"
	}
	base := max(o.UpperBound-2, 1)
	ratio := float64(points) / float64(base)

	title := fmt.Sprintf("Collatz: %s [ Color: %s ] [size %d / %d (%.4f)]", y.label, c.label, points, base, ratio)
	if o.IncludeBackbone {
		title += " [ bb included ]"
	}
	if o.FilterName != "" {
		title += fmt.Sprintf(" [ filter: %s ]", o.FilterName)
	}
	return title
}

// Palette returns n colours running from dark blue through green to yellow.
func Palette(n int) []color.Color {
	stops := []color.RGBA{
		{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
		{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
		{R: 0x21, G: 0x90, B: 0x8d, A: 0xff},
		{R: 0x5d, G: 0xc9, B: 0x63, A: 0xff},
		{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
	}
	out := make([]color.Color, n)
	for i := range n {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		pos := t * float64(len(stops)-1)
		j := min(int(pos), len(stops)-2)
		f := pos - float64(j)
		a, b := stops[j], stops[j+1]
		lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
		out[i] = color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
	}
	return out
}

const (
	marginLeft   = 70.0
	marginRight  = 20.0
	marginTop    = 40.0
	marginBottom = 50.0
)

// Render draws points as a scatter plot and writes it to w as PNG.
func Render(w io.Writer, points []Point, o Options) error {
	y, _, err := o.axes()
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return ErrNothingToPlot
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if maxX == minX {
		maxX++
	}
	if maxY == minY {
		maxY++
	}

	width, height := float64(o.Width), float64(o.Height)
	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom
	toScreen := func(p Point) (float64, float64) {
		sx := marginLeft + (p.X-minX)/(maxX-minX)*plotW
		sy := marginTop + plotH - (p.Y-minY)/(maxY-minY)*plotH
		return sx, sy
	}

	dc := gg.NewContext(o.Width, o.Height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()

	dc.DrawStringAnchored(Title(o, len(points)), width/2, marginTop/2, 0.5, 0.5)
	dc.DrawStringAnchored("value", marginLeft+plotW/2, height-marginBottom/3, 0.5, 0.5)
	dc.DrawStringAnchored(formatTick(minX), marginLeft, marginTop+plotH+12, 0, 0.5)
	dc.DrawStringAnchored(formatTick(maxX), marginLeft+plotW, marginTop+plotH+12, 1, 0.5)
	dc.DrawStringAnchored(formatTick(minY), marginLeft-6, marginTop+plotH, 1, 0.5)
	dc.DrawStringAnchored(formatTick(maxY), marginLeft-6, marginTop, 1, 0.5)

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), marginLeft/3, marginTop+plotH/2)
	dc.DrawStringAnchored(y.label, marginLeft/3, marginTop+plotH/2, 0.5, 0.5)
	dc.Pop()

	palette := Palette(o.PaletteRange + 1)
	for _, p := range points {
		sx, sy := toScreen(p)
		dc.SetColor(palette[min(max(p.Bucket, 0), len(palette)-1)])
		dc.DrawCircle(sx, sy, o.PointSize)
		dc.Fill()
	}

	return dc.EncodePNG(w)
}

func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
