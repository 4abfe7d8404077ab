package view

import (
	"fmt"
	"math"

	"github.com/kartoza/wine-quality/internal/quality"
)

// Gauge layout in SVG user units
const (
	gaugeWidth   = 300
	gaugeHeight  = 190
	gaugeCX      = 150.0
	gaugeCY      = 160.0
	bandOuter    = 130.0
	bandInner    = 85.0
	valueOuter   = 118.0
	valueInner   = 97.0
	tickInner    = 80.0
	tickOuter    = 135.0
	gaugeFullArc = math.Pi
)

// Arc is a filled ring segment
type Arc struct {
	Path  string
	Color string
}

// Line is a straight SVG segment
type Line struct {
	X1, Y1, X2, Y2 string
}

// GaugeView is the precomputed SVG geometry of a gauge
type GaugeView struct {
	Width, Height int
	Title         string
	Bands         []Arc
	Value         *Arc
	Threshold     Line
	Number        string
	Ticks         []Tick
}

// Tick is an axis label
type Tick struct {
	X, Y  string
	Label string
}

func coord(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// angle maps a gauge value onto the upper half circle: min on the left,
// max on the right
func angle(v, min, max float64) float64 {
	if max <= min {
		return gaugeFullArc
	}
	frac := (v - min) / (max - min)
	frac = math.Max(0, math.Min(1, frac))
	return gaugeFullArc * (1 - frac)
}

func polar(r, theta float64) (float64, float64) {
	return gaugeCX + r*math.Cos(theta), gaugeCY - r*math.Sin(theta)
}

// ringPath draws the ring segment between two angles, clockwise from a0 to a1
func ringPath(inner, outer, a0, a1 float64) string {
	ox0, oy0 := polar(outer, a0)
	ox1, oy1 := polar(outer, a1)
	ix1, iy1 := polar(inner, a1)
	ix0, iy0 := polar(inner, a0)
	return fmt.Sprintf("M %s %s A %s %s 0 0 1 %s %s L %s %s A %s %s 0 0 0 %s %s Z",
		coord(ox0), coord(oy0),
		coord(outer), coord(outer), coord(ox1), coord(oy1),
		coord(ix1), coord(iy1),
		coord(inner), coord(inner), coord(ix0), coord(iy0))
}

// NewGaugeView lays out g. Values outside the scale are drawn pinned to the
// nearest end; the number still shows the real value.
func NewGaugeView(g quality.Gauge) GaugeView {
	gv := GaugeView{
		Width:  gaugeWidth,
		Height: gaugeHeight,
		Title:  g.Title,
		Number: fmt.Sprintf("%.2f%s", g.Value, g.Suffix),
	}

	for _, b := range g.Bands {
		gv.Bands = append(gv.Bands, Arc{
			Path:  ringPath(bandInner, bandOuter, angle(b.From, g.Min, g.Max), angle(b.To, g.Min, g.Max)),
			Color: b.Color,
		})
	}

	if end := angle(g.Value, g.Min, g.Max); end < gaugeFullArc {
		gv.Value = &Arc{
			Path:  ringPath(valueInner, valueOuter, gaugeFullArc, end),
			Color: "darkblue",
		}
	}

	ta := angle(g.Threshold, g.Min, g.Max)
	x1, y1 := polar(tickInner, ta)
	x2, y2 := polar(tickOuter, ta)
	gv.Threshold = Line{X1: coord(x1), Y1: coord(y1), X2: coord(x2), Y2: coord(y2)}

	for i := 0; i <= 4; i++ {
		v := g.Min + float64(i)*(g.Max-g.Min)/4
		x, y := polar(bandOuter+12, angle(v, g.Min, g.Max))
		gv.Ticks = append(gv.Ticks, Tick{X: coord(x), Y: coord(y), Label: fmt.Sprintf("%g", v)})
	}
	return gv
}

// Bar chart layout in SVG user units
const (
	chartWidth  = 420
	chartHeight = 320
	plotLeft    = 60.0
	plotRight   = 400.0
	plotTop     = 30.0
	plotBottom  = 270.0
	barFill     = 0.6
	chartMax    = 100.0
)

// BarView is one positioned bar
type BarView struct {
	X, Y, Width, Height string
	Color               string
	Label               string
	Text                string
	LabelX, LabelY      string
	TextY               string
}

// ChartView is the precomputed SVG geometry of the class probability chart
type ChartView struct {
	Width, Height int
	Title         string
	XTitle        string
	YTitle        string
	Bars          []BarView
	Grid          []Tick
	PlotLeft      string
	PlotRight     string
	PlotBottom    string
}

// NewChartView lays out c on a fixed 0-100 scale
func NewChartView(c quality.BarChart) ChartView {
	cv := ChartView{
		Width:      chartWidth,
		Height:     chartHeight,
		Title:      c.Title,
		XTitle:     c.XTitle,
		YTitle:     c.YTitle,
		PlotLeft:   coord(plotLeft),
		PlotRight:  coord(plotRight),
		PlotBottom: coord(plotBottom),
	}

	plotHeight := plotBottom - plotTop
	for i := 0; i <= 4; i++ {
		v := float64(i) * chartMax / 4
		y := plotBottom - v/chartMax*plotHeight
		cv.Grid = append(cv.Grid, Tick{X: coord(plotLeft - 8), Y: coord(y), Label: fmt.Sprintf("%g", v)})
	}

	if len(c.Bars) == 0 {
		return cv
	}
	slot := (plotRight - plotLeft) / float64(len(c.Bars))
	width := slot * barFill
	for i, b := range c.Bars {
		h := math.Max(0, math.Min(chartMax, b.Value)) / chartMax * plotHeight
		x := plotLeft + float64(i)*slot + (slot-width)/2
		y := plotBottom - h
		textY := y - 6
		if h > 24 {
			textY = y + 18
		}
		cv.Bars = append(cv.Bars, BarView{
			X:      coord(x),
			Y:      coord(y),
			Width:  coord(width),
			Height: coord(h),
			Color:  b.Color,
			Label:  b.Label,
			Text:   b.Text,
			LabelX: coord(x + width/2),
			LabelY: coord(plotBottom + 18),
			TextY:  coord(textY),
		})
	}
	return cv
}
