// Package view renders the prediction page
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/kartoza/wine-quality/internal/quality"
)

//go:embed templates/*.html
var templateFS embed.FS

// Control is one bounded numeric input on the form
type Control struct {
	Name   string
	Label  string
	Value  float64
	Bounds quality.Bounds
}

// StepAttr is the step attribute for the range input. A value off the step
// grid gets "any" so the browser does not snap it before it is posted.
func (c Control) StepAttr() string {
	n := (c.Value - c.Bounds.Min) / c.Bounds.Step
	if math.Abs(n-math.Round(n)) > 1e-6 {
		return "any"
	}
	return formatNumber(c.Bounds.Step)
}

// Page is the data behind one render of the form
type Page struct {
	Title    string
	Subtitle string
	Controls []Control
	Version  string

	// At most one of Result and Error is set
	Result *Result
	Error  string
}

// Result is the results panel of a successful submission
type Result struct {
	Display quality.DisplayState
	Gauge   GaugeView
	Chart   ChartView
}

// NewPage builds the page for the current inputs with an empty results panel
func NewPage(in quality.Inputs, version string) Page {
	return Page{
		Title:    "Wine Quality Prediction App",
		Subtitle: "This app predicts red wine quality from its chemical properties",
		Version:  version,
		Controls: []Control{
			{Name: "volatile_acidity", Label: "Volatile Acidity", Value: in.VolatileAcidity, Bounds: quality.VolatileAcidityBounds},
			{Name: "alcohol", Label: "Alcohol", Value: in.Alcohol, Bounds: quality.AlcoholBounds},
		},
	}
}

// WithResult attaches a successful display state and clears any error
func (p Page) WithResult(d quality.DisplayState) Page {
	p.Result = &Result{
		Display: d,
		Gauge:   NewGaugeView(d.Gauge),
		Chart:   NewChartView(d.Chart),
	}
	p.Error = ""
	return p
}

// WithError attaches a banner message and clears any result
func (p Page) WithError(message string) Page {
	p.Result = nil
	p.Error = message
	return p
}

// Renderer executes the page template
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"num": formatNumber,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full page. Output is buffered so a template error never
// leaves a half-written page behind.
func (r *Renderer) Render(w io.Writer, p Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page.html", p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// formatNumber prints the shortest decimal that round-trips to v
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
