// Package quality turns a wine quality classification into the values shown
// on the results panel. Everything here is a pure function of its arguments.
package quality

import "fmt"

// Tier is the severity of a qualitative badge
type Tier string

const (
	TierSuccess Tier = "success"
	TierInfo    Tier = "info"
	TierWarning Tier = "warning"
	TierError   Tier = "error"
)

// Class labels returned by the prediction endpoint
const (
	ClassPoor = 0
	ClassGood = 1
)

// Badge is the qualitative verdict shown under the metric
type Badge struct {
	Tier Tier   `json:"tier"`
	Text string `json:"text"`
}

// Metric is the headline probability figure
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Band is a colored background range on the gauge
type Band struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// Gauge is a single value indicator on a 0-100 scale
type Gauge struct {
	Title     string  `json:"title"`
	Value     float64 `json:"value"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Bands     []Band  `json:"bands"`
	Threshold float64 `json:"threshold"`
	Suffix    string  `json:"suffix"`
}

// Bar is one category of the class probability chart
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
}

// BarChart compares the probability of both classes
type BarChart struct {
	Title  string `json:"title"`
	XTitle string `json:"x_title"`
	YTitle string `json:"y_title"`
	Bars   []Bar  `json:"bars"`
}

// DisplayState is everything the results panel shows for one response
type DisplayState struct {
	Inputs      Inputs   `json:"inputs"`
	Prediction  int      `json:"prediction"`
	Probability float64  `json:"probability"`
	Metric      Metric   `json:"metric"`
	Badge       Badge    `json:"badge"`
	Gauge       Gauge    `json:"gauge"`
	Chart       BarChart `json:"chart"`
}

// Gauge layout
const (
	GaugeThreshold = 50.0
	gaugeTitle     = "prediction confidence"
)

// GaugeBands are the fixed background ranges of the gauge
var GaugeBands = []Band{
	{From: 0, To: 50, Color: "#ffcccc"},
	{From: 50, To: 70, Color: "#fff3cd"},
	{From: 70, To: 100, Color: "#d4edda"},
}

// Badge thresholds on the probability of the good class
const (
	ExcellentThreshold = 0.70
	GoodThreshold      = 0.50
)

// ClassifyBadge applies the badge decision table. The first matching row
// wins and both thresholds are inclusive lower bounds.
func ClassifyBadge(prediction int, probability float64) Badge {
	if prediction != ClassGood {
		return Badge{Tier: TierError, Text: "insufficient quality likely"}
	}
	switch {
	case probability >= ExcellentThreshold:
		return Badge{Tier: TierSuccess, Text: "excellent quality likely"}
	case probability >= GoodThreshold:
		return Badge{Tier: TierInfo, Text: "good quality likely"}
	default:
		return Badge{Tier: TierWarning, Text: "likely quality but uncertain"}
	}
}

// MetricLabel names the headline metric for a prediction.
// The value shown under either label is P(good).
func MetricLabel(prediction int) string {
	if prediction == ClassGood {
		return "probability wine is good"
	}
	return "probability wine is not good"
}

// FormatPercent renders a probability in [0,1] as a percentage with two decimals
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Derive builds the display state for one classification. probabilities holds
// P(poor) and P(good) in that order.
func Derive(in Inputs, prediction int, probabilities [2]float64) DisplayState {
	probability := probabilities[ClassGood]

	bands := make([]Band, len(GaugeBands))
	copy(bands, GaugeBands)

	return DisplayState{
		Inputs:      in,
		Prediction:  prediction,
		Probability: probability,
		Metric: Metric{
			Label: MetricLabel(prediction),
			Value: FormatPercent(probability),
		},
		Badge: ClassifyBadge(prediction, probability),
		Gauge: Gauge{
			Title:     gaugeTitle,
			Value:     probability * 100,
			Min:       0,
			Max:       100,
			Bands:     bands,
			Threshold: GaugeThreshold,
			Suffix:    "%",
		},
		Chart: BarChart{
			Title:  "probabilities for each class",
			XTitle: "category",
			YTitle: "probability (%)",
			Bars: []Bar{
				{
					Label: "poor quality",
					Value: probabilities[ClassPoor] * 100,
					Text:  FormatPercent(probabilities[ClassPoor]),
					Color: "#ff6b6b",
				},
				{
					Label: "good quality",
					Value: probabilities[ClassGood] * 100,
					Text:  FormatPercent(probabilities[ClassGood]),
					Color: "#51cf66",
				},
			},
		},
	}
}
