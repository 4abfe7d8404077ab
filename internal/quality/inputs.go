package quality

import "math"

// Bounds describes the allowed range and slider step of a numeric input
type Bounds struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

var (
	// AlcoholBounds is the range of the alcohol control (% vol)
	AlcoholBounds = Bounds{Min: 0.0, Max: 16.0, Step: 0.01, Default: 11.634}

	// VolatileAcidityBounds is the range of the volatile acidity control (g/L)
	VolatileAcidityBounds = Bounds{Min: 0.0, Max: 2.0, Step: 0.001, Default: 0.319}
)

// Clamp forces v into [Min, Max]. NaN maps to Min.
func (b Bounds) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Inputs holds the values a user is currently adjusting. It is owned by the
// caller (form or API request) and passed in on every submission.
type Inputs struct {
	Alcohol         float64 `json:"alcohol"`
	VolatileAcidity float64 `json:"volatile_acidity"`
}

// DefaultInputs returns the initial control positions
func DefaultInputs() Inputs {
	return Inputs{
		Alcohol:         AlcoholBounds.Default,
		VolatileAcidity: VolatileAcidityBounds.Default,
	}
}

// Clamp returns a copy with both values forced into their bounds
func (in Inputs) Clamp() Inputs {
	return Inputs{
		Alcohol:         AlcoholBounds.Clamp(in.Alcohol),
		VolatileAcidity: VolatileAcidityBounds.Clamp(in.VolatileAcidity),
	}
}
