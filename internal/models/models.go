package models

import (
	"fmt"

	"github.com/kartoza/wine-quality/internal/quality"
)

// PredictionRequest is the body posted to the prediction endpoint
type PredictionRequest struct {
	Alcohol         float64 `json:"alcohol"`
	VolatileAcidity float64 `json:"volatile_acidity"`
}

// PredictionResponse is the body returned by the prediction endpoint.
// Absent or null fields are nil and take their defaults through Label and
// ClassProbabilities.
type PredictionResponse struct {
	Prediction  *float64   `json:"prediction"`
	Probability []*float64 `json:"probability"`
}

// Label returns the predicted class. Anything other than 1 counts as the
// negative class, and a missing prediction defaults to 0.
func (r PredictionResponse) Label() int {
	if r.Prediction != nil && *r.Prediction == 1 {
		return 1
	}
	return 0
}

// ClassProbabilities returns [P(poor), P(good)]. A missing or empty list
// yields zeros; a list with a single value or a null among the first two is
// malformed.
func (r PredictionResponse) ClassProbabilities() ([2]float64, error) {
	var probs [2]float64
	switch len(r.Probability) {
	case 0:
		return probs, nil
	case 1:
		return probs, fmt.Errorf("probability must hold two values, got %d", len(r.Probability))
	}
	for i := range probs {
		if r.Probability[i] == nil {
			return [2]float64{}, fmt.Errorf("probability[%d] is null", i)
		}
		probs[i] = *r.Probability[i]
	}
	return probs, nil
}

// PredictAPIRequest is the body accepted by the local predict API. Missing
// fields keep the current control defaults.
type PredictAPIRequest struct {
	Alcohol         *float64 `json:"alcohol"`
	VolatileAcidity *float64 `json:"volatile_acidity"`
}

// PredictAPIResponse is returned by the local predict API
type PredictAPIResponse struct {
	Status  string                `json:"status"`
	Kind    string                `json:"kind,omitempty"`
	Error   string                `json:"error,omitempty"`
	Inputs  *quality.Inputs       `json:"inputs,omitempty"`
	Display *quality.DisplayState `json:"display,omitempty"`
}
