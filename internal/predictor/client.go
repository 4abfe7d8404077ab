// Package predictor calls the remote wine quality model and turns its answer
// into an Outcome the UI can render.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kartoza/wine-quality/internal/models"
	"github.com/kartoza/wine-quality/internal/quality"
)

// DefaultEndpoint is the hosted model service
const DefaultEndpoint = "https://jgwineapi-dbfsbyhyg9hrg0c5.francecentral-01.azurewebsites.net/predict"

// Client posts prediction requests to a fixed endpoint. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for endpoint. A nil httpClient gets a default
// client without timeout; a nil logger discards output.
func NewClient(endpoint string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.Named("predictor"),
	}
}

// Endpoint returns the configured endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict sends one request and decodes the response. Errors are either
// *TransportError or *UnexpectedError. There is no retry.
func (c *Client) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{URL: c.endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{URL: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, newStatusError(c.endpoint, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: c.endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	var result models.PredictionResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("invalid response body: %w", err)}
	}
	return &result, nil
}

// Submit runs one full cycle: clamp the inputs, call the endpoint and derive
// the display state. Failures come back inside the Outcome.
func (c *Client) Submit(ctx context.Context, in quality.Inputs) Outcome {
	in = in.Clamp()
	id := uuid.New().String()
	start := time.Now()

	outcome := c.submit(ctx, in)

	fields := []zap.Field{
		zap.String("submission_id", id),
		zap.Float64("alcohol", in.Alcohol),
		zap.Float64("volatile_acidity", in.VolatileAcidity),
		zap.Stringer("outcome", outcome.Kind),
		zap.Duration("elapsed", time.Since(start)),
	}
	if outcome.Kind == KindOK {
		c.logger.Info("prediction rendered", append(fields,
			zap.Int("prediction", outcome.Display.Prediction),
			zap.Float64("probability", outcome.Display.Probability),
		)...)
	} else {
		c.logger.Warn("prediction failed", append(fields, zap.Error(outcome.Err))...)
	}
	return outcome
}

func (c *Client) submit(ctx context.Context, in quality.Inputs) Outcome {
	resp, err := c.Predict(ctx, models.PredictionRequest{
		Alcohol:         in.Alcohol,
		VolatileAcidity: in.VolatileAcidity,
	})
	if err != nil {
		return failure(in, err)
	}

	probs, err := resp.ClassProbabilities()
	if err != nil {
		return failure(in, &UnexpectedError{Err: err})
	}
	return success(in, quality.Derive(in, resp.Label(), probs))
}
