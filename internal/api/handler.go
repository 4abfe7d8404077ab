package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kartoza/wine-quality/internal/config"
	"github.com/kartoza/wine-quality/internal/httputil"
	"github.com/kartoza/wine-quality/internal/models"
	"github.com/kartoza/wine-quality/internal/predictor"
	"github.com/kartoza/wine-quality/internal/quality"
)

// maxBodyBytes caps the size of a predict request body
const maxBodyBytes = 1 << 16

// Predictor runs one submission against the model service
type Predictor interface {
	Submit(ctx context.Context, in quality.Inputs) predictor.Outcome
	Endpoint() string
}

// Handler provides HTTP API endpoints
type Handler struct {
	predictor Predictor
	cfg       config.Config
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(p Predictor, cfg config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		predictor: p,
		cfg:       cfg,
		logger:    logger.Named("api"),
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")
	r.HandleFunc("/inputs", h.handleInputs).Methods("GET")

	// Prediction
	r.HandleFunc("/predict", h.handlePredict).Methods("POST")
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":  h.cfg.Version,
		"endpoint": h.predictor.Endpoint(),
	}
	httputil.RespondJSON(w, http.StatusOK, info)
}

// handleInputs describes the bounded controls and their defaults
func (h *Handler) handleInputs(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]quality.Bounds{
		"alcohol":          quality.AlcoholBounds,
		"volatile_acidity": quality.VolatileAcidityBounds,
	})
}

// handlePredict runs one submission for the posted inputs
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictAPIRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := quality.DefaultInputs()
	if req.Alcohol != nil {
		in.Alcohol = *req.Alcohol
	}
	if req.VolatileAcidity != nil {
		in.VolatileAcidity = *req.VolatileAcidity
	}

	outcome := h.predictor.Submit(r.Context(), in)

	resp := models.PredictAPIResponse{Inputs: &outcome.Inputs}
	switch outcome.Kind {
	case predictor.KindOK:
		resp.Status = "ok"
		resp.Display = outcome.Display
		httputil.RespondJSON(w, http.StatusOK, resp)
	case predictor.KindTransport, predictor.KindUnexpected:
		resp.Status = "error"
		resp.Kind = outcome.Kind.String()
		resp.Error = outcome.Message()
		httputil.RespondJSON(w, http.StatusBadGateway, resp)
	default:
		h.logger.Error("unhandled outcome kind", zap.Stringer("kind", outcome.Kind))
		httputil.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
