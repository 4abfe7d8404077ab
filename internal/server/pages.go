package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kartoza/wine-quality/internal/predictor"
	"github.com/kartoza/wine-quality/internal/quality"
	"github.com/kartoza/wine-quality/internal/view"
)

// maxFormBytes caps the size of a submitted form
const maxFormBytes = 1 << 16

// parseInputs reads the control values from a request. A missing or
// unparseable field keeps its default; range is enforced by clamping.
func parseInputs(r *http.Request) quality.Inputs {
	in := quality.DefaultInputs()
	if v, err := strconv.ParseFloat(r.FormValue("alcohol"), 64); err == nil {
		in.Alcohol = v
	}
	if v, err := strconv.ParseFloat(r.FormValue("volatile_acidity"), 64); err == nil {
		in.VolatileAcidity = v
	}
	return in.Clamp()
}

// handlePage renders the form without a results panel
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, view.NewPage(parseInputs(r), s.cfg.Version))
}

// handleSubmit runs one prediction and renders either the results panel or
// the error banner
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	outcome := s.predictor.Submit(r.Context(), parseInputs(r))
	page := view.NewPage(outcome.Inputs, s.cfg.Version)

	switch outcome.Kind {
	case predictor.KindOK:
		page = page.WithResult(*outcome.Display)
	case predictor.KindTransport, predictor.KindUnexpected:
		page = page.WithError(outcome.Message())
	default:
		s.logger.Error("unhandled outcome kind", zap.Stringer("kind", outcome.Kind))
		page = page.WithError("Unexpected error: unknown outcome")
	}
	s.renderPage(w, page)
}

func (s *Server) renderPage(w http.ResponseWriter, page view.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.Render(w, page); err != nil {
		s.logger.Error("page render failed", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
