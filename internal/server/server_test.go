package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kartoza/wine-quality/internal/config"
)

// newModelService fakes the remote prediction endpoint and counts calls
func newModelService(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, endpoint string, logger *zap.Logger) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Endpoint = endpoint
	cfg.Version = "test"
	if logger == nil {
		logger = zaptest.NewLogger(t)
	}

	s, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func postForm(s *Server, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPageRendersForm(t *testing.T) {
	var calls atomic.Int32
	svc := newModelService(t, http.StatusOK, `{}`, &calls)
	s := newTestServer(t, svc.URL, nil)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `value="11.634"`) || !strings.Contains(body, `value="0.319"`) {
		t.Error("Expected default control values")
	}
	if strings.Contains(body, `id="results"`) {
		t.Error("Expected no results before submitting")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("Expected no calls to the model service, got %d", n)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request ID header")
	}
}

func TestPageKeepsQueryInputs(t *testing.T) {
	s := newTestServer(t, "http://localhost:1/predict", nil)

	req := httptest.NewRequest("GET", "/?alcohol=9.5&volatile_acidity=5", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `value="9.5"`) {
		t.Error("Expected alcohol from query")
	}
	if !strings.Contains(body, `value="2"`) {
		t.Error("Expected clamped volatile acidity")
	}
}

func TestSubmitRendersResults(t *testing.T) {
	var calls atomic.Int32
	svc := newModelService(t, http.StatusOK, `{"prediction":1,"probability":[0.1,0.9]}`, &calls)
	s := newTestServer(t, svc.URL, nil)

	w := postForm(s, url.Values{"alcohol": {"11.634"}, "volatile_acidity": {"0.319"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`id="results"`,
		"probability wine is good",
		"90.00%",
		"10.00%",
		"excellent quality likely",
		`class="gauge-value"`,
		`value="11.634"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected exactly one call to the model service, got %d", n)
	}
}

func TestSubmitTransportFailureShowsBannerOnly(t *testing.T) {
	svc := httptest.NewServer(http.NotFoundHandler())
	endpoint := svc.URL
	svc.Close()
	s := newTestServer(t, endpoint, nil)

	w := postForm(s, url.Values{"alcohol": {"10"}, "volatile_acidity": {"0.5"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Error calling the API: ") {
		t.Error("Expected transport error banner")
	}
	for _, unwanted := range []string{`id="results"`, `class="gauge-value"`, `class="bar"`, `class="metric"`} {
		if strings.Contains(body, unwanted) {
			t.Errorf("Expected no %q on failure", unwanted)
		}
	}
	if !strings.Contains(body, `value="10"`) {
		t.Error("Expected inputs to survive a failed submission")
	}
}

func TestSubmitUnexpectedFailureShowsBanner(t *testing.T) {
	svc := newModelService(t, http.StatusOK, `{"prediction":1,"probability":[0.9]}`, nil)
	s := newTestServer(t, svc.URL, nil)

	w := postForm(s, url.Values{})

	body := w.Body.String()
	if !strings.Contains(body, "Unexpected error: ") {
		t.Error("Expected unexpected error banner")
	}
	if strings.Contains(body, `id="results"`) {
		t.Error("Expected no results panel")
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	svc := newModelService(t, http.StatusOK, `{"prediction":0,"probability":[0.8,0.2]}`, nil)
	s := newTestServer(t, svc.URL, nil)

	form := url.Values{"alcohol": {"8.1"}, "volatile_acidity": {"0.9"}}
	first := postForm(s, form).Body.String()
	second := postForm(s, form).Body.String()

	if first != second {
		t.Error("Expected identical pages for identical submissions")
	}
	if !strings.Contains(first, "probability wine is not good") || !strings.Contains(first, "20.00%") {
		t.Error("Expected negative class metric")
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, "http://localhost:1/predict", nil)

	for _, path := range []string{"/static/app.css", "/static/app.js"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}
}

func TestAPIMounted(t *testing.T) {
	s := newTestServer(t, "http://localhost:1/predict", nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newTestServer(t, "http://localhost:1/predict", zap.New(core))

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 request log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/health" {
		t.Errorf("Unexpected path field %v", fields["path"])
	}
	if fields["request_id"] != w.Header().Get("X-Request-ID") {
		t.Errorf("Logged request_id %v does not match header", fields["request_id"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("Unexpected status field %v (%T)", fields["status"], fields["status"])
	}
}

func TestRecovererCatchesPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := recoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("Expected the panic to be logged")
	}
}

func TestUnmatchedRoutesAreLogged(t *testing.T) {
	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/missing", http.StatusNotFound},
		{"DELETE", "/", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		core, logs := observer.New(zapcore.InfoLevel)
		s := newTestServer(t, "http://localhost:1/predict", zap.New(core))

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

		if w.Code != tt.status {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.status, w.Code)
		}
		entries := logs.FilterMessage("request").All()
		if len(entries) != 1 {
			t.Fatalf("%s %s: expected 1 request log entry, got %d", tt.method, tt.path, len(entries))
		}
		if got := entries[0].ContextMap()["status"]; got != int64(tt.status) {
			t.Errorf("%s %s: unexpected status field %v", tt.method, tt.path, got)
		}
	}
}

func TestPanicsAreLoggedWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newTestServer(t, "http://localhost:1/predict", zap.New(core))
	h := s.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	id := w.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("Expected an X-Request-ID header")
	}

	requests := logs.FilterMessage("request").All()
	if len(requests) != 1 {
		t.Fatalf("Expected 1 request log entry, got %d", len(requests))
	}
	fields := requests[0].ContextMap()
	if fields["request_id"] != id {
		t.Errorf("Logged request_id %v does not match header %q", fields["request_id"], id)
	}
	if fields["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("Unexpected status field %v", fields["status"])
	}

	panics := logs.FilterMessage("panic recovered").All()
	if len(panics) != 1 {
		t.Fatalf("Expected 1 panic log entry, got %d", len(panics))
	}
	if panics[0].ContextMap()["request_id"] != id {
		t.Errorf("Panic log request_id %v does not match header %q", panics[0].ContextMap()["request_id"], id)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := newTestServer(t, "http://localhost:1/predict", nil)
	if err := s.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
