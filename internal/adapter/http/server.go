// Package http serves the prediction front end: an HTML form, a JSON API,
// and the health, readiness and metrics endpoints.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
	"github.com/couchcryptid/f1-dataset-etl/internal/predict"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// maxBodyBytes bounds form and JSON request bodies.
const maxBodyBytes = 64 << 10

// Predictor evaluates the classifier. It is satisfied by *predict.Predictor.
type Predictor interface {
	sharedobs.ReadinessChecker
	Circuits() []string
	Predict(in predict.Input) (string, error)
}

// Server exposes the prediction routes plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the form, API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, predictor Predictor, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		metrics:   metrics,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /predict", s.handlePredictForm)
	mux.HandleFunc("POST /api/predict", s.handlePredictJSON)
	mux.HandleFunc("GET /api/circuits", s.handleCircuits)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(predictor))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// formField is one numeric input on the page.
type formField struct {
	Name    string
	Label   string
	Value   string
	Integer bool
	Min     *float64
	Max     *float64
}

type pageData struct {
	Circuits   []string
	Circuit    string
	Fields     []formField
	Prediction string
	Error      string
}

// newPage fills every numeric input from values, falling back to the
// feature default. The circuit id is chosen through the select instead.
func (s *Server) newPage(circuit string, values map[string]string) pageData {
	circuits := s.predictor.Circuits()
	if circuit == "" && len(circuits) > 0 {
		circuit = circuits[0]
	}

	page := pageData{Circuits: circuits, Circuit: circuit}
	for _, f := range predict.Features() {
		if f.Name == predict.FeatureCircuitID {
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			v = strconv.FormatFloat(f.Default, 'f', -1, 64)
		}
		page.Fields = append(page.Fields, formField{
			Name: f.Name, Label: f.Label, Value: v,
			Integer: f.Integer, Min: f.Min, Max: f.Max,
		})
	}
	return page
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.newPage("", nil))
}

func (s *Server) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, s.pageWithError("", nil, "invalid form submission"))
		return
	}

	circuit := r.PostForm.Get("circuit")
	raw := make(map[string]string)
	in := predict.Input{Circuit: circuit, Values: make(map[string]float64)}
	for _, f := range predict.Features() {
		v := r.PostForm.Get(f.Name)
		if v == "" {
			continue
		}
		raw[f.Name] = v
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.metrics.Predictions.WithLabelValues("error").Inc()
			s.render(w, http.StatusBadRequest, s.pageWithError(circuit, raw, f.Label+" must be a number"))
			return
		}
		in.Values[f.Name] = n
	}

	label, err := s.predict(in)
	if err != nil {
		status, msg := predictErrorStatus(err)
		s.render(w, status, s.pageWithError(circuit, raw, msg))
		return
	}

	page := s.newPage(circuit, raw)
	page.Prediction = label
	s.render(w, http.StatusOK, page)
}

func (s *Server) pageWithError(circuit string, raw map[string]string, msg string) pageData {
	page := s.newPage(circuit, raw)
	page.Error = msg
	return page
}

// predictRequest is the JSON body of POST /api/predict.
type predictRequest struct {
	Circuit  string             `json:"circuit"`
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Prediction string `json:"prediction"`
}

func (s *Server) handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	label, err := s.predict(predict.Input{Circuit: req.Circuit, Values: req.Features})
	if err != nil {
		status, msg := predictErrorStatus(err)
		sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, predictResponse{Prediction: label})
}

func (s *Server) handleCircuits(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"circuits": s.predictor.Circuits()})
}

func (s *Server) predict(in predict.Input) (string, error) {
	label, err := s.predictor.Predict(in)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("error").Inc()
		s.logger.Warn("prediction failed", "circuit", in.Circuit, "error", err)
		return "", err
	}
	s.metrics.Predictions.WithLabelValues("success").Inc()
	s.logger.Debug("prediction served", "circuit", in.Circuit, "prediction", label)
	return label, nil
}

// predictErrorStatus maps input errors to 400 and everything else to 500.
func predictErrorStatus(err error) (int, string) {
	if errors.Is(err, predict.ErrUnknownCircuit) || errors.Is(err, predict.ErrInvalidInput) {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "prediction failed"
}

func (s *Server) render(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
