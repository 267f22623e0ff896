// Package server exposes the planner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cognicore/semplan/internal/metrics"
	"github.com/cognicore/semplan/internal/source"
	"github.com/cognicore/semplan/pkg/semplan"
	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/config"
	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

const maxBodyBytes = 4 << 20

// Server handles plan requests. Budget and constraints missing from a
// request are taken from Defaults.
type Server struct {
	planner  *semplan.Planner
	defaults *config.Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a Server. A nil metrics disables /metrics; a nil logger
// discards logs.
func New(planner *semplan.Planner, defaults *config.Config, m *metrics.Metrics, logger *zap.Logger) *Server {
	if defaults == nil {
		defaults = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{planner: planner, defaults: defaults, metrics: m, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/v1/plans", func(r chi.Router) {
		r.Post("/", s.handleCreatePlan)
		r.Get("/", s.handleListPlans)
		r.Get("/{id}", s.handleGetPlan)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type budgetRequest struct {
	Total  float64            `json:"total"`
	Shares map[string]float64 `json:"shares,omitempty"`
}

type planRequest struct {
	Name        string              `json:"name"`
	Candidates  []keyword.Candidate `json:"candidates"`
	Seeds       []string            `json:"seeds"`
	Budget      *budgetRequest      `json:"budget"`
	Constraints *bid.Constraints    `json:"constraints"`
}

type planSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Keywords  int       `json:"keywords"`
	Budget    float64   `json:"budget"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var in planRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decode request: " + err.Error()})
		return
	}

	req, err := s.buildRequest(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan, err := s.planner.Plan(r.Context(), req)
	if s.metrics != nil {
		s.metrics.ObservePlan(plan, err)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("plan created",
		zap.String("id", plan.ID),
		zap.Int("candidates", plan.Candidates),
		zap.Int("keywords", len(plan.Keywords)),
		zap.Int("invalid_bids", plan.Bids.Invalid))
	w.Header().Set("Location", "/v1/plans/"+plan.ID)
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) buildRequest(ctx context.Context, in planRequest) (semplan.Request, error) {
	candidates := in.Candidates
	if len(in.Seeds) > 0 {
		expanded, err := source.NewSeeds(in.Seeds).Fetch(ctx)
		if err != nil {
			return semplan.Request{}, err
		}
		candidates = append(candidates, expanded...)
	}

	budget := s.defaults.Budget
	if in.Budget != nil {
		budget = config.Budget{Total: in.Budget.Total, Shares: in.Budget.Shares}
	}
	alloc, err := budget.Allocation()
	if err != nil {
		return semplan.Request{}, err
	}

	constraints := s.defaults.Business.Constraints()
	if in.Constraints != nil {
		constraints = *in.Constraints
	}

	name := in.Name
	if name == "" {
		name = s.defaults.Brand.CompanyName
	}
	return semplan.Request{Name: name, Candidates: candidates, Budget: alloc, Constraints: constraints}, nil
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	plans, err := s.planner.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]planSummary, len(plans))
	for i, p := range plans {
		out[i] = planSummary{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, Keywords: p.Keywords, Budget: p.Budget}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.planner.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internalerr.ErrMalformedBudgetAllocation),
		errors.Is(err, internalerr.ErrInvalidInput),
		errors.Is(err, internalerr.ErrInvalidConfig),
		errors.Is(err, internalerr.ErrEmptySourceSet),
		errors.Is(err, internalerr.ErrEmptyKeyword):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
