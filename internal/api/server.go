// Package api serves the latest trail predictions over HTTP. Handlers only
// read: the prediction job is the single writer.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trailcast/internal/regions"
	"trailcast/internal/types"
)

const defaultRequestTimeout = 10 * time.Second

// PredictionReader is the read side of the prediction store.
type PredictionReader interface {
	GetLatestRun(ctx context.Context) (*types.PredictionRun, error)
	GetByTrail(ctx context.Context, trailID string) (*types.Prediction, error)
	ListByRegion(ctx context.Context, region string) ([]types.Prediction, error)
}

// Server holds the API dependencies and the router.
type Server struct {
	Store          PredictionReader
	Table          *regions.Table
	Logger         *slog.Logger
	HealthProbes   []HealthProbe
	RequestTimeout time.Duration

	router *chi.Mux
}

// NewServer creates a server and mounts its routes.
func NewServer(store PredictionReader, table *regions.Table, logger *slog.Logger, probes ...HealthProbe) (*Server, error) {
	if store == nil {
		return nil, errors.New("prediction store must not be nil")
	}
	if table == nil {
		return nil, errors.New("region table must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		Store:          store,
		Table:          table,
		Logger:         logger,
		HealthProbes:   probes,
		RequestTimeout: defaultRequestTimeout,
		router:         chi.NewRouter(),
	}
	s.mountRoutes()
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) mountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.RequestTimeout))
	s.router.Use(s.RequestIDMiddleware)
	s.router.Use(RequestLogger)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, r, types.NewAppError(types.ErrCodeNotFoundRoute, "route not found", nil))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, r, http.StatusMethodNotAllowed, APIErrorResponse{Error: ErrorDetail{
			Code:      "method_not_allowed",
			Message:   r.Method + " is not supported on this route",
			RequestID: types.GetRequestID(r.Context()),
		}})
	})

	s.router.Get("/healthz", s.HandleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/runs/latest", s.HandleLatestRun)
		r.Get("/trails/{trailID}/prediction", s.HandleTrailPrediction)
		r.Route("/regions", func(r chi.Router) {
			r.Get("/", s.HandleListRegions)
			r.Get("/nearest", s.HandleNearestRegion)
			r.Get("/{region}/predictions", s.HandleRegionPredictions)
		})
	})
}
