// Package api - Thin HTTP layer over the rating pipeline.
// The API is only responsible for input ingestion, context orchestration
// and output serialization. It never performs rating logic.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"quote-pricer/core/pricer"
	"quote-pricer/internal/config"
	"quote-pricer/internal/errors"
	"quote-pricer/internal/logging"
)

// Server is the API server. The rating context sits behind an atomic
// pointer so a reload is one full swap: in-flight requests keep the
// context they started with.
type Server struct {
	router  chi.Router
	ctx     atomic.Pointer[pricer.Context]
	cfg     *config.Config
	version string

	validate *validator.Validate
}

// NewServer creates the API server around a loaded rating context
func NewServer(cfg *config.Config, pctx *pricer.Context, version string) *Server {
	s := &Server{
		cfg:      cfg,
		version:  version,
		validate: validator.New(),
	}
	s.ctx.Store(pctx)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/price", s.handlePrice)
		r.Post("/price/batch", s.handleBatch)
		r.Post("/reload", s.handleReload)
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handlePrice handles POST /v1/price: one raw quote in, one premium
// breakdown out. Errors propagate straight to the caller.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req PriceRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, requestID, errors.Wrap(errors.KindInput, "malformed JSON body", err))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, requestID, errors.Wrap(errors.KindInput, "invalid request", err))
		return
	}

	result, err := s.ctx.Load().PriceQuote(req.Quote)
	if err != nil {
		s.writeError(w, r, requestID, err)
		return
	}

	logging.Info("quote priced",
		zap.String("request_id", requestID),
		zap.String("record", result.Premium.RecordID),
		zap.String("premium", result.Premium.FinalPremium.String()))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, PriceResponse{RequestID: requestID, Result: result})
}

// handleBatch handles POST /v1/price/batch: per-record outcomes, the
// batch itself never fails on a bad record.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req BatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, requestID, errors.Wrap(errors.KindInput, "malformed JSON body", err))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, requestID, errors.Wrap(errors.KindInput, "invalid request", err))
		return
	}

	table := pricerTable(req.Quotes)
	result := s.ctx.Load().PriceBatch(r.Context(), table)

	logging.Info("batch priced",
		zap.String("request_id", requestID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, BatchResponse{RequestID: requestID, Result: result})
}

// handleReload handles POST /v1/reload: rebuild the whole context from
// configuration and swap it atomically
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	pctx, err := pricer.LoadContext(s.cfg)
	if err != nil {
		s.writeError(w, r, requestID, err)
		return
	}
	s.ctx.Store(pctx)

	logging.Info("rating context reloaded", zap.String("request_id", requestID))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ReloadResponse{RequestID: requestID, Reloaded: true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, VersionResponse{Version: s.version})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, requestID string, err error) {
	e := errors.AsError(err)

	logging.Warn("request failed",
		zap.String("request_id", requestID),
		zap.String("kind", string(e.Kind)),
		zap.String("message", e.Message))

	render.Status(r, statusForKind(e.Kind))
	render.JSON(w, r, ErrorResponse{RequestID: requestID, Error: e})
}
