package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sprintcap/internal/config"
	"sprintcap/internal/db"
)

// Server holds the application dependencies
type Server struct {
	db     *db.DB
	config *config.Config
	logger *zap.Logger
	imgbb  *ImgBBClient
}

// NewServer creates a new API server
func NewServer(database *db.DB, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		db:     database,
		config: cfg,
		logger: logger,
		imgbb:  NewImgBBClient(cfg.ImgBBAPIKey, logger),
	}
}

// queryCtx bounds a request context by the configured per-query timeout.
func (s *Server) queryCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.config.DBQueryTimeout())
}

// urlID parses the {id}-style chi URL parameter named name
func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondStoreError maps row-store sentinel errors onto the HTTP error
// taxonomy: missing rows are 404, empty patches 400, uniqueness collisions
// 409, anything else 500.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, entity string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, entity+" not found", "not_found")
	case errors.Is(err, db.ErrNoFields):
		respondError(w, http.StatusBadRequest, "no fields to update", "validation_error")
	case db.IsConflict(err):
		respondError(w, http.StatusConflict, entity+" already exists", "conflict")
	default:
		s.logger.Error("Store operation failed", zap.String("entity", entity), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error", "internal_error")
	}
}
