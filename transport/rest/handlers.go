package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/catalog"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/usecase"
)

const defaultTopLimit = 10

type catalogUseCase interface {
	Groups(ctx context.Context) ([]catalog.DepthGroup, error)
	Group(ctx context.Context, depth int) (*catalog.DepthGroup, error)
	Top(ctx context.Context, depth, limit int) ([]catalog.ClassSummary, error)
	Stats(ctx context.Context) (*usecase.Stats, error)
	Canonicalize(ctx context.Context, raw string) (*usecase.Canonical, error)
	Class(ctx context.Context, raw string) (*usecase.ClassDetail, error)
}

type handlers struct {
	logger  *slog.Logger
	catalog catalogUseCase
}

// NewRouter - builds the HTTP routes of the catalog query surface.
func NewRouter(logger *slog.Logger, catalogUseCase catalogUseCase, metricsHandler http.Handler) http.Handler {
	that := &handlers{
		logger:  logger.With("component", "rest"),
		catalog: catalogUseCase,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)
	router.Get("/stats", that.getStats)
	router.Get("/canonical", that.getCanonical)
	router.Get("/class", that.getClass)

	router.Route("/classes", func(r chi.Router) {
		r.Get("/", that.getGroups)
		r.Get("/{depth}", that.getGroup)
		r.Get("/{depth}/top", that.getTop)
	})

	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	return router
}

func (that *handlers) getGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := that.catalog.Groups(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, groups)
}

func (that *handlers) getGroup(w http.ResponseWriter, r *http.Request) {
	depth, err := depthParam(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	group, err := that.catalog.Group(r.Context(), depth)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, group)
}

func (that *handlers) getTop(w http.ResponseWriter, r *http.Request) {
	depth, err := depthParam(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	top, err := that.catalog.Top(r.Context(), depth, limit)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, top)
}

func (that *handlers) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.catalog.Stats(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, stats)
}

func (that *handlers) getCanonical(w http.ResponseWriter, r *http.Request) {
	canonical, err := that.catalog.Canonicalize(r.Context(), r.URL.Query().Get("board"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, canonical)
}

func (that *handlers) getClass(w http.ResponseWriter, r *http.Request) {
	detail, err := that.catalog.Class(r.Context(), r.URL.Query().Get("board"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, detail)
}

func depthParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "depth")

	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidDepth, raw)
	}

	return depth, nil
}

func (that *handlers) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidBoard),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidDepth):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperror.ErrNotDecisionPosition),
		errors.Is(err, apperror.ErrCatalogNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		that.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
