// Package api exposes the HTTP interface for the harvester service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/config"
	"github.com/JakeFAU/listing-harvester/internal/export"
	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/metrics"
	"github.com/JakeFAU/listing-harvester/internal/search"
	"github.com/JakeFAU/listing-harvester/internal/store"
)

// Searcher runs a multi-source search. Satisfied by *search.Service.
type Searcher interface {
	Search(ctx context.Context, opts search.Options) (*search.Result, error)
}

// Server wires HTTP handlers to the search service and store.
type Server struct {
	router   chi.Router
	searcher Searcher
	store    store.Store
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(searcher Searcher, st store.Store, cfg config.Config, logger *zap.Logger) *Server {
	s := &Server{
		searcher: searcher,
		store:    st,
		cfg:      cfg,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)
	// Searches drive real browsers; the timeout has to cover three sites.
	r.Use(timeoutMiddleware(5 * time.Minute))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.runSearch)
		r.Get("/listings", s.listListings)
		r.Get("/export/{format}", s.exportListings)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Query(r.Context(), store.Filter{Location: "readiness-probe"}); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, s.logger)
}

type searchRequest struct {
	Location string   `json:"location"`
	MinPrice float64  `json:"min_price"`
	MaxPrice float64  `json:"max_price"`
	Sources  []string `json:"sources"`
	MinBeds  float64  `json:"min_beds"`
	MinBaths float64  `json:"min_baths"`
	Limit    int      `json:"limit"`
}

type searchResponse struct {
	Listings []listing.Record       `json:"listings"`
	Counts   map[listing.Source]int `json:"counts"`
	Total    int                    `json:"total"`
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", s.logger)
		return
	}
	if req.Location == "" {
		writeError(w, http.StatusBadRequest, "location is required", s.logger)
		return
	}

	var sources []listing.Source
	for _, raw := range req.Sources {
		sources = append(sources, listing.ParseSources(raw)...)
	}
	// An explicit source list that parses to nothing must not widen the
	// search to every site.
	if len(req.Sources) > 0 && len(sources) == 0 {
		writeError(w, http.StatusBadRequest, "no valid sources requested", s.logger)
		return
	}

	result, err := s.searcher.Search(r.Context(), search.Options{
		Location: req.Location,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Sources:  sources,
		MinBeds:  req.MinBeds,
		MinBaths: req.MinBaths,
		Limit:    req.Limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), s.logger)
		return
	}

	records := result.Records
	if records == nil {
		records = []listing.Record{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Listings: records,
		Counts:   result.Counts,
		Total:    len(records),
	}, s.logger)
}

func (s *Server) listListings(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	records, err := s.store.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query listings failed", s.logger)
		return
	}
	if records == nil {
		records = []listing.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listings": records,
		"total":    len(records),
	}, s.logger)
}

func (s *Server) exportListings(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	records, err := s.store.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query listings failed", s.logger)
		return
	}

	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="listings.csv"`)
		err = export.WriteCSV(w, records)
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		err = export.WriteJSON(w, records)
	}
	if err != nil {
		s.logger.Warn("export write failed", zap.String("format", string(format)), zap.Error(err))
	}
}

func filterFromQuery(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	filter := store.Filter{Location: q.Get("location")}

	for name, dst := range map[string]**float64{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
		"min_beds":  &filter.MinBeds,
		"min_baths": &filter.MinBaths,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return store.Filter{}, &queryError{param: name}
		}
		*dst = &v
	}
	return filter, nil
}

type queryError struct {
	param string
}

func (e *queryError) Error() string {
	return "invalid numeric value for " + e.param
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	writeJSON(w, status, map[string]string{"error": msg}, logger)
}
