// Package server is the HTTP output surface. It serves the two computed
// tables (cleaned well catalog, merged analytic table), the summary
// aggregations, and CSV exports; the presentation layer on the other side
// only reads.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/basinworks/wellpipe/internal/service"
)

// Config holds HTTP server configuration.
type Config struct {
	Port int
}

// API handles the HTTP server and routes.
type API struct {
	config  Config
	service *service.WellService
	router  *mux.Router
	server  *http.Server
}

// NewAPI creates a new API around a well service.
func NewAPI(config Config, svc *service.WellService) *API {
	api := &API{
		config:  config,
		service: svc,
		router:  mux.NewRouter(),
	}
	api.setupRoutes()
	return api
}

// setupRoutes configures the API routes.
func (a *API) setupRoutes() {
	a.router.HandleFunc("/api/health", a.healthHandler).Methods("GET")
	a.router.HandleFunc("/api/wells", a.wellsHandler).Methods("GET")
	a.router.HandleFunc("/api/wells/export", a.wellsExportHandler).Methods("GET")
	a.router.HandleFunc("/api/summary", a.summaryHandler).Methods("GET")
	a.router.HandleFunc("/api/analytics", a.analyticsHandler).Methods("GET")
	a.router.HandleFunc("/api/analytics/export", a.analyticsExportHandler).Methods("GET")
	a.router.HandleFunc("/api/refresh", a.refreshHandler).Methods("POST")
}

// Handler returns the fully wrapped HTTP handler.
func (a *API) Handler() http.Handler {
	return cors.Default().Handler(a.router)
}

// Start runs the HTTP server until ctx is done.
func (a *API) Start(ctx context.Context) error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Port),
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on :%d", a.config.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

// healthHandler returns API health status.
func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":         "ok",
		"timestamp":      time.Now().Format(time.RFC3339),
		"well_count":     len(a.service.Wells()),
		"analytic_count": len(a.service.Analytics()),
	}
	if refreshed := a.service.RefreshedAt(); !refreshed.IsZero() {
		health["refreshed_at"] = refreshed.Format(time.RFC3339)
	}
	respondWithJSON(w, http.StatusOK, health)
}

// respondWithError sends a JSON error payload.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON marshals a payload and writes it with the given status.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("server: error marshaling response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
