package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes. metricsHandler may be nil.
func SetupRoutes(handler *Handler, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	// method checks happen in the handler so other verbs get a JSON 405
	api.HandleFunc("/coins/{id}/prediction", handler.GetPrediction)

	return r
}
