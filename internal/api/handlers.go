package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/price-forecast-service/internal/models"
	"github.com/trogers1052/price-forecast-service/internal/service"
)

// ForecastGetter serves forecasts by asset id
type ForecastGetter interface {
	GetForecast(ctx context.Context, id string, refresh bool) (*models.ForecastBundle, error)
}

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// Handler holds dependencies for HTTP handlers
type Handler struct {
	forecasts ForecastGetter
	checks    map[string]HealthCheck
}

// NewHandler creates a new Handler. checks are run by the health endpoint.
func NewHandler(forecasts ForecastGetter, checks map[string]HealthCheck) *Handler {
	return &Handler{
		forecasts: forecasts,
		checks:    checks,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// GetPrediction handles GET /coins/{id}/prediction
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respondJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid id parameter"})
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	bundle, err := h.forecasts.GetForecast(r.Context(), id, refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAsset) {
			respondJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid id parameter"})
			return
		}
		logrus.WithError(err).WithField("asset_id", id).Error("Error in prediction handler")
		respondJSON(w, http.StatusInternalServerError, messageResponse{Message: "Error generating predictions"})
		return
	}

	respondJSON(w, http.StatusOK, bundle)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	components := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":     overall,
		"components": components,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}
