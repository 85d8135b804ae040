package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func utilityParam(r *http.Request) (models.Utility, error) {
	utility, err := models.ParseUtility(chi.URLParam(r, "utility"))
	if err != nil {
		return "", errors.NewValidationError("utility", err.Error())
	}
	return utility, nil
}

// dateParam parses an optional query date, accepting date-only or RFC 3339.
// A missing parameter yields the zero time, meaning unbounded.
func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(name, "must be YYYY-MM-DD or RFC 3339")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Orchestrator.Status())
}

func (s *Server) handleRawConsumption(w http.ResponseWriter, r *http.Request) {
	utility, err := utilityParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	start, err := dateParam(r, "start")
	if err != nil {
		handleError(w, r, err)
		return
	}
	end, err := dateParam(r, "end")
	if err != nil {
		handleError(w, r, err)
		return
	}

	records, err := s.Consumption.Raw(r.Context(), utility, start, end)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleDailyConsumption(w http.ResponseWriter, r *http.Request) {
	utility, err := utilityParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	start, err := dateParam(r, "start")
	if err != nil {
		handleError(w, r, err)
		return
	}
	end, err := dateParam(r, "end")
	if err != nil {
		handleError(w, r, err)
		return
	}

	totals, err := s.Consumption.Daily(r.Context(), utility, start, end)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (s *Server) handleMonthlyConsumption(w http.ResponseWriter, r *http.Request) {
	utility, err := utilityParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	start, err := dateParam(r, "start")
	if err != nil {
		handleError(w, r, err)
		return
	}
	end, err := dateParam(r, "end")
	if err != nil {
		handleError(w, r, err)
		return
	}

	totals, err := s.Consumption.Monthly(r.Context(), utility, start, end)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (s *Server) handleTariffHistory(w http.ResponseWriter, r *http.Request) {
	utility, err := utilityParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	history, err := s.Tariffs.History(r.Context(), utility)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleTariffPlans(w http.ResponseWriter, r *http.Request) {
	utility, err := utilityParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	plans, err := s.Tariffs.Plans(r.Context(), utility)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

func (s *Server) handleDailyCosts(w http.ResponseWriter, r *http.Request) {
	utility, err := utilityParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	start, err := dateParam(r, "start")
	if err != nil {
		handleError(w, r, err)
		return
	}
	end, err := dateParam(r, "end")
	if err != nil {
		handleError(w, r, err)
		return
	}

	costs, err := s.Costs.DailyCosts(r.Context(), utility, start, end)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, costs)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.Profiles.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

type profileSettingsRequest struct {
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	StartDate string `json:"start_date"`
}

func (s *Server) handleUpdateProfiles(w http.ResponseWriter, r *http.Request) {
	var body []profileSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	settings := make([]models.ProfileSettings, 0, len(body))
	for _, item := range body {
		startDate, err := time.ParseInLocation(time.DateOnly, item.StartDate, time.UTC)
		if err != nil {
			handleError(w, r, errors.NewValidationError("start_date", "must be YYYY-MM-DD"))
			return
		}
		settings = append(settings, models.ProfileSettings{
			Name:      item.Name,
			IsActive:  item.IsActive,
			StartDate: startDate,
		})
	}

	if err := s.Profiles.UpdateSettings(r.Context(), settings); err != nil {
		handleError(w, r, err)
		return
	}

	// New settings can widen the history horizon, so kick off a pass.
	s.spawnSync()
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.spawnSync()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
