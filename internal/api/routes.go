package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)

		r.Get("/consumption/{utility}/raw", s.handleRawConsumption)
		r.Get("/consumption/{utility}/daily", s.handleDailyConsumption)
		r.Get("/consumption/{utility}/monthly", s.handleMonthlyConsumption)

		r.Get("/tariff/{utility}/history", s.handleTariffHistory)
		r.Get("/tariff/{utility}/plans", s.handleTariffPlans)

		r.Get("/costs/{utility}", s.handleDailyCosts)

		r.Get("/profiles", s.handleListProfiles)
		r.Put("/profiles", s.handleUpdateProfiles)

		r.Post("/sync", s.handleSync)

		r.Get("/credentials", s.handleCredentialStatus)
		r.Post("/credentials", s.handleSaveCredentials)
		r.Post("/credentials/test", s.handleTestCredentials)

		r.Post("/reset", s.handleReset)
	})

	return r
}
