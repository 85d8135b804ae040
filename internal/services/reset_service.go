package services

import (
	"context"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
	"github.com/enerscope/enerscope/internal/secrets"
)

// ResetService wipes local state
type ResetService interface {
	// ClearData deletes every stored reading, tariff and profile but keeps
	// credentials, so the next sync pass rebuilds history from scratch.
	ClearData(ctx context.Context) error
	// FullReset additionally deletes stored credentials.
	FullReset(ctx context.Context) error
}

type resetService struct {
	repos *repository.Set
	store secrets.Store
	sink  events.Sink
}

// NewResetService creates a new ResetService
func NewResetService(repos *repository.Set, store secrets.Store, sink events.Sink) ResetService {
	return &resetService{repos: repos, store: store, sink: sink}
}

func (s *resetService) ClearData(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("clearing all stored energy data")

	for _, utility := range models.Utilities() {
		if err := s.repos.Consumption[utility].DeleteAll(ctx); err != nil {
			return errors.NewPersistenceError("clear consumption", err)
		}
		if err := s.repos.Tariffs[utility].DeleteAll(ctx); err != nil {
			return errors.NewPersistenceError("clear tariffs", err)
		}
		if err := s.repos.Plans[utility].DeleteAll(ctx); err != nil {
			return errors.NewPersistenceError("clear tariff plans", err)
		}
	}
	if err := s.repos.Profiles.DeleteAll(ctx); err != nil {
		return errors.NewPersistenceError("clear sync profiles", err)
	}

	s.sink.Emit(events.SettingsUpdated, struct{}{})
	return nil
}

func (s *resetService) FullReset(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("performing full reset")

	if err := s.ClearData(ctx); err != nil {
		return err
	}

	if err := secrets.DeleteGlowmarktCredentials(s.store); err != nil {
		log.Error("failed to delete glowmarkt credentials: %v", err)
		return errors.NewInternalError(err)
	}
	if err := secrets.DeleteN3rgyAPIKey(s.store); err != nil {
		log.Error("failed to delete n3rgy api key: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
