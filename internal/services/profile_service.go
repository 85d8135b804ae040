package services

import (
	"context"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

// ProfileService handles sync profile reads and user edits
type ProfileService interface {
	List(ctx context.Context) ([]models.SyncProfile, error)
	UpdateSettings(ctx context.Context, settings []models.ProfileSettings) error
}

type profileService struct {
	repos *repository.Set
	sink  events.Sink
}

// NewProfileService creates a new ProfileService
func NewProfileService(repos *repository.Set, sink events.Sink) ProfileService {
	return &profileService{repos: repos, sink: sink}
}

func (s *profileService) List(ctx context.Context) ([]models.SyncProfile, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing sync profiles")

	profiles, err := s.repos.Profiles.List(ctx)
	if err != nil {
		log.Error("failed to list sync profiles: %v", err)
		return nil, errors.NewPersistenceError("list sync profiles", err)
	}
	return profiles, nil
}

func (s *profileService) UpdateSettings(ctx context.Context, settings []models.ProfileSettings) error {
	log := logger.FromContext(ctx)
	log.Debug("updating %d sync profile settings", len(settings))

	for _, setting := range settings {
		if setting.Name == "" {
			return errors.NewValidationError("name", "must not be empty")
		}
		if setting.StartDate.IsZero() {
			return errors.NewValidationError("start_date", "must be set")
		}
		if err := s.repos.Profiles.UpdateSettings(ctx, setting); err != nil {
			log.Error("failed to update settings for %s: %v", setting.Name, err)
			return err
		}
	}

	s.sink.Emit(events.SettingsUpdated, struct{}{})
	return nil
}
