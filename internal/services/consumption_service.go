package services

import (
	"context"
	"time"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

// ConsumptionService serves stored readings and their aggregates
type ConsumptionService interface {
	Raw(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.ConsumptionRecord, error)
	Daily(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.DailyTotal, error)
	Monthly(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.MonthlyTotal, error)
}

type consumptionService struct {
	repos *repository.Set
}

// NewConsumptionService creates a new ConsumptionService
func NewConsumptionService(repos *repository.Set) ConsumptionService {
	return &consumptionService{repos: repos}
}

func (s *consumptionService) repo(utility models.Utility) (repository.ConsumptionRepository, error) {
	repo, ok := s.repos.Consumption[utility]
	if !ok {
		return nil, errors.NewValidationError("utility", "unknown utility "+string(utility))
	}
	return repo, nil
}

func validateRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return errors.NewValidationError("range", "end precedes start")
	}
	return nil
}

func (s *consumptionService) Raw(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.ConsumptionRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("reading raw consumption: utility=%s", utility)

	repo, err := s.repo(utility)
	if err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	records, err := repo.Raw(ctx, start, end)
	if err != nil {
		log.Error("failed to read raw consumption: %v", err)
		return nil, errors.NewPersistenceError("read consumption", err)
	}
	return records, nil
}

func (s *consumptionService) Daily(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.DailyTotal, error) {
	log := logger.FromContext(ctx)
	log.Debug("reading daily consumption: utility=%s", utility)

	repo, err := s.repo(utility)
	if err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	totals, err := repo.Daily(ctx, start, end)
	if err != nil {
		log.Error("failed to read daily totals: %v", err)
		return nil, errors.NewPersistenceError("read daily totals", err)
	}
	return totals, nil
}

func (s *consumptionService) Monthly(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.MonthlyTotal, error) {
	log := logger.FromContext(ctx)
	log.Debug("reading monthly consumption: utility=%s", utility)

	repo, err := s.repo(utility)
	if err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	totals, err := repo.Monthly(ctx, start, end)
	if err != nil {
		log.Error("failed to read monthly totals: %v", err)
		return nil, errors.NewPersistenceError("read monthly totals", err)
	}
	return totals, nil
}
