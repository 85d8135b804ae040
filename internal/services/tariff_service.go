package services

import (
	"context"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

// TariffService serves stored tariff history and plan documents
type TariffService interface {
	History(ctx context.Context, utility models.Utility) (*models.TariffHistory, error)
	Plans(ctx context.Context, utility models.Utility) ([]models.TariffPlan, error)
}

type tariffService struct {
	repos *repository.Set
}

// NewTariffService creates a new TariffService
func NewTariffService(repos *repository.Set) TariffService {
	return &tariffService{repos: repos}
}

func (s *tariffService) History(ctx context.Context, utility models.Utility) (*models.TariffHistory, error) {
	log := logger.FromContext(ctx)
	log.Debug("reading tariff history: utility=%s", utility)

	repo, ok := s.repos.Tariffs[utility]
	if !ok {
		return nil, errors.NewValidationError("utility", "unknown utility "+string(utility))
	}

	charges, err := repo.StandingChargeHistory(ctx)
	if err != nil {
		log.Error("failed to read standing charge history: %v", err)
		return nil, errors.NewPersistenceError("read standing charges", err)
	}
	prices, err := repo.UnitPriceHistory(ctx)
	if err != nil {
		log.Error("failed to read unit price history: %v", err)
		return nil, errors.NewPersistenceError("read unit prices", err)
	}

	return &models.TariffHistory{StandingCharges: charges, UnitPrices: prices}, nil
}

func (s *tariffService) Plans(ctx context.Context, utility models.Utility) ([]models.TariffPlan, error) {
	log := logger.FromContext(ctx)
	log.Debug("reading tariff plans: utility=%s", utility)

	repo, ok := s.repos.Plans[utility]
	if !ok {
		return nil, errors.NewValidationError("utility", "unknown utility "+string(utility))
	}

	plans, err := repo.List(ctx)
	if err != nil {
		log.Error("failed to read tariff plans: %v", err)
		return nil, errors.NewPersistenceError("read tariff plans", err)
	}
	return plans, nil
}
