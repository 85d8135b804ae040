package services

import (
	"context"
	"sort"
	"time"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

// CostService derives daily spend from consumption and tariff history
type CostService interface {
	DailyCosts(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.DailyCost, error)
}

type costService struct {
	repos *repository.Set
}

// NewCostService creates a new CostService
func NewCostService(repos *repository.Set) CostService {
	return &costService{repos: repos}
}

// DailyCosts computes standing charge plus consumption times unit price for
// each day with readings. Tariffs apply as a step function: the latest entry
// at or before the day. Days predating all tariff history are dropped with a
// warning rather than priced wrong.
func (s *costService) DailyCosts(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.DailyCost, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing daily costs: utility=%s", utility)

	consumptionRepo, ok := s.repos.Consumption[utility]
	if !ok {
		return nil, errors.NewValidationError("utility", "unknown utility "+string(utility))
	}
	tariffRepo := s.repos.Tariffs[utility]

	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	totals, err := consumptionRepo.Daily(ctx, start, end)
	if err != nil {
		log.Error("failed to read daily totals: %v", err)
		return nil, errors.NewPersistenceError("read daily totals", err)
	}

	charges, err := tariffRepo.StandingChargeHistory(ctx)
	if err != nil {
		log.Error("failed to read standing charge history: %v", err)
		return nil, errors.NewPersistenceError("read standing charges", err)
	}
	prices, err := tariffRepo.UnitPriceHistory(ctx)
	if err != nil {
		log.Error("failed to read unit price history: %v", err)
		return nil, errors.NewPersistenceError("read unit prices", err)
	}

	chargeSteps := make([]step, len(charges))
	for i, c := range charges {
		chargeSteps[i] = step{at: c.StartDate, value: c.Pence}
	}
	priceSteps := make([]step, len(prices))
	for i, p := range prices {
		priceSteps[i] = step{at: p.EffectiveTime, value: p.Pence}
	}

	var costs []models.DailyCost
	for _, total := range totals {
		charge, okCharge := lookupStep(chargeSteps, total.Date)
		price, okPrice := lookupStep(priceSteps, total.Date)
		if !okCharge || !okPrice {
			log.Warn("no tariff covers %s for %s, dropping day from cost series", total.Date.Format(time.DateOnly), utility)
			continue
		}
		costs = append(costs, models.DailyCost{
			Date:      total.Date,
			CostPence: charge + total.Total*price,
		})
	}

	log.Debug("derived %d daily costs from %d totals", len(costs), len(totals))
	return costs, nil
}

type step struct {
	at    time.Time
	value float64
}

// lookupStep returns the value of the latest step at or before t. Steps must
// be sorted ascending by time.
func lookupStep(steps []step, t time.Time) (float64, bool) {
	idx := sort.Search(len(steps), func(i int) bool {
		return steps[i].at.After(t)
	})
	if idx == 0 {
		return 0, false
	}
	return steps[idx-1].value, true
}
