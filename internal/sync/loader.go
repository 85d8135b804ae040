package sync

import (
	"context"
	"time"

	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/enerscope/enerscope/internal/repository"
)

// DataLoader fetches one window of records from a provider and persists
// them. Load and Insert are separate so the downloader can skip empty
// windows without touching storage.
type DataLoader[T any] interface {
	Load(ctx context.Context, start, end time.Time) ([]T, error)
	Insert(ctx context.Context, records []T) error
}

// ConsumptionLoader binds a provider's consumption stream for one utility to
// its repository.
type ConsumptionLoader struct {
	Provider provider.DataProvider
	Repo     repository.ConsumptionRepository
	Utility  models.Utility
}

func (l *ConsumptionLoader) Load(ctx context.Context, start, end time.Time) ([]models.ConsumptionRecord, error) {
	return l.Provider.Consumption(ctx, l.Utility, start, end)
}

func (l *ConsumptionLoader) Insert(ctx context.Context, records []models.ConsumptionRecord) error {
	return l.Repo.Insert(ctx, records)
}

// TariffLoader binds a provider's tariff stream for one utility to the
// tariff and plan repositories. A window yields at most one TariffData
// bundle; providers that cannot page tariffs return the same full history
// for every window and the upserts absorb the repetition.
type TariffLoader struct {
	Provider provider.DataProvider
	Tariffs  repository.TariffRepository
	Plans    repository.TariffPlanRepository
	Utility  models.Utility
}

func (l *TariffLoader) Load(ctx context.Context, start, end time.Time) ([]models.TariffData, error) {
	data, err := l.Provider.TariffHistory(ctx, l.Utility, start, end)
	if err != nil {
		return nil, err
	}
	if data == nil || (len(data.StandingCharges) == 0 && len(data.UnitPrices) == 0 && len(data.Plans) == 0) {
		return nil, nil
	}
	return []models.TariffData{*data}, nil
}

func (l *TariffLoader) Insert(ctx context.Context, records []models.TariffData) error {
	for _, data := range records {
		if err := l.Tariffs.InsertStandingCharges(ctx, data.StandingCharges); err != nil {
			return err
		}
		if err := l.Tariffs.InsertUnitPrices(ctx, data.UnitPrices); err != nil {
			return err
		}
		if err := l.Plans.Upsert(ctx, data.Plans); err != nil {
			return err
		}
	}
	return nil
}
