package repository

import (
	"context"
	"time"

	"github.com/enerscope/enerscope/internal/models"
)

// ConsumptionRepository handles metered reading data access for one utility
type ConsumptionRepository interface {
	Insert(ctx context.Context, records []models.ConsumptionRecord) error
	Raw(ctx context.Context, start, end time.Time) ([]models.ConsumptionRecord, error)
	Daily(ctx context.Context, start, end time.Time) ([]models.DailyTotal, error)
	Monthly(ctx context.Context, start, end time.Time) ([]models.MonthlyTotal, error)
	DeleteAll(ctx context.Context) error
}

// TariffRepository handles standing charge and unit price data access for one utility
type TariffRepository interface {
	InsertStandingCharges(ctx context.Context, charges []models.StandingCharge) error
	InsertUnitPrices(ctx context.Context, prices []models.UnitPrice) error
	StandingChargeHistory(ctx context.Context) ([]models.StandingCharge, error)
	UnitPriceHistory(ctx context.Context) ([]models.UnitPrice, error)
	DeleteAll(ctx context.Context) error
}

// TariffPlanRepository handles provider plan documents for one utility
type TariffPlanRepository interface {
	Upsert(ctx context.Context, plans []models.TariffPlan) error
	List(ctx context.Context) ([]models.TariffPlan, error)
	DeleteAll(ctx context.Context) error
}

// SyncProfileRepository handles per-stream sync checkpoints
type SyncProfileRepository interface {
	GetOrCreate(ctx context.Context, name string, startDate time.Time, baseUnit string) (*models.SyncProfile, error)
	Update(ctx context.Context, id int64, isActive bool, startDate time.Time, lastSynced *time.Time) error
	UpdateSettings(ctx context.Context, settings models.ProfileSettings) error
	List(ctx context.Context) ([]models.SyncProfile, error)
	DeleteAll(ctx context.Context) error
}
