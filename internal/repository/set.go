package repository

import "github.com/enerscope/enerscope/internal/models"

// Set bundles the per-utility repositories plus the shared profile store so
// callers can look a repository up by stream.
type Set struct {
	Consumption map[models.Utility]ConsumptionRepository
	Tariffs     map[models.Utility]TariffRepository
	Plans       map[models.Utility]TariffPlanRepository
	Profiles    SyncProfileRepository
}
