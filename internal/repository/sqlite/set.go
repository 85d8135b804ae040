package sqlite

import (
	"database/sql"

	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

// NewSet wires a full repository.Set over one database handle.
func NewSet(db *sql.DB) *repository.Set {
	set := &repository.Set{
		Consumption: make(map[models.Utility]repository.ConsumptionRepository),
		Tariffs:     make(map[models.Utility]repository.TariffRepository),
		Plans:       make(map[models.Utility]repository.TariffPlanRepository),
		Profiles:    NewSyncProfileRepository(db),
	}
	for _, u := range models.Utilities() {
		set.Consumption[u] = NewConsumptionRepository(db, u)
		set.Tariffs[u] = NewTariffRepository(db, u)
		set.Plans[u] = NewTariffPlanRepository(db, u)
	}
	return set
}
