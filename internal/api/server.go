package api

import (
	"context"

	"github.com/enerscope/enerscope/internal/db"
	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/enerscope/enerscope/internal/secrets"
	"github.com/enerscope/enerscope/internal/services"
	"github.com/enerscope/enerscope/internal/sync"
	"github.com/enerscope/enerscope/internal/worker"
)

// Server holds the HTTP surface the desktop UI talks to.
type Server struct {
	DB           *db.DB
	Consumption  services.ConsumptionService
	Tariffs      services.TariffService
	Costs        services.CostService
	Profiles     services.ProfileService
	Reset        services.ResetService
	Orchestrator *sync.Orchestrator
	Secrets      secrets.Store
	Bus          *events.Bus
	SyncPool     *worker.Pool

	// BuildProvider constructs a provider from whatever credentials are
	// currently stored. It returns nil without error when none are stored.
	BuildProvider func(ctx context.Context) (provider.DataProvider, error)
}

// spawnSync queues a background sync pass. Queue pressure is not an error:
// a pass is already pending and will pick up the latest state.
func (s *Server) spawnSync() {
	s.SyncPool.TrySubmit(&worker.SyncJob{Orchestrator: s.Orchestrator})
}
