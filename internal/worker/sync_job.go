package worker

import (
	"context"

	"github.com/enerscope/enerscope/internal/sync"
)

// SyncJob runs one full sync pass off the request path. Overlap protection
// lives in the orchestrator, so submitting redundant jobs is harmless.
type SyncJob struct {
	Orchestrator *sync.Orchestrator
}

func (j *SyncJob) Name() string { return "sync_pass" }

func (j *SyncJob) Run(ctx context.Context) error {
	return j.Orchestrator.Sync(ctx)
}
