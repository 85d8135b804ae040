package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/enerscope/enerscope/internal/repository"
)

// Orchestrator runs full sync passes over every stream. At most one pass is
// in flight at a time: overlapping requests are silent no-ops.
type Orchestrator struct {
	mu          sync.Mutex
	downloading bool
	prov        provider.DataProvider

	repos *repository.Set
	sink  events.Sink
	now   func() time.Time
	log   *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source, used by tests to pin the download
// horizon to a fixed date.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator creates an Orchestrator. prov may be nil when no
// credentials are configured yet; Sync is then a no-op until SetProvider.
func NewOrchestrator(prov provider.DataProvider, repos *repository.Set, sink events.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		prov:  prov,
		repos: repos,
		sink:  sink,
		now:   time.Now,
		log:   logger.Default().WithPrefix("sync"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetProvider swaps the provider, e.g. after the user saves new credentials.
func (o *Orchestrator) SetProvider(prov provider.DataProvider) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prov = prov
}

// Status reports the flags the UI polls.
func (o *Orchestrator) Status() models.AppStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return models.AppStatus{
		IsDownloading:     o.downloading,
		IsClientAvailable: o.prov != nil,
	}
}

// Sync runs one pass: per utility, get-or-create the profile, skip inactive
// ones, download consumption then tariff history, and advance the checkpoint
// only when every stream that ran succeeded. A failing utility does not stop
// the others; their errors are joined into the return value.
func (o *Orchestrator) Sync(ctx context.Context) error {
	o.mu.Lock()
	if o.downloading {
		o.mu.Unlock()
		o.log.Debug("sync already in progress, skipping")
		return nil
	}
	prov := o.prov
	if prov == nil {
		o.mu.Unlock()
		o.log.Info("no provider configured, skipping sync")
		return nil
	}
	o.downloading = true
	o.mu.Unlock()

	// The flag resets on every exit path, including failures, so a broken
	// pass never wedges future ones.
	defer func() {
		o.mu.Lock()
		o.downloading = false
		o.mu.Unlock()
		o.sink.Emit(events.AppStatusUpdate, events.AppStatusUpdatePayload{IsDownloading: false})
	}()

	o.sink.Emit(events.AppStatusUpdate, events.AppStatusUpdatePayload{IsDownloading: true})
	o.log.Info("starting sync pass via %s", prov.Name())

	var errs []error
	for _, utility := range models.Utilities() {
		if err := o.syncUtility(ctx, prov, utility); err != nil {
			if provider.IsTerminal(err) {
				o.log.Error("%s sync failed, retrying cannot help: %v", utility, err)
			} else {
				o.log.Error("%s sync failed, will retry next pass: %v", utility, err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", utility, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	o.log.Info("sync pass complete")
	return nil
}

func (o *Orchestrator) syncUtility(ctx context.Context, prov provider.DataProvider, utility models.Utility) error {
	log := logger.FromContext(ctx).WithPrefix("sync").WithField("utility", utility)

	profile, err := o.repos.Profiles.GetOrCreate(ctx, string(utility), DefaultStartDate(o.now()), "kWh")
	if err != nil {
		return fmt.Errorf("get or create profile: %w", err)
	}

	if !profile.IsActive {
		log.Info("profile is not active, skipping historical download")
		return nil
	}

	until := profile.StartDate
	if profile.LastSynced != nil {
		until = *profile.LastSynced
	}

	downloader := Downloader{Policy: prov.Window(), Sink: o.sink, Now: o.now}

	var checkpoints []time.Time

	if prov.HasConsumption(ctx, utility) {
		loader := &ConsumptionLoader{Provider: prov, Repo: o.repos.Consumption[utility], Utility: utility}
		checkpoint, err := DownloadHistory(ctx, downloader, loader, until, string(utility)+" consumption")
		if err != nil {
			return err
		}
		checkpoints = append(checkpoints, checkpoint)
	} else {
		log.Info("provider has no %s consumption stream", utility)
	}

	if prov.HasTariffHistory(ctx, utility) {
		loader := &TariffLoader{
			Provider: prov,
			Tariffs:  o.repos.Tariffs[utility],
			Plans:    o.repos.Plans[utility],
			Utility:  utility,
		}
		checkpoint, err := DownloadHistory(ctx, downloader, loader, until, string(utility)+" tariff")
		if err != nil {
			return err
		}
		checkpoints = append(checkpoints, checkpoint)
	} else {
		log.Info("provider has no %s tariff stream", utility)
	}

	if len(checkpoints) == 0 {
		return nil
	}

	latest := checkpoints[0]
	for _, c := range checkpoints[1:] {
		if c.After(latest) {
			latest = c
		}
	}

	if err := o.repos.Profiles.Update(ctx, profile.ID, profile.IsActive, profile.StartDate, &latest); err != nil {
		return fmt.Errorf("update profile checkpoint: %w", err)
	}

	log.Info("checkpoint advanced to %s", latest.Format(time.DateOnly))
	return nil
}

// DefaultStartDate is the history horizon for a brand new profile: the first
// day of the previous calendar month.
func DefaultStartDate(now time.Time) time.Time {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return firstOfMonth.AddDate(0, -1, 0)
}
