package sync

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/provider"
)

// Downloader walks a provider's history backwards from today, one window at
// a time, emitting progress events along the way.
type Downloader struct {
	Policy provider.WindowPolicy
	Sink   events.Sink
	Now    func() time.Time
}

func (d Downloader) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// day truncates t to midnight in its own location.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DownloadHistory fetches everything between until and today through the
// loader and returns today as the new checkpoint. Progress reaches 100
// exactly once per call even when there is nothing to fetch. An error leaves
// the checkpoint untouched: the caller must not advance it, so already
// ingested windows are simply fetched again next pass.
func DownloadHistory[T any](ctx context.Context, d Downloader, loader DataLoader[T], until time.Time, name string) (time.Time, error) {
	log := logger.FromContext(ctx).WithPrefix("download").WithField("name", name)

	until = day(until)
	today := day(d.now())

	end := today
	start := d.Policy.Start(end)
	if start.Before(until) {
		start = until
	}

	totalDays := int(today.Sub(until).Hours() / 24)
	log.Info("downloading history back to %s (%d days, %s windows)", until.Format(time.DateOnly), totalDays, d.Policy)

	for !start.Before(until) && start.Before(end) {
		records, err := loader.Load(ctx, start, end)
		if err != nil {
			log.Error("load failed for %s to %s: %v", start.Format(time.DateOnly), end.Format(time.DateOnly), err)
			return time.Time{}, fmt.Errorf("load %s: %w", name, err)
		}

		log.Debug("window %s to %s yielded %d records", start.Format(time.DateOnly), end.Format(time.DateOnly), len(records))

		if len(records) > 0 {
			if err := loader.Insert(ctx, records); err != nil {
				log.Error("insert failed for %s to %s: %v", start.Format(time.DateOnly), end.Format(time.DateOnly), err)
				return time.Time{}, fmt.Errorf("insert %s: %w", name, err)
			}
		}

		end = start
		start = d.Policy.Previous(start)
		if start.Before(until) {
			start = until
		}

		daysRemaining := int(end.Sub(until).Hours() / 24)
		percentage := int(math.Round(100 * (1 - float64(daysRemaining)/float64(totalDays))))
		d.Sink.Emit(events.DownloadUpdate, events.DownloadUpdatePayload{
			Percentage: percentage,
			Name:       name,
		})
	}

	d.Sink.Emit(events.DownloadUpdate, events.DownloadUpdatePayload{
		Percentage: 100,
		Name:       name,
	})

	log.Info("history download complete, checkpoint %s", today.Format(time.DateOnly))
	return today, nil
}
