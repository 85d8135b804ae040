package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/enerscope/enerscope/internal/models"
)

// DataProvider is a remote source of historical energy data. Implementations
// wrap one vendor API and report which streams the metering setup exposes.
type DataProvider interface {
	Name() string
	Window() WindowPolicy

	// TestConnection probes the vendor API with the configured credentials.
	TestConnection(ctx context.Context) error

	HasConsumption(ctx context.Context, utility models.Utility) bool
	Consumption(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.ConsumptionRecord, error)

	HasTariffHistory(ctx context.Context, utility models.Utility) bool
	TariffHistory(ctx context.Context, utility models.Utility, start, end time.Time) (*models.TariffData, error)
}

// WindowPolicy describes how a provider's history is paged: either anchored
// to calendar months or in fixed-length day spans. Fixed spans exist for APIs
// that cap the range of a single request.
type WindowPolicy struct {
	calendarMonth bool
	days          int
}

// CalendarMonthWindow pages backwards one calendar month at a time.
func CalendarMonthWindow() WindowPolicy {
	return WindowPolicy{calendarMonth: true}
}

// FixedDayWindow pages backwards in spans of the given number of days.
func FixedDayWindow(days int) WindowPolicy {
	return WindowPolicy{days: days}
}

// Start returns the natural start of the window that ends at end: the first
// of end's month for calendar windows, end minus the span for fixed windows.
func (p WindowPolicy) Start(end time.Time) time.Time {
	if p.calendarMonth {
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	}
	return end.AddDate(0, 0, -p.days)
}

// Previous returns the start of the window preceding one that starts at
// start. Stepping is strictly decreasing so backward paging terminates.
func (p WindowPolicy) Previous(start time.Time) time.Time {
	if p.calendarMonth {
		endOfPrevious := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).AddDate(0, 0, -1)
		return time.Date(endOfPrevious.Year(), endOfPrevious.Month(), 1, 0, 0, 0, 0, start.Location())
	}
	return start.AddDate(0, 0, -p.days)
}

func (p WindowPolicy) String() string {
	if p.calendarMonth {
		return "calendar-month"
	}
	return fmt.Sprintf("%d-day", p.days)
}
