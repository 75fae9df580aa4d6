package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/trend"
)

// Dashboard is everything the overview screen shows.
type Dashboard struct {
	Summary     core.AnalyticsSummary `json:"summary"`
	TopCategory *core.CategoryAmount  `json:"topCategory,omitempty"`
	Alerts      []string              `json:"alerts"`
	Forecast    core.Forecast         `json:"forecast"`
	Granularity trend.Granularity     `json:"granularity"`
	Trend       []trend.Bucket        `json:"trend"`
	TrendTotal  core.Money            `json:"trendTotal"`
}

// DashboardLoader fetches the dashboard's independent reads in parallel.
type DashboardLoader struct {
	analytics store.AnalyticsReader
}

func NewDashboardLoader(analytics store.AnalyticsReader) *DashboardLoader {
	return &DashboardLoader{analytics: analytics}
}

// Load issues the four analytics reads concurrently. The first failure
// cancels the rest and is returned.
func (l *DashboardLoader) Load(ctx context.Context, g trend.Granularity) (Dashboard, error) {
	if err := g.Validate(); err != nil {
		return Dashboard{}, err
	}

	var (
		summary  core.AnalyticsSummary
		alerts   []string
		forecast core.Forecast
		series   []core.DatedAmount
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		summary, err = l.analytics.Summary(egCtx)
		return core.AsTransportError("load summary", err)
	})
	eg.Go(func() error {
		var err error
		alerts, err = l.analytics.Alerts(egCtx)
		return core.AsTransportError("load alerts", err)
	})
	eg.Go(func() error {
		var err error
		forecast, err = l.analytics.Forecast(egCtx)
		return core.AsTransportError("load forecast", err)
	})
	eg.Go(func() error {
		var err error
		series, err = l.analytics.Trends(egCtx)
		return core.AsTransportError("load trends", err)
	})
	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "Dashboard load failed", "error", err)
		return Dashboard{}, err
	}

	buckets, err := trend.Aggregate(series, g)
	if err != nil {
		return Dashboard{}, err
	}
	if alerts == nil {
		alerts = []string{}
	}

	d := Dashboard{
		Summary:     summary,
		Alerts:      alerts,
		Forecast:    forecast,
		Granularity: g,
		Trend:       buckets,
		TrendTotal:  trend.Total(buckets),
	}
	if top, ok := summary.TopCategory(); ok {
		d.TopCategory = &top
	}
	return d, nil
}
