// Package trend groups dated amounts into day, week or month buckets for
// charting.
package trend

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/core"
)

// Granularity is the bucketing period.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Bucket is the summed amount of one period. Start is the first day of the
// period and Key its identifier: YYYY-MM-DD for day and week buckets, YYYY-MM
// for month buckets.
type Bucket struct {
	Key    string     `json:"key"`
	Start  core.Date  `json:"start"`
	Amount core.Money `json:"amount"`
}

// ParseGranularity accepts day, week or month, case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if err := g.Validate(); err != nil {
		return "", err
	}
	return g, nil
}

func (g Granularity) Validate() error {
	switch g {
	case Day, Week, Month:
		return nil
	default:
		return core.NewValidationError("granularity", fmt.Errorf("unknown granularity %q", string(g)))
	}
}

func (g Granularity) String() string { return string(g) }

// WeekStart returns the Monday beginning d's ISO week.
func WeekStart(d core.Date) core.Date {
	wd := d.IsoWeekday()
	if wd == 1 {
		return d
	}
	return d.AddDays(-(wd - 1))
}

// PeriodStart maps d to the first day of its period.
func (g Granularity) PeriodStart(d core.Date) core.Date {
	switch g {
	case Week:
		return WeekStart(d)
	case Month:
		return core.MonthOf(d).Start()
	default:
		return d
	}
}

// Key returns the bucket identifier for a period start.
func (g Granularity) Key(start core.Date) string {
	if g == Month {
		return core.MonthOf(start).String()
	}
	return start.String()
}

// Aggregate sums series into buckets of granularity g. The input may be in
// any order and may repeat dates. The output is sorted by period start,
// holds one bucket per period with at least one record, and never
// zero-fills empty periods.
func Aggregate(series []core.DatedAmount, g Granularity) ([]Bucket, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	totals := make(map[core.Date]core.Money)
	for i, da := range series {
		if err := da.Date.Validate(); err != nil {
			return nil, core.NewValidationError(fmt.Sprintf("series[%d].date", i), err)
		}
		if da.Amount.IsNegative() {
			return nil, core.NewValidationError(fmt.Sprintf("series[%d].amount", i),
				fmt.Errorf("%w: %s is negative", core.ErrInvalidAmount, da.Amount))
		}
		start := g.PeriodStart(da.Date)
		totals[start] = totals[start].Add(da.Amount)
	}

	out := make([]Bucket, 0, len(totals))
	for start, amount := range totals {
		out = append(out, Bucket{Key: g.Key(start), Start: start, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// Series turns buckets back into dated amounts, one per bucket start. At day
// granularity Aggregate(Series(b), Day) returns b unchanged.
func Series(buckets []Bucket) []core.DatedAmount {
	out := make([]core.DatedAmount, len(buckets))
	for i, b := range buckets {
		out[i] = core.DatedAmount{Date: b.Start, Amount: b.Amount}
	}
	return out
}

// Total sums the bucket amounts.
func Total(buckets []Bucket) core.Money {
	var total core.Money
	for _, b := range buckets {
		total = total.Add(b.Amount)
	}
	return total
}

// FromDailyTotals converts the service's date→amount map into a series.
// Keys must be YYYY-MM-DD dates.
func FromDailyTotals(totals map[string]core.Money) ([]core.DatedAmount, error) {
	out := make([]core.DatedAmount, 0, len(totals))
	for key, amount := range totals {
		d, err := core.ParseDate(key)
		if err != nil {
			return nil, core.NewValidationError("date", err)
		}
		out = append(out, core.DatedAmount{Date: d, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Filter keeps records with from <= date <= to. Zero bounds are open.
func Filter(series []core.DatedAmount, from, to core.Date) []core.DatedAmount {
	out := make([]core.DatedAmount, 0, len(series))
	for _, da := range series {
		if !from.IsZero() && da.Date.Before(from) {
			continue
		}
		if !to.IsZero() && da.Date.After(to) {
			continue
		}
		out = append(out, da)
	}
	return out
}
