package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// AnalyticsSummary is the service's spending summary for the current month.
type AnalyticsSummary struct {
	Total                Money            `json:"total"`
	ByCategory           map[string]Money `json:"byCategory"`
	MonthOverMonthChange float64          `json:"monthOverMonthChange"`
}

// Forecast is the service's projection for the current month.
type Forecast struct {
	PredictedTotal Money   `json:"predictedTotal"`
	Confidence     float64 `json:"confidence"`
}

// RankedCategories returns ByCategory sorted by amount, largest first.
// Equal amounts are ordered by name so the result is stable.
func (s AnalyticsSummary) RankedCategories() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.ByCategory))
	for name, amount := range s.ByCategory {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopCategory returns the category with the highest spend, if any.
func (s AnalyticsSummary) TopCategory() (CategoryAmount, bool) {
	ranked := s.RankedCategories()
	if len(ranked) == 0 {
		return CategoryAmount{}, false
	}
	return ranked[0], true
}

// MonthOverMonthPercent computes the percentage change from prev to cur,
// rounded to one decimal. A zero previous month yields zero.
func MonthOverMonthPercent(prev, cur Money) float64 {
	if prev.Cents == 0 {
		return 0
	}
	pct := float64(cur.Cents-prev.Cents) * 100 / float64(prev.Cents)
	if pct < 0 {
		return -float64(int64(-pct*10+0.5)) / 10
	}
	return float64(int64(pct*10+0.5)) / 10
}
