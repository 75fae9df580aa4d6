package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/trend"
)

func init() {
	rootCmd.AddCommand(trendsCmd)
	addTrendFlags(trendsCmd)
}

func addTrendFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("granularity", "g", "day", "Bucket size: day, week or month")
	cmd.Flags().String("from", "", "First date to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last date to include (YYYY-MM-DD)")
	cmd.Flags().Int64("category", 0, "Only this category's expenses")
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show spending grouped by day, week or month",
	Long: `Show spending totals bucketed by day, week (starting Monday) or month.
Buckets are in chronological order and periods without spending are omitted.`,
	Args: cobra.NoArgs,
	RunE: runTrends,
}

// trendQuery is the parsed form of the trend flags.
type trendQuery struct {
	granularity trend.Granularity
	from, to    core.Date
	categoryID  *int64
}

func parseTrendFlags(cmd *cobra.Command) (trendQuery, error) {
	var q trendQuery
	var err error

	g, _ := cmd.Flags().GetString("granularity")
	if q.granularity, err = trend.ParseGranularity(g); err != nil {
		return q, err
	}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		if q.from, err = core.ParseDate(v); err != nil {
			return q, core.NewValidationError("from", err)
		}
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		if q.to, err = core.ParseDate(v); err != nil {
			return q, core.NewValidationError("to", err)
		}
	}
	if id, _ := cmd.Flags().GetInt64("category"); id != 0 {
		if id < 0 {
			return q, core.NewValidationError("category", core.ErrInvalidID)
		}
		q.categoryID = &id
	}
	return q, nil
}

// loadBuckets fetches the series for q and aggregates it.
func loadBuckets(ctx context.Context, b interface {
	store.AnalyticsReader
	store.ExpenseSource
}, q trendQuery) ([]trend.Bucket, error) {
	var series []core.DatedAmount
	if q.categoryID != nil {
		expenses, err := b.ListExpenses(ctx, store.ExpenseFilter{CategoryID: q.categoryID})
		if err != nil {
			return nil, core.AsTransportError("list expenses", err)
		}
		series = store.DailyTotals(expenses)
	} else {
		var err error
		if series, err = b.Trends(ctx); err != nil {
			return nil, core.AsTransportError("load trends", err)
		}
	}
	return trend.Aggregate(trend.Filter(series, q.from, q.to), q.granularity)
}

func runTrends(cmd *cobra.Command, args []string) error {
	q, err := parseTrendFlags(cmd)
	if err != nil {
		return err
	}
	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	buckets, err := loadBuckets(cmd.Context(), res.Backend, q)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), buckets)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tamount\t\n", q.granularity)
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s\t%s\t\n", b.Key, b.Amount)
	}
	fmt.Fprintf(tw, "total\t%s\t\n", trend.Total(buckets))
	return tw.Flush()
}
