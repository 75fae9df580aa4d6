package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/services"
	"fintrack/internal/trend"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringP("granularity", "g", "week", "Trend bucket size: day, week or month")
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the month's summary, forecast, alerts and trend",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("granularity")
	g, err := trend.ParseGranularity(raw)
	if err != nil {
		return err
	}
	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	d, err := services.NewDashboardLoader(res.Backend).Load(cmd.Context(), g)
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), d)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Spent this month: %s (%+.1f%% vs last month)\n", d.Summary.Total, d.Summary.MonthOverMonthChange)
	if d.TopCategory != nil {
		fmt.Fprintf(out, "Top category:     %s (%s)\n", d.TopCategory.Name, d.TopCategory.Amount)
	}
	fmt.Fprintf(out, "Forecast:         %s (confidence %.0f%%)\n", d.Forecast.PredictedTotal, d.Forecast.Confidence*100)
	for _, a := range d.Alerts {
		fmt.Fprintf(out, "! %s\n", a)
	}
	fmt.Fprintf(out, "\nTrend by %s:\n", d.Granularity)
	for _, b := range d.Trend {
		fmt.Fprintf(out, "  %-10s %12s\n", b.Key, b.Amount)
	}
	return nil
}
