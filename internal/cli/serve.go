package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/budget"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trend, budget and dashboard views as JSON",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := app.logger.WithComponent(log.ComponentApp)
	port := app.cfg.Port
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	res, err := OpenBackend(cmd.Context(), app.cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	pub, closePub, err := OpenPublisher(app.cfg, logger)
	if err != nil {
		logger.Warn("Budget change events disabled", "error", err)
		pub, closePub = nil, func() {}
	}
	defer closePub()

	budgets := services.NewBudgetService(budget.NewResolver(res.Backend), pub)
	if err := budgets.Load(cmd.Context()); err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+port, apphttp.Deps{
		Budgets:    budgets,
		Dashboard:  services.NewDashboardLoader(res.Backend),
		Analytics:  res.Backend,
		Expenses:   res.Backend,
		Categories: res.Backend,
	}, logger)

	ctx, done := GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", port,
		log.FieldBackend, app.cfg.Backend,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
	return nil
}
