package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// app is the state the root command prepares for every subcommand.
var app struct {
	cfg    *config.Config
	logger *log.Logger
}

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance trends and budgets",
	Long: `fintrack talks to a personal-finance service (or a local SQLite or
in-memory store) to chart spending trends by day, week or month and to
create, update and delete monthly budgets, overall or per category.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", os.Getenv("FINTRACK_CONFIG"), "Path to a TOML config file (env vars override it)")
	rootCmd.PersistentFlags().String("backend", "", "Data backend: "+backendNames()+" (overrides FINTRACK_BACKEND)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func setup(cmd *cobra.Command, args []string) error {
	LoadEnvFile()

	path, _ := cmd.Flags().GetString("config")
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		os.Setenv("FINTRACK_BACKEND", b)
	}
	cfg, err := LoadAndValidateConfig(path)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.logger = SetupLogger(cfg, cmd.ErrOrStderr())
	return nil
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func backendNames() string {
	types := backend.GetBackendTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
