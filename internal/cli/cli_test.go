package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fintrack/internal/core"
)

// resetFlags restores defaults so flag values from one run do not leak into
// the next.
func resetFlags(c *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FINTRACK_BACKEND", "memory")
	t.Setenv("FINTRACK_CONFIG", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_FORMAT", "text")

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTrendsEmptyJSON(t *testing.T) {
	out, err := run(t, "trends", "--json", "--granularity", "week")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected an empty list, got %q", out)
	}
}

func TestTrendsRejectsGranularity(t *testing.T) {
	_, err := run(t, "trends", "--granularity", "year")
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBudgetResolveCreateMode(t *testing.T) {
	out, err := run(t, "budget", "resolve", "--month", "2025-06", "--scope", "2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "2025-06/2: no budget yet") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBudgetSave(t *testing.T) {
	out, err := run(t, "budget", "save", "--month", "2025-06", "--amount", "250")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "for 2025-06/overall: 250.00") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBudgetSaveRejectsNegative(t *testing.T) {
	_, err := run(t, "budget", "save", "--month", "2025-06", "--amount=-5")
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBudgetDeleteNeedsUpdateMode(t *testing.T) {
	_, err := run(t, "budget", "delete", "--month", "2025-06", "--id", "1")
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCategoriesJSON(t *testing.T) {
	out, err := run(t, "categories", "--json")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	var cats []core.Category
	if err := json.Unmarshal([]byte(out), &cats); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected the default categories, got %+v", cats)
	}
}

func TestLoginNeedsAPIBackend(t *testing.T) {
	_, err := run(t, "login", "--username", "ann", "--password", "secret")
	if err == nil || !strings.Contains(err.Error(), "api backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestBackendFlagOverridesEnv(t *testing.T) {
	_, err := run(t, "--backend", "bogus", "categories")
	if err == nil || !strings.Contains(err.Error(), "invalid backend 'bogus'") {
		t.Fatalf("expected invalid backend error, got %v", err)
	}
}
