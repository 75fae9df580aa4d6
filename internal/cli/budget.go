package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/services"
)

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.AddCommand(budgetListCmd, budgetResolveCmd, budgetSaveCmd, budgetDeleteCmd)

	for _, c := range []*cobra.Command{budgetListCmd, budgetResolveCmd, budgetSaveCmd, budgetDeleteCmd} {
		c.Flags().StringP("month", "m", "", "Month as YYYY-MM (default: current month)")
	}
	for _, c := range []*cobra.Command{budgetResolveCmd, budgetSaveCmd, budgetDeleteCmd} {
		c.Flags().StringP("scope", "s", "overall", `"overall" or a category id`)
	}
	budgetSaveCmd.Flags().StringP("amount", "a", "", "Budget amount, e.g. 250.00")
	_ = budgetSaveCmd.MarkFlagRequired("amount")
	budgetDeleteCmd.Flags().Int64("id", 0, "Id of the record the selection resolves to")
	_ = budgetDeleteCmd.MarkFlagRequired("id")
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Resolve, save and delete monthly budgets",
	Long: `A budget is a spending limit for one month, either overall or for a
single category. Selecting a month and scope tells you whether saving will
create a new record or update the existing one.`,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the budgets of a month",
	Args:  cobra.NoArgs,
	RunE:  runBudgetList,
}

var budgetResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show whether a month and scope already have a budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetResolve,
}

var budgetSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or update the budget of a month and scope",
	Args:  cobra.NoArgs,
	RunE:  runBudgetSave,
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the budget a month and scope resolve to",
	Args:  cobra.NoArgs,
	RunE:  runBudgetDelete,
}

// withBudgets opens the backend, loads the budget cache and hands a service
// to fn. The publisher is connected only for mutating commands.
func withBudgets(ctx context.Context, publish bool, fn func(*services.BudgetService) error) error {
	res, err := OpenBackend(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	var pub events.Publisher
	if publish {
		p, closePub, err := OpenPublisher(app.cfg, app.logger)
		if err != nil {
			app.logger.Warn("Budget change events disabled", "error", err)
		} else {
			pub = p
			defer closePub()
		}
	}

	svc := services.NewBudgetService(budget.NewResolver(res.Backend), pub)
	if err := svc.Load(ctx); err != nil {
		return err
	}
	return fn(svc)
}

func selectionFlags(cmd *cobra.Command) (core.Selection, error) {
	month := core.CurrentMonth()
	if v, _ := cmd.Flags().GetString("month"); v != "" {
		m, err := core.ParseYearMonth(v)
		if err != nil {
			return core.Selection{}, core.NewValidationError("month", err)
		}
		month = m
	}
	scope := core.Overall()
	if cmd.Flags().Lookup("scope") != nil {
		v, _ := cmd.Flags().GetString("scope")
		s, err := core.ParseScope(v)
		if err != nil {
			return core.Selection{}, err
		}
		scope = s
	}
	return core.NewSelection(month, scope), nil
}

func runBudgetList(cmd *cobra.Command, args []string) error {
	sel, err := selectionFlags(cmd)
	if err != nil {
		return err
	}
	return withBudgets(cmd.Context(), false, func(svc *services.BudgetService) error {
		records := svc.InScope(sel.Month)
		if wantJSON(cmd) {
			if records == nil {
				records = []core.BudgetRecord{}
			}
			return printJSON(cmd.OutOrStdout(), records)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tMONTH\tSCOPE\tAMOUNT")
		for _, r := range records {
			scope := "overall"
			if r.Category != nil {
				scope = r.Category.Name
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Month, scope, r.Amount)
		}
		return tw.Flush()
	})
}

func printResolution(cmd *cobra.Command, sel core.Selection, res budget.Resolution) error {
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), struct {
			Selection core.Selection `json:"selection"`
			budget.Resolution
		}{sel, res})
	}
	out := cmd.OutOrStdout()
	if !res.IsUpdate() {
		fmt.Fprintf(out, "%s: no budget yet, saving will create one\n", sel)
		return nil
	}
	fmt.Fprintf(out, "%s: budget %d of %s, saving will update it\n", sel, res.RecordID, *res.PrefillAmount)
	return nil
}

func runBudgetResolve(cmd *cobra.Command, args []string) error {
	sel, err := selectionFlags(cmd)
	if err != nil {
		return err
	}
	return withBudgets(cmd.Context(), false, func(svc *services.BudgetService) error {
		res, err := svc.Select(sel)
		if err != nil {
			return err
		}
		return printResolution(cmd, sel, res)
	})
}

func runBudgetSave(cmd *cobra.Command, args []string) error {
	sel, err := selectionFlags(cmd)
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetString("amount")
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return core.NewValidationError("amount", err)
	}
	return withBudgets(cmd.Context(), true, func(svc *services.BudgetService) error {
		rec, err := svc.Save(cmd.Context(), sel, amount)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved budget %d for %s: %s\n", rec.ID, sel, rec.Amount)
		return nil
	})
}

func runBudgetDelete(cmd *cobra.Command, args []string) error {
	sel, err := selectionFlags(cmd)
	if err != nil {
		return err
	}
	id, _ := cmd.Flags().GetInt64("id")
	return withBudgets(cmd.Context(), true, func(svc *services.BudgetService) error {
		if err := svc.Delete(cmd.Context(), sel, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted budget %d for %s\n", id, sel)
		return nil
	})
}
