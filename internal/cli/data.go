package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func init() {
	rootCmd.AddCommand(categoriesCmd, expensesCmd)
	categoriesCmd.AddCommand(categoriesAddCmd)
	expensesCmd.AddCommand(expensesAddCmd)

	expensesCmd.Flags().String("from", "", "First date (YYYY-MM-DD)")
	expensesCmd.Flags().String("to", "", "Last date (YYYY-MM-DD)")
	expensesCmd.Flags().Int64("category", 0, "Category id")
	expensesCmd.Flags().String("min", "", "Minimum amount")
	expensesCmd.Flags().String("max", "", "Maximum amount")

	expensesAddCmd.Flags().StringP("description", "d", "", "What the money was spent on")
	expensesAddCmd.Flags().StringP("amount", "a", "", "Amount, e.g. 12.50")
	expensesAddCmd.Flags().String("date", "", "Date (YYYY-MM-DD, default: today)")
	expensesAddCmd.Flags().Int64("category", 0, "Category id")
	_ = expensesAddCmd.MarkFlagRequired("description")
	_ = expensesAddCmd.MarkFlagRequired("amount")
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List expense categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesAdd,
}

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "List expenses",
	Args:  cobra.NoArgs,
	RunE:  runExpenses,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	Args:  cobra.NoArgs,
	RunE:  runExpensesAdd,
}

func runCategories(cmd *cobra.Command, args []string) error {
	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	cats, err := res.Backend.ListCategories(cmd.Context())
	if err != nil {
		return core.AsTransportError("list categories", err)
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), cats)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	c, err := res.Backend.CreateCategory(cmd.Context(), args[0])
	if err != nil {
		return core.AsTransportError("create category", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created category %d: %s\n", c.ID, c.Name)
	return nil
}

func expenseFilterFlags(cmd *cobra.Command) (store.ExpenseFilter, error) {
	var f store.ExpenseFilter
	for _, p := range []struct {
		flag string
		dst  **core.Date
	}{{"from", &f.From}, {"to", &f.To}} {
		v, _ := cmd.Flags().GetString(p.flag)
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return f, core.NewValidationError(p.flag, err)
		}
		*p.dst = &d
	}
	for _, p := range []struct {
		flag string
		dst  **core.Money
	}{{"min", &f.MinAmount}, {"max", &f.MaxAmount}} {
		v, _ := cmd.Flags().GetString(p.flag)
		if v == "" {
			continue
		}
		m, err := core.ParseAmount(v)
		if err != nil {
			return f, core.NewValidationError(p.flag, err)
		}
		*p.dst = &m
	}
	if id, _ := cmd.Flags().GetInt64("category"); id != 0 {
		f.CategoryID = &id
	}
	return f, nil
}

func runExpenses(cmd *cobra.Command, args []string) error {
	f, err := expenseFilterFlags(cmd)
	if err != nil {
		return err
	}
	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	expenses, err := res.Backend.ListExpenses(cmd.Context(), f)
	if err != nil {
		return core.AsTransportError("list expenses", err)
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), expenses)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, e := range expenses {
		cat := "-"
		if e.Category != nil {
			cat = e.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Amount, cat, e.Description)
	}
	return tw.Flush()
}

func runExpensesAdd(cmd *cobra.Command, args []string) error {
	desc, _ := cmd.Flags().GetString("description")
	raw, _ := cmd.Flags().GetString("amount")
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return core.NewValidationError("amount", err)
	}
	in := store.ExpenseInput{Description: desc, Amount: core.Cents(cents), Date: core.Today()}
	if v, _ := cmd.Flags().GetString("date"); v != "" {
		if in.Date, err = core.ParseDate(v); err != nil {
			return core.NewValidationError("date", err)
		}
	}
	if id, _ := cmd.Flags().GetInt64("category"); id != 0 {
		in.CategoryID = &id
	}
	if err := in.Validate(); err != nil {
		return err
	}

	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	e, err := res.Backend.CreateExpense(cmd.Context(), in)
	if err != nil {
		return core.AsTransportError("create expense", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded expense %d: %s on %s\n", e.ID, e.Amount, e.Date)
	return nil
}
