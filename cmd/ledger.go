package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/summary"
	"github.com/frahmantamala/budget-story/internal/trend"
	"github.com/frahmantamala/budget-story/pkg/logger"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and change the saved ledger",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print income, expenses and savings",
	Args:  cobra.NoArgs,
	RunE: withLedger(func(_ context.Context, s *ledger.Store, _ io.Writer, _ []string) (ledger.Ledger, error) {
		return s.Current(), nil
	}),
}

var ledgerIncomeCmd = &cobra.Command{
	Use:   "income <amount>",
	Short: "Set monthly income",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, s *ledger.Store, _ io.Writer, args []string) (ledger.Ledger, error) {
		amount, err := parseAmount("income", args[0], internal.ErrCodeInvalidIncome)
		if err != nil {
			return s.Current(), err
		}
		return s.SetIncome(ctx, amount)
	}),
}

var ledgerAddCmd = &cobra.Command{
	Use:   "add <name> <amount> <category>",
	Short: "Add an expense",
	Args:  cobra.ExactArgs(3),
	RunE: withLedger(func(ctx context.Context, s *ledger.Store, _ io.Writer, args []string) (ledger.Ledger, error) {
		amount, err := parseAmount("value", args[1], internal.ErrCodeInvalidValue)
		if err != nil {
			return s.Current(), err
		}
		return s.AddExpense(ctx, args[0], amount, args[2])
	}),
}

var ledgerUpdateCmd = &cobra.Command{
	Use:   "update <id> <name> <amount> <category>",
	Short: "Replace an expense, keeping its position",
	Args:  cobra.ExactArgs(4),
	RunE: withLedger(func(ctx context.Context, s *ledger.Store, _ io.Writer, args []string) (ledger.Ledger, error) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return s.Current(), fmt.Errorf("invalid expense id %q", args[0])
		}
		amount, err := parseAmount("value", args[2], internal.ErrCodeInvalidValue)
		if err != nil {
			return s.Current(), err
		}
		return s.UpdateExpense(ctx, id, args[1], amount, args[3])
	}),
}

var ledgerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expense; unknown ids are ignored",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, s *ledger.Store, _ io.Writer, args []string) (ledger.Ledger, error) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return s.Current(), fmt.Errorf("invalid expense id %q", args[0])
		}
		return s.DeleteExpense(ctx, id)
	}),
}

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove income and every expense (no undo)",
	Args:  cobra.NoArgs,
	RunE: withLedger(func(ctx context.Context, s *ledger.Store, _ io.Writer, _ []string) (ledger.Ledger, error) {
		return s.ClearAll(ctx)
	}),
}

var ledgerTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Print a six month trend preview",
	Args:  cobra.NoArgs,
	RunE: withLedger(func(_ context.Context, s *ledger.Store, out io.Writer, _ []string) (ledger.Ledger, error) {
		l := s.Current()
		points := trend.Synthesize(summary.TotalExpenses(l), l.Income, trend.NewRandSource(ledgerTrendSeed))
		printTrend(out, points)
		return l, nil
	}),
}

var ledgerTrendSeed uint64

// annotationQuiet marks commands that print their own output instead of the ledger.
const annotationQuiet = "ledger-quiet"

func init() {
	ledgerTrendCmd.Annotations = map[string]string{annotationQuiet: "true"}
	ledgerTrendCmd.Flags().Uint64Var(&ledgerTrendSeed, "seed", 0, "variation seed (0 uses the clock)")

	ledgerCmd.AddCommand(ledgerShowCmd, ledgerIncomeCmd, ledgerAddCmd, ledgerUpdateCmd,
		ledgerDeleteCmd, ledgerClearCmd, ledgerTrendCmd)
}

type ledgerAction func(ctx context.Context, s *ledger.Store, out io.Writer, args []string) (ledger.Ledger, error)

// withLedger opens storage, loads the ledger, runs action and prints the result.
func withLedger(action ledgerAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := logger.L()

		store, err := openStorage(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer store.Close()

		stack, err := newLedgerStack(cfg, store.KV, lg)
		if err != nil {
			return err
		}
		stack.Store.Load(ctx)

		out := cmd.OutOrStdout()
		l, err := action(ctx, stack.Store, out, args)
		if err != nil && !errors.Is(err, internal.ErrPersistFailed) {
			if appErr, ok := internal.IsAppError(err); ok {
				return errors.New(appErr.GetDetailedMessage())
			}
			return err
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}

		if cmd.Annotations[annotationQuiet] == "" {
			printLedger(out, l)
		}
		return nil
	}
}

func parseAmount(field, raw string, code internal.ErrorCode) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, internal.NewValidationFieldError(field, fmt.Sprintf("%s must be a number", field), code)
	}
	return v, nil
}

func printLedger(out io.Writer, l ledger.Ledger) {
	s := summary.Compute(l)
	if l.IsDemo {
		fmt.Fprintln(out, "(demo data)")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tAMOUNT\tSHARE")
	for i, e := range l.Expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Category, summary.FormatAmount(e.Value), s.Shares[i].Label)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nIncome:   %s\n", summary.FormatAmount(s.Income))
	fmt.Fprintf(out, "Expenses: %s\n", summary.FormatAmount(s.TotalExpenses))
	fmt.Fprintf(out, "Savings:  %s (%s)\n", summary.FormatAmount(s.Savings), s.SavingsRateLabel)
}

func printTrend(out io.Writer, points []trend.Point) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tEXPENSES\tINCOME")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Month, summary.FormatAmount(p.Expenses), summary.FormatAmount(p.Income))
	}
	_ = tw.Flush()
}
