// Command sowcalc computes breeding milestones from the command line without a record store.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	"github.com/mamadbah2/piggery/pkg/logger"
)

type options struct {
	verbose bool
	today   string

	bred          string
	pregnancyDays int
	fattening     string
	fatteningDays int
	from          string
	to            string
}

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &options{}
	log := zap.NewNop()

	root := &cobra.Command{
		Use:          "sowcalc",
		Short:        "Swine breeding date calculator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.NewCLI(opts.verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.today, "today", "", "reference date (YYYY-MM-DD), defaults to the current date")

	farrow := &cobra.Command{
		Use:   "farrow",
		Short: "Expected farrowing date from a breed date",
		RunE: func(cmd *cobra.Command, args []string) error {
			bred, err := lifecycle.ParseDate(opts.bred)
			if err != nil {
				return fmt.Errorf("--bred: %w", err)
			}
			d := lifecycle.Durations{PregnancyDays: opts.pregnancyDays, FatteningDays: lifecycle.DefaultFatteningDays}
			if err := d.Validate(); err != nil {
				return err
			}
			today, err := referenceDay(opts.today, now)
			if err != nil {
				return err
			}
			expected, err := lifecycle.ExpectedFarrowDate(bred, d)
			if err != nil {
				return err
			}
			log.Debug("computed farrow date", zap.Time("bred", bred), zap.Int("days", opts.pregnancyDays))
			printMilestone(cmd.OutOrStdout(), "expected farrow", expected, today)
			return nil
		},
	}
	farrow.Flags().StringVar(&opts.bred, "bred", "", "breed date (YYYY-MM-DD)")
	farrow.Flags().IntVar(&opts.pregnancyDays, "days", lifecycle.DefaultPregnancyDays, "pregnancy length in days")
	_ = farrow.MarkFlagRequired("bred")

	saleable := &cobra.Command{
		Use:   "saleable",
		Short: "Saleable date from a fattening start date",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := lifecycle.ParseDate(opts.fattening)
			if err != nil {
				return fmt.Errorf("--fattening: %w", err)
			}
			d := lifecycle.Durations{PregnancyDays: lifecycle.DefaultPregnancyDays, FatteningDays: opts.fatteningDays}
			if err := d.Validate(); err != nil {
				return err
			}
			today, err := referenceDay(opts.today, now)
			if err != nil {
				return err
			}
			ready, err := lifecycle.SaleableDate(start, d)
			if err != nil {
				return err
			}
			log.Debug("computed saleable date", zap.Time("fattening", start), zap.Int("days", opts.fatteningDays))
			printMilestone(cmd.OutOrStdout(), "saleable", ready, today)
			return nil
		},
	}
	saleable.Flags().StringVar(&opts.fattening, "fattening", "", "fattening start date (YYYY-MM-DD)")
	saleable.Flags().IntVar(&opts.fatteningDays, "days", lifecycle.DefaultFatteningDays, "fattening length in days")
	_ = saleable.MarkFlagRequired("fattening")

	days := &cobra.Command{
		Use:   "days",
		Short: "Calendar days between two dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := lifecycle.ParseDate(opts.from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to, err := referenceDay(opts.to, now)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), lifecycle.DaysBetween(from, to))
			return nil
		},
	}
	days.Flags().StringVar(&opts.from, "from", "", "start date (YYYY-MM-DD)")
	days.Flags().StringVar(&opts.to, "to", "", "end date (YYYY-MM-DD), defaults to today")
	_ = days.MarkFlagRequired("from")

	root.AddCommand(farrow, saleable, days)
	return root
}

func referenceDay(raw string, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return lifecycle.StartOfDay(now()), nil
	}
	return lifecycle.ParseDate(raw)
}

func printMilestone(w io.Writer, label string, date, today time.Time) {
	n := lifecycle.DaysBetween(today, date)
	switch {
	case n > 0:
		fmt.Fprintf(w, "%s: %s (in %d days)\n", label, lifecycle.FormatDate(date), n)
	case n < 0:
		fmt.Fprintf(w, "%s: %s (%d days ago)\n", label, lifecycle.FormatDate(date), -n)
	default:
		fmt.Fprintf(w, "%s: %s (today)\n", label, lifecycle.FormatDate(date))
	}
}
