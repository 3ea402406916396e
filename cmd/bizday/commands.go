package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/username/bizday-calc/internal/bizday"
	"github.com/username/bizday-calc/internal/calendar"
	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
)

func deliveryCmd() *cobra.Command {
	var baseStr string
	var offset int
	var closureStrs []string

	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Compute the delivery date N business days after a base date",
		Long: "Compute the delivery date for an order placed on the base date. " +
			"The day after the base date counts as business day one, so --offset 0 is the next business day.",
		Example: "  bizday delivery --offset 3\n  bizday delivery --base 2026-12-25 --offset 5 --closure 2026-12-29,2026-12-30",
		RunE: func(cmd *cobra.Command, args []string) error {
			closures, err := collectClosures(closureStrs)
			if err != nil {
				return err
			}

			engine, err := initializeEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			base := engine.Today()
			if baseStr != "" {
				base, err = dateutil.ParseDate(baseStr)
				if err != nil {
					return fmt.Errorf("invalid base date: %w", err)
				}
			}

			result, err := engine.ComputeDeliveryDate(base, offset, closures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d business days after %s: %s\n",
				offset, formatDate(base), formatDate(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&baseStr, "base", "b", "", "Base date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVarP(&offset, "offset", "n", 0, "Number of business days")
	cmd.Flags().StringSliceVar(&closureStrs, "closure", nil, "Closure date YYYY-MM-DD (repeatable, comma separated)")
	_ = cmd.MarkFlagRequired("offset")

	return cmd
}

func fromTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "from-today N",
		Short: "Compute the date N business days from today",
		Long: "Compute the date N business days from today with no closures. N may be negative " +
			"(use \"--\" before it) and 0 returns today.",
		Example: "  bizday from-today 5\n  bizday from-today -- -2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("offset must be an integer, got %q", args[0])
			}

			engine, err := initializeEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			result, err := engine.ComputeFromToday(offset)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d business days from today: %s\n", offset, formatDate(result))
			return nil
		},
	}

	return cmd
}

func checkCmd() *cobra.Command {
	var closureStrs []string

	cmd := &cobra.Command{
		Use:   "check DATE",
		Short: "Show whether a date is a business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}

			closures, err := collectClosures(closureStrs)
			if err != nil {
				return err
			}

			cal, err := initializeCalendar(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			engine := newEngine(cal)

			dayType := engine.Classify(date, closures)
			line := fmt.Sprintf("%s: %s", formatDate(date), dayType)
			if dayType == calendar.DayTypeHoliday {
				if holiday, err := cal.GetHoliday(date); err == nil && holiday != nil && holiday.Name != "" {
					line += " (" + holiday.Name + ")"
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&closureStrs, "closure", nil, "Closure date YYYY-MM-DD (repeatable, comma separated)")

	return cmd
}

// collectClosures merges configured closure days with the ones given on the command line
func collectClosures(flagDates []string) (bizday.ClosureSet, error) {
	configured, err := cfg.ClosureDates()
	if err != nil {
		return nil, err
	}

	extra, err := dateutil.ParseDates(flagDates)
	if err != nil {
		return nil, fmt.Errorf("invalid closure date: %w", err)
	}

	closures := bizday.NewClosureSet(configured...).Merge(bizday.NewClosureSet(extra...))

	logger.Debug("Closure days collected",
		zap.Int("configured", len(configured)),
		zap.Int("flags", len(extra)))

	return closures, nil
}

func formatDate(d dateutil.CalendarDate) string {
	return fmt.Sprintf("%s (%s)", d, d.Weekday().String()[:3])
}
