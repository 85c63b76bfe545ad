package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/habits"
	"github.com/dvloznov/lifeos/internal/metrics"
)

var (
	habitCategory string
	habitReminder string
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Track daily habits and streaks",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := rt.AddHabit(cmd.Context(), strings.Join(args, " "), habitCategory, habitReminder)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s [%s]\n", h.Name, h.ID)
		return nil
	},
}

var habitToggleCmd = &cobra.Command{
	Use:   "toggle <id or name>",
	Short: "Mark a habit done today, or undo today's completion",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := strings.Join(args, " ")

		var (
			h         domain.Habit
			completed bool
			err       error
		)
		if habits.FindByID(rt.State().Habits, ref) >= 0 {
			h, completed, err = rt.ToggleHabit(cmd.Context(), ref)
		} else {
			h, completed, err = rt.ToggleHabitByName(cmd.Context(), ref)
		}
		if err != nil {
			return err
		}

		verb := "done"
		if !completed {
			verb = "undone"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s, streak %d\n", h.Name, verb, h.Streak)
		return nil
	},
}

var habitAdjustCmd = &cobra.Command{
	Use:   "adjust <id> <delta>",
	Short: "Shift a streak by delta without changing history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return domain.Invalid("delta", fmt.Sprintf("%q is not an integer", args[1]))
		}
		h, err := rt.AdjustStreak(cmd.Context(), args[0], delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s streak %d\n", h.Name, h.Streak)
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a habit and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.DeleteHabit(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with their current streaks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		today := rt.Today()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSTREAK\tTODAY")
		for _, h := range rt.State().Habits {
			done := ""
			if h.History.Contains(today) {
				done = "x"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", h.ID, h.Name, h.Category, h.Streak, done)
		}
		return tw.Flush()
	},
}

func init() {
	habitAddCmd.Flags().StringVar(&habitCategory, "category", "", "Category (default General)")
	habitAddCmd.Flags().StringVar(&habitReminder, "reminder", "", "Reminder time (HH:MM)")

	habitCmd.AddCommand(habitAddCmd, habitToggleCmd, habitAdjustCmd, habitDeleteCmd, habitListCmd)
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show balances, net worth and progression",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSummary(cmd, rt.Summary())
		return nil
	},
}

func printSummary(cmd *cobra.Command, s metrics.Summary) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Bank A (inflow)\t%s\n", s.BankA.StringFixed(2))
	fmt.Fprintf(tw, "Bank B (wealth)\t%s\n", s.BankB.StringFixed(2))
	fmt.Fprintf(tw, "Bank C (survival)\t%s\n", s.BankC.StringFixed(2))
	fmt.Fprintf(tw, "Liquid cash\t%s\n", s.LiquidCash.StringFixed(2))
	fmt.Fprintf(tw, "Net worth\t%s\n", s.NetWorth.StringFixed(2))
	fmt.Fprintf(tw, "Inflation decay / day\t%s\n", s.DailyDecay.StringFixed(2))
	fmt.Fprintf(tw, "This month\t+%s / -%s\n", s.MonthIncome.StringFixed(2), s.MonthExpense.StringFixed(2))
	fmt.Fprintf(tw, "Savings rate\t%s%%\n", s.SavingsRate.StringFixed(1))
	fmt.Fprintf(tw, "Weighted ROI\t%s%%\n", s.WeightedROI.StringFixed(2))
	fmt.Fprintf(tw, "Systemic risk\t%d\n", s.RiskScore)
	fmt.Fprintf(tw, "Habits done today\t%d/%d (best streak %d)\n", s.DoneToday, s.HabitCount, s.BestStreak)
	fmt.Fprintf(tw, "Level\t%d %s (%d/%d XP)\n", s.Level, s.Rank, s.XP, metrics.LevelThreshold(s.Level))
	tw.Flush()
}
