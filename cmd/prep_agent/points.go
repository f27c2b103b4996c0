package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/observability"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show or change the points balance",
}

var pointsBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the points balance and free attempt usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return updatePoints(cmd, nil)
	},
}

var pointsCreditCmd = &cobra.Command{
	Use:   "credit AMOUNT",
	Short: "Add points to the balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		return updatePoints(cmd, func(ctx context.Context, points *ledger.Ledger) error {
			return points.Credit(ctx, amount)
		})
	},
}

var pointsEarnCmd = &cobra.Command{
	Use:   "earn",
	Short: "Credit the community post reward",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return updatePoints(cmd, func(ctx context.Context, points *ledger.Ledger) error {
			_, err := points.EarnForPost(ctx)
			return err
		})
	},
}

func init() {
	pointsCmd.AddCommand(pointsBalanceCmd, pointsCreditCmd, pointsEarnCmd)
	rootCmd.AddCommand(pointsCmd)
}

// updatePoints applies change, if any, and prints the resulting balance.
func updatePoints(cmd *cobra.Command, change func(context.Context, *ledger.Ledger) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	points, quota, err := a.points(ctx)
	if err != nil {
		return err
	}
	if change != nil {
		if err := change(ctx, points); err != nil {
			return err
		}
	}

	balance, err := points.Balance(ctx)
	if err != nil {
		return err
	}
	used, err := quota.Used(ctx)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPoints(balance, used, quota.Limit())
	return nil
}
