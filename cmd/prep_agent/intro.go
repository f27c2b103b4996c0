package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiyoungwoo/Resume-assistant/internal/observability"
)

var introCmd = &cobra.Command{
	Use:   "intro",
	Short: "Generate a spoken self-introduction",
	Long:  "Generates a strategy and a one to two minute spoken self-introduction from the stored resume context for the company and role.",
	RunE:  runIntro,
}

var (
	introCompany string
	introRole    string
)

func init() {
	introCmd.Flags().StringVarP(&introCompany, "company", "c", "", "Target company (required)")
	introCmd.Flags().StringVarP(&introRole, "role", "r", "", "Target role (required)")

	if err := introCmd.MarkFlagRequired("company"); err != nil {
		panic(fmt.Sprintf("failed to mark company flag as required: %v", err))
	}
	if err := introCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(introCmd)
}

func runIntro(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	generated, err := a.station.GenerateIntroFor(ctx, introRole, introCompany)
	if err != nil {
		return fmt.Errorf("failed to generate self introduction: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSelfIntro(generated)
	return nil
}
