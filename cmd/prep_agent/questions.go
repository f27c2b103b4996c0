package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiyoungwoo/Resume-assistant/internal/observability"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate and print the question bank for a company and role",
	Long:  "Loads the saved question bank for the company and role, asks the AI service for more questions and prints the bank with bookmarked questions first.",
	RunE:  runQuestions,
}

var (
	questionsCompany string
	questionsRole    string
	questionsListOnly  bool
)

func init() {
	questionsCmd.Flags().StringVarP(&questionsCompany, "company", "c", "", "Target company (required)")
	questionsCmd.Flags().StringVarP(&questionsRole, "role", "r", "", "Target role (required)")
	questionsCmd.Flags().BoolVar(&questionsListOnly, "list", false, "Only print the saved bank")

	if err := questionsCmd.MarkFlagRequired("company"); err != nil {
		panic(fmt.Sprintf("failed to mark company flag as required: %v", err))
	}
	if err := questionsCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(questionsCmd)
}

func runQuestions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	bank := a.station.Bank
	empty := bank.SetActiveContext(ctx, questionsCompany, questionsRole)
	if !questionsListOnly || empty {
		added, err := bank.RequestMoreQuestions(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate questions: %w", err)
		}
		if added == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No new questions were generated.")
		}
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintQuestionBank(bank.ActiveContext(), bank.OrderedView())
	return nil
}
