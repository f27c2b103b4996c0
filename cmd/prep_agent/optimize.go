package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Match the stored resume against a job description",
	Long:  "Prints a markdown report comparing the stored resume context with a job description: match score, missing keywords and suggested bullet rewrites.",
	RunE:  runOptimize,
}

var optimizeJobFile string

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeJobFile, "job", "j", "", "Path to job description text file (required)")

	if err := optimizeCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	jobDescription, err := os.ReadFile(optimizeJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	resume, ok, err := a.store.ResumeContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to read resume context: %w", err)
	}
	if !ok {
		return errors.New("no resume context stored, run 'prep_agent resume --in FILE' first")
	}

	report, err := a.gateway.OptimizeResume(ctx, resume, string(jobDescription))
	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}
