package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Store the resume text used for questions and self-introductions",
	Long:  "Reads a plain text resume and stores it as the resume context. The first 3000 characters are sent to the AI service.",
	RunE:  runResume,
}

var resumeInputFile string

func init() {
	resumeCmd.Flags().StringVarP(&resumeInputFile, "in", "i", "", "Path to resume text file (required)")

	if err := resumeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(resumeInputFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return fmt.Errorf("resume file %s is empty", resumeInputFile)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if err := a.store.SetResumeContext(ctx, text); err != nil {
		return fmt.Errorf("failed to store resume context: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored resume context (%d characters)\n", len([]rune(text)))
	return nil
}
