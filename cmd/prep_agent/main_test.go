package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiyoungwoo/Resume-assistant/internal/config"
	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
)

// fakeLLM implements llm.Client for testing
type fakeLLM struct {
	jsonReply string
	textReply string
}

func (f *fakeLLM) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return f.textReply, nil
}

func (f *fakeLLM) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return f.jsonReply, nil
}

func (f *fakeLLM) StartChat(string, llm.ModelTier) (llm.Chat, error) {
	return nil, llm.ErrEmptyResponse
}

func (f *fakeLLM) Close() error { return nil }

// setupCLI points the commands at a fresh SQLite file and a fake LLM.
func setupCLI(t *testing.T, client *fakeLLM) {
	t.Helper()
	t.Setenv("APP_ENV", config.EnvTest)
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "prep.db"))
	t.Setenv("GEMINI_API_KEY", "test-key")

	original := newLLMClient
	newLLMClient = func(context.Context, *config.Config) (llm.Client, error) { return client, nil }
	t.Cleanup(func() { newLLMClient = original })
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPointsCommands(t *testing.T) {
	setupCLI(t, &fakeLLM{})

	out, err := execute(t, "points", "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Points: 1250")
	assert.Contains(t, out, "Free mock interviews used: 0 of 2")

	out, err = execute(t, "points", "credit", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Points: 1350")

	out, err = execute(t, "points", "earn")
	require.NoError(t, err)
	assert.Contains(t, out, "Points: 1400", "balance persists between runs")

	_, err = execute(t, "points", "credit", "--", "-5")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = execute(t, "points", "credit", "lots")
	assert.Error(t, err)
}

func TestQuestionsCommand(t *testing.T) {
	setupCLI(t, &fakeLLM{
		jsonReply: `[{"question":"Why Acme?","type":"Cultural Fit","source":"Community","hint":"Mission"}]`,
	})

	out, err := execute(t, "questions", "--company", "Acme", "--role", "Engineer")
	require.NoError(t, err)
	assert.Contains(t, out, "QUESTION BANK: Acme / Engineer (1)")
	assert.Contains(t, out, "Why Acme?")

	out, err = execute(t, "questions", "--company", "Acme", "--role", "Engineer", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "(1)", "saved bank is listed without duplicates")
}

func TestQuestionsCommand_MissingFlag(t *testing.T) {
	setupCLI(t, &fakeLLM{})
	_, err := execute(t, "questions", "--company", "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "role" not set`)
}

func TestResumeAndIntroCommands(t *testing.T) {
	setupCLI(t, &fakeLLM{jsonReply: `{"rationale":"Lead with Go.","script":"Hi, I build backends."}`})

	_, err := execute(t, "intro", "--company", "Acme", "--role", "Engineer")
	require.Error(t, err, "no resume stored yet")

	resumePath := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("  Go developer, 5 years  \n"), 0644))

	out, err := execute(t, "resume", "--in", resumePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored resume context (21 characters)")

	out, err = execute(t, "intro", "--company", "Acme", "--role", "Engineer")
	require.NoError(t, err)
	assert.Contains(t, out, "Lead with Go.")
	assert.Contains(t, out, "Hi, I build backends.")
}

func TestResumeCommand_EmptyFile(t *testing.T) {
	setupCLI(t, &fakeLLM{})
	resumePath := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("\n\n"), 0644))

	_, err := execute(t, "resume", "--in", resumePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestOptimizeCommand(t *testing.T) {
	setupCLI(t, &fakeLLM{textReply: "## Match score: 80"})
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(jobPath, []byte("Senior Go engineer"), 0644))

	_, err := execute(t, "optimize", "--job", jobPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resume context stored")

	resumePath := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("Go developer"), 0644))
	_, err = execute(t, "resume", "--in", resumePath)
	require.NoError(t, err)

	out, err := execute(t, "optimize", "--job", jobPath)
	require.NoError(t, err)
	assert.Equal(t, "## Match score: 80", strings.TrimSpace(out))
}
