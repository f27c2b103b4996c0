// Package gateway is the request/response facade to the generative AI service
// used by the interview prep core. Service failures degrade to fixed defaults.
package gateway

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/prompts"
)

// Fallback texts returned when the service fails or returns nothing.
const (
	EmptyQuestions      = "[]"
	FeedbackUnavailable = "Error generating hints."
	FeedbackEmpty       = "Could not generate hints."
	RefineUnavailable   = "Error processing request."
	RefineEmpty         = "Could not refine text."
	OptimizeUnavailable = "An error occurred while communicating with the AI. Please try again."
)

// ResumeContextLimit is the number of resume characters sent for intro generation.
const ResumeContextLimit = 3000

// Gateway issues prompts against an llm.Client.
type Gateway struct {
	client llm.Client
	logger *zap.Logger
}

// New creates a Gateway. A nil logger discards output.
func New(client llm.Client, logger *zap.Logger) *Gateway {
	return &Gateway{client: client, logger: logging.OrNop(logger)}
}

// Close releases the underlying client.
func (g *Gateway) Close() error {
	return g.client.Close()
}

// GenerateQuestions asks for new questions for the role at company, biased away
// from the texts in exclude. The result is expected to be a JSON array of
// question descriptors; on failure it is EmptyQuestions.
func (g *Gateway) GenerateQuestions(ctx context.Context, company, role string, exclude []string) string {
	existing := "(none)"
	if len(exclude) > 0 {
		existing = "- " + strings.Join(exclude, "\n- ")
	}
	prompt, err := prompts.Render(prompts.Interview, "generate-questions", map[string]string{
		"Role":     role,
		"Company":  company,
		"Existing": existing,
	})
	if err != nil {
		g.logger.Error("question prompt unavailable", zap.Error(err))
		return EmptyQuestions
	}

	text, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		g.logger.Warn("question generation failed",
			zap.String("company", company),
			zap.String("role", role),
			zap.Error(&APICallError{Operation: "generate questions", Cause: err}))
		return EmptyQuestions
	}
	return text
}

// GenerateAnswerFeedback returns coaching for draft, or an outline when draft is
// empty. On failure it returns FeedbackUnavailable together with the error so
// callers can show the text without keeping it.
func (g *Gateway) GenerateAnswerFeedback(ctx context.Context, question, draft string) (string, error) {
	prompt, err := prompts.Render(prompts.Interview, "answer-feedback", map[string]string{
		"Question": question,
		"Draft":    draft,
	})
	if err != nil {
		return FeedbackUnavailable, err
	}

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		callErr := &APICallError{Operation: "generate answer feedback", Cause: err}
		g.logger.Warn("answer feedback failed", zap.Error(callErr))
		return FeedbackUnavailable, callErr
	}
	if strings.TrimSpace(text) == "" {
		return FeedbackEmpty, nil
	}
	return text, nil
}

// GenerateSelfIntro returns raw JSON text with rationale and script fields.
// The resume is cut to ResumeContextLimit characters.
func (g *Gateway) GenerateSelfIntro(ctx context.Context, resume, role, company string) (string, error) {
	prompt, err := prompts.Render(prompts.Interview, "self-intro", map[string]string{
		"Role":    role,
		"Company": company,
		"Resume":  llm.Truncate(resume, ResumeContextLimit),
	})
	if err != nil {
		return "", err
	}

	text, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		callErr := &APICallError{Operation: "generate self intro", Cause: err}
		g.logger.Warn("self intro generation failed",
			zap.String("company", company),
			zap.String("role", role),
			zap.Error(callErr))
		return "", callErr
	}
	return text, nil
}

// RefineSelfIntro returns a polished version of draft followed by a critique.
func (g *Gateway) RefineSelfIntro(ctx context.Context, draft, role, company string) (string, error) {
	prompt, err := prompts.Render(prompts.Interview, "refine-intro", map[string]string{
		"Role":    role,
		"Company": company,
		"Draft":   draft,
	})
	if err != nil {
		return RefineUnavailable, err
	}

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		callErr := &APICallError{Operation: "refine self intro", Cause: err}
		g.logger.Warn("self intro refinement failed", zap.Error(callErr))
		return RefineUnavailable, callErr
	}
	if strings.TrimSpace(text) == "" {
		return RefineEmpty, nil
	}
	return text, nil
}

// OptimizeResume returns a markdown report matching resume against jobDescription.
func (g *Gateway) OptimizeResume(ctx context.Context, resume, jobDescription string) (string, error) {
	prompt, err := prompts.Render(prompts.Interview, "optimize-resume", map[string]string{
		"Resume":         resume,
		"JobDescription": jobDescription,
	})
	if err != nil {
		return OptimizeUnavailable, err
	}

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		callErr := &APICallError{Operation: "optimize resume", Cause: err}
		g.logger.Warn("resume optimization failed", zap.Error(callErr))
		return OptimizeUnavailable, callErr
	}
	return text, nil
}
