// Package intro generates a spoken self-introduction from the resume context
// and keeps an independent editable draft of it.
package intro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/schemas"
	"github.com/shiyoungwoo/Resume-assistant/internal/store"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// Writer is the part of the AI gateway the pipeline uses.
type Writer interface {
	GenerateSelfIntro(ctx context.Context, resume, role, company string) (string, error)
	RefineSelfIntro(ctx context.Context, draft, role, company string) (string, error)
}

// Request is the input of Generate. Every field must hold non-blank text.
type Request struct {
	ResumeContext string `json:"resume_context" validate:"nonblank"`
	Role          string `json:"role" validate:"nonblank"`
	Company       string `json:"company" validate:"nonblank"`
}

// RefineRequest is the input of Refine.
type RefineRequest struct {
	Draft   string `json:"draft" validate:"nonblank"`
	Role    string `json:"role" validate:"nonblank"`
	Company string `json:"company" validate:"nonblank"`
}

// Pipeline turns requests into self-introductions.
type Pipeline struct {
	writer   Writer
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a pipeline over writer.
func New(writer Writer, logger *zap.Logger) *Pipeline {
	v := validator.New()
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Pipeline{writer: writer, validate: v, logger: logging.OrNop(logger)}
}

// Generate asks for a rationale and script. Invalid requests are refused
// without calling the service; unusable replies yield ErrNoIntro.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*types.SelfIntro, error) {
	if err := p.check(req); err != nil {
		return nil, err
	}

	raw, err := p.writer.GenerateSelfIntro(ctx, req.ResumeContext, req.Role, req.Company)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoIntro, err)
	}

	intro, err := parseIntro(raw)
	if err != nil {
		p.logger.Warn("self intro response unusable",
			zap.String("company", req.Company),
			zap.String("role", req.Role),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNoIntro, err)
	}
	return intro, nil
}

// GenerateFromStore is Generate with the resume context read from resumes.
// A missing resume context is a validation failure.
func (p *Pipeline) GenerateFromStore(ctx context.Context, resumes store.ResumeStore, role, company string) (*types.SelfIntro, error) {
	text, _, err := resumes.ResumeContext(ctx)
	if err != nil {
		p.logger.Warn("failed to read resume context", zap.Error(err))
	}
	return p.Generate(ctx, Request{ResumeContext: text, Role: role, Company: company})
}

// Refine returns a polished version of draft and a critique.
func (p *Pipeline) Refine(ctx context.Context, req RefineRequest) (string, error) {
	if err := p.check(req); err != nil {
		return "", err
	}
	return p.writer.RefineSelfIntro(ctx, req.Draft, req.Role, req.Company)
}

func (p *Pipeline) check(req any) error {
	err := p.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		ve := &ValidationError{}
		for _, fe := range fieldErrs {
			ve.Fields = append(ve.Fields, fe.Field())
		}
		return ve
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func parseIntro(raw string) (*types.SelfIntro, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response"}
	}
	if err := schemas.Validate(schemas.SelfIntro, []byte(cleaned)); err != nil {
		return nil, &ParseError{Message: "response does not match self intro schema", Cause: err}
	}
	var intro types.SelfIntro
	if err := json.Unmarshal([]byte(cleaned), &intro); err != nil {
		return nil, &ParseError{Message: "failed to decode self intro", Cause: err}
	}
	return &intro, nil
}
