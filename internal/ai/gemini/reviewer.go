package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"placement-portal/internal/ai"
	"placement-portal/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed review_prompt.md
var reviewPromptTemplate string

// Reviewer produces free-form narrative head-to-head resume comparisons.
// The output is markdown prose and is never machine-parsed.
type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewReviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Reviewer) CompareResumes(ctx context.Context, first, second ai.CandidateProfile) (string, error) {
	if strings.TrimSpace(first.Name) == "" || strings.TrimSpace(second.Name) == "" {
		return "", fmt.Errorf("both candidate names are required")
	}

	prompt := buildReviewPrompt(first, second)

	r.logger.Debug("gemini review request",
		zap.String("first_candidate", first.Name),
		zap.String("second_candidate", second.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	narrative, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug("gemini review response",
		zap.Int("response_length", utf8.RuneCountInString(narrative)),
		zap.String("response_preview", utils.TruncateForLog(narrative, r.maxLogLen)),
	)

	return narrative, nil
}

func buildReviewPrompt(first, second ai.CandidateProfile) string {
	prompt := strings.ReplaceAll(reviewPromptTemplate, "{{FIRST_NAME}}", first.Name)
	prompt = strings.ReplaceAll(prompt, "{{FIRST_DEPARTMENT}}", first.Department)
	prompt = strings.ReplaceAll(prompt, "{{FIRST_RESUME}}", resumeOrPlaceholder(first.ResumeText))
	prompt = strings.ReplaceAll(prompt, "{{SECOND_NAME}}", second.Name)
	prompt = strings.ReplaceAll(prompt, "{{SECOND_DEPARTMENT}}", second.Department)
	prompt = strings.ReplaceAll(prompt, "{{SECOND_RESUME}}", resumeOrPlaceholder(second.ResumeText))
	return prompt
}

func resumeOrPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return noResumePlaceholder
	}
	return text
}
