package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"placement-portal/internal/ai"
	"placement-portal/internal/portal"
	"placement-portal/internal/utils"
)

type structuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

//go:embed rank_prompt.md
var rankPromptTemplate string

const defaultMaxLogLength = 200

const (
	noResumePlaceholder      = "No resume text available."
	noCoverLetterPlaceholder = "No cover letter provided."
)

// rankingSchema constrains the oracle to emit one object per candidate
// with all three fields present.
var rankingSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidateId": {
				Type:        genai.TypeInteger,
				Description: "The unique ID of the candidate.",
			},
			"score": {
				Type:        genai.TypeInteger,
				Description: "Score from 0 to 100 based on job fit.",
			},
			"justification": {
				Type:        genai.TypeString,
				Description: "A concise 2-3 sentence justification for the score.",
			},
		},
		Required: []string{"candidateId", "score", "justification"},
	},
}

// Ranker scores a job's applicants in a single structured oracle call.
type Ranker struct {
	generator structuredGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewRanker(generator structuredGenerator, logger *zap.Logger, maxLogLength int) *Ranker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ranker{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Ranker) RankApplicants(ctx context.Context, job *portal.Job, candidates []ai.CandidateRecord) ([]ai.RankedCandidate, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("at least one candidate is required")
	}

	prompt := buildRankPrompt(job, candidates)

	r.logger.Debug("gemini ranking request",
		zap.Int("job_id", job.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateStructured(ctx, prompt, rankingSchema)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini ranking response",
		zap.Int("job_id", job.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	return parseRanking(raw)
}

func buildRankPrompt(job *portal.Job, candidates []ai.CandidateRecord) string {
	var blocks strings.Builder
	for _, c := range candidates {
		resume := c.ResumeText
		if strings.TrimSpace(resume) == "" {
			resume = noResumePlaceholder
		}
		cover := c.CoverLetter
		if strings.TrimSpace(cover) == "" {
			cover = noCoverLetterPlaceholder
		}

		fmt.Fprintf(&blocks, "---\n**Candidate Name:** %s\n**Candidate ID:** %d\n**Department:** %s\n**Resume/CV Text:**\n%s\n**Cover Letter:**\n%s\n---\n\n",
			c.Name, c.ID, c.Department, resume, cover)
	}

	prompt := strings.ReplaceAll(rankPromptTemplate, "{{JOB_TITLE}}", job.Title)
	prompt = strings.ReplaceAll(prompt, "{{JOB_COMPANY}}", job.Company)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", job.Description)
	prompt = strings.ReplaceAll(prompt, "{{JOB_RESPONSIBILITIES}}", bulletList(job.Responsibilities))
	prompt = strings.ReplaceAll(prompt, "{{JOB_REQUIREMENTS}}", bulletList(job.Requirements))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES}}", strings.TrimSpace(blocks.String()))

	return prompt
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func parseRanking(raw string) ([]ai.RankedCandidate, error) {
	cleaned := extractJSON(raw)

	var payload []struct {
		CandidateID   *float64 `json:"candidateId"`
		Score         *float64 `json:"score"`
		Justification *string  `json:"justification"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse ranking response: %w", err)
	}

	results := make([]ai.RankedCandidate, 0, len(payload))
	for i, item := range payload {
		if item.CandidateID == nil || item.Score == nil || item.Justification == nil {
			return nil, fmt.Errorf("ranking entry %d is missing required fields", i)
		}

		score := int(math.Round(*item.Score))
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("ranking entry %d has score %d outside 0-100", i, score)
		}

		results = append(results, ai.RankedCandidate{
			CandidateID:   int(*item.CandidateID),
			Score:         score,
			Justification: strings.TrimSpace(*item.Justification),
		})
	}

	return results, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
