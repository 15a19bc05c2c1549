package ai

import (
	"context"

	"placement-portal/internal/portal"
)

// RankedCandidate is one entry of the structured scoring oracle's response.
type RankedCandidate struct {
	CandidateID   int    `json:"candidateId"`
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// CandidateRecord is one self-contained applicant record embedded into a
// structured scoring request.
type CandidateRecord struct {
	ID          int
	Name        string
	Department  string
	ResumeText  string
	CoverLetter string
}

// CandidateProfile is one side of a narrative head-to-head comparison.
type CandidateProfile struct {
	Name       string
	Department string
	ResumeText string
}

// Ranker scores every applicant of a job against its description in a
// single oracle call.
type Ranker interface {
	RankApplicants(ctx context.Context, job *portal.Job, candidates []CandidateRecord) ([]RankedCandidate, error)
}

// Reviewer produces a free-form narrative comparison of two candidates.
type Reviewer interface {
	CompareResumes(ctx context.Context, first, second CandidateProfile) (string, error)
}

// Conversation is one long-lived oracle chat session.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
}

// ConversationStarter opens oracle chat sessions bound to a system instruction.
type ConversationStarter interface {
	StartConversation(ctx context.Context, systemInstruction string) (Conversation, error)
}
