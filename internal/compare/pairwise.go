package compare

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"placement-portal/internal/ai"
	"placement-portal/internal/attachments"
	"placement-portal/internal/portal"
	"placement-portal/internal/selection"
)

// ErrSelectionSize reports a pairwise invocation without exactly two candidates.
var ErrSelectionSize = errors.New("exactly two candidates must be selected")

// MissingResumeError identifies a selected candidate with no resume on file.
type MissingResumeError struct {
	Name string
}

func (e *MissingResumeError) Error() string {
	return fmt.Sprintf("Student %s has not submitted any resumes.", e.Name)
}

// Candidate identifies one side of a pairwise review.
type Candidate struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Review is a completed pairwise comparison. The candidate identities are a
// snapshot taken at invocation time; later selection changes cannot alter it.
type Review struct {
	Candidates [2]Candidate `json:"candidates"`
	Narrative  string       `json:"narrative"`
}

// Pairwise orchestrates the two-candidate comparison: it resolves each
// candidate's most recent resume, loads both concurrently, and asks the
// oracle for a free-form narrative verdict.
type Pairwise struct {
	store    *portal.Store
	loader   *attachments.Loader
	reviewer ai.Reviewer
	logger   *zap.Logger

	slot Slot[Review]
}

func NewPairwise(store *portal.Store, loader *attachments.Loader, reviewer ai.Reviewer, logger *zap.Logger) *Pairwise {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pairwise{
		store:    store,
		loader:   loader,
		reviewer: reviewer,
		logger:   logger,
	}
}

// Run compares the two selected candidates. Unlike the batch ranking, any
// load or oracle error is surfaced verbatim in the slot.
func (o *Pairwise) Run(ctx context.Context, candidateIDs []int) error {
	if len(candidateIDs) != selection.Capacity {
		return fmt.Errorf("%w: got %d", ErrSelectionSize, len(candidateIDs))
	}

	token := o.slot.Begin()

	var (
		idents [2]Candidate
		refs   [2]*attachments.Ref
	)
	for i, id := range candidateIDs {
		student, err := o.store.UserByID(id)
		if err != nil {
			o.slot.Fail(token, err.Error())
			return err
		}

		// The most recently created application supplies the resume.
		apps := o.store.ApplicationsForStudent(id)
		if len(apps) == 0 || apps[0].Resume == nil {
			err := &MissingResumeError{Name: student.Name}
			o.slot.Fail(token, err.Error())
			return err
		}

		idents[i] = Candidate{ID: student.ID, Name: student.Name, Department: student.Department}
		refs[i] = apps[0].Resume
	}

	var (
		texts    [2]string
		loadErrs [2]error
		wg       sync.WaitGroup
	)
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			texts[i], loadErrs[i] = o.loader.Load(ctx, refs[i])
		}(i)
	}
	wg.Wait()

	for i, err := range loadErrs {
		if err != nil {
			o.logger.Warn("resume load failed",
				zap.Int("student_id", idents[i].ID),
				zap.Error(err),
			)
			o.slot.Fail(token, err.Error())
			return err
		}
	}

	o.logger.Info("comparing candidate resumes",
		zap.Int("first_id", idents[0].ID),
		zap.Int("second_id", idents[1].ID),
	)

	narrative, err := o.reviewer.CompareResumes(ctx,
		ai.CandidateProfile{Name: idents[0].Name, Department: idents[0].Department, ResumeText: texts[0]},
		ai.CandidateProfile{Name: idents[1].Name, Department: idents[1].Department, ResumeText: texts[1]},
	)
	if err != nil {
		o.logger.Warn("pairwise comparison failed",
			zap.Int("first_id", idents[0].ID),
			zap.Int("second_id", idents[1].ID),
			zap.Error(err),
		)
		o.slot.Fail(token, err.Error())
		return fmt.Errorf("compare resumes: %w", err)
	}

	o.slot.Succeed(token, Review{Candidates: idents, Narrative: narrative})

	return nil
}

// View returns the current tri-state outcome.
func (o *Pairwise) View() View[Review] {
	return o.slot.View()
}

// Reset returns the slot to idle and discards in-flight completions.
func (o *Pairwise) Reset() {
	o.slot.Reset()
}
