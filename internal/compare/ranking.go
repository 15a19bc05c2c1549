package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"placement-portal/internal/ai"
	"placement-portal/internal/attachments"
	"placement-portal/internal/portal"
)

// ErrNoApplicants reports a ranking request for a job nobody applied to.
var ErrNoApplicants = errors.New("no applicants for this job")

const (
	noApplicantsMessage = "There are no applicants for this job yet."

	// rankingFailureMessage deliberately hides the underlying oracle error;
	// the raw error is only logged.
	rankingFailureMessage = "An error occurred while analyzing resumes. The content may be too large or the API may be unavailable. Please try again."
)

// Ranking orchestrates the single-job comparison: it batches the applicants'
// resume loads, issues one structured oracle call, and reconciles the
// outcome into its result slot.
type Ranking struct {
	store  *portal.Store
	loader *attachments.Loader
	ranker ai.Ranker
	logger *zap.Logger

	slot Slot[[]ai.RankedCandidate]
}

func NewRanking(store *portal.Store, loader *attachments.Loader, ranker ai.Ranker, logger *zap.Logger) *Ranking {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranking{
		store:  store,
		loader: loader,
		ranker: ranker,
		logger: logger,
	}
}

// Run scores all applicants of the given job. The slot transitions
// loading -> succeeded(results) | failed(message); the returned error mirrors
// the failure for callers that want it.
func (o *Ranking) Run(ctx context.Context, jobID int) error {
	token := o.slot.Begin()

	job, err := o.store.JobByID(jobID)
	if err != nil {
		o.slot.Fail(token, err.Error())
		return err
	}

	apps := o.store.ApplicationsForJob(jobID)
	if len(apps) == 0 {
		o.slot.Fail(token, noApplicantsMessage)
		return fmt.Errorf("%w: job %d", ErrNoApplicants, jobID)
	}

	texts := o.loadAll(ctx, apps)

	candidates := make([]ai.CandidateRecord, 0, len(apps))
	for i, app := range apps {
		record := ai.CandidateRecord{
			ID:          app.StudentID,
			ResumeText:  texts[i],
			CoverLetter: app.CoverLetter,
		}
		if student, err := o.store.UserByID(app.StudentID); err == nil {
			record.Name = student.Name
			record.Department = student.Department
		}
		candidates = append(candidates, record)
	}

	o.logger.Info("ranking applicants",
		zap.Int("job_id", jobID),
		zap.Int("applicants", len(candidates)),
	)

	results, err := o.ranker.RankApplicants(ctx, job, candidates)
	if err != nil {
		o.logger.Warn("applicant ranking failed",
			zap.Int("job_id", jobID),
			zap.Error(err),
		)
		o.slot.Fail(token, rankingFailureMessage)
		return fmt.Errorf("rank applicants: %w", err)
	}

	// Descending by score; ties keep the oracle's original order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	o.slot.Succeed(token, results)

	return nil
}

// loadAll fans out the attachment loads and gathers the texts in the same
// positional order as the applications. A failed or absent attachment
// degrades to empty text; no applicant is ever dropped from the batch.
func (o *Ranking) loadAll(ctx context.Context, apps []*portal.Application) []string {
	texts := make([]string, len(apps))

	var wg sync.WaitGroup
	for i, app := range apps {
		wg.Add(1)
		go func(i int, app *portal.Application) {
			defer wg.Done()

			text, err := o.loader.Load(ctx, app.Resume)
			if err != nil {
				o.logger.Warn("resume load failed, degrading to empty text",
					zap.Int64("application_id", app.ID),
					zap.Int("student_id", app.StudentID),
					zap.Error(err),
				)
				text = ""
			}
			texts[i] = text
		}(i, app)
	}
	wg.Wait()

	return texts
}

// View returns the current tri-state outcome.
func (o *Ranking) View() View[[]ai.RankedCandidate] {
	return o.slot.View()
}

// Reset returns the slot to idle and discards in-flight completions.
func (o *Ranking) Reset() {
	o.slot.Reset()
}
