package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"placement-portal/internal/compare"
	"placement-portal/internal/selection"
)

func (s *Server) toggleSelection(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	studentID, err := c.ParamsInt("studentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid student id"})
	}
	if _, err := s.deps.Store.UserByID(studentID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	s.deps.Selection.Toggle(studentID)

	return c.JSON(s.selectionPayload())
}

func (s *Server) getSelection(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	return c.JSON(s.selectionPayload())
}

func (s *Server) resetSelection(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	s.deps.Selection.Reset()

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) selectionPayload() fiber.Map {
	return fiber.Map{
		"selected":       s.deps.Selection.IDs(),
		"compareEnabled": s.deps.Selection.CompareEnabled(),
	}
}

// startRanking kicks off the applicant ranking for a job. The oracle call
// runs in the background; progress and outcome are observable via
// getRanking.
func (s *Server) startRanking(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}
	if _, err := s.deps.Store.JobByID(jobID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if len(s.deps.Store.ApplicationsForJob(jobID)) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "there are no applicants for this job yet"})
	}

	s.mu.Lock()
	s.rankedJob = jobID
	s.mu.Unlock()

	go func() {
		if err := s.deps.Ranking.Run(context.Background(), jobID); err != nil {
			s.log.Warn("ranking run finished with error", zap.Int("job_id", jobID), zap.Error(err))
		}
	}()

	return c.SendStatus(fiber.StatusAccepted)
}

// getRanking reports the tri-state ranking outcome. Asking about a job other
// than the one last started reads as idle.
func (s *Server) getRanking(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}

	s.mu.Lock()
	current := s.rankedJob
	s.mu.Unlock()

	if jobID != current {
		return c.JSON(fiber.Map{"state": compare.StateIdle.String()})
	}

	view := s.deps.Ranking.View()
	payload := fiber.Map{"state": view.State.String()}
	switch view.State {
	case compare.StateSucceeded:
		payload["results"] = view.Result
	case compare.StateFailed:
		payload["error"] = view.Err
	}

	return c.JSON(payload)
}

// startPairwise kicks off the narrative comparison for the current
// selection. Local prerequisites (selection size, resumes on file) are
// validated up front so the caller gets a 422 instead of a failed slot.
func (s *Server) startPairwise(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	ids := s.deps.Selection.IDs()
	if len(ids) != selection.Capacity {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "select exactly two candidates to compare"})
	}

	for _, id := range ids {
		student, err := s.deps.Store.UserByID(id)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		apps := s.deps.Store.ApplicationsForStudent(id)
		if len(apps) == 0 || apps[0].Resume == nil {
			missing := &compare.MissingResumeError{Name: student.Name}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": missing.Error()})
		}
	}

	go func() {
		if err := s.deps.Pairwise.Run(context.Background(), ids); err != nil {
			s.log.Warn("pairwise run finished with error", zap.Ints("candidate_ids", ids), zap.Error(err))
		}
	}()

	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) getPairwise(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	view := s.deps.Pairwise.View()
	payload := fiber.Map{"state": view.State.String()}
	switch view.State {
	case compare.StateSucceeded:
		payload["result"] = view.Result
	case compare.StateFailed:
		payload["error"] = view.Err
	}

	return c.JSON(payload)
}
