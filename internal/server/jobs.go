package server

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"placement-portal/internal/attachments"
	"placement-portal/internal/notify"
	"placement-portal/internal/portal"
)

func (s *Server) listJobs(c *fiber.Ctx) error {
	return c.JSON(s.deps.Store.Jobs())
}

func (s *Server) getJob(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}

	job, err := s.deps.Store.JobByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(job)
}

// apply submits a multipart application (cover letter plus optional resume
// file) for the signed-in student and enqueues the confirmation
// notification on success.
func (s *Server) apply(c *fiber.Ctx) error {
	actor, ok := s.requireActor(c)
	if !ok {
		return nil
	}
	if actor.Role != portal.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only students can apply"})
	}

	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}
	job, err := s.deps.Store.JobByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	if s.deps.Store.HasApplied(actor.ID, jobID) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "you have already applied to this job"})
	}

	coverLetter := c.FormValue("coverLetter")

	var resume *attachments.Ref
	if header, err := c.FormFile("resume"); err == nil {
		file, err := header.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read the resume upload"})
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read the resume upload"})
		}
		resume = attachments.FromBytes(header.Filename, data)
	}

	app, err := s.deps.Store.SubmitApplication(actor.ID, jobID, coverLetter, resume)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	s.deps.Notifications.Enqueue(
		fmt.Sprintf("Application for '%s' submitted! A confirmation email has been sent to %s.", job.Title, actor.Email),
		notify.KindSuccess,
	)

	s.log.Info("application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int("job_id", jobID),
		zap.Int("student_id", actor.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(app)
}

func (s *Server) listNotifications(c *fiber.Ctx) error {
	return c.JSON(s.deps.Notifications.Active())
}

func (s *Server) dismissNotification(c *fiber.Ctx) error {
	var id int64
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid notification id"})
	}

	s.deps.Notifications.Dismiss(id)

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listStudents(c *fiber.Ctx) error {
	if _, ok := s.requireAdmin(c); !ok {
		return nil
	}

	return c.JSON(s.deps.Store.Students())
}
