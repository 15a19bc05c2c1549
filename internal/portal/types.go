package portal

import (
	"time"

	"placement-portal/internal/attachments"
)

// Role distinguishes the two actor kinds the portal knows about.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a registered portal actor. Students carry a department; admins do not.
type User struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// Job is a single listed opening.
type Job struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Type             string   `json:"type"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
}

// Application records one student's submission against one job. Resume may be
// nil; absence of a resume is a valid, scoreable state downstream.
type Application struct {
	ID          int64            `json:"id"`
	JobID       int              `json:"jobId"`
	StudentID   int              `json:"studentId"`
	CoverLetter string           `json:"coverLetter,omitempty"`
	Resume      *attachments.Ref `json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
}
