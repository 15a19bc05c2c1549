package portal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"placement-portal/internal/attachments"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrJobNotFound        = errors.New("job not found")
	ErrUserNotFound       = errors.New("user not found")
)

const defaultDepartment = "Not Specified"

// Store keeps the portal's jobs, users, and applications in memory. All
// methods are safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	jobs  []*Job
	users []*User
	apps  []*Application

	nextUserID int
	nextAppID  int64
}

// NewStore creates a store pre-populated with the provided jobs and users.
func NewStore(jobs []*Job, users []*User) *Store {
	s := &Store{
		jobs:  jobs,
		users: users,
	}

	for _, u := range users {
		if u.ID > s.nextUserID {
			s.nextUserID = u.ID
		}
	}

	return s
}

// Authenticate resolves an actor by email and password. Email matching is
// case-insensitive, mirroring the registration check.
func (s *Store) Authenticate(email, password string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.Password == password {
			return u, nil
		}
	}

	return nil, ErrInvalidCredentials
}

// Register creates a new actor. Duplicate emails are rejected; students
// without a department get a default one.
func (s *Store) Register(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrEmailTaken
		}
	}

	s.nextUserID++
	user := &User{
		ID:       s.nextUserID,
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}
	if role == RoleStudent {
		user.Department = defaultDepartment
	}

	s.users = append(s.users, user)

	return user, nil
}

// Jobs returns all listings in their listed order.
func (s *Store) Jobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*Job(nil), s.jobs...)
}

// JobByID resolves a single listing.
func (s *Store) JobByID(id int) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}

	return nil, fmt.Errorf("%w: id %d", ErrJobNotFound, id)
}

// UserByID resolves a single actor.
func (s *Store) UserByID(id int) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}

	return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
}

// Students returns all student-role actors in registration order.
func (s *Store) Students() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	students := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		if u.Role == RoleStudent {
			students = append(students, u)
		}
	}

	return students
}

// SubmitApplication records a student's application against a job. The
// returned application carries a monotonic id and its creation time.
func (s *Store) SubmitApplication(studentID, jobID int, coverLetter string, resume *attachments.Ref) (*Application, error) {
	if _, err := s.JobByID(jobID); err != nil {
		return nil, err
	}

	student, err := s.UserByID(studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != RoleStudent {
		return nil, fmt.Errorf("user %d is not a student", studentID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAppID++
	app := &Application{
		ID:          s.nextAppID,
		JobID:       jobID,
		StudentID:   studentID,
		CoverLetter: strings.TrimSpace(coverLetter),
		Resume:      resume,
		CreatedAt:   time.Now().UTC(),
	}

	s.apps = append(s.apps, app)

	return app, nil
}

// ApplicationsForJob returns a job's applications in submission order.
func (s *Store) ApplicationsForJob(jobID int) []*Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*Application, 0)
	for _, a := range s.apps {
		if a.JobID == jobID {
			apps = append(apps, a)
		}
	}

	return apps
}

// ApplicationsForStudent returns a student's applications, most recently
// created first.
func (s *Store) ApplicationsForStudent(studentID int) []*Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*Application, 0)
	for _, a := range s.apps {
		if a.StudentID == studentID {
			apps = append(apps, a)
		}
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].ID > apps[j].ID
	})

	return apps
}

// HasApplied reports whether the student already applied to the job.
func (s *Store) HasApplied(studentID, jobID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.apps {
		if a.StudentID == studentID && a.JobID == jobID {
			return true
		}
	}

	return false
}
