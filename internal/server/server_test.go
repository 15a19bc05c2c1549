package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"placement-portal/internal/ai"
	"placement-portal/internal/attachments"
	"placement-portal/internal/compare"
	"placement-portal/internal/notify"
	"placement-portal/internal/portal"
	"placement-portal/internal/selection"
)

type stubRanker struct {
	results []ai.RankedCandidate
	err     error
}

func (s *stubRanker) RankApplicants(_ context.Context, _ *portal.Job, candidates []ai.CandidateRecord) ([]ai.RankedCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.results != nil {
		return s.results, nil
	}
	out := make([]ai.RankedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, ai.RankedCandidate{CandidateID: cand.ID, Score: 80, Justification: "solid fit"})
	}
	return out, nil
}

type stubReviewer struct {
	narrative string
	err       error
}

func (s *stubReviewer) CompareResumes(_ context.Context, _, _ ai.CandidateProfile) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.narrative, nil
}

type stubConversation struct {
	reply string
	gate  chan struct{}
}

func (s *stubConversation) Send(_ context.Context, _ string) (string, error) {
	if s.gate != nil {
		<-s.gate
	}
	return s.reply, nil
}

type stubStarter struct {
	conv ai.Conversation
	err  error
}

func (s *stubStarter) StartConversation(_ context.Context, _ string) (ai.Conversation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.conv, nil
}

type fixture struct {
	server   *Server
	store    *portal.Store
	ranker   *stubRanker
	reviewer *stubReviewer
	chat     *stubConversation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := portal.NewStore(portal.SeedJobs(), portal.SeedUsers())
	loader := attachments.NewLoader()
	queue := notify.NewQueue(time.Minute)
	t.Cleanup(queue.Stop)

	ranker := &stubRanker{}
	reviewer := &stubReviewer{narrative: "## Summary\nBoth are strong."}
	conv := &stubConversation{reply: "We have 4 openings."}

	srv := New(":0", Deps{
		Store:         store,
		Loader:        loader,
		Notifications: queue,
		Selection:     selection.NewSet(),
		Ranking:       compare.NewRanking(store, loader, ranker, nil),
		Pairwise:      compare.NewPairwise(store, loader, reviewer, nil),
		ChatStarter:   &stubStarter{conv: conv},
	})

	return &fixture{server: srv, store: store, ranker: ranker, reviewer: reviewer, chat: conv}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.App().Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func (f *fixture) login(t *testing.T, email, password string) {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (f *fixture) loginAdmin(t *testing.T) {
	f.login(t, "admin@placement.edu", "admin123")
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (f *fixture) submitApplication(t *testing.T, jobID, studentID int, resume string) {
	t.Helper()

	var ref *attachments.Ref
	if resume != "" {
		ref = attachments.FromBytes("resume.txt", []byte(resume))
	}
	student, err := f.store.UserByID(studentID)
	require.NoError(t, err)
	_, err = f.store.SubmitApplication(student.ID, jobID, "I am interested.", ref)
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/login", map[string]string{"email": "admin@placement.edu", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/login", map[string]string{"email": "admin@placement.edu", "password": "admin123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user portal.User
	decodeBody(t, resp, &user)
	require.Equal(t, "Asha Pillai", user.Name)
	require.Equal(t, portal.RoleAdmin, user.Role)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Meera Iyer", "email": "meera@placement.edu", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Other", "email": "meera@placement.edu", "password": "secret2",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestJobs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var jobs []portal.Job
	decodeBody(t, resp, &jobs)
	require.Len(t, jobs, 4)

	resp = f.do(t, http.MethodGet, "/api/jobs/99", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApply(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("coverLetter", "I would love this role."))
	part, err := writer.CreateFormFile("resume", "resume.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Go, SQL, Linux"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	// Anonymous applications are rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/1/applications", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := f.server.App().Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.login(t, "rohan@student.edu", "student123")

	req = httptest.NewRequest(http.MethodPost, "/api/jobs/1/applications", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = f.server.App().Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/notifications", nil)
	var notifications []notify.Notification
	decodeBody(t, resp, &notifications)
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0].Message, "Application for 'Software Engineer Intern' submitted!")
	require.Contains(t, notifications[0].Message, "rohan@student.edu")

	// A second application to the same job is refused.
	req = httptest.NewRequest(http.MethodPost, "/api/jobs/1/applications", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err = f.server.App().Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDismissNotification(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.server.deps.Notifications.Enqueue("done", notify.KindSuccess)

	resp := f.do(t, http.MethodDelete, "/api/notifications/"+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/notifications", nil)
	var notifications []notify.Notification
	decodeBody(t, resp, &notifications)
	require.Empty(t, notifications)
}

func TestStudentsRequiresAdmin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.login(t, "rohan@student.edu", "student123")
	resp = f.do(t, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	f.loginAdmin(t)
	resp = f.do(t, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var students []portal.User
	decodeBody(t, resp, &students)
	require.Len(t, students, 3)
}

func TestSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.loginAdmin(t)

	resp := f.do(t, http.MethodPost, "/api/selection/99", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	type payload struct {
		Selected       []int `json:"selected"`
		CompareEnabled bool  `json:"compareEnabled"`
	}

	resp = f.do(t, http.MethodPost, "/api/selection/2", nil)
	var got payload
	decodeBody(t, resp, &got)
	require.Equal(t, []int{2}, got.Selected)
	require.False(t, got.CompareEnabled)

	resp = f.do(t, http.MethodPost, "/api/selection/3", nil)
	decodeBody(t, resp, &got)
	require.ElementsMatch(t, []int{2, 3}, got.Selected)
	require.True(t, got.CompareEnabled)

	// The set is full; a third candidate is ignored.
	resp = f.do(t, http.MethodPost, "/api/selection/4", nil)
	decodeBody(t, resp, &got)
	require.ElementsMatch(t, []int{2, 3}, got.Selected)

	resp = f.do(t, http.MethodDelete, "/api/selection", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/selection", nil)
	decodeBody(t, resp, &got)
	require.Empty(t, got.Selected)
}

func TestRankingEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.loginAdmin(t)

	resp := f.do(t, http.MethodPost, "/api/comparisons/jobs/99", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/comparisons/jobs/1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	f.submitApplication(t, 1, 2, "Go and SQL")
	f.submitApplication(t, 1, 3, "Embedded C")

	resp = f.do(t, http.MethodPost, "/api/comparisons/jobs/1", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	type view struct {
		State   string               `json:"state"`
		Results []ai.RankedCandidate `json:"results"`
		Error   string               `json:"error"`
	}

	require.Eventually(t, func() bool {
		resp := f.do(t, http.MethodGet, "/api/comparisons/jobs/1", nil)
		var got view
		decodeBody(t, resp, &got)
		return got.State == "succeeded" && len(got.Results) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Another job's view is untouched.
	resp = f.do(t, http.MethodGet, "/api/comparisons/jobs/2", nil)
	var got view
	decodeBody(t, resp, &got)
	require.Equal(t, "idle", got.State)
}

func TestPairwiseEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.loginAdmin(t)

	resp := f.do(t, http.MethodPost, "/api/comparisons/candidates", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	f.submitApplication(t, 1, 2, "Go and SQL")
	// Priya has an application but no resume on file.
	f.submitApplication(t, 1, 3, "")

	f.do(t, http.MethodPost, "/api/selection/2", nil)
	f.do(t, http.MethodPost, "/api/selection/3", nil)

	resp = f.do(t, http.MethodPost, "/api/comparisons/candidates", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var failure map[string]string
	decodeBody(t, resp, &failure)
	require.Contains(t, failure["error"], "Priya Nair has not submitted any resumes")

	f.submitApplication(t, 2, 3, "Python and statistics")

	resp = f.do(t, http.MethodPost, "/api/comparisons/candidates", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	type view struct {
		State  string         `json:"state"`
		Result compare.Review `json:"result"`
		Error  string         `json:"error"`
	}

	require.Eventually(t, func() bool {
		resp := f.do(t, http.MethodGet, "/api/comparisons/candidates", nil)
		var got view
		decodeBody(t, resp, &got)
		return got.State == "succeeded" && strings.Contains(got.Result.Narrative, "Both are strong")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChatEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/chat/messages", map[string]string{"message": "hi"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.login(t, "rohan@student.edu", "student123")

	resp = f.do(t, http.MethodPost, "/api/chat/messages", map[string]string{"message": "how many jobs are open?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var turn map[string]string
	decodeBody(t, resp, &turn)
	require.Equal(t, "assistant", turn["role"])
	require.Equal(t, "We have 4 openings.", turn["text"])

	resp = f.do(t, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var transcript []map[string]string
	decodeBody(t, resp, &transcript)
	require.Len(t, transcript, 3)
	require.Contains(t, transcript[0]["text"], "Hi Rohan Mehta!")

	resp = f.do(t, http.MethodPost, "/api/chat/messages", map[string]string{"message": "   "})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatBusy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.chat.gate = make(chan struct{})
	f.login(t, "rohan@student.edu", "student123")

	first := make(chan int, 1)
	go func() {
		body, _ := json.Marshal(map[string]string{"message": "first"})
		req := httptest.NewRequest(http.MethodPost, "/api/chat/messages", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := f.server.App().Test(req, 5000)
		if err != nil {
			first <- 0
			return
		}
		first <- resp.StatusCode
	}()

	require.Eventually(t, func() bool {
		resp := f.do(t, http.MethodPost, "/api/chat/messages", map[string]string{"message": "second"})
		return resp.StatusCode == http.StatusConflict
	}, 2*time.Second, 10*time.Millisecond)

	close(f.chat.gate)
	require.Equal(t, http.StatusOK, <-first)
}

var errOracleDown = errors.New("model overloaded")

func TestRankingOracleFailureIsReportedViaView(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ranker.err = errOracleDown
	f.loginAdmin(t)
	f.submitApplication(t, 1, 2, "Go and SQL")

	resp := f.do(t, http.MethodPost, "/api/comparisons/jobs/1", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp := f.do(t, http.MethodGet, "/api/comparisons/jobs/1", nil)
		var got map[string]any
		decodeBody(t, resp, &got)
		state, _ := got["state"].(string)
		message, _ := got["error"].(string)
		return state == "failed" && strings.Contains(message, "An error occurred while analyzing resumes")
	}, 2*time.Second, 10*time.Millisecond)
}
