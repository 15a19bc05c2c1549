package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"placement-portal/internal/ai"
	"placement-portal/internal/portal"
)

// Role is the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry. The transcript is append-only; turns are
// never reordered or mutated once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// State is the session lifecycle.
type State int

const (
	StateReady State = iota
	StateSending
	StateFailed
	StateClosed
)

var (
	// ErrBusy reports a send attempted while another is in flight.
	ErrBusy = errors.New("a message is already being processed")
	// ErrUnavailable reports a send against a failed or closed session.
	ErrUnavailable = errors.New("the assistant is not available")
)

const (
	initFailedMessage = "Sorry, the AI assistant could not be initialized."
	sendFailedMessage = "Sorry, I encountered an error. Please try again."
)

// Manager owns one conversational session with the oracle, bound to a
// single actor. It serializes sends so the transcript order is exactly the
// call order, and appends exactly one assistant turn per accepted send.
// Create one per login; Close it on logout or actor switch.
type Manager struct {
	id     string
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	transcript []Turn
	conv       ai.Conversation
}

// NewManager opens a session for the actor over the provided job corpus.
// Initialization failures do not return an error: the manager comes back in
// the Failed state with a fallback message in the transcript, and all
// subsequent sends are inert.
func NewManager(ctx context.Context, starter ai.ConversationStarter, actor *portal.User, jobs []*portal.Job, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{id: uuid.NewString()}
	m.logger = logger.With(zap.String("chat_session", m.id))

	instruction, err := systemInstruction(actor, jobs)
	if err == nil {
		m.conv, err = starter.StartConversation(ctx, instruction)
	}
	if err != nil {
		m.logger.Warn("assistant initialization failed", zap.Error(err))
		m.state = StateFailed
		m.transcript = []Turn{{Role: RoleAssistant, Text: initFailedMessage}}
		return m
	}

	m.state = StateReady
	m.transcript = []Turn{{
		Role: RoleAssistant,
		Text: fmt.Sprintf("Hi %s! I'm your AI assistant. How can I help you with your job search today?", actor.Name),
	}}

	return m
}

// ID returns the session identifier.
func (m *Manager) ID() string {
	return m.id
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Send submits a user message and returns the resulting assistant turn.
// While a send is in flight any further Send returns ErrBusy without
// touching the transcript. An accepted send appends the user turn
// immediately and always yields exactly one assistant turn, substituting an
// apologetic fallback when the oracle call fails.
func (m *Manager) Send(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, errors.New("message must not be empty")
	}

	m.mu.Lock()
	switch m.state {
	case StateFailed, StateClosed:
		m.mu.Unlock()
		return Turn{}, ErrUnavailable
	case StateSending:
		m.mu.Unlock()
		return Turn{}, ErrBusy
	}
	m.state = StateSending
	m.transcript = append(m.transcript, Turn{Role: RoleUser, Text: text})
	conv := m.conv
	m.mu.Unlock()

	reply, err := conv.Send(ctx, text)

	turn := Turn{Role: RoleAssistant, Text: reply}
	if err != nil {
		m.logger.Warn("assistant reply failed", zap.Error(err))
		turn.Text = sendFailedMessage
	}

	m.mu.Lock()
	m.transcript = append(m.transcript, turn)
	if m.state == StateSending {
		m.state = StateReady
	}
	m.mu.Unlock()

	return turn, nil
}

// Transcript returns a copy of the conversation so far.
func (m *Manager) Transcript() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Turn(nil), m.transcript...)
}

// Close tears the session down. Further sends return ErrUnavailable.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateClosed
	m.conv = nil
}

// systemInstruction builds the corpus-bound instruction for the oracle:
// the assistant may answer only from the serialized job listings.
func systemInstruction(actor *portal.User, jobs []*portal.Job) (string, error) {
	if actor == nil {
		return "", errors.New("actor is required")
	}

	type listing struct {
		ID           int      `json:"id"`
		Title        string   `json:"title"`
		Company      string   `json:"company"`
		Location     string   `json:"location"`
		Type         string   `json:"type"`
		Description  string   `json:"description"`
		Requirements []string `json:"requirements"`
	}

	listings := make([]listing, 0, len(jobs))
	for _, j := range jobs {
		listings = append(listings, listing{
			ID:           j.ID,
			Title:        j.Title,
			Company:      j.Company,
			Location:     j.Location,
			Type:         j.Type,
			Description:  j.Description,
			Requirements: j.Requirements,
		})
	}

	corpus, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job corpus: %w", err)
	}

	return fmt.Sprintf("You are a helpful AI assistant for a university's Placement Portal. "+
		"Your primary role is to answer questions about available job openings based ONLY on the provided JSON data. "+
		"Do not invent information or provide details not present in the data. Be friendly and concise. "+
		"Current user is %s (%s). Here is the list of available jobs: \n%s",
		actor.Name, actor.Role, corpus), nil
}
