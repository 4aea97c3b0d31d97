package rebuttal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"
	"market-sim-orchestrator/internal/pkg/logger"
	"market-sim-orchestrator/internal/repository/memory"
	"market-sim-orchestrator/pkg/research"

	"github.com/google/uuid"
)

var (
	ErrMissingContext     = errors.New("persona id and simulation id are required")
	ErrNoQuestionSelected = errors.New("no question selected")
	ErrUnknownQuestion    = errors.New("question is not in the rebuttal catalog")
	ErrSessionExists      = errors.New("a rebuttal session already exists for this question")
	ErrNoActiveSession    = errors.New("no active rebuttal session")
)

// rebuttalAPI is the slice of the research client the manager uses.
type rebuttalAPI interface {
	ListRebuttalQuestions(ctx context.Context, scope research.Scope, req *dto.RebuttalQuestionsRequest) ([]model.Question, error)
	StartRebuttal(ctx context.Context, scope research.Scope, req *dto.StartRebuttalRequest) (*model.RebuttalSession, error)
	SendRebuttalReply(ctx context.Context, scope research.Scope, req *dto.RebuttalReplyRequest) (*dto.RebuttalReplyResponse, error)
	GetRebuttalSession(ctx context.Context, scope research.Scope, sessionId string) (*model.RebuttalSession, error)
	ListRebuttalSessions(ctx context.Context, scope research.Scope) ([]model.RebuttalSession, error)
	EndExploration(ctx context.Context, scope research.Scope) error
}

// Manager catalogs rebuttal-eligible questions and runs chat-style sessions
// per (persona, question) pair. User messages are appended optimistically;
// server history is authoritative and reconciled by id-based merge, so a
// refetch never erases an unacknowledged local message.
type Manager struct {
	api   rebuttalAPI
	cache *memory.SnapshotStore
	log   logger.ILogger
	scope research.Scope

	personaId          string
	simulationId       string
	surveySimulationId string

	mu               sync.Mutex
	catalog          []model.Question
	sessions         []model.RebuttalSession
	selectedQuestion *model.Question
	activeSessionId  string
	messages         []model.ChatMessage
	fetchSeq         uint64
	appliedSeq       uint64
}

func NewManager(
	api rebuttalAPI,
	cache *memory.SnapshotStore,
	log logger.ILogger,
	scope research.Scope,
	personaId, simulationId, surveySimulationId string,
) *Manager {
	return &Manager{
		api:                api,
		cache:              cache,
		log:                log,
		scope:              scope,
		personaId:          personaId,
		simulationId:       simulationId,
		surveySimulationId: surveySimulationId,
	}
}

// Activate loads the question catalog and the existing session list. Both
// reads go through the snapshot cache keyed by scope tuple.
func (m *Manager) Activate(ctx context.Context) error {
	catalog, err := m.loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load rebuttal catalog: %w", err)
	}
	sessions, err := m.loadSessions(ctx)
	if err != nil {
		return fmt.Errorf("load rebuttal sessions: %w", err)
	}

	m.mu.Lock()
	m.catalog = catalog
	m.sessions = sessions
	m.mu.Unlock()
	return nil
}

func (m *Manager) catalogKey() string {
	return memory.Key(m.scope.WorkspaceId, m.scope.ExplorationId, m.simulationId, m.surveySimulationId, "rebuttal-questions")
}

func (m *Manager) sessionsKey() string {
	return memory.Key(m.scope.WorkspaceId, m.scope.ExplorationId, "rebuttal-sessions")
}

func (m *Manager) loadCatalog(ctx context.Context) ([]model.Question, error) {
	if cached, ok := m.cache.Get(m.catalogKey()); ok {
		return cached.([]model.Question), nil
	}
	catalog, err := m.api.ListRebuttalQuestions(ctx, m.scope, &dto.RebuttalQuestionsRequest{
		SimulationId:       m.simulationId,
		SurveySimulationId: m.surveySimulationId,
	})
	if err != nil {
		return nil, err
	}
	m.cache.Set(m.catalogKey(), catalog)
	return catalog, nil
}

func (m *Manager) loadSessions(ctx context.Context) ([]model.RebuttalSession, error) {
	if cached, ok := m.cache.Get(m.sessionsKey()); ok {
		return cached.([]model.RebuttalSession), nil
	}
	sessions, err := m.api.ListRebuttalSessions(ctx, m.scope)
	if err != nil {
		return nil, err
	}
	m.cache.Set(m.sessionsKey(), sessions)
	return sessions, nil
}

// SelectQuestion enters new-session mode for a catalog question.
func (m *Manager) SelectQuestion(questionId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.catalog {
		if m.catalog[i].Id == questionId {
			m.selectedQuestion = &m.catalog[i]
			m.activeSessionId = ""
			m.messages = nil
			return nil
		}
	}
	return ErrUnknownQuestion
}

// SelectSession enters existing-session mode and hydrates the message list
// from the server-authoritative session detail.
func (m *Manager) SelectSession(ctx context.Context, sessionId string) error {
	session, err := m.api.GetRebuttalSession(ctx, m.scope, sessionId)
	if err != nil {
		return fmt.Errorf("load rebuttal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSessionId = session.Id
	m.messages = hydrateMessages(session)
	m.selectedQuestion = nil
	for i := range m.catalog {
		if m.catalog[i].Id == session.QuestionId {
			m.selectedQuestion = &m.catalog[i]
			break
		}
	}
	return nil
}

// StartRebuttal opens a session for the selected question. Rejected
// client-side, with zero network calls, when the (persona, question) pair
// already has a session.
func (m *Manager) StartRebuttal(ctx context.Context) error {
	m.mu.Lock()
	if m.personaId == "" || m.simulationId == "" {
		m.mu.Unlock()
		return ErrMissingContext
	}
	if m.selectedQuestion == nil {
		m.mu.Unlock()
		return ErrNoQuestionSelected
	}
	if m.activeSessionId != "" {
		m.mu.Unlock()
		return ErrSessionExists
	}
	questionId := m.selectedQuestion.Id
	for _, s := range m.sessions {
		if s.QuestionId == questionId && s.PersonaId == m.personaId {
			m.mu.Unlock()
			return ErrSessionExists
		}
	}
	m.mu.Unlock()

	session, err := m.api.StartRebuttal(ctx, m.scope, &dto.StartRebuttalRequest{
		PersonaId:    m.personaId,
		SimulationId: m.simulationId,
		QuestionId:   questionId,
	})
	if err != nil {
		return fmt.Errorf("start rebuttal: %w", err)
	}

	m.mu.Lock()
	m.activeSessionId = session.Id
	m.messages = hydrateMessages(session)
	m.sessions = append(m.sessions, *session)
	m.mu.Unlock()

	m.cache.Invalidate(m.sessionsKey())
	return nil
}

// SendReply appends one optimistic user message, posts it, and on success
// appends the assistant's answer before refreshing the session detail and
// list. On failure the optimistic message is rolled back and the error
// surfaced for retry.
func (m *Manager) SendReply(ctx context.Context, text string) error {
	m.mu.Lock()
	if m.activeSessionId == "" {
		m.mu.Unlock()
		return ErrNoActiveSession
	}
	sessionId := m.activeSessionId
	optimistic := model.ChatMessage{
		Id:        uuid.New(),
		Sender:    model.SenderUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
	m.messages = append(m.messages, optimistic)
	m.mu.Unlock()

	resp, err := m.api.SendRebuttalReply(ctx, m.scope, &dto.RebuttalReplyRequest{
		SessionId:   sessionId,
		UserMessage: text,
	})
	if err != nil {
		m.removeMessage(optimistic.Id)
		m.log.Error("rebuttal-manager", "reply failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionId,
		})
		return fmt.Errorf("send reply: %w", err)
	}

	assistantMsg := model.ChatMessage{
		Id:        uuid.New(),
		Sender:    model.SenderAssistant,
		Text:      resp.Message,
		CreatedAt: time.Now(),
	}
	if len(resp.Explainers) > 0 {
		assistantMsg.Metadata = map[string]interface{}{"explainers": resp.Explainers}
	}

	m.mu.Lock()
	m.messages = append(m.messages, assistantMsg)
	m.mu.Unlock()

	m.refreshSession(ctx, sessionId)
	m.refreshSessions(ctx)
	return nil
}

// refreshSession refetches the session detail and merges it into the local
// list. Snapshots are applied in issue order; a slower earlier fetch that
// lands after a newer one is dropped instead of overwriting it.
func (m *Manager) refreshSession(ctx context.Context, sessionId string) {
	m.mu.Lock()
	m.fetchSeq++
	seq := m.fetchSeq
	m.mu.Unlock()

	session, err := m.api.GetRebuttalSession(ctx, m.scope, sessionId)
	if err != nil {
		m.log.Warn("rebuttal-manager", "session refresh failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionId,
		})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeSessionId != sessionId {
		return
	}
	if seq < m.appliedSeq {
		return
	}
	m.appliedSeq = seq
	m.messages = mergeMessages(m.messages, hydrateMessages(session))
}

func (m *Manager) refreshSessions(ctx context.Context) {
	m.cache.Invalidate(m.sessionsKey())
	sessions, err := m.loadSessions(ctx)
	if err != nil {
		m.log.Warn("rebuttal-manager", "session list refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	m.mu.Lock()
	m.sessions = sessions
	m.mu.Unlock()
}

func (m *Manager) removeMessage(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.messages {
		if msg.Id == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return
		}
	}
}

// EndExploration is best-effort: the backend call may fail, the session list
// snapshot is invalidated either way, and navigation proceeds regardless.
func (m *Manager) EndExploration(ctx context.Context) {
	if err := m.api.EndExploration(ctx, m.scope); err != nil {
		m.log.Warn("rebuttal-manager", "end exploration failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	m.cache.Invalidate(m.sessionsKey())
}

// Messages returns a snapshot of the active session's message list.
func (m *Manager) Messages() []model.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Sessions returns a snapshot of the known session list.
func (m *Manager) Sessions() []model.RebuttalSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RebuttalSession, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Catalog returns the rebuttal-eligible question list.
func (m *Manager) Catalog() []model.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Question, len(m.catalog))
	copy(out, m.catalog)
	return out
}

func (m *Manager) ActiveSessionId() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeSessionId
}
