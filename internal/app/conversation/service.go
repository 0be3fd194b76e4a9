package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/souschef-agent/internal/app/agentflow"
	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

// Service is the application boundary for conversations: session
// lifecycle, message turns, memory queries. Turns within one session are
// serialized so a turn never starts before the previous one has committed.
type Service struct {
	orchestrator agentflow.Orchestrator
	sessions     domain.SessionStore
	memory       domain.MemoryStore
	now          func() time.Time
	newID        func() string

	mu          sync.Mutex
	sessionLock map[domain.SessionID]*sync.Mutex
}

func NewService(
	orchestrator agentflow.Orchestrator,
	sessions domain.SessionStore,
	memory domain.MemoryStore,
) *Service {
	return &Service{
		orchestrator: orchestrator,
		sessions:     sessions,
		memory:       memory,
		now:          time.Now,
		newID:        uuid.NewString,
		sessionLock:  make(map[domain.SessionID]*sync.Mutex),
	}
}

type StartSessionInput struct {
	UserID domain.UserID
	Title  string
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*domain.Session, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("start session: missing user id")
	}

	now := s.now()
	session := &domain.Session{
		ID:        domain.SessionID(s.newID()),
		UserID:    in.UserID,
		Title:     strings.TrimSpace(in.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.Title == "" {
		session.Title = "Cooking chat"
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("session started",
		"session_id", session.ID,
		"user_id", session.UserID,
	)
	return session, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	Utterance string
}

// SendMessage runs one turn through the orchestrator and bumps the
// session's UpdatedAt on success.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*domain.Turn, error) {
	utterance := strings.TrimSpace(in.Utterance)
	if utterance == "" {
		return nil, fmt.Errorf("send message: empty utterance")
	}

	session, err := s.sessions.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	lock := s.lockFor(session.ID)
	lock.Lock()
	defer lock.Unlock()

	turn, err := s.orchestrator.ProcessTurn(ctx, session, utterance)
	if err != nil {
		return nil, err
	}

	session.UpdatedAt = s.now()
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		observability.LoggerFromContext(ctx).Warn("session timestamp update failed",
			"session_id", session.ID,
			"error", err,
		)
	}

	return turn, nil
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return s.sessions.GetSession(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	return s.sessions.ListSessionsByUser(ctx, userID, limit)
}

// History returns up to limit most recent turns, oldest first.
func (s *Service) History(ctx context.Context, id domain.SessionID, limit int) ([]*domain.Turn, error) {
	if _, err := s.sessions.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return s.memory.History(ctx, id, limit)
}

func (s *Service) Preferences(ctx context.Context, id domain.SessionID) (domain.PreferenceSet, error) {
	if _, err := s.sessions.GetSession(ctx, id); err != nil {
		return domain.PreferenceSet{}, err
	}
	return s.memory.Preferences(ctx, id)
}

// ResetMemory clears the session's history and preferences. The session
// itself survives.
func (s *Service) ResetMemory(ctx context.Context, id domain.SessionID) error {
	if _, err := s.sessions.GetSession(ctx, id); err != nil {
		return err
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.memory.Reset(ctx, id); err != nil {
		return fmt.Errorf("reset memory: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("memory reset", "session_id", id)
	return nil
}

func (s *Service) lockFor(id domain.SessionID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sessionLock[id]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLock[id] = lock
	}
	return lock
}
