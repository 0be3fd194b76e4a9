package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/souschef-agent/internal/domain"
)

// MemoryStore is the in-memory implementation of domain.MemoryStore. It is
// NOT persistent and is only suitable for development / local mode.
//
// History is bounded per session: appends beyond maxTurns evict the oldest
// turn first.
type MemoryStore struct {
	mu       sync.RWMutex
	maxTurns int
	turns    map[domain.SessionID][]*domain.Turn
	prefs    map[domain.SessionID]domain.PreferenceSet
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &MemoryStore{
		maxTurns: maxTurns,
		turns:    make(map[domain.SessionID][]*domain.Turn),
		prefs:    make(map[domain.SessionID]domain.PreferenceSet),
	}
}

// History returns up to limit most recent turns, oldest first. limit <= 0
// returns everything held.
func (s *MemoryStore) History(ctx context.Context, id domain.SessionID, limit int) ([]*domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[id]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]*domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(turn)
	return nil
}

func (s *MemoryStore) Preferences(ctx context.Context, id domain.SessionID) (domain.PreferenceSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.prefs[id], nil
}

func (s *MemoryStore) MergePreferences(ctx context.Context, id domain.SessionID, delta domain.PreferenceSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[id] = domain.MergePreferences(s.prefs[id], delta)
	return nil
}

// CommitTurn applies the preference merge and the history append under one
// lock acquisition, so a reader never observes one without the other.
func (s *MemoryStore) CommitTurn(ctx context.Context, turn *domain.Turn, delta domain.PreferenceSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[turn.SessionID] = domain.MergePreferences(s.prefs[turn.SessionID], delta)
	s.appendLocked(turn)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.turns, id)
	delete(s.prefs, id)
	return nil
}

func (s *MemoryStore) appendLocked(turn *domain.Turn) {
	turns := append(s.turns[turn.SessionID], turn)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[turn.SessionID] = turns
}
