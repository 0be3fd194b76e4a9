package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

// Store implements domain.SessionStore and domain.MemoryStore on top of
// Firestore. Layout: sessions/{id} holds the session record plus the
// accumulated preferences; sessions/{id}/turns/{turnID} holds the history.
type Store struct {
	client   *firestore.Client
	maxTurns int
}

// NewStore creates a Firestore store.
// Uses the project passed (SOUSCHEF_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string, maxTurns int) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	if maxTurns <= 0 {
		maxTurns = 10
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, maxTurns: maxTurns}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDocRef(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) turnsCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDocRef(sessionID).Collection("turns")
}

// wrapErr keeps the transient error class visible to callers so the
// orchestration layer can tell retryable failures apart.
func wrapErr(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: firestore %s: %v", domain.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("firestore %s: %w", op, err)
	}
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	UserID      string          `firestore:"user_id"`
	Title       string          `firestore:"title"`
	CreatedAt   time.Time       `firestore:"created_at"`
	UpdatedAt   time.Time       `firestore:"updated_at"`
	Preferences *preferencesDoc `firestore:"preferences"`
}

type preferencesDoc struct {
	DietaryRestrictions []string `firestore:"dietary_restrictions"`
	Cuisine             string   `firestore:"cuisine"`
	MaxTimeMinutes      int      `firestore:"max_time_minutes"`
	MaxDifficulty       string   `firestore:"max_difficulty"`
}

type turnDoc struct {
	SessionID   string          `firestore:"session_id"`
	Utterance   string          `firestore:"utterance"`
	Response    string          `firestore:"response"`
	Invocations []invocationDoc `firestore:"invocations"`
	CreatedAt   time.Time       `firestore:"created_at"`
}

type invocationDoc struct {
	Tool   string         `firestore:"tool"`
	Args   map[string]any `firestore:"args"`
	Result map[string]any `firestore:"result"`
	Err    string         `firestore:"error"`
}

func toPreferencesDoc(p domain.PreferenceSet) *preferencesDoc {
	return &preferencesDoc{
		DietaryRestrictions: p.DietaryRestrictions,
		Cuisine:             p.Cuisine,
		MaxTimeMinutes:      p.MaxTimeMinutes,
		MaxDifficulty:       string(p.MaxDifficulty),
	}
}

func fromPreferencesDoc(d *preferencesDoc) domain.PreferenceSet {
	if d == nil {
		return domain.PreferenceSet{}
	}
	return domain.PreferenceSet{
		DietaryRestrictions: d.DietaryRestrictions,
		Cuisine:             d.Cuisine,
		MaxTimeMinutes:      d.MaxTimeMinutes,
		MaxDifficulty:       domain.Difficulty(d.MaxDifficulty),
	}
}

func toTurnDoc(t *domain.Turn) turnDoc {
	doc := turnDoc{
		SessionID: string(t.SessionID),
		Utterance: t.Utterance,
		Response:  t.Response,
		CreatedAt: t.CreatedAt,
	}
	for _, inv := range t.Invocations {
		doc.Invocations = append(doc.Invocations, invocationDoc{
			Tool:   inv.Tool,
			Args:   inv.Args,
			Result: inv.Result,
			Err:    inv.Err,
		})
	}
	return doc
}

func fromTurnDoc(id string, doc turnDoc) *domain.Turn {
	t := &domain.Turn{
		ID:        domain.TurnID(id),
		SessionID: domain.SessionID(doc.SessionID),
		Utterance: doc.Utterance,
		Response:  doc.Response,
		CreatedAt: doc.CreatedAt,
	}
	for _, inv := range doc.Invocations {
		t.Invocations = append(t.Invocations, domain.ToolInvocation{
			Tool:   inv.Tool,
			Args:   inv.Args,
			Result: inv.Result,
			Err:    inv.Err,
		})
	}
	return t
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		UserID:    string(session.UserID),
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}

	if _, err := s.sessionDocRef(session.ID).Create(ctx, doc); err != nil {
		return wrapErr("CreateSession", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	doc := map[string]interface{}{
		"user_id":    string(session.UserID),
		"title":      session.Title,
		"created_at": session.CreatedAt,
		"updated_at": session.UpdatedAt,
	}

	if _, err := s.sessionDocRef(session.ID).Set(ctx, doc, firestore.MergeAll); err != nil {
		return wrapErr("UpdateSession", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDocRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, wrapErr("GetSession", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return &domain.Session{
		ID:        id,
		UserID:    domain.UserID(doc.UserID),
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, wrapErr("ListSessionsByUser", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}

		out = append(out, &domain.Session{
			ID:        domain.SessionID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// MemoryStore implementation
// ─────────────────────────────────────────

func (s *Store) History(ctx context.Context, id domain.SessionID, limit int) ([]*domain.Turn, error) {
	if limit <= 0 || limit > s.maxTurns {
		limit = s.maxTurns
	}

	q := s.turnsCol(id).OrderBy("created_at", firestore.Desc).Limit(limit)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var newestFirst []*domain.Turn
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, wrapErr("History", err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode turnDoc: %w", err)
		}
		newestFirst = append(newestFirst, fromTurnDoc(snap.Ref.ID, doc))
	}

	// Callers expect oldest-first.
	out := make([]*domain.Turn, len(newestFirst))
	for i, t := range newestFirst {
		out[len(out)-1-i] = t
	}
	return out, nil
}

func (s *Store) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	if _, err := s.turnsCol(turn.SessionID).Doc(string(turn.ID)).Set(ctx, toTurnDoc(turn)); err != nil {
		return wrapErr("AppendTurn", err)
	}
	s.evictOldTurns(ctx, turn.SessionID)
	return nil
}

func (s *Store) Preferences(ctx context.Context, id domain.SessionID) (domain.PreferenceSet, error) {
	snap, err := s.sessionDocRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.PreferenceSet{}, nil
		}
		return domain.PreferenceSet{}, wrapErr("Preferences", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.PreferenceSet{}, fmt.Errorf("firestore Preferences decode: %w", err)
	}
	return fromPreferencesDoc(doc.Preferences), nil
}

func (s *Store) MergePreferences(ctx context.Context, id domain.SessionID, delta domain.PreferenceSet) error {
	current, err := s.Preferences(ctx, id)
	if err != nil {
		return err
	}
	merged := domain.MergePreferences(current, delta)

	_, err = s.sessionDocRef(id).Set(ctx, map[string]interface{}{
		"preferences": toPreferencesDoc(merged),
	}, firestore.MergeAll)
	if err != nil {
		return wrapErr("MergePreferences", err)
	}
	return nil
}

// CommitTurn writes the merged preferences and the turn in a single batch,
// so a partially processed turn never becomes visible. Turns within one
// session are serialized upstream, which makes the read-merge-write safe.
func (s *Store) CommitTurn(ctx context.Context, turn *domain.Turn, delta domain.PreferenceSet) error {
	current, err := s.Preferences(ctx, turn.SessionID)
	if err != nil {
		return err
	}
	merged := domain.MergePreferences(current, delta)

	batch := s.client.Batch()
	batch.Set(s.sessionDocRef(turn.SessionID), map[string]interface{}{
		"preferences": toPreferencesDoc(merged),
	}, firestore.MergeAll)
	batch.Set(s.turnsCol(turn.SessionID).Doc(string(turn.ID)), toTurnDoc(turn))

	if _, err := batch.Commit(ctx); err != nil {
		return wrapErr("CommitTurn", err)
	}

	s.evictOldTurns(ctx, turn.SessionID)
	return nil
}

func (s *Store) Reset(ctx context.Context, id domain.SessionID) error {
	iter := s.turnsCol(id).Documents(ctx)
	defer iter.Stop()

	batch := s.client.Batch()
	deletes := 0
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return wrapErr("Reset", err)
		}
		batch.Delete(snap.Ref)
		deletes++
	}

	batch.Set(s.sessionDocRef(id), map[string]interface{}{
		"preferences": firestore.Delete,
	}, firestore.MergeAll)

	if _, err := batch.Commit(ctx); err != nil {
		return wrapErr("Reset", err)
	}

	observability.LoggerFromContext(ctx).Info("session memory reset",
		"session_id", id,
		"turns_deleted", deletes,
	)
	return nil
}

// evictOldTurns deletes history beyond the bound. Best effort: reads stay
// correct regardless because History limits to maxTurns.
func (s *Store) evictOldTurns(ctx context.Context, id domain.SessionID) {
	iter := s.turnsCol(id).
		OrderBy("created_at", firestore.Desc).
		Offset(s.maxTurns).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if err != iterator.Done {
				observability.LoggerFromContext(ctx).Warn("turn eviction scan failed",
					"session_id", id,
					"error", err,
				)
			}
			return
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			observability.LoggerFromContext(ctx).Warn("turn eviction delete failed",
				"session_id", id,
				"error", err,
			)
			return
		}
	}
}
