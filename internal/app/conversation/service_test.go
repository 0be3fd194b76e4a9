package conversation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/PabloGalante/souschef-agent/internal/adapters/llm"
	"github.com/PabloGalante/souschef-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/souschef-agent/internal/app/agentflow"
	"github.com/PabloGalante/souschef-agent/internal/app/conversation"
	"github.com/PabloGalante/souschef-agent/internal/app/tools"
	"github.com/PabloGalante/souschef-agent/internal/domain"
)

func newTestService(t *testing.T) *conversation.Service {
	t.Helper()

	completions := llm.NewMockClient()
	extractor := tools.NewExtractor(completions)

	registry := tools.NewRegistry()
	if err := registry.Register(extractor); err != nil {
		t.Fatalf("registering extractor: %v", err)
	}

	memoryStore := memory.NewMemoryStore(10)

	orch, err := agentflow.New("function_calling", agentflow.Deps{
		Completions: completions,
		Registry:    registry,
		Memory:      memoryStore,
		Extractor:   extractor,
	})
	if err != nil {
		t.Fatalf("building orchestrator: %v", err)
	}

	return conversation.NewService(orch, memory.NewSessionStore(), memoryStore)
}

func TestStartSessionAndSendMessage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.StartSession(ctx, conversation.StartSessionInput{
		UserID: domain.UserID("test-user"),
		Title:  "Test session",
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if session.ID == "" {
		t.Fatalf("expected session id, got empty")
	}

	turn, err := svc.SendMessage(ctx, conversation.SendMessageInput{
		SessionID: session.ID,
		Utterance: "Hi SousChef",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if turn.Response == "" {
		t.Fatalf("expected non-empty agent response")
	}

	turns, err := svc.History(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn in history, got %d", len(turns))
	}
}

func TestStartSessionRequiresUserID(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.StartSession(context.Background(), conversation.StartSessionInput{}); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := svc.SendMessage(ctx, conversation.SendMessageInput{
		SessionID: session.ID,
		Utterance: "   ",
	}); err == nil {
		t.Fatalf("expected error for empty utterance")
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: "missing",
		Utterance: "hello",
	})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestResetMemoryClearsState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := svc.SendMessage(ctx, conversation.SendMessageInput{
		SessionID: session.ID,
		Utterance: "I'm vegan and I love thai food",
	}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if err := svc.ResetMemory(ctx, session.ID); err != nil {
		t.Fatalf("ResetMemory failed: %v", err)
	}

	prefs, err := svc.Preferences(ctx, session.ID)
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	if !prefs.IsEmpty() {
		t.Fatalf("expected empty preferences after reset, got %+v", prefs)
	}

	turns, err := svc.History(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d turns", len(turns))
	}
}
