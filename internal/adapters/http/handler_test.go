package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/PabloGalante/souschef-agent/internal/adapters/http"
	"github.com/PabloGalante/souschef-agent/internal/adapters/llm"
	"github.com/PabloGalante/souschef-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/souschef-agent/internal/app/agentflow"
	"github.com/PabloGalante/souschef-agent/internal/app/conversation"
	"github.com/PabloGalante/souschef-agent/internal/app/tools"
)

func newTestServer(t *testing.T) http.Handler {
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

	svc := conversation.NewService(orch, memory.NewSessionStore(), memoryStore)
	return httpadapter.NewServer(svc)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func createSession(t *testing.T, srv http.Handler) string {
	t.Helper()

	body := bytes.NewBufferString(`{"user_id": "u1", "title": "Dinner plans"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("expected session id in response")
	}
	return resp.ID
}

func TestCreateSessionAndSendMessage(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	body := bytes.NewBufferString(`{"text": "I have salmon, lemon, and asparagus"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", body)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var turn struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if turn.Response == "" {
		t.Fatalf("expected non-empty agent response")
	}
}

func TestSendMessageValidation(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages",
		bytes.NewBufferString(`{"text": ""}`))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/nope/messages",
		bytes.NewBufferString(`{"text": "hello"}`))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetPreferencesAfterMessage(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages",
		bytes.NewBufferString(`{"text": "I'm vegan and I love thai food"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/preferences", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var prefs struct {
		DietaryRestrictions []string `json:"dietary_restrictions"`
		Cuisine             string   `json:"cuisine"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(prefs.DietaryRestrictions) != 1 || prefs.DietaryRestrictions[0] != "vegan" {
		t.Fatalf("expected vegan restriction, got %v", prefs.DietaryRestrictions)
	}
	if prefs.Cuisine != "thai" {
		t.Fatalf("expected thai cuisine, got %q", prefs.Cuisine)
	}
}

func TestResetMemoryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+id+"/memory", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header on response")
	}
}
