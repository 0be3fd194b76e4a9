package domain

import "context"

// ToolParam describes one parameter of a tool schema.
type ToolParam struct {
	Name        string
	Type        string // "string", "integer", "array"
	Description string
	Required    bool
	Enum        []string
	Items       string // element type when Type is "array"
}

// ToolSchema is the self-describing contract a tool advertises to the
// completion service.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  []ToolParam
}

// ToolCall is a structured tool-call request returned by the completion
// service.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolOutcome is the payload fed back to the completion service for one
// executed (or failed) tool call.
type ToolOutcome struct {
	ID      string
	Name    string
	Payload map[string]any
}

// ChatMessage is one entry of the in-flight model context. Exactly one of
// Text, ToolCalls or ToolOutcomes is meaningful depending on Role: user
// messages carry text, agent messages carry text and/or requested tool
// calls, tool messages carry outcomes.
type ChatMessage struct {
	Role         Role
	Text         string
	ToolCalls    []ToolCall
	ToolOutcomes []ToolOutcome
}

// CompletionRequest is the opaque request contract against the hosted
// completion service: instructions, bounded history plus in-flight turn
// transcript, advertised tools, in that message order.
type CompletionRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolSchema
}

// CompletionResponse is either free text or a batch of tool-call requests.
// When both are present, tool calls take priority.
type CompletionResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// CompletionClient defines how the core talks to the hosted language model.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	ListSessionsByUser(ctx context.Context, userID UserID, limit int) ([]*Session, error)
}

// MemoryStore holds the bounded conversation history and accumulated
// preferences for each session.
//
// CommitTurn merges the preference delta and appends the turn as a single
// atomic mutation; a turn abandoned before CommitTurn leaves no trace.
type MemoryStore interface {
	History(ctx context.Context, id SessionID, limit int) ([]*Turn, error)
	AppendTurn(ctx context.Context, turn *Turn) error
	Preferences(ctx context.Context, id SessionID) (PreferenceSet, error)
	MergePreferences(ctx context.Context, id SessionID, delta PreferenceSet) error
	CommitTurn(ctx context.Context, turn *Turn, delta PreferenceSet) error
	Reset(ctx context.Context, id SessionID) error
}
