package agentflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/souschef-agent/internal/app/tools"
	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

const apologyResponse = "I'm sorry, I'm having trouble reaching my cooking brain right now. Please try again in a moment."

// FunctionCalling is the default orchestrator. It relies on the completion
// service's native tool calling: each round advertises the registered tool
// schemas, executes whatever calls come back, feeds the outcomes into the
// next round, and stops when the model answers in plain text or the round
// cap is hit.
type FunctionCalling struct {
	completions domain.CompletionClient
	registry    *tools.Registry
	memory      domain.MemoryStore
	extractor   *tools.Extractor

	maxToolRounds   int
	maxHistoryTurns int

	now   func() time.Time
	newID func() string
}

func NewFunctionCalling(deps Deps) *FunctionCalling {
	o := &FunctionCalling{
		completions:     deps.Completions,
		registry:        deps.Registry,
		memory:          deps.Memory,
		extractor:       deps.Extractor,
		maxToolRounds:   deps.MaxToolRounds,
		maxHistoryTurns: deps.MaxHistoryTurns,
		now:             deps.Now,
		newID:           deps.NewID,
	}
	if o.maxToolRounds <= 0 {
		o.maxToolRounds = 3
	}
	if o.maxHistoryTurns <= 0 {
		o.maxHistoryTurns = 10
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o
}

// ProcessTurn runs one full turn for the session. The turn's memory
// mutation happens once, at the end; a turn abandoned mid-flight (context
// cancellation) commits nothing.
func (o *FunctionCalling) ProcessTurn(
	ctx context.Context,
	session *domain.Session,
	utterance string,
) (*domain.Turn, error) {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"user_id", session.UserID,
	)
	log.Info("turn started")

	prefs, err := o.memory.Preferences(ctx, session.ID)
	if err != nil {
		log.Warn("loading preferences failed, continuing without", "error", err)
		prefs = domain.PreferenceSet{}
	}

	history, err := o.memory.History(ctx, session.ID, o.maxHistoryTurns)
	if err != nil {
		log.Warn("loading history failed, continuing without", "error", err)
		history = nil
	}

	messages := historyMessages(history)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Text: utterance})

	system := BuildSystemPrompt(prefs)
	schemas := o.registry.Schemas()

	var (
		invocations []domain.ToolInvocation
		finalText   string
	)

	for round := 0; round < o.maxToolRounds; round++ {
		resp, err := o.completions.Complete(ctx, domain.CompletionRequest{
			System:   system,
			Messages: messages,
			Tools:    schemas,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error("completion failed, degrading to apology", "error", err, "round", round)
			return o.commitTurn(ctx, log, session, utterance, apologyResponse, nil)
		}

		// Tool calls take priority over any accompanying text.
		if len(resp.ToolCalls) == 0 {
			finalText = resp.Text
			break
		}

		log.Info("tool calls requested", "round", round, "count", len(resp.ToolCalls))

		messages = append(messages, domain.ChatMessage{
			Role:      domain.RoleAgent,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		outcomes := make([]domain.ToolOutcome, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			inv, outcome := o.dispatch(ctx, log, session, call)
			invocations = append(invocations, inv)
			outcomes = append(outcomes, outcome)
		}

		messages = append(messages, domain.ChatMessage{
			Role:         domain.RoleTool,
			ToolOutcomes: outcomes,
		})
	}

	if finalText == "" {
		// Round cap reached. Not a failure: force a final synthesis from
		// whatever tool results exist, with no tools on offer.
		log.Info("tool round cap reached, forcing synthesis", "max_rounds", o.maxToolRounds)
		resp, err := o.completions.Complete(ctx, domain.CompletionRequest{
			System:   system,
			Messages: messages,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error("forced synthesis failed, degrading to apology", "error", err)
			return o.commitTurn(ctx, log, session, utterance, apologyResponse, nil)
		}
		finalText = resp.Text
	}
	if finalText == "" {
		finalText = apologyResponse
	}

	return o.commitTurn(ctx, log, session, utterance, finalText, invocations)
}

// dispatch resolves, validates and runs one tool call. Failures never abort
// the turn: they become an error payload the model sees on the next round.
func (o *FunctionCalling) dispatch(
	ctx context.Context,
	log *slog.Logger,
	session *domain.Session,
	call domain.ToolCall,
) (domain.ToolInvocation, domain.ToolOutcome) {
	inv := domain.ToolInvocation{Tool: call.Name, Args: call.Args}
	outcome := domain.ToolOutcome{ID: call.ID, Name: call.Name}

	tool, err := o.registry.Resolve(call.Name)
	if err != nil {
		log.Warn("tool resolution failed", "tool", call.Name, "error", err)
		inv.Err = err.Error()
		outcome.Payload = errorPayload(err)
		return inv, outcome
	}

	if err := tools.ValidateInput(tool.Schema(), call.Args); err != nil {
		log.Warn("tool arguments rejected", "tool", call.Name, "error", err)
		inv.Err = err.Error()
		outcome.Payload = errorPayload(err)
		return inv, outcome
	}

	tctx := tools.ToolContext{
		UserID:    string(session.UserID),
		SessionID: string(session.ID),
		RequestID: observability.RequestID(ctx),
	}

	result, err := tool.Call(ctx, tctx, call.Args)
	if err != nil {
		log.Warn("tool execution failed", "tool", call.Name, "error", err)
		inv.Err = err.Error()
		outcome.Payload = errorPayload(err)
		return inv, outcome
	}

	log.Info("tool executed", "tool", call.Name)
	inv.Result = result
	outcome.Payload = result
	return inv, outcome
}

// commitTurn extracts the preference delta, builds the turn record and
// commits both atomically.
func (o *FunctionCalling) commitTurn(
	ctx context.Context,
	log *slog.Logger,
	session *domain.Session,
	utterance, response string,
	invocations []domain.ToolInvocation,
) (*domain.Turn, error) {
	extraction := o.extractor.Extract(ctx, utterance)
	delta := tools.PreferenceDelta(utterance, extraction)

	turn := &domain.Turn{
		ID:          domain.TurnID(o.newID()),
		SessionID:   session.ID,
		Utterance:   utterance,
		Response:    response,
		Invocations: invocations,
		CreatedAt:   o.now(),
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := o.memory.CommitTurn(ctx, turn, delta); err != nil {
		return nil, fmt.Errorf("commit turn: %w", err)
	}

	log.Info("turn committed",
		"turn_id", turn.ID,
		"invocations", len(turn.Invocations),
		"response_len", len(turn.Response),
		"preference_delta", !delta.IsEmpty(),
	)
	return turn, nil
}

// historyMessages flattens stored turns into the model context,
// most-recent-last. Tool detail from past turns is not replayed; the
// model sees only what was said.
func historyMessages(history []*domain.Turn) []domain.ChatMessage {
	var out []domain.ChatMessage
	for _, t := range history {
		out = append(out, domain.ChatMessage{Role: domain.RoleUser, Text: t.Utterance})
		out = append(out, domain.ChatMessage{Role: domain.RoleAgent, Text: t.Response})
	}
	return out
}

func errorPayload(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
