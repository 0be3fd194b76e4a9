package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/souschef-agent/internal/app/tools"
	"github.com/PabloGalante/souschef-agent/internal/domain"
)

// Orchestrator drives one full turn: decide whether tools are needed, run
// them, synthesize the final response and commit the turn to memory.
type Orchestrator interface {
	ProcessTurn(ctx context.Context, session *domain.Session, utterance string) (*domain.Turn, error)
}

// Deps are the collaborators every orchestrator kind needs.
type Deps struct {
	Completions domain.CompletionClient
	Registry    *tools.Registry
	Memory      domain.MemoryStore
	Extractor   *tools.Extractor

	MaxToolRounds   int
	MaxHistoryTurns int

	Now   func() time.Time
	NewID func() string
}

// New builds the orchestrator for the given kind. Only "function_calling"
// exists today; the kind switch leaves room for planner-style backends.
func New(kind string, deps Deps) (Orchestrator, error) {
	switch kind {
	case "", "function_calling":
		return NewFunctionCalling(deps), nil
	default:
		return nil, fmt.Errorf("unknown orchestrator kind %q", kind)
	}
}
