package tools

import (
	"context"

	"github.com/PabloGalante/souschef-agent/internal/domain"
)

// ToolContext brings metadata of the call to the tool
type ToolContext struct {
	UserID    string
	SessionID string
	RequestID string
}

// Tool represents a tool the agent can invoke. Schema describes the tool
// to the completion service; input/output is a generic map to maintain
// flexibility across tools.
type Tool interface {
	Name() string
	Schema() domain.ToolSchema
	Call(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error)
}

// --- shared input helpers --- //

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

