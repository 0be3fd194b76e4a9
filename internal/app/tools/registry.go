package tools

import (
	"fmt"

	"github.com/PabloGalante/souschef-agent/internal/domain"
)

// Registry holds the tools the agent may dispatch to. Registration order is
// preserved so the schemas advertised to the completion service are stable
// across runs.
type Registry struct {
	byName  map[string]Tool
	ordered []Tool
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Tool),
	}
}

// Register adds a tool. It rejects empty names, duplicate names and schemas
// whose name does not match the tool's.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("register tool: empty name")
	}
	schema := t.Schema()
	if schema.Name != name {
		return fmt.Errorf("register tool %q: schema name %q does not match", name, schema.Name)
	}
	if schema.Description == "" {
		return fmt.Errorf("register tool %q: schema has no description", name)
	}
	for _, p := range schema.Parameters {
		if p.Name == "" || p.Type == "" {
			return fmt.Errorf("register tool %q: malformed parameter schema", name)
		}
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("register tool %q: already registered", name)
	}
	r.byName[name] = t
	r.ordered = append(r.ordered, t)
	return nil
}

// Resolve returns the tool with the given name, or ErrUnknownTool.
func (r *Registry) Resolve(name string) (Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t, nil
}

// Schemas returns all tool schemas in registration order.
func (r *Registry) Schemas() []domain.ToolSchema {
	out := make([]domain.ToolSchema, 0, len(r.ordered))
	for _, t := range r.ordered {
		out = append(out, t.Schema())
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ordered))
	for _, t := range r.ordered {
		out = append(out, t.Name())
	}
	return out
}

// ValidateInput checks the input map against the schema: required
// parameters must be present, present parameters must have the declared
// type. Unknown keys are ignored.
func ValidateInput(schema domain.ToolSchema, input map[string]any) error {
	for _, p := range schema.Parameters {
		raw, present := input[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("%w: missing required parameter %q", ErrBadArgument, p.Name)
			}
			continue
		}
		if raw == nil {
			continue
		}
		switch p.Type {
		case "string":
			if _, ok := raw.(string); !ok {
				return fmt.Errorf("%w: parameter %q must be a string", ErrBadArgument, p.Name)
			}
		case "integer":
			switch raw.(type) {
			case int, int64, float64:
			default:
				return fmt.Errorf("%w: parameter %q must be an integer", ErrBadArgument, p.Name)
			}
		case "array":
			switch raw.(type) {
			case []any, []string:
			default:
				return fmt.Errorf("%w: parameter %q must be an array", ErrBadArgument, p.Name)
			}
		}
	}
	return nil
}
