package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/souschef-agent/internal/app/tools"
	"github.com/PabloGalante/souschef-agent/internal/domain"
)

type fakeTool struct {
	name   string
	schema domain.ToolSchema
}

func (f *fakeTool) Name() string              { return f.name }
func (f *fakeTool) Schema() domain.ToolSchema { return f.schema }
func (f *fakeTool) Call(ctx context.Context, tctx tools.ToolContext, input map[string]any) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

func newFakeTool(name string) *fakeTool {
	return &fakeTool{name: name, schema: domain.ToolSchema{Name: name, Description: "a " + name + " tool"}}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(newFakeTool("alpha")))
	require.NoError(t, r.Register(newFakeTool("beta")))

	tool, err := r.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", tool.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(newFakeTool("alpha")))

	err := r.Register(newFakeTool("alpha"))
	assert.Error(t, err)
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	r := tools.NewRegistry()
	assert.Error(t, r.Register(newFakeTool("")))
}

func TestRegistryRejectsMismatchedSchemaName(t *testing.T) {
	r := tools.NewRegistry()
	err := r.Register(&fakeTool{name: "alpha", schema: domain.ToolSchema{Name: "beta"}})
	assert.Error(t, err)
}

func TestRegistryRejectsSchemaWithoutDescription(t *testing.T) {
	r := tools.NewRegistry()
	err := r.Register(&fakeTool{name: "alpha", schema: domain.ToolSchema{Name: "alpha"}})
	assert.Error(t, err)
}

func TestRegistryRejectsMalformedParameter(t *testing.T) {
	r := tools.NewRegistry()
	err := r.Register(&fakeTool{name: "alpha", schema: domain.ToolSchema{
		Name:        "alpha",
		Description: "an alpha tool",
		Parameters:  []domain.ToolParam{{Name: "text"}},
	}})
	assert.Error(t, err)
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := tools.NewRegistry()
	_, err := r.Resolve("nope")
	assert.ErrorIs(t, err, tools.ErrUnknownTool)
}

func TestRegistrySchemasPreserveRegistrationOrder(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(newFakeTool("third")))
	require.NoError(t, r.Register(newFakeTool("first")))
	require.NoError(t, r.Register(newFakeTool("second")))

	var names []string
	for _, s := range r.Schemas() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"third", "first", "second"}, names)
}

func TestValidateInput(t *testing.T) {
	schema := domain.ToolSchema{
		Name: "demo",
		Parameters: []domain.ToolParam{
			{Name: "text", Type: "string", Required: true},
			{Name: "count", Type: "integer"},
			{Name: "items", Type: "array", Items: "string"},
		},
	}

	assert.NoError(t, tools.ValidateInput(schema, map[string]any{"text": "hi"}))
	assert.NoError(t, tools.ValidateInput(schema, map[string]any{
		"text":  "hi",
		"count": float64(3),
		"items": []any{"a"},
	}))

	assert.ErrorIs(t, tools.ValidateInput(schema, map[string]any{}), tools.ErrBadArgument)
	assert.ErrorIs(t, tools.ValidateInput(schema, map[string]any{"text": 7}), tools.ErrBadArgument)
	assert.ErrorIs(t, tools.ValidateInput(schema, map[string]any{"text": "hi", "count": "three"}), tools.ErrBadArgument)
	assert.ErrorIs(t, tools.ValidateInput(schema, map[string]any{"text": "hi", "items": "a"}), tools.ErrBadArgument)
}
