package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/souschef-agent/internal/domain"
)

// GenAIClient implements domain.CompletionClient on Vertex AI (Gemini),
// including native function calling.
type GenAIClient struct {
	client    *genai.Client
	modelName string
}

// NewGenAIClient creates a completion client backed by Vertex AI.
func NewGenAIClient(ctx context.Context, projectID, location, modelName string) (*GenAIClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location are required for Vertex AI client")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete implements domain.CompletionClient.
func (c *GenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionResponse, error) {
	contents := buildContents(req.Messages)

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}
	if len(req.Tools) > 0 {
		cfg.Tools = []*genai.Tool{
			{FunctionDeclarations: buildFunctionDeclarations(req.Tools)},
		}
	}

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		// Vertex failures at this boundary are treated as transient; the
		// retry wrapper decides when to give up.
		return nil, fmt.Errorf("%w: vertex generate content: %v", domain.ErrCompletionTransient, err)
	}

	out := &domain.CompletionResponse{Text: res.Text()}
	for _, fc := range res.FunctionCalls() {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:   fc.ID,
			Name: fc.Name,
			Args: fc.Args,
		})
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w: vertex returned empty response", domain.ErrCompletionTransient)
	}
	return out, nil
}

// buildContents maps the portable message model onto genai contents. Agent
// tool calls replay as model-role function call parts, tool outcomes as
// user-role function responses, which is the shape Gemini expects for a
// function-calling exchange.
func buildContents(messages []domain.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case domain.RoleAgent:
			var parts []*genai.Part
			if m.Text != "" {
				parts = append(parts, genai.NewPartFromText(m.Text))
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, genai.NewPartFromFunctionCall(call.Name, call.Args))
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))

		case domain.RoleTool:
			var parts []*genai.Part
			for _, outcome := range m.ToolOutcomes {
				parts = append(parts, genai.NewPartFromFunctionResponse(outcome.Name, outcome.Payload))
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		default:
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleUser))
		}
	}
	return contents
}

func buildFunctionDeclarations(schemas []domain.ToolSchema) []*genai.FunctionDeclaration {
	var decls []*genai.FunctionDeclaration
	for _, schema := range schemas {
		properties := make(map[string]*genai.Schema, len(schema.Parameters))
		var required []string

		for _, p := range schema.Parameters {
			prop := &genai.Schema{
				Type:        genai.Type(p.Type),
				Description: p.Description,
			}
			if len(p.Enum) > 0 {
				prop.Enum = p.Enum
			}
			if p.Type == "array" && p.Items != "" {
				prop.Items = &genai.Schema{Type: genai.Type(p.Items)}
			}
			properties[p.Name] = prop
			if p.Required {
				required = append(required, p.Name)
			}
		}

		decls = append(decls, &genai.FunctionDeclaration{
			Name:        schema.Name,
			Description: schema.Description,
			Parameters: &genai.Schema{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		})
	}
	return decls
}
