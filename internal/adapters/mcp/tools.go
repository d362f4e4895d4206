// Package mcpadapter exposes the assistant as Model Context Protocol tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

const (
	serverName    = "faq-assistant"
	serverVersion = "1.0.0"
)

type Tools struct {
	conversation ports.Conversation
	knowledge    ports.KnowledgeBase
}

func NewTools(conversation ports.Conversation, knowledge ports.KnowledgeBase) *Tools {
	return &Tools{conversation: conversation, knowledge: knowledge}
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Answer questions from the FAQ knowledge base. Follow-up questions resolve against the current conversation topic."),
	)
	s.AddTool(tools.AskDefinition(), tools.Ask)
	s.AddTool(tools.IngestDefinition(), tools.IngestTraining)
	s.AddTool(tools.OptimizeDefinition(), tools.Optimize)
	s.AddTool(tools.ContextDefinition(), tools.ConversationContext)
	return s
}

func (t *Tools) AskDefinition() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Answer a question from the FAQ knowledge base, using the current conversation topic for follow-ups."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user's question"),
		),
	)
}

func (t *Tools) Ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := t.conversation.Answer(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer: %v", err)), nil
	}
	return jsonResult(reply)
}

func (t *Tools) IngestDefinition() mcp.Tool {
	return mcp.NewTool("ingest_training",
		mcp.WithDescription("Add question/answer pairs to the knowledge base. Later pairs replace earlier ones with the same question."),
		mcp.WithArray("pairs",
			mcp.Required(),
			mcp.Description("Pairs to ingest"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":   map[string]any{"type": "string"},
					"answer":     map[string]any{"type": "string"},
					"category":   map[string]any{"type": "string"},
					"source":     map[string]any{"type": "string"},
					"confidence": map[string]any{"type": "number"},
				},
				"required": []string{"question", "answer"},
			}),
		),
	)
}

func (t *Tools) IngestTraining(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["pairs"].([]any)
	if !ok {
		return mcp.NewToolResultError("pairs must be an array"), nil
	}

	report, err := t.knowledge.IngestTraining(ctx, decodePairs(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to ingest: %v", err)), nil
	}
	return jsonResult(report)
}

func (t *Tools) OptimizeDefinition() mcp.Tool {
	return mcp.NewTool("optimize_knowledge",
		mcp.WithDescription("Remove near-duplicate questions from the knowledge base and report how many were removed."),
	)
}

func (t *Tools) Optimize(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	removed, err := t.knowledge.OptimizeKnowledgeBase(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to optimize: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed %d entries", removed)), nil
}

func (t *Tools) ContextDefinition() mcp.Tool {
	return mcp.NewTool("conversation_context",
		mcp.WithDescription("Show the current conversation topic and history, optionally clearing it first."),
		mcp.WithBoolean("reset",
			mcp.Description("Clear the conversation before returning it (default: false)"),
		),
	)
}

func (t *Tools) ConversationContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("reset", false) {
		if err := t.conversation.ResetContext(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to reset: %v", err)), nil
		}
	}

	snapshot, err := t.conversation.Context(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read context: %v", err)), nil
	}
	return jsonResult(snapshot)
}

// decodePairs keeps undecodable items as empty pairs so the ingest report
// counts them as skipped.
func decodePairs(raw []any) []domain.QAPair {
	records := make([]json.RawMessage, 0, len(raw))
	for _, item := range raw {
		encoded, err := json.Marshal(item)
		if err != nil {
			encoded = nil
		}
		records = append(records, encoded)
	}
	return domain.DecodeQAPairs(records)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
