package domain

import (
	"context"
)

// ToolHandler processes tool calls for one functional area of the
// Teamhood API (workspaces, boards, items, attachments, reporting).
type ToolHandler interface {
	// Handle processes a tool call addressed to one of this handler's
	// tools. Returns the tool response or an error if execution fails.
	Handle(ctx context.Context, req *ToolRequest) (*ToolResponse, error)

	// ListTools returns the tool definitions this handler serves.
	// The router registers each definition's name against the handler.
	ListTools() []ToolDefinition

	// HandlerName returns a short identifier used in logs and metrics.
	HandlerName() string
}
