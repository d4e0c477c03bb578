package application

import (
	"context"

	"teamhood-mcp-server/internal/domain"
)

// RequestRouter dispatches MCP tool requests to the appropriate
// ToolHandler. Tool names carry no handler prefix, so every name each
// handler declares through ListTools() is registered individually.
type RequestRouter struct {
	byTool map[string]domain.ToolHandler
	order  []domain.ToolHandler
}

// NewRequestRouter creates a RequestRouter over the provided handlers.
// Registration order is preserved so tools/list output is stable
// across calls. A tool name declared by two handlers would silently
// shadow; handlers own disjoint name sets.
func NewRequestRouter(handlers ...domain.ToolHandler) *RequestRouter {
	router := &RequestRouter{
		byTool: make(map[string]domain.ToolHandler),
		order:  handlers,
	}

	for _, handler := range handlers {
		for _, tool := range handler.ListTools() {
			router.byTool[tool.Name] = handler
		}
	}

	return router
}

// Route dispatches a tool request to the handler that declared the
// tool. Returns UnknownToolError for names outside the catalog.
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	handler, exists := r.byTool[req.Name]
	if !exists {
		return nil, &domain.UnknownToolError{Tool: req.Name}
	}

	return handler.Handle(ctx, req)
}

// ListAllTools aggregates tool definitions from all registered
// handlers, in registration order. This is the tools/list catalog.
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	var allTools []domain.ToolDefinition

	for _, handler := range r.order {
		allTools = append(allTools, handler.ListTools()...)
	}

	return allTools
}

// HandlerFor returns the handler registered for a tool name.
// This is useful for testing and debugging.
func (r *RequestRouter) HandlerFor(toolName string) (domain.ToolHandler, bool) {
	handler, exists := r.byTool[toolName]
	return handler, exists
}
