package application

import (
	"context"
	"fmt"
	"net/http"

	"teamhood-mcp-server/internal/domain"
)

// WorkspaceHandler implements ToolHandler for workspace operations.
type WorkspaceHandler struct {
	client domain.TeamhoodAPI
	mapper domain.ResponseMapper
}

// NewWorkspaceHandler creates a new WorkspaceHandler instance.
func NewWorkspaceHandler(client domain.TeamhoodAPI, mapper domain.ResponseMapper) *WorkspaceHandler {
	return &WorkspaceHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for workspace operations
const (
	ToolListWorkspaces     = "list_workspaces"
	ToolGetWorkspace       = "get_workspace"
	ToolCreateWorkspace    = "create_workspace"
	ToolAddUserToWorkspace = "add_user_to_workspace"
)

// HandlerName returns the identifier for this handler.
func (h *WorkspaceHandler) HandlerName() string {
	return "workspaces"
}

// ListTools returns the workspace tool definitions.
func (h *WorkspaceHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolListWorkspaces,
			Description: "List all Teamhood workspaces visible to the configured API key",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        ToolGetWorkspace,
			Description: "Retrieve a single workspace by its ID",
			InputSchema: objectSchema(map[string]interface{}{
				"workspaceId": stringProp("The workspace ID"),
			}, "workspaceId"),
		},
		{
			Name:        ToolCreateWorkspace,
			Description: "Create a new workspace",
			InputSchema: objectSchema(map[string]interface{}{
				"title":      stringProp("The workspace title"),
				"displayId":  stringProp("Short identifier shown on item numbers (optional)"),
				"icon":       stringProp("Workspace icon name (optional)"),
				"color":      stringProp("Workspace color (optional)"),
				"templateId": stringProp("Workspace template to create from (optional)"),
				"ownerId":    stringProp("User ID of the workspace owner (optional)"),
			}, "title"),
		},
		{
			Name:        ToolAddUserToWorkspace,
			Description: "Add an existing user to a workspace",
			InputSchema: objectSchema(map[string]interface{}{
				"workspaceId": stringProp("The workspace ID"),
				"userId":      stringProp("The ID of the user to add"),
			}, "workspaceId", "userId"),
		},
	}
}

// Handle processes a workspace tool call.
func (h *WorkspaceHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolListWorkspaces:
		return h.handleListWorkspaces(ctx, req.Arguments)
	case ToolGetWorkspace:
		return h.handleGetWorkspace(ctx, req.Arguments)
	case ToolCreateWorkspace:
		return h.handleCreateWorkspace(ctx, req.Arguments)
	case ToolAddUserToWorkspace:
		return h.handleAddUserToWorkspace(ctx, req.Arguments)
	default:
		return nil, &domain.UnknownToolError{Tool: req.Name}
	}
}

// handleListWorkspaces handles the list_workspaces tool call.
func (h *WorkspaceHandler) handleListWorkspaces(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	result, err := h.client.Request(ctx, http.MethodGet, "/workspaces", nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleGetWorkspace handles the get_workspace tool call.
func (h *WorkspaceHandler) handleGetWorkspace(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspaceID, err := getStringParam(args, "workspaceId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/workspaces/%s", workspaceID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleCreateWorkspace handles the create_workspace tool call.
func (h *WorkspaceHandler) handleCreateWorkspace(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"title": title,
	}
	setIfPresent(body, args, "displayId", "displayId")
	setIfPresent(body, args, "icon", "icon")
	setIfPresent(body, args, "color", "color")
	setIfPresent(body, args, "templateId", "templateId")
	setIfPresent(body, args, "ownerId", "ownerId")

	result, err := h.client.Request(ctx, http.MethodPost, "/workspaces", body)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleAddUserToWorkspace handles the add_user_to_workspace tool call.
func (h *WorkspaceHandler) handleAddUserToWorkspace(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspaceID, err := getStringParam(args, "workspaceId", true)
	if err != nil {
		return nil, err
	}
	userID, err := getStringParam(args, "userId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodPut, fmt.Sprintf("/workspaces/%s/users/%s", workspaceID, userID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}
