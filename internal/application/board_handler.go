package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cast"

	"teamhood-mcp-server/internal/domain"
)

// BoardHandler implements ToolHandler for board, row and status
// operations.
type BoardHandler struct {
	client domain.TeamhoodAPI
	mapper domain.ResponseMapper
}

// NewBoardHandler creates a new BoardHandler instance.
func NewBoardHandler(client domain.TeamhoodAPI, mapper domain.ResponseMapper) *BoardHandler {
	return &BoardHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for board operations
const (
	ToolListBoards   = "list_boards"
	ToolGetBoard     = "get_board"
	ToolCreateBoard  = "create_board"
	ToolListRows     = "list_rows"
	ToolListStatuses = "list_statuses"
	ToolCreateRow    = "create_row"
)

// HandlerName returns the identifier for this handler.
func (h *BoardHandler) HandlerName() string {
	return "boards"
}

// ListTools returns the board tool definitions.
func (h *BoardHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolListBoards,
			Description: "List all boards in a workspace",
			InputSchema: objectSchema(map[string]interface{}{
				"workspaceId": stringProp("The workspace ID"),
			}, "workspaceId"),
		},
		{
			Name:        ToolGetBoard,
			Description: "Retrieve a single board from a workspace by its ID",
			InputSchema: objectSchema(map[string]interface{}{
				"workspaceId": stringProp("The workspace ID"),
				"boardId":     stringProp("The board ID"),
			}, "workspaceId", "boardId"),
		},
		{
			Name:        ToolCreateBoard,
			Description: "Create a new board in a workspace",
			InputSchema: objectSchema(map[string]interface{}{
				"workspaceId": stringProp("The workspace ID the board belongs to"),
				"title":       stringProp("The board title"),
				"templateId":  stringProp("Board template to create from (optional)"),
				"viewType":    stringProp("Initial view type, e.g. kanban or gantt (optional)"),
			}, "workspaceId", "title"),
		},
		{
			Name:        ToolListRows,
			Description: "List the rows (swimlanes) of a board",
			InputSchema: objectSchema(map[string]interface{}{
				"boardId": stringProp("The board ID"),
			}, "boardId"),
		},
		{
			Name:        ToolListStatuses,
			Description: "List the statuses (columns) of a board",
			InputSchema: objectSchema(map[string]interface{}{
				"boardId": stringProp("The board ID"),
			}, "boardId"),
		},
		{
			Name:        ToolCreateRow,
			Description: "Create a new row (swimlane) on a board",
			InputSchema: objectSchema(map[string]interface{}{
				"boardId":   stringProp("The board ID the row belongs to"),
				"title":     stringProp("The row title"),
				"startDate": stringProp("Row start date in ISO format (optional)"),
				"endDate":   stringProp("Row end date in ISO format (optional)"),
			}, "boardId", "title"),
		},
	}
}

// Handle processes a board tool call.
func (h *BoardHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolListBoards:
		return h.handleListBoards(ctx, req.Arguments)
	case ToolGetBoard:
		return h.handleGetBoard(ctx, req.Arguments)
	case ToolCreateBoard:
		return h.handleCreateBoard(ctx, req.Arguments)
	case ToolListRows:
		return h.handleListRows(ctx, req.Arguments)
	case ToolListStatuses:
		return h.handleListStatuses(ctx, req.Arguments)
	case ToolCreateRow:
		return h.handleCreateRow(ctx, req.Arguments)
	default:
		return nil, &domain.UnknownToolError{Tool: req.Name}
	}
}

// handleListBoards handles the list_boards tool call.
func (h *BoardHandler) handleListBoards(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspaceID, err := getStringParam(args, "workspaceId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/workspaces/%s/boards", workspaceID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleGetBoard handles the get_board tool call. Teamhood has no
// single-board endpoint, so the workspace's boards are listed and
// scanned locally for the requested ID.
func (h *BoardHandler) handleGetBoard(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspaceID, err := getStringParam(args, "workspaceId", true)
	if err != nil {
		return nil, err
	}
	boardID, err := getStringParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/workspaces/%s/boards", workspaceID), nil)
	if err != nil {
		return nil, err
	}

	boards, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response listing boards for workspace %s", workspaceID)
	}

	for _, b := range boards {
		board, ok := b.(map[string]interface{})
		if !ok {
			continue
		}
		// Board IDs may come back as strings or numbers.
		if cast.ToString(board["id"]) == boardID {
			return h.mapper.MapToToolResponse(board)
		}
	}

	return nil, &domain.NotFoundError{Resource: "board", ID: boardID, Scope: "workspace " + workspaceID}
}

// handleCreateBoard handles the create_board tool call.
func (h *BoardHandler) handleCreateBoard(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	workspaceID, err := getStringParam(args, "workspaceId", true)
	if err != nil {
		return nil, err
	}
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"workspaceId": workspaceID,
		"title":       title,
	}
	setIfPresent(body, args, "templateId", "templateId")
	setIfPresent(body, args, "viewType", "viewType")

	result, err := h.client.Request(ctx, http.MethodPost, "/boards", body)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleListRows handles the list_rows tool call.
func (h *BoardHandler) handleListRows(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getStringParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/boards/%s/rows", boardID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleListStatuses handles the list_statuses tool call.
func (h *BoardHandler) handleListStatuses(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getStringParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/boards/%s/statuses", boardID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleCreateRow handles the create_row tool call.
func (h *BoardHandler) handleCreateRow(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getStringParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"boardId": boardID,
		"title":   title,
	}
	setIfPresent(body, args, "startDate", "startDate")
	setIfPresent(body, args, "endDate", "endDate")

	result, err := h.client.Request(ctx, http.MethodPost, "/rows", body)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}
