package application

import (
	"context"
	"net/http"
	"net/url"

	"teamhood-mcp-server/internal/domain"
)

// ReportingHandler implements ToolHandler for the cross-workspace
// surfaces: users, time logs, templates and the system log.
type ReportingHandler struct {
	client domain.TeamhoodAPI
	mapper domain.ResponseMapper
}

// NewReportingHandler creates a new ReportingHandler instance.
func NewReportingHandler(client domain.TeamhoodAPI, mapper domain.ResponseMapper) *ReportingHandler {
	return &ReportingHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for reporting operations
const (
	ToolListUsers              = "list_users"
	ToolGetTimeLogs            = "get_time_logs"
	ToolListWorkspaceTemplates = "list_workspace_templates"
	ToolListBoardTemplates     = "list_board_templates"
	ToolGetLogs                = "get_logs"
)

// HandlerName returns the identifier for this handler.
func (h *ReportingHandler) HandlerName() string {
	return "reporting"
}

// ListTools returns the reporting tool definitions.
func (h *ReportingHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolListUsers,
			Description: "List all users visible to the configured API key",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        ToolGetTimeLogs,
			Description: "Retrieve time logs in a date range, optionally narrowed by board, row, user or tag",
			InputSchema: objectSchema(map[string]interface{}{
				"startDate": stringProp("Range start in ISO format"),
				"endDate":   stringProp("Range end in ISO format"),
				"boardId":   stringProp("Only logs on this board (optional)"),
				"rowId":     stringProp("Only logs in this row (optional)"),
				"userId":    stringProp("Only logs by this user (optional)"),
				"tag":       stringProp("Only logs on items carrying this tag (optional)"),
			}, "startDate", "endDate"),
		},
		{
			Name:        ToolListWorkspaceTemplates,
			Description: "List the available workspace templates",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        ToolListBoardTemplates,
			Description: "List the available board templates",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        ToolGetLogs,
			Description: "Retrieve system log entries, optionally bounded by date and paged",
			InputSchema: objectSchema(map[string]interface{}{
				"startDate": stringProp("Only entries on or after this ISO date (optional)"),
				"endDate":   stringProp("Only entries on or before this ISO date (optional)"),
				"skip":      integerProp("Number of entries to skip (optional)"),
				"take":      integerProp("Maximum number of entries to return (optional)"),
			}),
		},
	}
}

// Handle processes a reporting tool call.
func (h *ReportingHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolListUsers:
		return h.handleListUsers(ctx, req.Arguments)
	case ToolGetTimeLogs:
		return h.handleGetTimeLogs(ctx, req.Arguments)
	case ToolListWorkspaceTemplates:
		return h.handleListWorkspaceTemplates(ctx, req.Arguments)
	case ToolListBoardTemplates:
		return h.handleListBoardTemplates(ctx, req.Arguments)
	case ToolGetLogs:
		return h.handleGetLogs(ctx, req.Arguments)
	default:
		return nil, &domain.UnknownToolError{Tool: req.Name}
	}
}

// handleListUsers handles the list_users tool call.
func (h *ReportingHandler) handleListUsers(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	result, err := h.client.Request(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleGetTimeLogs handles the get_time_logs tool call. The timelogs
// endpoint is a POST even though it only reads; the filters travel in
// the JSON body.
func (h *ReportingHandler) handleGetTimeLogs(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	startDate, err := getStringParam(args, "startDate", true)
	if err != nil {
		return nil, err
	}
	endDate, err := getStringParam(args, "endDate", true)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"startDate": startDate,
		"endDate":   endDate,
	}
	setIfPresent(body, args, "boardId", "boardId")
	setIfPresent(body, args, "rowId", "rowId")
	setIfPresent(body, args, "userId", "userId")
	setIfPresent(body, args, "tag", "tag")

	result, err := h.client.Request(ctx, http.MethodPost, "/timelogs", body)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleListWorkspaceTemplates handles the list_workspace_templates tool call.
func (h *ReportingHandler) handleListWorkspaceTemplates(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	result, err := h.client.Request(ctx, http.MethodGet, "/templates/workspace", nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleListBoardTemplates handles the list_board_templates tool call.
func (h *ReportingHandler) handleListBoardTemplates(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	result, err := h.client.Request(ctx, http.MethodGet, "/templates/board", nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleGetLogs handles the get_logs tool call.
func (h *ReportingHandler) handleGetLogs(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	q := url.Values{}
	if err := addQueryString(q, args, "startDate", "StartDate"); err != nil {
		return nil, err
	}
	if err := addQueryString(q, args, "endDate", "EndDate"); err != nil {
		return nil, err
	}
	if err := addQueryInt(q, args, "skip", "Skip"); err != nil {
		return nil, err
	}
	if err := addQueryInt(q, args, "take", "Take"); err != nil {
		return nil, err
	}

	path := "/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	result, err := h.client.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}
