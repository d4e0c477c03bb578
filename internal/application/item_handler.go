package application

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"teamhood-mcp-server/internal/domain"
)

// ItemHandler implements ToolHandler for item operations. Items are
// the cards on Teamhood boards; this is by far the widest part of the
// tool surface.
type ItemHandler struct {
	client domain.TeamhoodAPI
	mapper domain.ResponseMapper
}

// NewItemHandler creates a new ItemHandler instance.
func NewItemHandler(client domain.TeamhoodAPI, mapper domain.ResponseMapper) *ItemHandler {
	return &ItemHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for item operations
const (
	ToolListItems      = "list_items"
	ToolGetItem        = "get_item"
	ToolCreateItem     = "create_item"
	ToolUpdateItem     = "update_item"
	ToolDeleteItem     = "delete_item"
	ToolMoveItem       = "move_item"
	ToolArchiveItem    = "archive_item"
	ToolAssignItem     = "assign_item"
	ToolListActivities = "list_activities"
)

// updatableItemFields are the update_item arguments that pass through
// to the API under their own names. assigneeId is handled separately
// because the API calls it userId on update.
var updatableItemFields = []string{
	"title",
	"description",
	"statusId",
	"rowId",
	"boardId",
	"startDate",
	"endDate",
	"color",
	"tags",
	"customFields",
	"blocking",
	"waiting",
	"milestone",
	"progress",
	"parentId",
}

// HandlerName returns the identifier for this handler.
func (h *ItemHandler) HandlerName() string {
	return "items"
}

// ListTools returns the item tool definitions.
func (h *ItemHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolListItems,
			Description: "List items, optionally filtered by workspace, board, row, status, assignee, tags, dates or archive state",
			InputSchema: objectSchema(map[string]interface{}{
				"workspaceId":  stringProp("Only items in this workspace (optional)"),
				"boardId":      stringProp("Only items on this board (optional)"),
				"rowId":        stringProp("Only items in this row (optional)"),
				"statusId":     stringProp("Only items with this status (optional)"),
				"assigneeId":   stringProp("Only items assigned to this user (optional)"),
				"parentId":     stringProp("Only child items of this item (optional)"),
				"tags":         stringArrayProp("Only items carrying every one of these tags (optional)"),
				"customFields": stringArrayProp("Only items matching these custom field values (optional)"),
				"archived":     booleanProp("Filter by archive state (optional)"),
				"milestone":    booleanProp("Filter by milestone flag (optional)"),
				"startDate":    stringProp("Only items starting on or after this ISO date (optional)"),
				"endDate":      stringProp("Only items ending on or before this ISO date (optional)"),
				"skip":         integerProp("Number of items to skip (optional)"),
				"take":         integerProp("Maximum number of items to return (optional)"),
			}),
		},
		{
			Name:        ToolGetItem,
			Description: "Retrieve a single item by its ID",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId": stringProp("The item ID"),
			}, "itemId"),
		},
		{
			Name:        ToolCreateItem,
			Description: "Create a new item on a board",
			InputSchema: objectSchema(map[string]interface{}{
				"boardId":      stringProp("The board to create the item on"),
				"statusId":     stringProp("The status (column) for the new item"),
				"title":        stringProp("The item title"),
				"description":  stringProp("The item description (optional)"),
				"rowId":        stringProp("The row (swimlane) for the item (optional)"),
				"assigneeId":   stringProp("User ID to assign the item to (optional)"),
				"startDate":    stringProp("Item start date in ISO format (optional)"),
				"endDate":      stringProp("Item due date in ISO format (optional)"),
				"color":        stringProp("Card color (optional)"),
				"parentId":     stringProp("Parent item ID for subtasks (optional)"),
				"progress":     numberProp("Completion percentage 0-100 (optional)"),
				"tags":         stringArrayProp("Tags to attach to the item (optional)"),
				"customFields": stringArrayProp("Custom field values for the item (optional)"),
				"blocking":     dependencyArrayProp("Items this item blocks (optional)"),
				"waiting":      dependencyArrayProp("Items this item waits on (optional)"),
			}, "boardId", "statusId", "title"),
		},
		{
			Name:        ToolUpdateItem,
			Description: "Update fields of an existing item; only the fields provided are changed",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId":       stringProp("The item ID"),
				"title":        stringProp("New title (optional)"),
				"description":  stringProp("New description (optional)"),
				"statusId":     stringProp("New status ID (optional)"),
				"rowId":        stringProp("New row ID (optional)"),
				"boardId":      stringProp("New board ID (optional)"),
				"assigneeId":   stringProp("New assignee user ID (optional)"),
				"startDate":    stringProp("New start date in ISO format (optional)"),
				"endDate":      stringProp("New due date in ISO format (optional)"),
				"color":        stringProp("New card color (optional)"),
				"parentId":     stringProp("New parent item ID (optional)"),
				"progress":     numberProp("New completion percentage 0-100 (optional)"),
				"milestone":    booleanProp("Mark or unmark the item as a milestone (optional)"),
				"tags":         stringArrayProp("Replacement tag list (optional)"),
				"customFields": stringArrayProp("Replacement custom field values (optional)"),
				"blocking":     dependencyArrayProp("Replacement blocking edges (optional)"),
				"waiting":      dependencyArrayProp("Replacement waiting edges (optional)"),
			}, "itemId"),
		},
		{
			Name:        ToolDeleteItem,
			Description: "Delete an item permanently",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId": stringProp("The item ID"),
			}, "itemId"),
		},
		{
			Name:        ToolMoveItem,
			Description: "Move an item to another board, status or row",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId":   stringProp("The item ID"),
				"boardId":  stringProp("Target board ID (optional)"),
				"statusId": stringProp("Target status ID (optional)"),
				"rowId":    stringProp("Target row ID (optional)"),
			}, "itemId"),
		},
		{
			Name:        ToolArchiveItem,
			Description: "Archive an item, or restore it by passing archived=false",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId":   stringProp("The item ID"),
				"archived": booleanProp("Archive state to set; defaults to true"),
			}, "itemId"),
		},
		{
			Name:        ToolAssignItem,
			Description: "Assign an item to a user",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId":     stringProp("The item ID"),
				"assigneeId": stringProp("User ID to assign the item to"),
			}, "itemId", "assigneeId"),
		},
		{
			Name:        ToolListActivities,
			Description: "List item activity on a board within a date range",
			InputSchema: objectSchema(map[string]interface{}{
				"boardId":   stringProp("The board ID"),
				"startDate": stringProp("Range start in ISO format"),
				"endDate":   stringProp("Range end in ISO format"),
			}, "boardId", "startDate", "endDate"),
		},
	}
}

// Handle processes an item tool call.
func (h *ItemHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolListItems:
		return h.handleListItems(ctx, req.Arguments)
	case ToolGetItem:
		return h.handleGetItem(ctx, req.Arguments)
	case ToolCreateItem:
		return h.handleCreateItem(ctx, req.Arguments)
	case ToolUpdateItem:
		return h.handleUpdateItem(ctx, req.Arguments)
	case ToolDeleteItem:
		return h.handleDeleteItem(ctx, req.Arguments)
	case ToolMoveItem:
		return h.handleMoveItem(ctx, req.Arguments)
	case ToolArchiveItem:
		return h.handleArchiveItem(ctx, req.Arguments)
	case ToolAssignItem:
		return h.handleAssignItem(ctx, req.Arguments)
	case ToolListActivities:
		return h.handleListActivities(ctx, req.Arguments)
	default:
		return nil, &domain.UnknownToolError{Tool: req.Name}
	}
}

// handleListItems handles the list_items tool call. The API expects
// capitalized query keys and repeats Tags and CustomFields once per
// element; only filters the caller provided are sent.
func (h *ItemHandler) handleListItems(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	q := url.Values{}

	stringFilters := []struct{ arg, key string }{
		{"workspaceId", "WorkspaceId"},
		{"boardId", "BoardId"},
		{"rowId", "RowId"},
		{"statusId", "StatusId"},
		{"assigneeId", "UserId"},
		{"parentId", "ParentId"},
		{"startDate", "StartDate"},
		{"endDate", "EndDate"},
	}
	for _, f := range stringFilters {
		if err := addQueryString(q, args, f.arg, f.key); err != nil {
			return nil, err
		}
	}

	if err := addQueryBool(q, args, "archived", "Archived"); err != nil {
		return nil, err
	}
	if err := addQueryBool(q, args, "milestone", "Milestone"); err != nil {
		return nil, err
	}
	if err := addQueryInt(q, args, "skip", "Skip"); err != nil {
		return nil, err
	}
	if err := addQueryInt(q, args, "take", "Take"); err != nil {
		return nil, err
	}
	if err := addQueryStrings(q, args, "tags", "Tags"); err != nil {
		return nil, err
	}
	if err := addQueryStrings(q, args, "customFields", "CustomFields"); err != nil {
		return nil, err
	}

	path := "/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	result, err := h.client.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleGetItem handles the get_item tool call.
func (h *ItemHandler) handleGetItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/items/%s", itemID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleCreateItem handles the create_item tool call. The list-valued
// fields and the milestone/suspension flags are present on every
// create request; the API distinguishes absent from empty.
func (h *ItemHandler) handleCreateItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getStringParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}
	statusID, err := getStringParam(args, "statusId", true)
	if err != nil {
		return nil, err
	}
	title, err := getStringParam(args, "title", true)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"boardId":       boardID,
		"statusId":      statusID,
		"title":         title,
		"tags":          listOrEmpty(args, "tags"),
		"customFields":  listOrEmpty(args, "customFields"),
		"blocking":      listOrEmpty(args, "blocking"),
		"waiting":       listOrEmpty(args, "waiting"),
		"milestone":     false,
		"isSuspended":   false,
		"suspendReason": "",
	}
	setIfPresent(body, args, "description", "description")
	setIfPresent(body, args, "rowId", "rowId")
	setIfPresent(body, args, "startDate", "startDate")
	setIfPresent(body, args, "endDate", "endDate")
	setIfPresent(body, args, "color", "color")
	setIfPresent(body, args, "parentId", "parentId")
	setIfPresent(body, args, "progress", "progress")
	// The API names the assignee differently on create and update.
	setIfPresent(body, args, "assigneeId", "assignedUserId")

	result, err := h.client.Request(ctx, http.MethodPost, "/items", body)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleUpdateItem handles the update_item tool call. Only fields the
// caller supplied go into the data envelope; an update with no fields
// still sends an empty envelope.
func (h *ItemHandler) handleUpdateItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}

	data := make(map[string]interface{})
	for _, field := range updatableItemFields {
		setIfPresent(data, args, field, field)
	}
	setIfPresent(data, args, "assigneeId", "userId")

	result, err := h.client.Request(ctx, http.MethodPut, fmt.Sprintf("/items/%s", itemID), map[string]interface{}{
		"data": data,
	})
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleDeleteItem handles the delete_item tool call.
func (h *ItemHandler) handleDeleteItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodDelete, fmt.Sprintf("/items/%s", itemID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleMoveItem handles the move_item tool call. Targets the caller
// left out stay out of the envelope; the API keeps those placements
// unchanged.
func (h *ItemHandler) handleMoveItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}

	data := make(map[string]interface{})
	setIfPresent(data, args, "boardId", "boardId")
	setIfPresent(data, args, "statusId", "statusId")
	setIfPresent(data, args, "rowId", "rowId")

	result, err := h.client.Request(ctx, http.MethodPut, fmt.Sprintf("/items/%s", itemID), map[string]interface{}{
		"data": data,
	})
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleArchiveItem handles the archive_item tool call.
func (h *ItemHandler) handleArchiveItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}
	archived, err := getBoolParam(args, "archived", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodPut, fmt.Sprintf("/items/%s", itemID), map[string]interface{}{
		"data": map[string]interface{}{"archived": archived},
	})
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleAssignItem handles the assign_item tool call.
func (h *ItemHandler) handleAssignItem(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}
	assigneeID, err := getStringParam(args, "assigneeId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodPut, fmt.Sprintf("/items/%s", itemID), map[string]interface{}{
		"data": map[string]interface{}{"userId": assigneeID},
	})
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleListActivities handles the list_activities tool call. The
// activities endpoint is a POST even though it only reads.
func (h *ItemHandler) handleListActivities(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getStringParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}
	startDate, err := getStringParam(args, "startDate", true)
	if err != nil {
		return nil, err
	}
	endDate, err := getStringParam(args, "endDate", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodPost, fmt.Sprintf("/boards/%s/item-activities", boardID), map[string]interface{}{
		"startDate": startDate,
		"endDate":   endDate,
	})
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}
