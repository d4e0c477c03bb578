package application

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"teamhood-mcp-server/internal/domain"
)

func TestItemHandler_HandlerName(t *testing.T) {
	handler := NewItemHandler(nil, nil)
	if handler.HandlerName() != "items" {
		t.Errorf("Expected handler name 'items', got %q", handler.HandlerName())
	}
}

func TestItemHandler_ListTools(t *testing.T) {
	handler := NewItemHandler(nil, nil)
	tools := handler.ListTools()

	expected := []string{
		"list_items",
		"get_item",
		"create_item",
		"update_item",
		"delete_item",
		"move_item",
		"archive_item",
		"assign_item",
		"list_activities",
	}
	if len(tools) != len(expected) {
		t.Fatalf("Expected %d tools, got %d", len(expected), len(tools))
	}
	for i, name := range expected {
		if tools[i].Name != name {
			t.Errorf("Tool %d: expected %q, got %q", i, name, tools[i].Name)
		}
	}
}

func TestItemHandler_ListItems_NoFilters(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[]`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "list_items", map[string]interface{}{})

	req := backend.last(t)
	if req.Method != http.MethodGet {
		t.Errorf("Expected GET, got %s", req.Method)
	}
	if req.Path != "/items" {
		t.Errorf("Expected path /items, got %s", req.Path)
	}
	if len(req.Query) != 0 {
		t.Errorf("Expected no query parameters, got %v", req.Query)
	}
}

// The API expects Pascal-cased query keys, and the assignee filter is
// named UserId on the wire.
func TestItemHandler_ListItems_QueryKeys(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[]`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "list_items", map[string]interface{}{
		"workspaceId": "W1",
		"boardId":     "B2",
		"assigneeId":  "U3",
		"startDate":   "2024-01-01",
		"archived":    true,
		"skip":        5,
		"take":        50,
	})

	q := backend.last(t).Query
	checks := map[string]string{
		"WorkspaceId": "W1",
		"BoardId":     "B2",
		"UserId":      "U3",
		"StartDate":   "2024-01-01",
		"Archived":    "true",
		"Skip":        "5",
		"Take":        "50",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("Query %s: expected %q, got %q", key, want, got)
		}
	}
	for _, absent := range []string{"workspaceId", "assigneeId", "AssigneeId"} {
		if _, exists := q[absent]; exists {
			t.Errorf("Query must not contain %s", absent)
		}
	}
}

func TestItemHandler_ListItems_RepeatedTags(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[]`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "list_items", map[string]interface{}{
		"tags":         []interface{}{"urgent", "backend"},
		"customFields": []interface{}{"Team:Core"},
	})

	q := backend.last(t).Query
	if !reflect.DeepEqual(q["Tags"], []string{"urgent", "backend"}) {
		t.Errorf("Expected Tags repeated per element, got %v", q["Tags"])
	}
	if !reflect.DeepEqual(q["CustomFields"], []string{"Team:Core"}) {
		t.Errorf("Expected CustomFields per element, got %v", q["CustomFields"])
	}
}

func TestItemHandler_ListItems_InvalidFilterTypes(t *testing.T) {
	handler := NewItemHandler(nil, domain.NewResponseMapper())

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"skip", map[string]interface{}{"skip": "abc"}, "argument skip must be an integer"},
		{"take", map[string]interface{}{"take": "lots"}, "argument take must be an integer"},
		{"archived", map[string]interface{}{"archived": "sort of"}, "argument archived must be a boolean"},
		{"tags", map[string]interface{}{"tags": map[string]interface{}{"k": "v"}}, "argument tags must be a list of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), &domain.ToolRequest{Name: "list_items", Arguments: tt.args})
			if err == nil {
				t.Fatal("Expected error")
			}
			var invalid *domain.InvalidArgumentError
			if !errors.As(err, &invalid) {
				t.Fatalf("Expected InvalidArgumentError, got %T", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestItemHandler_GetItem(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1","title":"Fix login"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	resp := callTool(t, handler, "get_item", map[string]interface{}{"itemId": "I1"})

	req := backend.last(t)
	if req.Method != http.MethodGet {
		t.Errorf("Expected GET, got %s", req.Method)
	}
	if req.Path != "/items/I1" {
		t.Errorf("Expected path /items/I1, got %s", req.Path)
	}
	if !contains(responseText(t, resp), "Fix login") {
		t.Errorf("Response should contain item title, got: %s", responseText(t, resp))
	}
}

// The API distinguishes absent list fields from empty ones, so create
// always sends the four list fields plus the milestone and suspension
// flags even when the caller omitted them all.
func TestItemHandler_CreateItem_Defaults(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I9"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "create_item", map[string]interface{}{
		"boardId":  "B1",
		"statusId": "S1",
		"title":    "New card",
	})

	req := backend.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", req.Method)
	}
	if req.Path != "/items" {
		t.Errorf("Expected path /items, got %s", req.Path)
	}

	body := decodeBody(t, req.Body)
	for _, key := range []string{"tags", "customFields", "blocking", "waiting"} {
		list, ok := body[key].([]interface{})
		if !ok {
			t.Fatalf("Expected %s to be a list, got %T", key, body[key])
		}
		if len(list) != 0 {
			t.Errorf("Expected %s empty by default, got %v", key, list)
		}
	}
	if body["milestone"] != false {
		t.Errorf("Expected milestone false, got %v", body["milestone"])
	}
	if body["isSuspended"] != false {
		t.Errorf("Expected isSuspended false, got %v", body["isSuspended"])
	}
	if body["suspendReason"] != "" {
		t.Errorf("Expected empty suspendReason, got %v", body["suspendReason"])
	}
	if len(body) != 10 {
		t.Errorf("Expected exactly 10 body fields, got %d: %v", len(body), body)
	}
	for _, absent := range []string{"assigneeId", "assignedUserId", "description"} {
		if _, exists := body[absent]; exists {
			t.Errorf("Body must not contain %s", absent)
		}
	}
}

// On create the API calls the assignee assignedUserId; the tool
// argument keeps the assigneeId name shared with the other tools.
func TestItemHandler_CreateItem_AssigneeRename(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I9"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "create_item", map[string]interface{}{
		"boardId":    "B1",
		"statusId":   "S1",
		"title":      "Assigned card",
		"assigneeId": "U9",
	})

	body := decodeBody(t, backend.last(t).Body)
	if body["assignedUserId"] != "U9" {
		t.Errorf("Expected assignedUserId U9, got %v", body["assignedUserId"])
	}
	if _, exists := body["assigneeId"]; exists {
		t.Error("Body must not contain the tool-side assigneeId name")
	}
}

func TestItemHandler_CreateItem_AllOptions(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I9"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "create_item", map[string]interface{}{
		"boardId":     "B1",
		"statusId":    "S1",
		"title":       "Full card",
		"description": "details",
		"rowId":       "R1",
		"startDate":   "2024-01-01",
		"endDate":     "2024-02-01",
		"color":       "#ff0000",
		"parentId":    "I1",
		"progress":    40,
		"tags":        []interface{}{"urgent"},
		"blocking": []interface{}{
			map[string]interface{}{"itemId": "I5", "type": "FinishToStart"},
		},
	})

	body := decodeBody(t, backend.last(t).Body)
	if body["description"] != "details" || body["rowId"] != "R1" || body["color"] != "#ff0000" {
		t.Errorf("Optional fields missing from body: %v", body)
	}
	if body["startDate"] != "2024-01-01" || body["endDate"] != "2024-02-01" {
		t.Errorf("Date fields missing from body: %v", body)
	}
	if body["parentId"] != "I1" {
		t.Errorf("Expected parentId I1, got %v", body["parentId"])
	}
	if body["progress"] != float64(40) {
		t.Errorf("Expected progress 40, got %v", body["progress"])
	}
	tags, _ := body["tags"].([]interface{})
	if len(tags) != 1 || tags[0] != "urgent" {
		t.Errorf("Expected tags [urgent], got %v", body["tags"])
	}
	blocking, _ := body["blocking"].([]interface{})
	if len(blocking) != 1 {
		t.Fatalf("Expected one blocking edge, got %v", body["blocking"])
	}
	edge, _ := blocking[0].(map[string]interface{})
	if edge["itemId"] != "I5" || edge["type"] != "FinishToStart" {
		t.Errorf("Unexpected blocking edge: %v", edge)
	}
}

// Updates wrap changes in a data envelope and include only fields the
// caller supplied. The assignee travels as userId on update.
func TestItemHandler_UpdateItem(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "update_item", map[string]interface{}{
		"itemId":     "I1",
		"title":      "Renamed",
		"statusId":   "S2",
		"assigneeId": "U4",
	})

	req := backend.last(t)
	if req.Method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", req.Method)
	}
	if req.Path != "/items/I1" {
		t.Errorf("Expected path /items/I1, got %s", req.Path)
	}

	body := decodeBody(t, req.Body)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data envelope, got %v", body)
	}
	if data["title"] != "Renamed" || data["statusId"] != "S2" {
		t.Errorf("Unexpected data envelope: %v", data)
	}
	if data["userId"] != "U4" {
		t.Errorf("Expected userId U4, got %v", data["userId"])
	}
	if _, exists := data["assigneeId"]; exists {
		t.Error("Data must not contain the tool-side assigneeId name")
	}
	if len(data) != 3 {
		t.Errorf("Expected exactly 3 data fields, got %v", data)
	}
	if _, exists := body["itemId"]; exists {
		t.Error("itemId belongs in the path, not the body")
	}
}

func TestItemHandler_UpdateItem_NoFields(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "update_item", map[string]interface{}{"itemId": "I1"})

	body := decodeBody(t, backend.last(t).Body)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data envelope, got %v", body)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty data envelope, got %v", data)
	}
}

func TestItemHandler_DeleteItem(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, ``)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "delete_item", map[string]interface{}{"itemId": "I1"})

	req := backend.last(t)
	if req.Method != http.MethodDelete {
		t.Errorf("Expected DELETE, got %s", req.Method)
	}
	if req.Path != "/items/I1" {
		t.Errorf("Expected path /items/I1, got %s", req.Path)
	}
}

// Placement targets the caller leaves out stay out of the envelope so
// the API keeps those placements unchanged.
func TestItemHandler_MoveItem_SingleTarget(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "move_item", map[string]interface{}{
		"itemId":   "I1",
		"statusId": "S3",
	})

	req := backend.last(t)
	if req.Method != http.MethodPut || req.Path != "/items/I1" {
		t.Errorf("Expected PUT /items/I1, got %s %s", req.Method, req.Path)
	}

	data, _ := decodeBody(t, req.Body)["data"].(map[string]interface{})
	if data["statusId"] != "S3" {
		t.Errorf("Expected statusId S3, got %v", data)
	}
	if len(data) != 1 {
		t.Errorf("Expected only statusId in data, got %v", data)
	}
}

func TestItemHandler_MoveItem_AllTargets(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "move_item", map[string]interface{}{
		"itemId":   "I1",
		"boardId":  "B2",
		"statusId": "S3",
		"rowId":    "R4",
	})

	data, _ := decodeBody(t, backend.last(t).Body)["data"].(map[string]interface{})
	if data["boardId"] != "B2" || data["statusId"] != "S3" || data["rowId"] != "R4" {
		t.Errorf("Unexpected data envelope: %v", data)
	}
	if len(data) != 3 {
		t.Errorf("Expected 3 data fields, got %v", data)
	}
}

func TestItemHandler_ArchiveItem_DefaultsTrue(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "archive_item", map[string]interface{}{"itemId": "I1"})

	req := backend.last(t)
	if req.Method != http.MethodPut || req.Path != "/items/I1" {
		t.Errorf("Expected PUT /items/I1, got %s %s", req.Method, req.Path)
	}
	data, _ := decodeBody(t, req.Body)["data"].(map[string]interface{})
	if data["archived"] != true {
		t.Errorf("Expected archived true by default, got %v", data)
	}
}

func TestItemHandler_ArchiveItem_Restore(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "archive_item", map[string]interface{}{
		"itemId":   "I1",
		"archived": false,
	})

	data, _ := decodeBody(t, backend.last(t).Body)["data"].(map[string]interface{})
	if data["archived"] != false {
		t.Errorf("Expected archived false, got %v", data)
	}
}

func TestItemHandler_AssignItem(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"I1"}`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "assign_item", map[string]interface{}{
		"itemId":     "I1",
		"assigneeId": "U2",
	})

	req := backend.last(t)
	if req.Method != http.MethodPut || req.Path != "/items/I1" {
		t.Errorf("Expected PUT /items/I1, got %s %s", req.Method, req.Path)
	}
	data, _ := decodeBody(t, req.Body)["data"].(map[string]interface{})
	if data["userId"] != "U2" {
		t.Errorf("Expected userId U2, got %v", data)
	}
	if len(data) != 1 {
		t.Errorf("Expected only userId in data, got %v", data)
	}
}

// The activities endpoint reads via POST; the range is mandatory.
func TestItemHandler_ListActivities(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[]`)
	defer backend.server.Close()
	handler := NewItemHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "list_activities", map[string]interface{}{
		"boardId":   "B1",
		"startDate": "2024-01-01",
		"endDate":   "2024-01-31",
	})

	req := backend.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", req.Method)
	}
	if req.Path != "/boards/B1/item-activities" {
		t.Errorf("Expected path /boards/B1/item-activities, got %s", req.Path)
	}

	body := decodeBody(t, req.Body)
	if body["startDate"] != "2024-01-01" || body["endDate"] != "2024-01-31" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestItemHandler_MissingArguments(t *testing.T) {
	handler := NewItemHandler(nil, domain.NewResponseMapper())

	tests := []struct {
		tool    string
		args    map[string]interface{}
		wantArg string
	}{
		{"get_item", map[string]interface{}{}, "itemId"},
		{"create_item", map[string]interface{}{"boardId": "B1", "statusId": "S1"}, "title"},
		{"create_item", map[string]interface{}{"statusId": "S1", "title": "x"}, "boardId"},
		{"update_item", map[string]interface{}{"title": "x"}, "itemId"},
		{"delete_item", map[string]interface{}{}, "itemId"},
		{"move_item", map[string]interface{}{"statusId": "S1"}, "itemId"},
		{"archive_item", map[string]interface{}{}, "itemId"},
		{"assign_item", map[string]interface{}{"itemId": "I1"}, "assigneeId"},
		{"list_activities", map[string]interface{}{"boardId": "B1", "startDate": "2024-01-01"}, "endDate"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"_"+tt.wantArg, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), &domain.ToolRequest{Name: tt.tool, Arguments: tt.args})
			if err == nil {
				t.Fatal("Expected error")
			}
			var missing *domain.MissingArgumentError
			if !errors.As(err, &missing) {
				t.Fatalf("Expected MissingArgumentError, got %T: %v", err, err)
			}
			if missing.Argument != tt.wantArg {
				t.Errorf("Expected missing %s, got %s", tt.wantArg, missing.Argument)
			}
		})
	}
}

func TestItemHandler_UnknownTool(t *testing.T) {
	handler := NewItemHandler(nil, domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{Name: "explode_item"})
	var unknown *domain.UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownToolError, got %v", err)
	}
	if err.Error() != "Unknown tool: explode_item" {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}
