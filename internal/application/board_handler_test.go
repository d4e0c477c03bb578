package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"teamhood-mcp-server/internal/domain"
)

func TestBoardHandler_HandlerName(t *testing.T) {
	handler := NewBoardHandler(nil, nil)
	if handler.HandlerName() != "boards" {
		t.Errorf("Expected handler name 'boards', got %q", handler.HandlerName())
	}
}

func TestBoardHandler_ListTools(t *testing.T) {
	handler := NewBoardHandler(nil, nil)
	tools := handler.ListTools()

	expected := []string{
		"list_boards",
		"get_board",
		"create_board",
		"list_rows",
		"list_statuses",
		"create_row",
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

func TestBoardHandler_ListBoards(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[{"id":1,"title":"Sprint"}]`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	resp := callTool(t, handler, "list_boards", map[string]interface{}{"workspaceId": "W1"})

	req := backend.last(t)
	if req.Method != http.MethodGet {
		t.Errorf("Expected GET, got %s", req.Method)
	}
	if req.Path != "/workspaces/W1/boards" {
		t.Errorf("Expected path /workspaces/W1/boards, got %s", req.Path)
	}
	if !contains(responseText(t, resp), "Sprint") {
		t.Errorf("Response should contain board title, got: %s", responseText(t, resp))
	}
}

// The API has no single-board endpoint, so get_board lists the
// workspace's boards and picks the match locally. IDs compare as
// strings because the API is inconsistent about their JSON type.
func TestBoardHandler_GetBoard_NumericID(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[{"id":7,"title":"Dev"},{"id":"B9","title":"Ops"}]`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	resp := callTool(t, handler, "get_board", map[string]interface{}{
		"workspaceId": "W1",
		"boardId":     "7",
	})

	req := backend.last(t)
	if req.Path != "/workspaces/W1/boards" {
		t.Errorf("Expected the workspace board listing, got %s", req.Path)
	}
	text := responseText(t, resp)
	if !contains(text, "Dev") {
		t.Errorf("Expected board 7 in response, got: %s", text)
	}
	if contains(text, "Ops") {
		t.Errorf("Response must contain only the requested board, got: %s", text)
	}
}

func TestBoardHandler_GetBoard_StringID(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[{"id":7,"title":"Dev"},{"id":"B9","title":"Ops"}]`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	resp := callTool(t, handler, "get_board", map[string]interface{}{
		"workspaceId": "W1",
		"boardId":     "B9",
	})

	if !contains(responseText(t, resp), "Ops") {
		t.Errorf("Expected board B9 in response, got: %s", responseText(t, resp))
	}
}

func TestBoardHandler_GetBoard_NotFound(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[{"id":7,"title":"Dev"}]`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: "get_board",
		Arguments: map[string]interface{}{
			"workspaceId": "W1",
			"boardId":     "B404",
		},
	})
	if err == nil {
		t.Fatal("Expected not-found error")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("Expected NotFoundError, got %T: %v", err, err)
	}
	if err.Error() != "board B404 not found in workspace W1" {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestBoardHandler_GetBoard_UnexpectedPayload(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"not":"a list"}`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: "get_board",
		Arguments: map[string]interface{}{
			"workspaceId": "W1",
			"boardId":     "7",
		},
	})
	if err == nil {
		t.Fatal("Expected error for non-list payload")
	}
	if !contains(err.Error(), "unexpected response") {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestBoardHandler_CreateBoard(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"B2"}`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "create_board", map[string]interface{}{
		"workspaceId": "W1",
		"title":       "Release",
		"viewType":    "kanban",
	})

	req := backend.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", req.Method)
	}
	if req.Path != "/boards" {
		t.Errorf("Expected path /boards, got %s", req.Path)
	}

	body := decodeBody(t, req.Body)
	if body["workspaceId"] != "W1" {
		t.Errorf("Expected workspaceId W1, got %v", body["workspaceId"])
	}
	if body["title"] != "Release" {
		t.Errorf("Expected title Release, got %v", body["title"])
	}
	if body["viewType"] != "kanban" {
		t.Errorf("Expected viewType kanban, got %v", body["viewType"])
	}
	if _, exists := body["templateId"]; exists {
		t.Error("templateId was not supplied and must not be in the body")
	}
}

func TestBoardHandler_ListRows(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[]`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "list_rows", map[string]interface{}{"boardId": "B1"})

	req := backend.last(t)
	if req.Method != http.MethodGet {
		t.Errorf("Expected GET, got %s", req.Method)
	}
	if req.Path != "/boards/B1/rows" {
		t.Errorf("Expected path /boards/B1/rows, got %s", req.Path)
	}
}

func TestBoardHandler_ListStatuses(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `[]`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "list_statuses", map[string]interface{}{"boardId": "B1"})

	req := backend.last(t)
	if req.Path != "/boards/B1/statuses" {
		t.Errorf("Expected path /boards/B1/statuses, got %s", req.Path)
	}
}

func TestBoardHandler_CreateRow(t *testing.T) {
	backend := newCaptureBackend(http.StatusOK, `{"id":"R1"}`)
	defer backend.server.Close()
	handler := NewBoardHandler(newBackendClient(backend), domain.NewResponseMapper())

	callTool(t, handler, "create_row", map[string]interface{}{
		"boardId":   "B1",
		"title":     "Backend",
		"startDate": "2024-01-01",
	})

	req := backend.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", req.Method)
	}
	if req.Path != "/rows" {
		t.Errorf("Expected path /rows, got %s", req.Path)
	}

	body := decodeBody(t, req.Body)
	if body["boardId"] != "B1" || body["title"] != "Backend" {
		t.Errorf("Unexpected body: %v", body)
	}
	if body["startDate"] != "2024-01-01" {
		t.Errorf("Expected startDate in body, got %v", body)
	}
	if _, exists := body["endDate"]; exists {
		t.Error("endDate was not supplied and must not be in the body")
	}
}

func TestBoardHandler_MissingArguments(t *testing.T) {
	handler := NewBoardHandler(nil, domain.NewResponseMapper())

	tests := []struct {
		tool    string
		args    map[string]interface{}
		wantArg string
	}{
		{"list_boards", map[string]interface{}{}, "workspaceId"},
		{"get_board", map[string]interface{}{"workspaceId": "W1"}, "boardId"},
		{"create_board", map[string]interface{}{"workspaceId": "W1"}, "title"},
		{"list_rows", map[string]interface{}{}, "boardId"},
		{"list_statuses", map[string]interface{}{}, "boardId"},
		{"create_row", map[string]interface{}{"boardId": "B1"}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"_"+tt.wantArg, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), &domain.ToolRequest{Name: tt.tool, Arguments: tt.args})
			if err == nil {
				t.Fatal("Expected error")
			}
			var missing *domain.MissingArgumentError
			if !errors.As(err, &missing) {
				t.Fatalf("Expected MissingArgumentError, got %T", err)
			}
			if missing.Argument != tt.wantArg {
				t.Errorf("Expected missing %s, got %s", tt.wantArg, missing.Argument)
			}
		})
	}
}

func TestBoardHandler_UnknownTool(t *testing.T) {
	handler := NewBoardHandler(nil, domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{Name: "resolve_board"})
	var unknown *domain.UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownToolError, got %v", err)
	}
}
