package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"teamhood-mcp-server/internal/domain"
)

// AttachmentHandler implements ToolHandler for attachment operations,
// including the two non-JSON paths: multipart upload and raw download.
type AttachmentHandler struct {
	client domain.TeamhoodAPI
	mapper domain.ResponseMapper
}

// NewAttachmentHandler creates a new AttachmentHandler instance.
func NewAttachmentHandler(client domain.TeamhoodAPI, mapper domain.ResponseMapper) *AttachmentHandler {
	return &AttachmentHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for attachment operations
const (
	ToolListAttachments    = "list_attachments"
	ToolGetAttachment      = "get_attachment"
	ToolUpdateAttachment   = "update_attachment"
	ToolDeleteAttachment   = "delete_attachment"
	ToolDownloadAttachment = "download_attachment"
	ToolUploadAttachment   = "upload_attachment"
)

// HandlerName returns the identifier for this handler.
func (h *AttachmentHandler) HandlerName() string {
	return "attachments"
}

// ListTools returns the attachment tool definitions.
func (h *AttachmentHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolListAttachments,
			Description: "List the attachments of an item",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId": stringProp("The item ID"),
			}, "itemId"),
		},
		{
			Name:        ToolGetAttachment,
			Description: "Retrieve attachment metadata by its ID",
			InputSchema: objectSchema(map[string]interface{}{
				"attachmentId": stringProp("The attachment ID"),
			}, "attachmentId"),
		},
		{
			Name:        ToolUpdateAttachment,
			Description: "Rename an attachment",
			InputSchema: objectSchema(map[string]interface{}{
				"attachmentId": stringProp("The attachment ID"),
				"name":         stringProp("The new attachment name"),
			}, "attachmentId", "name"),
		},
		{
			Name:        ToolDeleteAttachment,
			Description: "Delete an attachment",
			InputSchema: objectSchema(map[string]interface{}{
				"attachmentId": stringProp("The attachment ID"),
			}, "attachmentId"),
		},
		{
			Name:        ToolDownloadAttachment,
			Description: "Download the raw content of an attachment",
			InputSchema: objectSchema(map[string]interface{}{
				"attachmentId": stringProp("The attachment ID"),
			}, "attachmentId"),
		},
		{
			Name:        ToolUploadAttachment,
			Description: "Upload a file as an attachment on an item; content must be base64 encoded",
			InputSchema: objectSchema(map[string]interface{}{
				"itemId":  stringProp("The item to attach the file to"),
				"name":    stringProp("The file name"),
				"content": stringProp("The file content, base64 encoded"),
			}, "itemId", "name", "content"),
		},
	}
}

// Handle processes an attachment tool call.
func (h *AttachmentHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolListAttachments:
		return h.handleListAttachments(ctx, req.Arguments)
	case ToolGetAttachment:
		return h.handleGetAttachment(ctx, req.Arguments)
	case ToolUpdateAttachment:
		return h.handleUpdateAttachment(ctx, req.Arguments)
	case ToolDeleteAttachment:
		return h.handleDeleteAttachment(ctx, req.Arguments)
	case ToolDownloadAttachment:
		return h.handleDownloadAttachment(ctx, req.Arguments)
	case ToolUploadAttachment:
		return h.handleUploadAttachment(ctx, req.Arguments)
	default:
		return nil, &domain.UnknownToolError{Tool: req.Name}
	}
}

// handleListAttachments handles the list_attachments tool call.
func (h *AttachmentHandler) handleListAttachments(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/items/%s/attachments", itemID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleGetAttachment handles the get_attachment tool call.
func (h *AttachmentHandler) handleGetAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	attachmentID, err := getStringParam(args, "attachmentId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodGet, fmt.Sprintf("/attachments/%s", attachmentID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleUpdateAttachment handles the update_attachment tool call.
func (h *AttachmentHandler) handleUpdateAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	attachmentID, err := getStringParam(args, "attachmentId", true)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodPut, fmt.Sprintf("/attachments/%s", attachmentID), map[string]interface{}{
		"name": name,
	})
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleDeleteAttachment handles the delete_attachment tool call.
func (h *AttachmentHandler) handleDeleteAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	attachmentID, err := getStringParam(args, "attachmentId", true)
	if err != nil {
		return nil, err
	}

	result, err := h.client.Request(ctx, http.MethodDelete, fmt.Sprintf("/attachments/%s", attachmentID), nil)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}

// handleDownloadAttachment handles the download_attachment tool call.
// The body is not JSON, so it bypasses the pretty-printer and is
// returned exactly as the API sent it.
func (h *AttachmentHandler) handleDownloadAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	attachmentID, err := getStringParam(args, "attachmentId", true)
	if err != nil {
		return nil, err
	}

	content, err := h.client.DownloadAttachment(ctx, attachmentID)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapRawContent(content), nil
}

// handleUploadAttachment handles the upload_attachment tool call. The
// content argument arrives base64 encoded and is decoded to raw bytes
// before the multipart upload.
func (h *AttachmentHandler) handleUploadAttachment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	itemID, err := getStringParam(args, "itemId", true)
	if err != nil {
		return nil, err
	}
	name, err := getStringParam(args, "name", true)
	if err != nil {
		return nil, err
	}
	encoded, err := getStringParam(args, "content", true)
	if err != nil {
		return nil, err
	}

	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &domain.InvalidArgumentError{Argument: "content", Expected: "base64-encoded data"}
	}

	result, err := h.client.UploadAttachment(ctx, itemID, name, content)
	if err != nil {
		return nil, err
	}

	return h.mapper.MapToToolResponse(result)
}
