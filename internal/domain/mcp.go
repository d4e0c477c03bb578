package domain

// ToolDefinition describes a single tool exposed through tools/list.
// Name is the identifier clients pass back in tools/call.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// ToolRequest is the decoded params of a tools/call invocation.
type ToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResponse is the result payload of a tools/call invocation.
// Tool failures are reported in-band with IsError set, never as
// JSON-RPC protocol errors.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is one piece of tool output. This server only emits
// text blocks; API payloads are rendered as pretty-printed JSON text.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// JSONSchema describes the expected shape of a tool's arguments.
type JSONSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// TextContent wraps a string in the single-text-block form used by
// every tool in the catalog.
func TextContent(text string) []ContentBlock {
	return []ContentBlock{{Type: "text", Text: text}}
}
