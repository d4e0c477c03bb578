package domain

// ResponseMapper converts tool outcomes into MCP tool responses.
// Success payloads pass through as pretty-printed JSON without any
// reshaping; failures become in-band error responses.
type ResponseMapper interface {
	// MapToToolResponse renders a decoded API payload as a single text
	// content block. A nil payload renders as an empty object.
	MapToToolResponse(apiResponse interface{}) (*ToolResponse, error)

	// MapRawContent wraps already-serialized bytes, such as downloaded
	// attachment content, in a text content block unchanged.
	MapRawContent(content []byte) *ToolResponse

	// MapError converts any tool execution failure into a ToolResponse
	// with IsError set. The error text is preserved for the client.
	MapError(err error) *ToolResponse
}
