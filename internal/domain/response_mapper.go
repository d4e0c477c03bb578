package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
// It renders Teamhood API payloads exactly as received, indented with
// two spaces, so clients see the same fields the API produced.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse renders a decoded API payload as pretty-printed JSON.
func (m *DefaultResponseMapper) MapToToolResponse(apiResponse interface{}) (*ToolResponse, error) {
	if apiResponse == nil {
		return &ToolResponse{Content: TextContent("{}")}, nil
	}

	jsonBytes, err := json.MarshalIndent(apiResponse, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal API response: %w", err)
	}

	return &ToolResponse{Content: TextContent(string(jsonBytes))}, nil
}

// MapRawContent wraps raw bytes in a text content block without
// re-encoding them.
func (m *DefaultResponseMapper) MapRawContent(content []byte) *ToolResponse {
	return &ToolResponse{Content: TextContent(string(content))}
}

// MapError converts a tool execution failure into an in-band error
// response. Every failure, from a missing argument to a 500 from the
// API, takes this shape so clients always get a well-formed result.
func (m *DefaultResponseMapper) MapError(err error) *ToolResponse {
	return &ToolResponse{
		Content: TextContent(fmt.Sprintf("Error: %s", err.Error())),
		IsError: true,
	}
}
