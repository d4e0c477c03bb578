package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamhood-mcp-server/internal/domain"
	"teamhood-mcp-server/internal/metrics"
)

// Protocol identity reported during the initialize handshake.
const (
	serverName      = "teamhood-mcp-server"
	serverVersion   = "1.0.0"
	protocolVersion = "2024-11-05"
)

// Server is the main MCP server implementation. It runs the JSON-RPC
// loop over a Transport, routes tool calls, and converts every tool
// failure into an in-band error result so a single bad call never
// takes the loop down.
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	mapper    domain.ResponseMapper
	metrics   *metrics.Metrics
	config    *domain.Config
	logger    zerolog.Logger
}

// NewServer creates a new MCP server instance. The metrics handle may
// be nil to disable instrumentation.
func NewServer(
	transport domain.Transport,
	router *RequestRouter,
	mapper domain.ResponseMapper,
	m *metrics.Metrics,
	config *domain.Config,
	logger zerolog.Logger,
) *Server {
	return &Server{
		transport: transport,
		router:    router,
		mapper:    mapper,
		metrics:   m,
		config:    config,
		logger:    logger.With().Str("component", "server").Logger(),
	}
}

// Start begins the server operation.
// It starts the transport layer and begins processing incoming requests.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		s.logger.Error().Err(err).Str("transport", s.config.Transport.Type).Msg("failed to start transport")
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.Info().
		Str("transport", s.config.Transport.Type).
		Int("tools", len(s.router.ListAllTools())).
		Msg("server started")

	go s.processRequests(ctx)

	return nil
}

// processRequests continuously processes incoming JSON-RPC requests.
func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("server shutting down")
			return
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, transport is shutting down
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC request.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	logger := s.logger.With().
		Str("call_id", uuid.NewString()).
		Str("method", req.Method).
		Logger()
	logger.Debug().Interface("request_id", req.ID).Msg("received request")

	if err := s.validateRequest(req); err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidRequest, "Invalid Request", err.Error())
		return
	}

	// Notifications carry no ID and expect no reply.
	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Debug().Msg("notification consumed")
		return
	}

	var response *domain.Response
	var err error

	switch req.Method {
	case "initialize":
		response, err = s.handleInitialize(req)
	case "ping":
		response, err = s.handlePing(req)
	case "tools/list":
		response, err = s.handleToolsList(req)
	case "tools/call":
		response, err = s.handleToolsCall(ctx, req, logger)
	default:
		s.sendErrorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("request processing failed")
		// Error response already sent by handler
		return
	}

	if err := s.transport.Send(response); err != nil {
		logger.Error().Err(err).Msg("failed to send response")
	}
}

// validateRequest validates the basic structure of a JSON-RPC request.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	return nil
}

// handleInitialize handles the MCP initialize method.
// This is the initial handshake between client and server.
func (s *Server) handleInitialize(req *domain.Request) (*domain.Response, error) {
	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": serverVersion,
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handlePing handles the MCP ping method with an empty object result.
func (s *Server) handlePing(req *domain.Request) (*domain.Response, error) {
	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{},
	}, nil
}

// handleToolsList handles the MCP tools/list method.
// Returns the aggregated catalog from all registered handlers.
func (s *Server) handleToolsList(req *domain.Request) (*domain.Response, error) {
	result := map[string]interface{}{
		"tools": s.router.ListAllTools(),
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsCall handles the MCP tools/call method. Tool failures of
// any kind, from a missing argument to an API 500, become isError
// results rather than JSON-RPC errors; only malformed params are a
// protocol-level failure.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request, logger zerolog.Logger) (*domain.Response, error) {
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil, err
	}

	start := time.Now()
	toolResp, err := s.router.Route(ctx, toolReq)
	status := "ok"
	if err != nil {
		status = "error"
		logger.Warn().Err(err).Str("tool", toolReq.Name).Msg("tool call failed")
		toolResp = s.mapper.MapError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordToolCall(toolReq.Name, status)
		s.metrics.ObserveToolCallDuration(toolReq.Name, time.Since(start).Seconds())
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  toolResp,
	}, nil
}

// parseToolRequest parses the params field into a ToolRequest.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	// Round-trip through JSON to cover both map params and
	// already-typed structs.
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// sendErrorResponse sends a JSON-RPC error response.
func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	response := &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.Error().
			Err(err).
			Interface("request_id", id).
			Int("code", code).
			Msg("failed to send error response")
	}
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info().Msg("closing server")
	return s.transport.Close()
}
