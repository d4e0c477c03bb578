package domain

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// requestBuffer is the depth of the inbound request channel. Reads
// ahead of the processing loop park here instead of blocking the
// transport reader.
const requestBuffer = 10

// Transport defines the interface for MCP transport mechanisms.
// Implementations carry JSON-RPC messages between the client and the
// server over stdio or HTTP.
type Transport interface {
	// Start begins listening for incoming MCP messages.
	// Returns an error if the transport cannot be initialized.
	Start(ctx context.Context) error

	// Send transmits a JSON-RPC response to the client.
	// Returns an error if the response cannot be sent.
	Send(response *Response) error

	// Receive returns a channel for incoming JSON-RPC requests.
	// The channel is closed when the transport is shut down.
	Receive() <-chan *Request

	// Close gracefully shuts down the transport.
	// Returns an error if shutdown fails.
	Close() error
}

// StdioTransport implements Transport over stdin/stdout. Requests
// arrive as newline-delimited JSON-RPC messages on stdin; responses
// leave as single lines on stdout. Nothing else may write to stdout
// while this transport runs, which is why the server logs to stderr.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	reqChan chan *Request
	logger  zerolog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewStdioTransport creates a StdioTransport bound to os.Stdin and
// os.Stdout.
func NewStdioTransport(logger zerolog.Logger) *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout, logger)
}

// NewStdioTransportWithIO creates a StdioTransport with custom IO
// streams. This is primarily used for testing.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer, logger zerolog.Logger) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(reader),
		writer:  bufio.NewWriter(writer),
		reqChan: make(chan *Request, requestBuffer),
		logger:  logger.With().Str("transport", "stdio").Logger(),
	}
}

// Start begins reading JSON-RPC messages from stdin.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// readLoop reads newline-delimited messages until EOF or cancellation.
func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			line, err := t.reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					t.logger.Debug().Msg("stdin closed")
					return
				}
				t.logger.Warn().Err(err).Msg("read error, continuing")
				continue
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			var req Request
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				t.logger.Debug().Err(err).Msg("unparseable message")
				t.sendParseError(nil, err)
				continue
			}

			if req.JSONRPC != "2.0" {
				t.sendInvalidRequest(req.ID, "invalid jsonrpc version")
				continue
			}

			select {
			case t.reqChan <- &req:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Send writes a JSON-RPC response to stdout as a single line followed
// by a newline. The framing breaks if a marshaled response ever
// contained a literal newline, so that is rejected outright.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if strings.ContainsRune(string(data), '\n') {
		return fmt.Errorf("response contains embedded newlines")
	}

	if _, err := t.writer.WriteString(string(data) + "\n"); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	// Flush to ensure immediate delivery
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}

	return nil
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close gracefully shuts down the transport.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	// reqChan is closed by readLoop when it stops reading
	return nil
}

// sendParseError sends a parse error response.
func (t *StdioTransport) sendParseError(id interface{}, err error) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    ParseError,
			Message: "Parse error",
			Data:    err.Error(),
		},
	}
	// Already handling an error, nothing useful to do with another one
	_ = t.Send(response)
}

// sendInvalidRequest sends an invalid request error response.
func (t *StdioTransport) sendInvalidRequest(id interface{}, reason string) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    InvalidRequest,
			Message: "Invalid Request",
			Data:    reason,
		},
	}
	_ = t.Send(response)
}
