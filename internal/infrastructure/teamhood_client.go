package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"teamhood-mcp-server/internal/domain"
	"teamhood-mcp-server/internal/metrics"
)

// defaultTimeout bounds a single API round trip when the caller does
// not supply an http.Client.
const defaultTimeout = 30 * time.Second

// TeamhoodClient performs authenticated HTTP round trips against the
// Teamhood REST API. It implements domain.TeamhoodAPI: request and
// response payloads stay untyped JSON end to end so tool output always
// mirrors what the API actually returned.
type TeamhoodClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewTeamhoodClient creates a Teamhood API client. baseURL is the API
// root (e.g. "https://app.teamhood.com/api/v1"); a trailing slash is
// tolerated. A nil httpClient falls back to one with defaultTimeout,
// and m may be nil to disable request metrics.
func NewTeamhoodClient(baseURL, apiKey string, httpClient *http.Client, m *metrics.Metrics, logger zerolog.Logger) *TeamhoodClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &TeamhoodClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		metrics:    m,
		logger:     logger.With().Str("component", "teamhood_client").Logger(),
	}
}

// Request performs a JSON round trip. pathAndQuery must start with "/"
// and may carry an encoded query string. A nil body sends no payload
// and no Content-Type header.
func (c *TeamhoodClient) Request(ctx context.Context, method, pathAndQuery string, body interface{}) (interface{}, error) {
	endpoint := c.baseURL + pathAndQuery

	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, endpoint, reqBody, contentType)
	if err != nil {
		return nil, err
	}

	respBody, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	return decodeBody(respBody)
}

// UploadAttachment posts a multipart form to /attachments. The form
// carries ItemId and Name as plain fields and the raw bytes as a
// binary Content part.
func (c *TeamhoodClient) UploadAttachment(ctx context.Context, itemID, name string, content []byte) (interface{}, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("ItemId", itemID); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if err := writer.WriteField("Name", name); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	part, err := writer.CreateFormFile("Content", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/attachments", &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	respBody, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	return decodeBody(respBody)
}

// DownloadAttachment fetches raw attachment bytes. The body is
// returned untouched since attachment content is not JSON.
func (c *TeamhoodClient) DownloadAttachment(ctx context.Context, attachmentID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/attachments/%s/content", c.baseURL, attachmentID)

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	return c.roundTrip(req)
}

// newRequest builds a request with the credential attached. Teamhood
// expects the raw API key in the Authorization header, no scheme
// prefix.
func (c *TeamhoodClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// roundTrip executes the request and returns the body of a 2xx
// response. Any other status becomes a domain.APIError carrying the
// body verbatim.
func (c *TeamhoodClient) roundTrip(req *http.Request) ([]byte, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordBackendRequest(req.Method, "error")
		}
		return nil, &domain.NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordBackendRequest(req.Method, strconv.Itoa(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// decodeBody interprets a successful response body. Teamhood answers
// some writes with an empty body; those decode to an empty object so
// every tool still has JSON to render.
func decodeBody(body []byte) (interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]interface{}{}, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return decoded, nil
}
