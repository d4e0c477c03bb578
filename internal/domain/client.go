package domain

import "context"

// TeamhoodAPI is the transport surface tool handlers call into. The
// concrete implementation lives in infrastructure; handlers only ever
// see decoded JSON payloads or raw bytes, never *http.Response.
type TeamhoodAPI interface {
	// Request performs a JSON round trip against the API. pathAndQuery
	// is relative to the configured base URL and starts with "/". A nil
	// body sends no payload. The decoded response keeps whatever shape
	// the API returned; an empty 2xx body decodes to an empty object.
	Request(ctx context.Context, method, pathAndQuery string, body interface{}) (interface{}, error)

	// UploadAttachment posts a multipart form attaching content to an
	// item and returns the decoded attachment metadata.
	UploadAttachment(ctx context.Context, itemID, name string, content []byte) (interface{}, error)

	// DownloadAttachment fetches an attachment's binary content.
	DownloadAttachment(ctx context.Context, attachmentID string) ([]byte, error)
}
