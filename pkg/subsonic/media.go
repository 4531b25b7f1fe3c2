package subsonic

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// FetchMedia downloads the raw bytes of a track.
//
// A successful response must carry a binary content type. Some servers
// answer a media request with HTTP 200 and a JSON error envelope; such a
// response is re-parsed and classified as a protocol error, never
// returned to the caller as media bytes.
func (c *Client) FetchMedia(ctx context.Context, trackID string) ([]byte, error) {
	return c.fetchBinary(ctx, "stream", url.Values{"id": {trackID}})
}

// Download fetches the original file for a track without any server-side
// transcoding. Same envelope handling as FetchMedia.
func (c *Client) Download(ctx context.Context, trackID string) ([]byte, error) {
	return c.fetchBinary(ctx, "download", url.Values{"id": {trackID}})
}

// CoverArt downloads cover art by ID. size requests a square scaled
// image when > 0.
func (c *Client) CoverArt(ctx context.Context, coverID string, size int) ([]byte, error) {
	params := url.Values{"id": {coverID}}
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	return c.fetchBinary(ctx, "getCoverArt", params)
}

// fetchBinary dispatches a binary endpoint call through the same
// breaker/retry path as envelope calls.
func (c *Client) fetchBinary(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var (
		data    []byte
		callErr error
	)

	err := c.sched.do(ctx, PriorityBulk, func(ctx context.Context) {
		callErr = c.guarded(ctx, func(ctx context.Context) (*Error, Disposition) {
			body, contentType, perr, disp := c.transport.getRaw(ctx, endpoint, params)
			if perr != nil {
				return c.interceptAuth(perr, disp)
			}
			if isStructuredContentType(contentType) {
				// An error envelope hiding behind a 200 at a binary
				// endpoint; classify it like any other failure.
				_, perr, disp := c.transport.parseEnvelope(endpoint, body, contentType)
				if perr == nil {
					perr = &Error{Kind: KindServerGeneric, Code: CodeGeneric, Message: "structured payload at media endpoint"}
					disp = Fatal
				}
				return c.interceptAuth(perr, disp)
			}
			data = body
			return nil, 0
		})
	})
	if err != nil {
		return nil, err
	}
	if callErr != nil {
		return nil, callErr
	}
	return data, nil
}

// isStructuredContentType reports whether a content type indicates a
// textual or structured payload rather than media bytes.
func isStructuredContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "application/json"),
		strings.HasPrefix(ct, "application/xml"),
		strings.HasPrefix(ct, "text/"):
		return true
	}
	return false
}
