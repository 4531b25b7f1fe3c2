package subsonic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// transport issues single HTTP requests against the Subsonic REST base
// path and parses the response envelope. It performs no retries and no
// circuit breaking; those compose around it.
type transport struct {
	httpClient *http.Client
	baseURL    string
	version    string
	clientName string
	creds      *credentials
	logger     Logger
}

// newHTTPClient builds the default pooled HTTP client. Connection reuse
// across the worker pool is what keeps a full library enumeration inside
// its latency budget, so idle connections are sized to the pool.
func newHTTPClient(timeout time.Duration, poolSize int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        poolSize * 2,
			MaxIdleConnsPerHost: poolSize,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// buildURL constructs the request URL for an endpoint, merging the
// protocol parameters (version, client name, JSON format) with the
// per-call parameters and a fresh set of authentication parameters.
func (t *transport) buildURL(endpoint string, params url.Values) (string, error) {
	v := url.Values{}
	for k, vals := range params {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	v.Set("v", t.version)
	v.Set("c", t.clientName)
	v.Set("f", "json")
	if err := t.creds.apply(v); err != nil {
		return "", err
	}
	return strings.TrimRight(t.baseURL, "/") + "/rest/" + endpoint + "?" + v.Encode(), nil
}

// get issues one GET and parses the JSON envelope. On failure it returns
// the classified protocol error and its disposition; network-level
// failures classify as transient.
func (t *transport) get(ctx context.Context, endpoint string, params url.Values) (*subsonicResponse, *Error, Disposition) {
	body, contentType, perr, disp := t.getRaw(ctx, endpoint, params)
	if perr != nil {
		return nil, perr, disp
	}
	return t.parseEnvelope(endpoint, body, contentType)
}

// getRaw issues one GET and returns the raw body and content type. Used
// directly by media retrieval, which expects binary payloads.
func (t *transport) getRaw(ctx context.Context, endpoint string, params url.Values) (body []byte, contentType string, perr *Error, disp Disposition) {
	u, err := t.buildURL(endpoint, params)
	if err != nil {
		return nil, "", &Error{Kind: KindServerGeneric, Code: codeNetwork, Message: err.Error()}, Fatal
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", &Error{Kind: KindServerGeneric, Code: codeNetwork, Message: err.Error()}, Fatal
	}
	req.Header.Set("User-Agent", t.clientName)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logDebugf("subsonic: %s: network error: %v", endpoint, err)
		return nil, "", &Error{Kind: KindNetworkTransient, Code: codeNetwork, Message: err.Error()}, Retry
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		t.logDebugf("subsonic: %s: read error: %v", endpoint, err)
		return nil, "", &Error{Kind: KindNetworkTransient, Code: codeNetwork, Message: err.Error()}, Retry
	}

	if resp.StatusCode >= 500 {
		perr, disp := Classify(codeNetwork, resp.StatusCode)
		perr.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return nil, "", perr, disp
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &Error{
			Kind:    KindServerGeneric,
			Code:    codeNetwork,
			Message: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode),
		}, Fatal
	}

	return body, resp.Header.Get("Content-Type"), nil, 0
}

// parseEnvelope decodes a JSON response envelope and classifies any
// error object it carries.
func (t *transport) parseEnvelope(endpoint string, body []byte, contentType string) (*subsonicResponse, *Error, Disposition) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.logDebugf("subsonic: %s: malformed envelope: %v", endpoint, err)
		perr := &Error{
			Kind:    KindServerGeneric,
			Code:    codeNetwork,
			Message: fmt.Sprintf("malformed response (content type %q)", contentType),
		}
		return nil, perr, Retry
	}

	if env.Response.Status != "ok" {
		if env.Response.Error != nil {
			perr, disp := classifyEnvelope(env.Response.Error.Code, env.Response.Error.Message)
			return nil, perr, disp
		}
		perr := &Error{Kind: KindServerGeneric, Code: CodeGeneric, Message: "failed status without error object"}
		return nil, perr, Retry
	}

	return &env.Response, nil, 0
}

func (t *transport) logDebugf(format string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Debugf(format, args...)
	}
}
