// Package upstream is the gateway's client for the storefront backend. The
// backend is a black box: every call is a single best-effort attempt with no
// retry, no caching and no rate limiting, and every failure is normalized into
// an *Error the caller can show to the admin as-is.
package upstream

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Client issues requests against the storefront backend API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the failure-signaling portion shared by all backend responses.
type envelope struct {
	OK      *bool  `json:"ok"`
	Success *bool  `json:"success"`
	ErrMsg  string `json:"error"`
}

// doJSON sends payload (may be nil) as a JSON body and decodes the response
// into out (may be nil).
func (c *Client) doJSON(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &Error{Kind: KindNetwork, Message: err.Error()}
		}
		body = bytes.NewReader(raw)
	}
	return c.do(method, path, body, "application/json", out)
}

// do issues the request and normalizes the outcome. When contentType is empty
// no Content-Type header is set, which lets a multipart body carry its own
// boundary header.
func (c *Client) do(method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "network error: " + err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "network error: " + err.Error()}
	}

	// The envelope decode is best-effort: non-JSON bodies simply leave it empty.
	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: failureMessage(env.ErrMsg, resp.StatusCode),
		}
	}
	if (env.OK != nil && !*env.OK) || (env.Success != nil && !*env.Success) {
		return &Error{
			Kind:    KindApplication,
			Status:  resp.StatusCode,
			Message: failureMessage(env.ErrMsg, resp.StatusCode),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindApplication, Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
		}
	}
	return nil
}
