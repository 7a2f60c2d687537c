// Package client is a Go API client for the secret task game service:
// session handling, typed domain services, payload normalization, file
// classification and the preview/download flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// APIError is the uniform shape every failed request surfaces. Message is
// extracted from the server's "message" or "error" field when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Client is the gateway: it attaches the bearer token to every request and
// turns non-2xx responses into *APIError. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokenFn func() string
}

// NewClient builds a gateway for the given base URL. tokenFn is consulted
// on every request; a nil or empty result sends no Authorization header.
func NewClient(baseURL string, tokenFn func() string) *Client {
	if tokenFn == nil {
		tokenFn = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokenFn: tokenFn,
	}
}

// SetHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokenFn(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// extractErrorMessage pulls the server-provided message out of an error
// body, falling back to a generic string so failures are never silent.
func extractErrorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "Message", "error", "Error"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return "request failed"
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// SendJSON issues method with a JSON body and decodes the response into out.
func (c *Client) SendJSON(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, r, "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// SendRaw issues method with a pre-encoded JSON body. The assignment-status
// and event-status endpoints take raw JSON scalars rather than objects.
func (c *Client) SendRaw(ctx context.Context, method, path string, raw []byte, out any) error {
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(raw), "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetBinary fetches a binary response body, returning the bytes and the
// Content-Type the server declared.
func (c *Client) GetBinary(ctx context.Context, path string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(data)}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Upload is one file part of a multipart submission. Parts are sent in
// slice order.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// PostMultipart encodes fields plus ordered file parts under the given
// field name and decodes the JSON response into out.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField string, files []Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return err
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, f.Name))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, out)
}
