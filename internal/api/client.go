package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a remote mplan API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the API is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthcheck", "", nil)
	return err
}

// Translate converts a node document to a wire frame, applying the vehicle profile when vehicle is set.
func (c *Client) Translate(ctx context.Context, document []byte, vehicle string) (FrameResponse, error) {
	path := "/v1/document/wire"
	if vehicle != "" {
		path += "?vehicle=" + url.QueryEscape(vehicle)
	}
	var out FrameResponse
	data, err := c.do(ctx, http.MethodPost, path, contentXML, document)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// Document converts a marshalled wire frame to a node document.
func (c *Client) Document(ctx context.Context, frame []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/v1/wire/document", contentMsgpack, frame)
}

// Pattern generates the path of a pattern kind, configured by an optional document.
func (c *Client) Pattern(ctx context.Context, kind string, document []byte) (PatternResponse, error) {
	var out PatternResponse
	data, err := c.do(ctx, http.MethodPost, "/v1/patterns/"+url.PathEscape(kind), contentXML, document)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// Kinds lists the maneuver kinds a vehicle supports, or all kinds when vehicle is empty.
func (c *Client) Kinds(ctx context.Context, vehicle string) ([]string, error) {
	path := "/v1/kinds"
	if vehicle != "" {
		path = "/v1/vehicles/" + url.PathEscape(vehicle) + "/kinds"
	}
	var out []string
	data, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// ListTemplates lists the template library.
func (c *Client) ListTemplates(ctx context.Context) ([]TemplateResponse, error) {
	var out []TemplateResponse
	data, err := c.do(ctx, http.MethodGet, "/v1/templates", "", nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// GetTemplate returns the node document of a template.
func (c *Client) GetTemplate(ctx context.Context, name string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/v1/templates/"+url.PathEscape(name), "", nil)
}

// PutTemplate stores a node document under name.
func (c *Client) PutTemplate(ctx context.Context, name, vehicle string, document []byte, tags ...string) error {
	q := url.Values{}
	if vehicle != "" {
		q.Set("vehicle", vehicle)
	}
	for _, tag := range tags {
		q.Add("tag", tag)
	}
	path := "/v1/templates/" + url.PathEscape(name)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	_, err := c.do(ctx, http.MethodPut, path, contentXML, document)
	return err
}

// DeleteTemplate removes a template.
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/templates/"+url.PathEscape(name), "", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
	}
	return data, nil
}
