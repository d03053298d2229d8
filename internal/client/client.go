// Package client is a typed HTTP client for the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"taskManager/internal/models/task"
	"time"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d [%s]: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a timeout on a copy of the current http.Client, so a
// shared client passed to WithHTTPClient is left alone.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateInput is the body of a create call. An empty Status lets the server
// choose the default.
type CreateInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      task.Status `json:"status,omitempty"`
}

// UpdateInput is partial: nil fields are not sent.
type UpdateInput struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *task.Status `json:"status,omitempty"`
}

func (c *Client) Create(ctx context.Context, in CreateInput) (*task.Task, error) {
	if in.Status != "" {
		if _, err := task.ParseStatus(string(in.Status)); err != nil {
			return nil, err
		}
	}

	var created task.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) List(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	query := url.Values{}
	if filter.Keyword != "" {
		query.Set("keyword", filter.Keyword)
	}
	if filter.Status != "" {
		if _, err := task.ParseStatus(string(filter.Status)); err != nil {
			return nil, err
		}
		query.Set("status", string(filter.Status))
	}

	path := "/api/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	tasks := []task.Task{}
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Get(ctx context.Context, id string) (*task.Task, error) {
	var found task.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &found); err != nil {
		return nil, err
	}
	return &found, nil
}

func (c *Client) Update(ctx context.Context, id string, in UpdateInput) (*task.Task, error) {
	if in.Status != nil {
		if _, err := task.ParseStatus(string(*in.Status)); err != nil {
			return nil, err
		}
	}

	var updated task.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), in, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the task and returns the server's confirmation message.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
