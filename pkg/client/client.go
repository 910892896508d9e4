// Package client is the HTTP dispatcher for the taskboard API. Every
// operation returns a Result instead of an error: transport failures,
// non-success statuses and server-side validation errors are all
// captured at this boundary and never propagate as raw errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"taskboard.dev/taskboard/pkg/api"
	"taskboard.dev/taskboard/pkg/querystate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultPerPage = 15
)

// genericFailure is the user-facing message when the server did not
// supply one of its own.
const genericFailure = "something went wrong, please try again"

// TokenSource supplies the bearer credential for a request, or an
// empty string when no user is signed in.
type TokenSource func() string

// Result is the uniform outcome of every dispatcher operation.
// FieldErrors carries server-side validation messages keyed by field
// name when present. StatusCode is the HTTP status of the response, or
// zero when the request never reached the server.
type Result[T any] struct {
	Success     bool
	Data        T
	Message     string
	FieldErrors map[string][]string
	StatusCode  int
}

// Forbidden reports that the server rejected the request for lack of
// permission, as opposed to it merely failing.
func (r Result[T]) Forbidden() bool { return r.StatusCode == http.StatusForbidden }

// Ack is the payload of operations that return only an acknowledgement.
type Ack struct{}

// Client talks to one taskboard server on behalf of one user.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	perPage int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for
// tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithPerPage sets the page size requested on listings.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// New returns a Client for the API at baseURL. token may be nil for
// unauthenticated use.
func New(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		token:   token,
		perPage: defaultPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PerPage reports the page size the client requests on listings.
func (c *Client) PerPage() int { return c.perPage }

func (c *Client) Login(ctx context.Context, email, password string) Result[api.LoginResponse] {
	return doJSON[api.LoginResponse](ctx, c, http.MethodPost, "/api/login", api.LoginRequest{
		Email:    email,
		Password: password,
	})
}

func (c *Client) Logout(ctx context.Context) Result[Ack] {
	return doJSON[Ack](ctx, c, http.MethodPost, "/api/logout", nil)
}

// ListTasks fetches the page of tasks selected by state.
func (c *Client) ListTasks(ctx context.Context, state querystate.State) Result[api.TaskPage] {
	params := state.Values()
	params.Set("per_page", strconv.Itoa(c.perPage))

	return doJSON[api.TaskPage](ctx, c, http.MethodGet, "/api/tasks?"+params.Encode(), nil)
}

func (c *Client) GetTask(ctx context.Context, id string) Result[api.Task] {
	return doJSON[api.Task](ctx, c, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil)
}

func (c *Client) CreateTask(ctx context.Context, input api.TaskInput) Result[api.Task] {
	return doJSON[api.Task](ctx, c, http.MethodPost, "/api/tasks", input)
}

func (c *Client) UpdateTask(ctx context.Context, id string, input api.TaskInput) Result[api.Task] {
	return doJSON[api.Task](ctx, c, http.MethodPut, "/api/tasks/"+url.PathEscape(id), input)
}

func (c *Client) DeleteTask(ctx context.Context, id string) Result[Ack] {
	return doJSON[Ack](ctx, c, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil)
}

// UploadAttachment streams one file to a task as a multipart request.
func (c *Client) UploadAttachment(ctx context.Context, taskID, filename string, file io.Reader) Result[api.Attachment] {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return failure[api.Attachment](fmt.Sprintf("prepare upload: %v", err))
	}
	if _, err := io.Copy(part, file); err != nil {
		return failure[api.Attachment](fmt.Sprintf("read file: %v", err))
	}
	if err := writer.Close(); err != nil {
		return failure[api.Attachment](fmt.Sprintf("prepare upload: %v", err))
	}

	path := "/api/tasks/" + url.PathEscape(taskID) + "/attachments"
	req, err := c.newRequest(ctx, http.MethodPost, path, &body)
	if err != nil {
		return failure[api.Attachment](fmt.Sprintf("prepare upload: %v", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return send[api.Attachment](c, req)
}

func (c *Client) DeleteAttachment(ctx context.Context, taskID, attachmentID string) Result[Ack] {
	path := "/api/tasks/" + url.PathEscape(taskID) + "/attachments/" + url.PathEscape(attachmentID)
	return doJSON[Ack](ctx, c, http.MethodDelete, path, nil)
}

func (c *Client) Preferences(ctx context.Context) Result[api.Preference] {
	return doJSON[api.Preference](ctx, c, http.MethodGet, "/api/preferences", nil)
}

func (c *Client) UpdatePreferences(ctx context.Context, input api.PreferenceInput) Result[api.Preference] {
	return doJSON[api.Preference](ctx, c, http.MethodPut, "/api/preferences", input)
}

func (c *Client) ListUsers(ctx context.Context) Result[[]api.User] {
	return doJSON[[]api.User](ctx, c, http.MethodGet, "/api/admin/users", nil)
}

func (c *Client) ToggleUserActive(ctx context.Context, id string) Result[api.User] {
	path := "/api/admin/users/" + url.PathEscape(id) + "/toggle-active"
	return doJSON[api.User](ctx, c, http.MethodPut, path, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// doJSON performs a request with an optional JSON payload and decodes
// the envelope into a Result.
func doJSON[T any](ctx context.Context, c *Client, method, path string, payload any) Result[T] {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return failure[T](fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return failure[T](fmt.Sprintf("prepare request: %v", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return send[T](c, req)
}

func send[T any](c *Client, req *http.Request) Result[T] {
	resp, err := c.http.Do(req)
	if err != nil {
		return failure[T](fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return failure[T](fmt.Sprintf("read response: %v", err))
	}

	var envelope api.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= 400 {
			result := failure[T](fmt.Sprintf("server returned %s", resp.Status))
			result.StatusCode = resp.StatusCode
			return result
		}
		return failure[T](fmt.Sprintf("decode response: %v", err))
	}

	if !envelope.Success || resp.StatusCode >= 400 {
		result := failure[T](envelope.Message)
		if result.Message == "" {
			result.Message = genericFailure
		}
		result.FieldErrors = envelope.Errors
		result.StatusCode = resp.StatusCode
		return result
	}

	result := Result[T]{Success: true, Message: envelope.Message, StatusCode: resp.StatusCode}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &result.Data); err != nil {
			return failure[T](fmt.Sprintf("decode response: %v", err))
		}
	}
	return result
}

func failure[T any](message string) Result[T] {
	return Result[T]{Success: false, Message: message}
}
