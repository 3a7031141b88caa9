package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/bnema/roomtodo/internal/ports"
)

const maxResponseBytes = 1 << 20

// Client is a thin typed wrapper over the backend's REST surface. Every call
// is exactly one request; failures of any kind surface as domain.FetchError
// with a human-readable message and no status code.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.TodoAPI = (*Client)(nil)
var _ ports.RoomAPI = (*Client)(nil)

// NewClient builds a client for a base URL like "http://host:port/api".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) ListTodos(ctx context.Context, roomID domain.RoomID) ([]domain.Todo, error) {
	query := url.Values{}
	query.Set("room", string(roomID))

	var todos []domain.Todo
	if err := c.call(ctx, http.MethodGet, "/todos", query, nil, &todos, "failed to fetch todos"); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) CreateTodo(ctx context.Context, roomID domain.RoomID, text string) (domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Todo{}, domain.ErrEmptyTodoText
	}

	query := url.Values{}
	query.Set("room", string(roomID))

	body := struct {
		Text string `json:"text"`
	}{Text: text}

	var todo domain.Todo
	if err := c.call(ctx, http.MethodPost, "/todos", query, body, &todo, "failed to create todo"); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

func (c *Client) UpdateTodo(ctx context.Context, roomID domain.RoomID, id domain.TodoID, update domain.TodoUpdate) (domain.Todo, error) {
	query := url.Values{}
	query.Set("id", string(id))
	query.Set("room", string(roomID))

	var todo domain.Todo
	if err := c.call(ctx, http.MethodPut, "/todos", query, update, &todo, "failed to update todo"); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

// DeleteTodo is not idempotent: deleting an id the backend no longer knows
// fails with a FetchError like any other rejected request.
func (c *Client) DeleteTodo(ctx context.Context, roomID domain.RoomID, id domain.TodoID) error {
	query := url.Values{}
	query.Set("id", string(id))
	query.Set("room", string(roomID))

	return c.call(ctx, http.MethodDelete, "/todos", query, nil, nil, "failed to delete todo")
}

func (c *Client) CreateRoom(ctx context.Context, name string) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, domain.ErrEmptyRoomName
	}

	body := struct {
		Name string `json:"name"`
	}{Name: name}

	var room domain.Room
	if err := c.call(ctx, http.MethodPost, "/rooms", nil, body, &room, "failed to create room"); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (c *Client) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	query := url.Values{}
	query.Set("id", string(id))

	var room domain.Room
	if err := c.call(ctx, http.MethodGet, "/rooms", query, nil, &room, "failed to fetch room"); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// call performs one request and unwraps the {success, message, data} envelope
// into out. Any transport failure or non-2xx status becomes a FetchError
// carrying failMsg; the response body's error detail is not parsed.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, failMsg string) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewFetchError(failMsg, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.NewFetchError(failMsg, nil)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return domain.NewFetchError(failMsg, err)
	}
	if len(env.Data) == 0 {
		return domain.NewFetchError(failMsg, fmt.Errorf("response envelope has no data"))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domain.NewFetchError(failMsg, err)
	}
	return nil
}
