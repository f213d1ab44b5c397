package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

// Client is a thin HTTP client for the MindClear sync API. It handles
// Bearer token authentication, JSON marshaling, automatic retry with
// exponential backoff on HTTP 429, and the mapping of HTTP statuses onto
// the sync engine's error taxonomy.
//
// Creates carry the client-chosen id in the payload and the server treats
// that id as the durable primary key, so resending a create after a failed
// acknowledgment cannot produce a second row.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a sync API client. The baseURL should be the root URL
// of the API (e.g. https://api.mindclear.app). The token is the bearer
// token for the signed-in user; token management itself lives outside this
// engine.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// errorBody is the JSON error envelope returned by the API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// create POSTs a new row with its client-supplied id.
func (c *Client) create(ctx context.Context, entity model.EntityType, id string, body interface{}) error {
	return c.do(ctx, http.MethodPost, "/"+string(entity), body, nil, entity, id)
}

// update PUTs a partial field set for an existing row.
func (c *Client) update(ctx context.Context, entity model.EntityType, id string, body interface{}) error {
	return c.do(ctx, http.MethodPut, "/"+string(entity)+"/"+id, body, nil, entity, id)
}

// del DELETEs a row. The API treats deleting an already-deleted row as a
// success, so the call is idempotent; a 404 still maps to NotFoundError
// for servers predating that behavior and is handled by the engine the
// same way.
func (c *Client) del(ctx context.Context, entity model.EntityType, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+string(entity)+"/"+id, nil, nil, entity, id)
}

// list GETs rows with server updated_at after since, ordered by updated_at.
// A zero since fetches everything.
func (c *Client) list(ctx context.Context, entity model.EntityType, since time.Time, result interface{}) error {
	path := "/" + string(entity)
	if !since.IsZero() {
		path += "?updatedSince=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}
	return c.do(ctx, http.MethodGet, path, nil, result, entity, "")
}

// do is the core HTTP method that builds the request, handles auth, rate
// limiting with exponential backoff, JSON (de)serialization, and the error
// taxonomy mapping.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	entity model.EntityType,
	id string,
) error {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &NetworkError{Op: method + " " + path, Err: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &NetworkError{Op: method + " " + path, Err: readErr}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if result == nil || resp.StatusCode == http.StatusNoContent {
				return nil
			}
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			return &NotFoundError{Entity: string(entity), ID: id}

		case resp.StatusCode == http.StatusUnprocessableEntity:
			var eb errorBody
			_ = json.Unmarshal(respBody, &eb)
			msg := eb.text()
			if msg == "" {
				msg = strings.TrimSpace(string(respBody))
			}
			return &ValidationError{Entity: string(entity), ID: id, Message: msg}

		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("authentication failed (401) on %s %s: check the stored token", method, path)

		case resp.StatusCode >= 500:
			return &NetworkError{
				Op:  method + " " + path,
				Err: fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
			}

		default:
			return fmt.Errorf("unexpected status %d on %s %s: %s",
				resp.StatusCode, method, path, strings.TrimSpace(string(respBody)))
		}
	}

	return &NetworkError{Op: method + " " + path, Err: fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)}
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
