// Package client calls the restaurant HTTP API.
//
// AddStarred and ListStarred return an *HTTPError for non-2xx responses.
// Unstar and UpdateComment instead return the raw status code and leave the
// interpretation to the caller.
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
	"time"

	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/starred"
)

// EndpointEnv names the environment variable holding the API base URL.
const EndpointEnv = "API_ENDPOINT"

const (
	restaurantsPath = "/restaurants"
	starredPath     = "/restaurants/starred"
)

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

// Error returns the response body text, or the status text when the body is
// empty.
func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(bytes.TrimSpace(e.Body)) == 0 {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return string(e.Body)
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// Client is a client for the restaurant API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// New creates a client for the API at endpoint (e.g. "http://localhost:3001").
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("client: endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("client: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: endpoint must be http or https, got %q", endpoint)
	}

	c := &Client{
		baseURL:    endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Starred restaurants

// AddStarred stars a restaurant and returns the joined record.
func (c *Client) AddStarred(ctx context.Context, restaurantID, comment string) (starred.Joined, error) {
	var out starred.Joined
	body := map[string]string{"restaurantId": restaurantID, "comment": comment}
	err := c.doJSON(ctx, http.MethodPost, starredPath, body, &out)
	return out, err
}

// ListStarred returns every starred restaurant.
func (c *Client) ListStarred(ctx context.Context) ([]starred.Joined, error) {
	var out []starred.Joined
	err := c.doJSON(ctx, http.MethodGet, starredPath, nil, &out)
	return out, err
}

// Unstar deletes a starred record and returns the response status code.
func (c *Client) Unstar(ctx context.Context, id string) (int, error) {
	return c.doStatus(ctx, http.MethodDelete, starredPath+"/"+url.PathEscape(id), nil)
}

// UpdateComment replaces a starred record's comment and returns the response
// status code.
func (c *Client) UpdateComment(ctx context.Context, id, comment string) (int, error) {
	body := map[string]string{"comment": comment}
	return c.doStatus(ctx, http.MethodPut, starredPath+"/"+url.PathEscape(id), body)
}

// Restaurants

// ListRestaurants returns every restaurant.
func (c *Client) ListRestaurants(ctx context.Context) ([]restaurant.Restaurant, error) {
	var out []restaurant.Restaurant
	err := c.doJSON(ctx, http.MethodGet, restaurantsPath, nil, &out)
	return out, err
}

// CreateRestaurant adds a restaurant.
func (c *Client) CreateRestaurant(ctx context.Context, name string) (restaurant.Restaurant, error) {
	var out restaurant.Restaurant
	err := c.doJSON(ctx, http.MethodPost, restaurantsPath, map[string]string{"name": name}, &out)
	return out, err
}

// DeleteRestaurant removes a restaurant.
func (c *Client) DeleteRestaurant(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, restaurantsPath+"/"+url.PathEscape(id), nil, nil)
}

// Internal helpers

// doJSON sends the request and decodes a 2xx JSON response into out (when
// out is non-nil). Other statuses become an *HTTPError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func (c *Client) doStatus(ctx context.Context, method, path string, body any) (int, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return resp, nil
}
