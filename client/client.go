package client

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

// Message is a feed entry as served by the API.
type Message struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Recipient string    `json:"recipient"`
	CardColor string    `json:"cardColor"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIError is a non-2xx answer. Moderation rejections carry Reason and CleanVersion.
type APIError struct {
	Status       int    `json:"-"`
	Err          string `json:"error"`
	Message      string `json:"message,omitempty"`
	Reason       string `json:"reason,omitempty"`
	CleanVersion string `json:"cleanVersion,omitempty"`
	Field        string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%d): %s", e.Err, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s (%d)", e.Err, e.Status)
}

// Rejected reports whether the server refused the content and offered a replacement.
func (e *APIError) Rejected() bool {
	return e.Status == http.StatusBadRequest && e.CleanVersion != ""
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messagesResponse struct {
	Success  bool      `json:"success"`
	Count    int       `json:"count"`
	Messages []Message `json:"messages"`
}

type postResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    Message `json:"data"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var res healthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]Message, error) {
	var res messagesResponse
	if err := c.do(ctx, http.MethodGet, "/api/messages", nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) SearchMessages(ctx context.Context, query string) ([]Message, error) {
	var res messagesResponse
	path := "/api/messages/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) PostMessage(ctx context.Context, content, recipient string) (Message, error) {
	var res postResponse
	body := map[string]string{"content": content, "recipient": recipient}
	if err := c.do(ctx, http.MethodPost, "/api/messages", body, &res); err != nil {
		return Message{}, err
	}
	return res.Data, nil
}

func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(id), nil, nil)
}

// Login exchanges the admin password for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var res loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, &res); err != nil {
		return "", err
	}
	c.token = res.Token
	return res.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil || apiErr.Err == "" {
			apiErr.Err = http.StatusText(res.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
