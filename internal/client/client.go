// Package client is a typed client for the lost-and-found REST API.
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
	"strings"
	"time"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
)

// Session is the signed-in state of a client: the bearer token and whether
// it carries the admin claim. The zero value is a signed-out session.
type Session struct {
	Token   string
	IsAdmin bool
}

// LoggedIn reports whether the session holds a token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client calls the REST API at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/register", Session{}, map[string]string{
		"email":    email,
		"password": password,
	}, nil)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp struct {
		Token   string `json:"token"`
		IsAdmin bool   `json:"isAdmin"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/login", Session{}, map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: resp.Token, IsAdmin: resp.IsAdmin}, nil
}

// ListItems returns all lost items.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := c.doJSON(ctx, http.MethodGet, "/api/items", Session{}, nil, &items)
	return items, err
}

// Search returns lost items whose name or description contains query.
func (c *Client) Search(ctx context.Context, query string) ([]model.Item, error) {
	var items []model.Item
	err := c.doJSON(ctx, http.MethodGet, "/api/search?query="+url.QueryEscape(query), Session{}, nil, &items)
	return items, err
}

// ListAllItems returns every item. Requires an admin session.
func (c *Client) ListAllItems(ctx context.Context, s Session) ([]model.Item, error) {
	var items []model.Item
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/items", s, nil, &items)
	return items, err
}

// Photo is an optional attachment for CreateItem.
type Photo struct {
	Filename string
	Content  io.Reader
}

// CreateItem reports an item as multipart form data. photo may be nil.
func (c *Client) CreateItem(ctx context.Context, s Session, in model.NewItem, photo *Photo) (*model.Item, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := []struct{ key, value string }{
		{"name", in.Name},
		{"category", in.Category},
		{"lastSeen", in.LastSeen},
		{"description", in.Description},
		{"contactName", in.ContactName},
		{"contactEmail", in.ContactEmail},
		{"contactPhone", in.ContactPhone},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.key, f.value); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", f.key, err)
		}
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("image", photo.Filename)
		if err != nil {
			return nil, fmt.Errorf("creating image part: %w", err)
		}
		if _, err := io.Copy(fw, photo.Content); err != nil {
			return nil, fmt.Errorf("writing image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var item model.Item
	if err := c.do(ctx, http.MethodPost, "/api/items", s, mw.FormDataContentType(), &body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem applies a partial update. Requires an admin session.
func (c *Client) UpdateItem(ctx context.Context, s Session, id int64, patch model.ItemPatch) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, http.MethodPut, "/api/admin/items/"+strconv.FormatInt(id, 10), s, patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item. Requires an admin session.
func (c *Client) DeleteItem(ctx context.Context, s Session, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/items/"+strconv.FormatInt(id, 10), s, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, s Session, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, s, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, s Session, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.LoggedIn() {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
