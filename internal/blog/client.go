// Package blog wraps the blog's bot-facing HTTP API.
package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ad/go-telegram-blog/internal/models"
)

const (
	metaTimeout    = 30 * time.Second
	publishTimeout = 60 * time.Second
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// NewWithHTTPClient allows injecting the HTTP client, for tests.
func NewWithHTTPClient(baseURL, token string, httpClient *http.Client) *Client {
	c := New(baseURL, token)
	c.httpClient = httpClient
	return c
}

// Meta fetches the categories and tags available for new posts.
func (c *Client) Meta(ctx context.Context) (*models.BlogMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/bot/meta/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("meta request returned %d: %s", resp.StatusCode, string(body))
	}

	var meta models.BlogMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode meta response: %w", err)
	}
	return &meta, nil
}

type postResponse struct {
	OK  bool   `json:"ok"`
	URL string `json:"url"`
}

// CreatePost publishes the draft and returns the URL of the new post.
// image is the cover bytes, nil when the draft has no cover.
func (c *Client) CreatePost(ctx context.Context, draft *models.Draft, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var req *http.Request
	var err error
	if image != nil {
		req, err = c.newMultipartRequest(ctx, draft, image)
	} else {
		req, err = c.newFormRequest(ctx, draft)
	}
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read publish response: %w", err)
	}

	var result postResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(body, &result)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.OK {
		return "", fmt.Errorf("publish returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return result.URL, nil
}

func (c *Client) postFields(draft *models.Draft) map[string]string {
	return map[string]string{
		"title":         draft.Title,
		"body":          draft.Body,
		"description":   draft.Description,
		"category_slug": draft.CategorySlug,
		"tag_slugs":     strings.Join(draft.SelectedTags, ","),
	}
}

func (c *Client) newFormRequest(ctx context.Context, draft *models.Draft) (*http.Request, error) {
	form := url.Values{}
	for key, value := range c.postFields(draft) {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bot/post/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func (c *Client) newMultipartRequest(ctx context.Context, draft *models.Draft, image []byte) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range c.postFields(draft) {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	part, err := writer.CreateFormFile("image", "post.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bot/post/", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
