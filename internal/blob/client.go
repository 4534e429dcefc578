// Package blob uploads visitor photos to an S3-style object store
// over its REST API and derives durable public URLs for them.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Supabase-storage-compatible object store.  A nil
// Client is valid and reports itself disabled; the admission
// workflow then registers visitors without photos.
type Client struct {
	BaseURL string // store base URL, no trailing slash
	Bucket  string // bucket holding visitor photos
	Token   string // bearer token authorizing uploads
	HTTP    *http.Client
}

// New creates a blob client.  Returns nil when baseURL is empty so
// callers can wire "no blob store configured" as a nil collaborator.
func New(baseURL, bucket, token string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Bucket:  bucket,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores data under key in the photo bucket.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.BaseURL, c.Bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("blob: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("blob: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("blob: upload failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// PublicURL returns the durable public URL for a previously uploaded
// key.  Pure string construction; the store serves public objects
// under a fixed path.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.BaseURL, c.Bucket, key)
}
