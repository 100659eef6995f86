// Package storage is a thin client for the hosted object-storage HTTP API
// that holds photo binaries.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/pkg/config"
)

// ObjectStore is the surface the photo flow needs from object storage.
type ObjectStore interface {
	Upload(ctx context.Context, path string, contentType string, data io.Reader) error
	Remove(ctx context.Context, path string) error
	PublicURL(path string) string
}

// Client talks to a Supabase-style storage REST API.
type Client struct {
	baseURL    string
	publicURL  string
	bucket     string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ ObjectStore = (*Client)(nil)

func NewClient(cfg config.StorageConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		publicURL:  cfg.PublicURL,
		bucket:     cfg.Bucket,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Upload stores an object under path in the configured bucket.
func (c *Client) Upload(ctx context.Context, path string, contentType string, data io.Reader) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return errors.Wrap(err, "failed to read upload body")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build upload request")
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "storage upload request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("storage upload returned %d: %s", resp.StatusCode, string(msg))
	}

	c.logger.Debug("Uploaded storage object",
		zap.String("bucket", c.bucket),
		zap.String("path", path),
		zap.Int("bytes", len(body)))
	return nil
}

// Remove deletes an object. Callers treat removal as best-effort.
func (c *Client) Remove(ctx context.Context, path string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build remove request")
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "storage remove request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("storage remove returned %d: %s", resp.StatusCode, string(msg))
	}

	return nil
}

// PublicURL returns the public URL for an object path.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.publicURL, c.bucket, path)
}
