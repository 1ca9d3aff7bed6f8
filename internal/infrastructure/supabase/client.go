// Package supabase implements the blob store adapter against the Supabase
// Storage REST API: plain bearer-authenticated object upload, signed-URL
// minting and deletion. Signed URLs are the only read capability handed out.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"filesharing-api/config"
	"filesharing-api/internal/application/ports"
)

const maxErrBodyLen = 512

type Client struct {
	logger  *zap.Logger
	httpc   *http.Client
	baseURL string
	apiKey  string
	bucket  string
}

func New(ctx context.Context, logger *zap.Logger, cfg config.Storage) (*Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("incomplete storage config")
	}

	c := &Client{
		logger:  logger,
		httpc:   &http.Client{},
		baseURL: strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		apiKey:  cfg.ServiceKey,
		bucket:  cfg.Bucket,
	}

	logger.Info("storage client initialized", zap.String("bucket", cfg.Bucket))

	return c, nil
}

func (c *Client) GetBucket() string { return c.bucket }

// Put uploads the blob under key and returns the storage path the other
// operations address it by.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	u := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, r)
	if err != nil {
		return "", err
	}
	req.ContentLength = size
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage put: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError("put", resp)
	}

	return key, nil
}

// SignedURL mints a retrieval URL valid for ttl, rounded up to a second.
func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	u := fmt.Sprintf("%s/object/sign/%s/%s", c.baseURL, c.bucket, path)

	body, err := json.Marshal(map[string]int64{
		"expiresIn": int64((ttl + time.Second - 1) / time.Second),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage sign: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError("sign", resp)
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("storage sign decode: %w", err)
	}

	return c.baseURL + out.SignedURL, nil
}

// Fetch opens the blob through a signed URL scoped to ttl. The returned
// reader streams straight from storage; cancelling ctx aborts it.
func (c *Client) Fetch(ctx context.Context, path string, ttl time.Duration) (io.ReadCloser, *ports.BlobInfo, error) {
	signed, err := c.SignedURL(ctx, path, ttl)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("storage fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err = c.apiError("fetch", resp)
		resp.Body.Close()
		return nil, nil, err
	}

	info := &ports.BlobInfo{
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	return resp.Body, info, nil
}

// Delete removes the blob; a missing path is treated as already deleted.
func (c *Client) Delete(ctx context.Context, path string) error {
	u := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return c.apiError("delete", resp)
	}

	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
}

func (c *Client) apiError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyLen))
	return fmt.Errorf("storage %s: unexpected status %d: %s", op, resp.StatusCode, string(snippet))
}
