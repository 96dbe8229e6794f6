// Package bridge はプラットフォームアダプターサービスへのHTTPクライアントです
// Shopify/WordPress等への実際の書き込みは別サービスが担い、
// このエンジンからはその境界をHTTP API越しに呼び出します
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/jinford/seo-autopilot/internal/platform/config"
)

// Client はプラットフォームアダプターサービスのAPIクライアントです
// ImageScanner / FixExecutor / ImageOptimizer の実装を提供します
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New は新しいClientを作成します
func New(cfg config.PlatformAPIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

var (
	_ domain.ImageScanner   = (*Client)(nil)
	_ domain.FixExecutor    = (*Client)(nil)
	_ domain.ImageOptimizer = (*Client)(nil)
)

// ScanImages は接続上の画像を列挙します
func (c *Client) ScanImages(ctx context.Context, connectionID uuid.UUID) ([]domain.SiteImage, error) {
	var resp struct {
		Images []domain.SiteImage `json:"images"`
	}
	path := fmt.Sprintf("/connections/%s/images", connectionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to scan images: %w", err)
	}
	return resp.Images, nil
}

// StoreImages は列挙した画像情報を保存します
func (c *Client) StoreImages(ctx context.Context, connectionID uuid.UUID, images []domain.SiteImage) error {
	path := fmt.Sprintf("/connections/%s/images", connectionID)
	body := map[string]any{"images": images}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to store images: %w", err)
	}
	return nil
}

// ExecuteFixes は接続に対する修正の生成・適用を依頼します
func (c *Client) ExecuteFixes(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
	var resp domain.FixExecution
	path := fmt.Sprintf("/connections/%s/fixes", connectionID)
	body := map[string]any{"userID": userID}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to execute fixes: %w", err)
	}
	return &resp, nil
}

// OptimizeImages は制約の範囲内で画像のalt属性生成を依頼します
func (c *Client) OptimizeImages(ctx context.Context, connectionID uuid.UUID, opts domain.OptimizeOptions) (*domain.OptimizeResult, error) {
	var resp domain.OptimizeResult
	path := fmt.Sprintf("/connections/%s/images/optimize", connectionID)
	if err := c.do(ctx, http.MethodPost, path, opts, &resp); err != nil {
		return nil, fmt.Errorf("failed to optimize images: %w", err)
	}
	return &resp, nil
}

// do はリクエストの送信とレスポンスのデコードを行います
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("platform API returned %d: %s", resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
