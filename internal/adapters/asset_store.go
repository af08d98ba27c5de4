package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/arshitcc/Ping-Park/app/config"
	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"
)

// HTTPAssetStore talks to the external binary store. Every call runs under a
// bounded timeout and never holds any in-process lock.
type HTTPAssetStore struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPAssetStore(cfg config.AssetStoreConfig, logger *slog.Logger) *HTTPAssetStore {
	return &HTTPAssetStore{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  &http.Client{},
		logger:  logger,
	}
}

func (s *HTTPAssetStore) Upload(ctx context.Context, upload ports.Upload) (*models.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, upload.Reader); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("asset upload failed: status %d", resp.StatusCode)
	}

	var asset models.Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("asset upload failed: %w", err)
	}

	if asset.OriginalFilename == "" {
		asset.OriginalFilename = upload.Filename
	}
	if asset.ResourceType == "" {
		asset.ResourceType = "image"
	}

	s.logger.Debug("asset uploaded", "publicId", asset.PublicID, "filename", upload.Filename)
	return &asset, nil
}

// Delete is idempotent: a 404 from the store counts as success.
func (s *HTTPAssetStore) Delete(ctx context.Context, publicID, resourceType string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	target := fmt.Sprintf("%s/assets/%s?resourceType=%s",
		s.baseURL, url.PathEscape(publicID), url.QueryEscape(resourceType))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("asset delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("asset delete failed: status %d", resp.StatusCode)
	}

	s.logger.Debug("asset deleted", "publicId", publicID, "resourceType", resourceType)
	return nil
}
