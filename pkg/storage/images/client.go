package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Asset is a stored image. StorageKey is what Delete expects back.
type Asset struct {
	URL        string
	StorageKey string
}

// Uploader is the surface services depend on for image storage.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (*Asset, error)
	Delete(ctx context.Context, storageKey string) error
}

// Client talks to the image store over its HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func closeBody(ctx context.Context, logg *logger.Logger, body io.Closer, msg string) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && logg != nil {
		logg.Warn(ctx, msg)
	}
}

// NewClient builds an image store client and verifies the endpoint responds.
func NewClient(ctx context.Context, cfg config.ImageStoreConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("image store base url is required")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("image store health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "image store client initialized")
	}

	return client, nil
}

// Ping issues a lightweight request against the store's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("image store client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image store health check returned %s", resp.Status)
	}
	return nil
}

// Upload streams the file into the store under the given folder and returns
// the public URL plus the key needed to delete it later.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename, folder string) (*Asset, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("image store client not initialized")
	}
	if file == nil {
		return nil, errors.New("file is required")
	}
	if folder == "" {
		return nil, errors.New("folder is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copying file into request: %w", err)
	}
	if err := writer.WriteField("folder", folder); err != nil {
		return nil, fmt.Errorf("writing folder field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return nil, fmt.Errorf("image upload failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return nil, fmt.Errorf("image upload failed: %s", resp.Status)
	}

	var uploaded struct {
		URL      string `json:"url"`
		PublicID string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if uploaded.URL == "" || uploaded.PublicID == "" {
		return nil, errors.New("image store returned an incomplete upload response")
	}

	return &Asset{URL: uploaded.URL, StorageKey: uploaded.PublicID}, nil
}

// Delete removes a previously uploaded asset by its storage key.
func (c *Client) Delete(ctx context.Context, storageKey string) error {
	if c == nil || c.httpClient == nil {
		return errors.New("image store client not initialized")
	}
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	u := fmt.Sprintf("%s/assets/%s", c.baseURL, url.PathEscape(storageKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("image delete failed: %s", resp.Status)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
