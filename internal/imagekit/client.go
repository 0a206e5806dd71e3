package imagekit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/harshshukla07/SwiftCV/internal/config"
)

// ErrUpstream marks a failed CDN call. Handlers map it to a 503.
var ErrUpstream = errors.New("image cdn upload failed")

// profileTransformation is applied server-side by the CDN before the file is
// stored: a 300x300 face-centered crop at 0.75 zoom, with optional background
// removal appended.
const profileTransformation = "w-300,h-300,fo-face,z-0.75"

// Client uploads profile images to the ImageKit upload API and returns hosted
// URLs. Authentication is HTTP basic with the private key as username.
type Client struct {
	httpClient *http.Client
	endpoint   string
	privateKey string
	folder     string
}

// NewClient builds a Client from config.
func NewClient(cfg config.ImageKitConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   cfg.UploadEndpoint,
		privateKey: cfg.PrivateKey,
		folder:     cfg.Folder,
	}
}

// Enabled reports whether CDN credentials are configured.
func (c *Client) Enabled() bool {
	return c.privateKey != "" && c.endpoint != ""
}

type uploadResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Upload forwards the image to the CDN with the fixed profile transformation
// and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, file io.Reader, fileName string, removeBackground bool) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: credentials not configured", ErrUpstream)
	}

	transformation := profileTransformation
	if removeBackground {
		transformation += ",e-bgremove"
	}
	pre, err := json.Marshal(map[string]string{"pre": transformation})
	if err != nil {
		return "", fmt.Errorf("encode transformation: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	for field, value := range map[string]string{
		"fileName":       fileName,
		"folder":         c.folder,
		"transformation": string(pre),
	} {
		if err := writer.WriteField(field, value); err != nil {
			return "", fmt.Errorf("write field %s: %w", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		parsed = uploadResponse{}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("%w: response missing url", ErrUpstream)
	}

	return parsed.URL, nil
}
