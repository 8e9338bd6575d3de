package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imgbbUploadURL = "https://api.imgbb.com/1/upload"

// ImgBBClient uploads team logos to the ImgBB image host
type ImgBBClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewImgBBClient creates an ImgBB upload client. An empty API key disables
// uploads; Upload will report the host as unconfigured.
func NewImgBBClient(apiKey string, logger *zap.Logger) *ImgBBClient {
	return &ImgBBClient{
		apiKey:  apiKey,
		baseURL: imgbbUploadURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Configured reports whether an API key is set
func (c *ImgBBClient) Configured() bool {
	return c.apiKey != ""
}

type imgbbResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
		DeleteURL  string `json:"delete_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Upload sends a base64-encoded image to ImgBB and returns the hosted URL.
// Each upload gets a fresh random name so re-uploads never collide.
func (c *ImgBBClient) Upload(ctx context.Context, imageBase64 string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("image host is not configured")
	}

	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", imageBase64)
	form.Set("name", "team-logo-"+uuid.NewString())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Image host rejected upload",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var parsed imgbbResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if !parsed.Success || parsed.Data.URL == "" {
		return "", fmt.Errorf("image host reported failure")
	}

	return parsed.Data.URL, nil
}

// readLogoFile extracts the uploaded file from a multipart form, capped at 5MB
func readLogoFile(r *http.Request) ([]byte, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		return nil, nil, fmt.Errorf("missing logo file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 5<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read logo file: %w", err)
	}
	return data, header, nil
}
