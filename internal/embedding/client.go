// Package embedding talks to the external embedding provider: an HTTP
// service that turns a face image into a fixed-length feature vector. Face
// detection, size checks and vector normalization all happen on the provider
// side; this client only transports images and maps provider failures to
// typed errors.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const defaultProviderURL = "http://localhost:8000"

var (
	// ErrFaceNotDetected means the provider found no face in the frame.
	ErrFaceNotDetected = errors.New("no face detected")
	// ErrFaceTooSmall means the detected face was below the provider's
	// minimum size (bounding box under 10% of the image area).
	ErrFaceTooSmall = errors.New("face too small")
)

// Client computes face embeddings using the embedding provider.
type Client struct {
	baseURL string
	dim     int
	client  *http.Client
}

// NewClient creates a new embedding provider client. dim is the expected
// embedding dimension; responses with a different dimension are rejected.
func NewClient(baseURL string, dim int) *Client {
	if baseURL == "" {
		baseURL = defaultProviderURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{},
	}
}

// embedResponse represents the response from the embedding provider.
type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed posts a face image to the provider and returns its embedding.
// Provider-side detection failures map to ErrFaceNotDetected and
// ErrFaceTooSmall; a context deadline bounds how long one frame may take.
func (c *Client) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(resp.StatusCode, embResp.Error)
	}

	if c.dim > 0 && embResp.Dim != c.dim {
		return nil, fmt.Errorf("provider returned %d-dim embedding, expected %d", embResp.Dim, c.dim)
	}
	if len(embResp.Embedding) == 0 {
		return nil, errors.New("provider returned empty embedding")
	}

	return embResp.Embedding, nil
}

// providerError maps provider failure messages to typed errors.
func providerError(status int, message string) error {
	switch {
	case strings.Contains(message, "no face"):
		return ErrFaceNotDetected
	case strings.Contains(message, "too small"):
		return ErrFaceTooSmall
	case message != "":
		return fmt.Errorf("provider error (status %d): %s", status, message)
	default:
		return fmt.Errorf("provider error (status %d)", status)
	}
}
