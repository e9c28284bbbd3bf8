// Package tei provides an embedding service adapter for Hugging Face
// text-embeddings-inference servers running sentence-transformers models.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultModel   = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the TEI embedding service.
type Config struct {
	// BaseURL is the server address (default: http://localhost:8080).
	BaseURL string

	// Model is the model the server is expected to serve.
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size. Zero uses the known-model table.
	Dimensions int
}

// EmbeddingService generates embeddings using a TEI server.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Inputs    string `json:"inputs"`
	Normalize bool   `json:"normalize"`
	Truncate  bool   `json:"truncate"`
}

type infoResponse struct {
	ModelID string `json:"model_id"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// NewEmbeddingService creates a new TEI embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a normalised vector embedding for the given text.
// Inputs longer than the model's window are truncated by the server.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embedRequest{Inputs: text, Normalize: true, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("tei: no embedding returned")
	}
	return vectors[0], nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping reads /info and checks the server serves the configured model.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/info", http.NoBody)
	if err != nil {
		return fmt.Errorf("tei: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tei: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readStatusError(resp)
	}

	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("tei: decode server info: %w", err)
	}
	if info.ModelID != "" && info.ModelID != s.model {
		return &statusError{
			status:  http.StatusConflict,
			message: fmt.Sprintf("server serves model %q, configured model is %q", info.ModelID, s.model),
		}
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// statusError is a non-200 response from the server.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tei error (status %d): %s", e.status, e.message)
}

// BackendMessage returns the error reported by the server.
func (e *statusError) BackendMessage() string {
	return e.message
}

func readStatusError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tei error (status %d): failed to read response", resp.StatusCode)
	}
	msg := strings.TrimSpace(string(body))
	var payload errorResponse
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &statusError{status: resp.StatusCode, message: msg}
}
