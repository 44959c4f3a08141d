// Package httpapi provides a chunk store client for a remote chunk server
// speaking a small REST protocol:
//
//	GET /files/{id}            -> file metadata JSON
//	GET /files/{id}/chunks/{n} -> raw chunk bytes
//
// Requests are issued through a retrying HTTP client so transient network
// and server failures are absorbed below the binding contract; 404 responses
// map to the not-found sentinels and are never retried.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// Config holds the connection settings for a chunk-server store.
type Config struct {
	// BaseURL is the server root, e.g. https://chunks.example.com
	BaseURL string
	// APIKey is sent as a bearer token when non-empty
	APIKey string
}

// retryLogger adapts zerolog to the retryablehttp.LeveledLogger interface.
// Info and debug retry chatter is dropped; errors and warnings surface.
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Store is a chunk-server-backed store. Safe for concurrent use.
type Store struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// New creates a chunk-server store with retry-wrapped HTTP transport.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("http store: base URL is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 5
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.Logger = &retryLogger{logger: logger}

	return &Store{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}, nil
}

// OpenReadBinding opens a scoped read session sharing the store's client.
func (s *Store) OpenReadBinding() store.ReadBinding {
	return &binding{store: s}
}

// Close releases the store handle.
func (s *Store) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

type binding struct {
	store    *Store
	released bool
}

func (b *binding) FetchFileInfo(ctx context.Context, fileID string) (*models.FileInfo, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}

	body, status, err := b.store.get(ctx, "/files/"+fileID)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata for file %s: %w", fileID, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("file %s: %w", fileID, store.ErrFileNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch metadata for file %s: unexpected status %d", fileID, status)
	}

	var info models.FileInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode metadata for file %s: %w", fileID, err)
	}
	return &info, nil
}

func (b *binding) FetchChunk(ctx context.Context, fileID string, n int64) ([]byte, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}

	body, status, err := b.store.get(ctx, "/files/"+fileID+"/chunks/"+strconv.FormatInt(n, 10))
	if err != nil {
		return nil, fmt.Errorf("fetch chunk %d of file %s: %w", n, fileID, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("chunk %d of file %s: %w", n, fileID, store.ErrChunkNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch chunk %d of file %s: unexpected status %d", n, fileID, status)
	}

	return body, nil
}

func (b *binding) Release() error {
	b.released = true
	return nil
}

// get performs an authenticated GET and returns the body and status code.
// Retry behavior lives in the wrapped transport.
func (s *Store) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
