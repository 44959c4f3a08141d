// Package azure provides an Azure-blob-backed chunk store. The blob layout
// mirrors the S3 backend:
//
//	<prefix>/<fileID>/meta.json
//	<prefix>/<fileID>/chunks/<n>
package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// Config holds the connection settings for an Azure-blob-backed store.
type Config struct {
	// AccountURL is the blob service URL, e.g. https://acct.blob.core.windows.net
	AccountURL string
	// Container is the blob container holding the chunk records
	Container string
	// Prefix is prepended to every blob name (may be empty)
	Prefix string
	// SASToken is the shared access signature query string (without "?").
	// Required: this store authenticates via SAS only.
	SASToken string
}

// Store is an Azure-blob-backed chunk store. Safe for concurrent use.
type Store struct {
	client *azblob.Client
	cfg    Config
	logger zerolog.Logger
}

// New creates an Azure store using SAS authentication.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.AccountURL == "" || cfg.Container == "" {
		return nil, fmt.Errorf("azure store: account URL and container are required")
	}
	if cfg.SASToken == "" {
		return nil, fmt.Errorf("azure store: SAS token is required")
	}

	sasURL := strings.TrimSuffix(cfg.AccountURL, "/") + "?" + strings.TrimPrefix(cfg.SASToken, "?")
	client, err := azblob.NewClientWithNoCredential(sasURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	return &Store{client: client, cfg: cfg, logger: logger}, nil
}

// OpenReadBinding opens a scoped read session sharing the store's client.
func (s *Store) OpenReadBinding() store.ReadBinding {
	return &binding{store: s}
}

// Close releases the store handle. The SDK client needs no explicit shutdown.
func (s *Store) Close() error {
	return nil
}

// metaBlob returns the blob name of a file's metadata record.
func (s *Store) metaBlob(fileID string) string {
	return s.join(fileID, "meta.json")
}

// chunkBlob returns the blob name of chunk n of a file.
func (s *Store) chunkBlob(fileID string, n int64) string {
	return s.join(fileID, "chunks/"+strconv.FormatInt(n, 10))
}

func (s *Store) join(parts ...string) string {
	name := strings.TrimSuffix(s.cfg.Prefix, "/")
	for _, p := range parts {
		if name == "" {
			name = p
		} else {
			name = name + "/" + p
		}
	}
	return name
}

type binding struct {
	store    *Store
	released bool
}

func (b *binding) FetchFileInfo(ctx context.Context, fileID string) (*models.FileInfo, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}

	body, err := b.downloadBlob(ctx, b.store.metaBlob(fileID))
	if err != nil {
		if isBlobNotFound(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, store.ErrFileNotFound)
		}
		return nil, fmt.Errorf("fetch metadata for file %s: %w", fileID, err)
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

	start := time.Now()
	data, err := b.downloadBlob(ctx, b.store.chunkBlob(fileID, n))
	if err != nil {
		if isBlobNotFound(err) {
			return nil, fmt.Errorf("chunk %d of file %s: %w", n, fileID, store.ErrChunkNotFound)
		}
		return nil, fmt.Errorf("fetch chunk %d of file %s: %w", n, fileID, err)
	}

	b.store.logger.Debug().
		Str("file_id", fileID).
		Int64("chunk", n).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("azure chunk fetch")

	return data, nil
}

func (b *binding) Release() error {
	b.released = true
	return nil
}

// downloadBlob fetches one blob fully into memory, retrying transient
// network failures with backoff.
func (b *binding) downloadBlob(ctx context.Context, blobName string) ([]byte, error) {
	var data []byte
	err := store.WithRetry(ctx, func() error {
		resp, err := b.store.client.DownloadStream(ctx, b.store.cfg.Container, blobName, nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err = io.ReadAll(resp.Body)
		return err
	})
	return data, err
}

// isBlobNotFound reports whether err is Azure's missing-blob error.
func isBlobNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
