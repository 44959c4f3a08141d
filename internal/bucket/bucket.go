// Package bucket constructs download streams over a chunk store. It is the
// entry point for library users: a Bucket wraps a backend Store and opens
// per-file streams, handing each stream its own scoped read binding.
package bucket

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
	"github.com/chunkstore-io/chunkstore/internal/stream"
)

// Bucket opens download streams against one backend store.
type Bucket struct {
	store  store.Store
	logger zerolog.Logger
}

// New creates a bucket over the given store.
func New(st store.Store, logger zerolog.Logger) *Bucket {
	return &Bucket{store: st, logger: logger}
}

// OpenDownloadStream opens a forward-only stream for the file.
// The returned stream owns its read binding and releases it on close.
func (b *Bucket) OpenDownloadStream(ctx context.Context, fileID string) (*stream.ForwardStream, error) {
	binding, info, err := b.prepare(ctx, fileID)
	if err != nil {
		return nil, err
	}

	s, err := stream.NewForward(binding, info, b.logger)
	if err != nil {
		binding.Release()
		return nil, err
	}
	return s, nil
}

// OpenSeekableStream opens a seekable stream for the file.
// The returned stream owns its read binding and releases it on close.
func (b *Bucket) OpenSeekableStream(ctx context.Context, fileID string) (*stream.SeekableStream, error) {
	binding, info, err := b.prepare(ctx, fileID)
	if err != nil {
		return nil, err
	}

	s, err := stream.NewSeekable(binding, info, b.logger)
	if err != nil {
		binding.Release()
		return nil, err
	}
	return s, nil
}

// prepare opens a binding and loads validated file metadata through it.
// On error the binding is released before returning.
func (b *Bucket) prepare(ctx context.Context, fileID string) (store.ReadBinding, *models.FileInfo, error) {
	if fileID == "" {
		return nil, nil, fmt.Errorf("open stream: %w", models.ErrMissingFileID)
	}

	binding := b.store.OpenReadBinding()

	info, err := binding.FetchFileInfo(ctx, fileID)
	if err != nil {
		binding.Release()
		return nil, nil, fmt.Errorf("fetch file info: %w", err)
	}

	if err := info.Validate(); err != nil {
		binding.Release()
		return nil, nil, fmt.Errorf("file metadata invalid: %w", err)
	}

	b.logger.Debug().
		Str("file_id", fileID).
		Int64("length", info.Length).
		Int64("chunk_size", info.ChunkSize).
		Msg("opened download stream")

	return binding, info, nil
}
