// Package store defines the contracts between the chunk store backends and
// the streaming engine, plus the shared error taxonomy.
//
// A Store is the long-lived handle to a backend (S3 bucket, Azure container,
// chunk server, in-memory map). A ReadBinding is a scoped session opened per
// stream: the stream issues all of its lookups through the binding and
// releases it exactly once on disposal. Backends may use the binding to scope
// credentials, connections, or snapshots; the simple backends treat it as a
// lightweight view over the Store.
package store

import (
	"context"

	"github.com/chunkstore-io/chunkstore/internal/models"
)

// Store is a long-lived backend handle that can open scoped read sessions.
type Store interface {
	// OpenReadBinding opens a scoped session for reading one or more files.
	// The caller owns the binding and must release it when done.
	OpenReadBinding() ReadBinding

	// Close releases the backend handle and any pooled connections.
	Close() error
}

// ReadBinding is a scoped session used to fetch file metadata and chunk
// records. Bindings are not safe for concurrent use.
type ReadBinding interface {
	// FetchFileInfo retrieves the metadata record for a file.
	// Returns ErrFileNotFound if no such file exists.
	FetchFileInfo(ctx context.Context, fileID string) (*models.FileInfo, error)

	// FetchChunk retrieves the raw bytes of chunk n (0-based) of a file.
	// Returns ErrChunkNotFound if the chunk record is absent.
	// The returned slice is owned by the caller.
	FetchChunk(ctx context.Context, fileID string, n int64) ([]byte, error)

	// Release ends the session. Fetches after Release fail with
	// ErrBindingReleased. Release is idempotent.
	Release() error
}
