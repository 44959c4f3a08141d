// Package stream implements the download stream engine: it reassembles a
// logical byte stream from fixed-size chunk records fetched through a
// store.ReadBinding, behind a standard readable/seekable stream contract.
//
// Two variants exist. The forward-only stream reads sequentially and rejects
// seeks; the seekable stream maps arbitrary byte offsets to chunk index plus
// in-chunk offset and refetches on a cache miss. Both hold at most one chunk
// in memory, so peak memory is bounded by the chunk size regardless of file
// size or read pattern.
//
// Streams are single-owner: they are not safe for concurrent use without
// external synchronization.
package stream

import (
	"context"
	"errors"
	"io"

	"github.com/chunkstore-io/chunkstore/internal/models"
)

// Stream errors
var (
	// ErrStreamClosed indicates an operation on a closed stream
	ErrStreamClosed = errors.New("stream closed")
	// ErrNotSupported indicates a permanent capability limitation of the
	// stream (write, flush, truncate, seek on a forward-only stream,
	// synchronous bulk copy). Never retried.
	ErrNotSupported = errors.New("operation not supported")
	// ErrNegativePosition indicates a seek that would resolve to a
	// position before the start of the stream
	ErrNegativePosition = errors.New("seek to negative position")
)

// Stream is the read-only stream surface over a chunked file.
//
// Read drives ReadContext to completion on the calling goroutine and is not
// cancellable once started; ReadContext is the cancellable form. A cancelled
// fetch never updates the buffered chunk, so stream state stays consistent
// across aborted calls.
type Stream interface {
	io.Reader
	io.Seeker
	io.Closer

	// CanRead reports whether the stream supports reading. Always true.
	CanRead() bool
	// CanWrite reports whether the stream supports writing. Always false.
	CanWrite() bool
	// CanSeek reports whether the stream supports repositioning.
	CanSeek() bool

	// Length returns the total file length in bytes, valid before any read.
	Length() int64
	// FileInfo returns the immutable metadata the stream was opened with.
	FileInfo() *models.FileInfo

	// Position returns the current read position.
	Position() int64
	// SetPosition repositions the stream, equivalent to Seek(pos, io.SeekStart).
	// Fails with ErrNotSupported on forward-only streams.
	SetPosition(pos int64) error

	// ReadContext reads up to len(p) bytes at the current position,
	// fetching chunks through the binding as needed.
	ReadContext(ctx context.Context, p []byte) (int, error)

	// Write always fails with ErrNotSupported.
	Write(p []byte) (int, error)
	// Flush always fails with ErrNotSupported.
	Flush() error
	// Truncate always fails with ErrNotSupported.
	Truncate(size int64) error

	// CopyTo is the synchronous bulk copy form. It always fails with
	// ErrNotSupported; use CopyToContext.
	CopyTo(w io.Writer, bufferSize int) (int64, error)
	// CopyToContext copies the remainder of the stream into w.
	// bufferSize <= 0 selects the pooled default buffer.
	CopyToContext(ctx context.Context, w io.Writer, bufferSize int) (int64, error)

	// CloseContext releases the read binding and marks the stream closed.
	// Idempotent; Close is the sync form.
	CloseContext(ctx context.Context) error
}

// Compile-time interface checks
var (
	_ Stream = (*ForwardStream)(nil)
	_ Stream = (*SeekableStream)(nil)
)
