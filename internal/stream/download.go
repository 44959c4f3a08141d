package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// downloadStream carries the state and behavior shared by both variants:
// the capability contract, the disposed guard, the chunk fetch/verify
// protocol, and the chunked read loop.
//
// Chunk-boundary arithmetic: byte position p lives in chunk p/chunkSize at
// in-chunk offset p%chunkSize. At most one decoded chunk is buffered; a read
// that crosses a chunk boundary refetches as it goes.
type downloadStream struct {
	binding store.ReadBinding
	info    *models.FileInfo
	logger  zerolog.Logger

	pos         int64
	bufferedIdx int64 // chunk index held in buffer, -1 when empty
	buffer      []byte
	closed      bool

	// discardConsumed drops the buffer as soon as its last byte has been
	// delivered. Set on the forward-only variant, where a consumed chunk
	// can never be read again.
	discardConsumed bool
}

func newDownloadStream(binding store.ReadBinding, info *models.FileInfo, logger zerolog.Logger) (*downloadStream, error) {
	if binding == nil {
		return nil, fmt.Errorf("open stream: read binding is required")
	}
	if info == nil {
		return nil, fmt.Errorf("open stream: file info is required")
	}
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	cp := *info
	return &downloadStream{
		binding:     binding,
		info:        &cp,
		logger:      logger,
		bufferedIdx: -1,
	}, nil
}

// CanRead reports read capability. True for every stream, in every state.
func (s *downloadStream) CanRead() bool { return true }

// CanWrite reports write capability. False for every stream, in every state.
func (s *downloadStream) CanWrite() bool { return false }

// Length returns the file length from the metadata snapshot.
func (s *downloadStream) Length() int64 { return s.info.Length }

// FileInfo returns a copy of the metadata the stream was opened with.
func (s *downloadStream) FileInfo() *models.FileInfo {
	cp := *s.info
	return &cp
}

// Position returns the current read position.
func (s *downloadStream) Position() int64 { return s.pos }

// Read is the synchronous read form. It drives ReadContext to completion on
// the calling goroutine and cannot be cancelled once started.
func (s *downloadStream) Read(p []byte) (int, error) {
	return s.ReadContext(context.Background(), p)
}

// ReadContext reads up to len(p) bytes starting at the current position,
// crossing chunk boundaries as needed. Returns io.EOF once the position has
// reached the end of the file.
//
// If a chunk fetch fails or is cancelled after some bytes were already
// copied, the byte count is returned together with the error; the buffered
// chunk and position reflect only the bytes actually delivered.
func (s *downloadStream) ReadContext(ctx context.Context, p []byte) (int, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= s.info.Length {
		return 0, io.EOF
	}

	total := 0
	for total < len(p) && s.pos < s.info.Length {
		idx := s.pos / s.info.ChunkSize
		off := s.pos % s.info.ChunkSize

		if idx != s.bufferedIdx {
			data, err := s.fetchChunk(ctx, idx)
			if err != nil {
				// A failed fetch must not disturb the buffered chunk
				return total, err
			}
			s.buffer = data
			s.bufferedIdx = idx
		}

		n := copy(p[total:], s.buffer[off:])
		total += n
		s.pos += int64(n)

		if s.discardConsumed && int(off)+n == len(s.buffer) {
			s.buffer = nil
			s.bufferedIdx = -1
		}
	}

	return total, nil
}

// fetchChunk issues a point lookup for chunk n and verifies its shape
// against the metadata. Integrity failures are not retried here: a size
// mismatch means the stored data is inconsistent, not that I/O flaked.
func (s *downloadStream) fetchChunk(ctx context.Context, n int64) ([]byte, error) {
	data, err := s.binding.FetchChunk(ctx, s.info.ID, n)
	if err != nil {
		return nil, err
	}

	if want := s.info.ExpectedChunkSize(n); int64(len(data)) != want {
		return nil, fmt.Errorf("chunk %d of file %s: got %d bytes, want %d: %w",
			n, s.info.ID, len(data), want, store.ErrChunkCorrupt)
	}

	s.logger.Debug().
		Str("file_id", s.info.ID).
		Int64("chunk", n).
		Int("bytes", len(data)).
		Msg("fetched chunk")

	return data, nil
}

// Write always fails: download streams are read-only.
func (s *downloadStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	return 0, fmt.Errorf("write: %w", ErrNotSupported)
}

// Flush always fails: download streams are read-only and buffer nothing
// that could be flushed.
func (s *downloadStream) Flush() error {
	if s.closed {
		return ErrStreamClosed
	}
	return fmt.Errorf("flush: %w", ErrNotSupported)
}

// Truncate always fails: download streams are read-only.
func (s *downloadStream) Truncate(size int64) error {
	if s.closed {
		return ErrStreamClosed
	}
	return fmt.Errorf("truncate: %w", ErrNotSupported)
}

// Close releases the read binding and marks the stream closed. Idempotent:
// only the first call releases the binding, later calls are no-ops.
func (s *downloadStream) Close() error {
	return s.CloseContext(context.Background())
}

// CloseContext is the context-accepting close form.
func (s *downloadStream) CloseContext(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buffer = nil
	s.bufferedIdx = -1

	s.logger.Debug().Str("file_id", s.info.ID).Msg("stream closed")
	return s.binding.Release()
}
