package stream

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// ForwardStream reads a file sequentially from the first byte. It carries
// minimal state: the position only ever moves forward, and a chunk is
// discarded the moment it is fully consumed.
type ForwardStream struct {
	*downloadStream
}

// NewForward opens a forward-only stream over the file described by info,
// fetching chunks through binding. The stream takes over releasing the
// binding on close.
func NewForward(binding store.ReadBinding, info *models.FileInfo, logger zerolog.Logger) (*ForwardStream, error) {
	base, err := newDownloadStream(binding, info, logger)
	if err != nil {
		return nil, err
	}
	base.discardConsumed = true
	return &ForwardStream{downloadStream: base}, nil
}

// CanSeek reports seek capability. Forward-only streams never seek.
func (s *ForwardStream) CanSeek() bool { return false }

// Seek always fails: the position of a forward-only stream advances only
// through reads.
func (s *ForwardStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	return 0, fmt.Errorf("seek: %w on forward-only stream", ErrNotSupported)
}

// SetPosition always fails on forward-only streams.
func (s *ForwardStream) SetPosition(pos int64) error {
	if s.closed {
		return ErrStreamClosed
	}
	return fmt.Errorf("set position: %w on forward-only stream", ErrNotSupported)
}
