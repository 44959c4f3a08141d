package stream

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// SeekableStream supports arbitrary position changes. A seek only updates
// the position; the buffered chunk is kept and reused when the new position
// still falls inside it, and refetched on the next read otherwise.
type SeekableStream struct {
	*downloadStream
}

// NewSeekable opens a seekable stream over the file described by info,
// fetching chunks through binding. The stream takes over releasing the
// binding on close.
func NewSeekable(binding store.ReadBinding, info *models.FileInfo, logger zerolog.Logger) (*SeekableStream, error) {
	base, err := newDownloadStream(binding, info, logger)
	if err != nil {
		return nil, err
	}
	return &SeekableStream{downloadStream: base}, nil
}

// CanSeek reports seek capability. Always true for seekable streams.
func (s *SeekableStream) CanSeek() bool { return true }

// Seek sets the position relative to the start, the current position, or the
// end of the file. A resulting position past the end is accepted and yields
// io.EOF on the next read; a negative resulting position fails with
// ErrNegativePosition.
func (s *SeekableStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = s.info.Length
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}

	newPos := base + offset
	if newPos < 0 {
		return 0, fmt.Errorf("seek to offset %d: %w", newPos, ErrNegativePosition)
	}

	s.pos = newPos
	return newPos, nil
}

// SetPosition repositions the stream relative to the start.
func (s *SeekableStream) SetPosition(pos int64) error {
	_, err := s.Seek(pos, io.SeekStart)
	return err
}
