package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/chunkstore-io/chunkstore/internal/store"
	"github.com/chunkstore-io/chunkstore/internal/util/buffers"
)

// CopyTo is the synchronous bulk copy form. It always fails with
// ErrNotSupported: bulk copy is only offered through the cancellable
// CopyToContext path.
func (s *downloadStream) CopyTo(w io.Writer, bufferSize int) (int64, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	return 0, fmt.Errorf("synchronous bulk copy: %w, use CopyToContext", ErrNotSupported)
}

// CopyToContext copies everything from the current position to the end of
// the file into w. bufferSize <= 0 selects the pooled default buffer; any
// positive size is honored as given.
//
// When the copy starts from position 0, the delivered byte count is checked
// against the recorded file length; a mismatch reports store.ErrFileCorrupt.
func (s *downloadStream) CopyToContext(ctx context.Context, w io.Writer, bufferSize int) (int64, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}

	var buf []byte
	if bufferSize <= 0 {
		pb := buffers.GetCopyBuffer()
		defer buffers.PutCopyBuffer(pb)
		buf = *pb
	} else {
		buf = make([]byte, bufferSize)
	}

	startPos := s.pos
	var written int64
	for {
		n, readErr := s.ReadContext(ctx, buf)
		if n > 0 {
			wn, writeErr := w.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, fmt.Errorf("copy to sink: %w", writeErr)
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}

	if startPos == 0 && written != s.info.Length {
		return written, fmt.Errorf("file %s: delivered %d of %d bytes: %w",
			s.info.ID, written, s.info.Length, store.ErrFileCorrupt)
	}

	return written, nil
}
