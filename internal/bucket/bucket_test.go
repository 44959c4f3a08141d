package bucket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
	"github.com/chunkstore-io/chunkstore/internal/store/memory"
)

// trackingStore wraps a memory store and tracks opened bindings
type trackingStore struct {
	inner    *memory.Store
	bindings []*trackingBinding
}

func (s *trackingStore) OpenReadBinding() store.ReadBinding {
	b := &trackingBinding{inner: s.inner.OpenReadBinding()}
	s.bindings = append(s.bindings, b)
	return b
}

func (s *trackingStore) Close() error { return s.inner.Close() }

type trackingBinding struct {
	inner    store.ReadBinding
	released bool
}

func (b *trackingBinding) FetchFileInfo(ctx context.Context, fileID string) (*models.FileInfo, error) {
	return b.inner.FetchFileInfo(ctx, fileID)
}

func (b *trackingBinding) FetchChunk(ctx context.Context, fileID string, n int64) ([]byte, error) {
	return b.inner.FetchChunk(ctx, fileID, n)
}

func (b *trackingBinding) Release() error {
	b.released = true
	return b.inner.Release()
}

// TestOpenAndRead verifies a bucket-opened stream delivers file content
func TestOpenAndRead(t *testing.T) {
	st := memory.New()
	content := []byte("the quick brown fox jumps over the lazy dog")
	if _, err := st.AddFile("f1", "fox.txt", content, 8); err != nil {
		t.Fatalf("AddFile() failed: %v", err)
	}

	b := New(st, zerolog.Nop())

	fwd, err := b.OpenDownloadStream(context.Background(), "f1")
	if err != nil {
		t.Fatalf("OpenDownloadStream() failed: %v", err)
	}
	defer fwd.Close()

	got, err := io.ReadAll(fwd)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	seek, err := b.OpenSeekableStream(context.Background(), "f1")
	if err != nil {
		t.Fatalf("OpenSeekableStream() failed: %v", err)
	}
	defer seek.Close()

	if _, err := seek.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("Seek() failed: %v", err)
	}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(seek, buf); err != nil {
		t.Fatalf("ReadFull() failed: %v", err)
	}
	if string(buf) != "quick" {
		t.Errorf("bytes at [4,9) = %q, want %q", buf, "quick")
	}
}

// TestOpenMissingFile verifies a not-found error surfaces at open time
// and the binding opened for the attempt is released
func TestOpenMissingFile(t *testing.T) {
	ts := &trackingStore{inner: memory.New()}
	b := New(ts, zerolog.Nop())

	_, err := b.OpenDownloadStream(context.Background(), "absent")
	if !errors.Is(err, store.ErrFileNotFound) {
		t.Errorf("OpenDownloadStream() = %v, want ErrFileNotFound", err)
	}

	if len(ts.bindings) != 1 || !ts.bindings[0].released {
		t.Error("binding not released after failed open")
	}
}

// TestOpenEmptyID verifies an empty file id is rejected before any lookup
func TestOpenEmptyID(t *testing.T) {
	b := New(memory.New(), zerolog.Nop())

	if _, err := b.OpenDownloadStream(context.Background(), ""); !errors.Is(err, models.ErrMissingFileID) {
		t.Errorf("OpenDownloadStream(\"\") = %v, want ErrMissingFileID", err)
	}
}

// TestOpenInvalidMetadata verifies broken metadata is rejected at open time
func TestOpenInvalidMetadata(t *testing.T) {
	ts := &trackingStore{inner: memory.New()}
	ts.inner.PutFileInfo(&models.FileInfo{ID: "bad", Length: 100, ChunkSize: 0})

	b := New(ts, zerolog.Nop())

	_, err := b.OpenSeekableStream(context.Background(), "bad")
	if !errors.Is(err, models.ErrInvalidChunkSize) {
		t.Errorf("OpenSeekableStream() = %v, want ErrInvalidChunkSize", err)
	}
	if len(ts.bindings) != 1 || !ts.bindings[0].released {
		t.Error("binding not released after metadata validation failure")
	}
}

// TestStreamReleasesOwnBinding verifies closing a stream releases the
// binding the bucket opened for it
func TestStreamReleasesOwnBinding(t *testing.T) {
	ts := &trackingStore{inner: memory.New()}
	if _, err := ts.inner.AddFile("f1", "", []byte("data"), 2); err != nil {
		t.Fatalf("AddFile() failed: %v", err)
	}

	b := New(ts, zerolog.Nop())
	s, err := b.OpenDownloadStream(context.Background(), "f1")
	if err != nil {
		t.Fatalf("OpenDownloadStream() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if len(ts.bindings) != 1 || !ts.bindings[0].released {
		t.Error("stream close did not release its binding")
	}
}
