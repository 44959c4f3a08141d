package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// TestAddFileChunking verifies AddFile slices content on chunk boundaries
func TestAddFileChunking(t *testing.T) {
	st := New()
	content := []byte("abcdefghij") // 10 bytes, chunk size 4 -> 4+4+2

	info, err := st.AddFile("f1", "x.txt", content, 4)
	if err != nil {
		t.Fatalf("AddFile() failed: %v", err)
	}
	if info.Length != 10 || info.ChunkSize != 4 || info.ChunkCount() != 3 {
		t.Fatalf("info = {len=%d chunk=%d count=%d}, want {10 4 3}",
			info.Length, info.ChunkSize, info.ChunkCount())
	}
	if info.Checksum == "" {
		t.Error("AddFile() did not record a checksum")
	}

	b := st.OpenReadBinding()
	defer b.Release()

	want := [][]byte{[]byte("abcd"), []byte("efgh"), []byte("ij")}
	for n, w := range want {
		data, err := b.FetchChunk(context.Background(), "f1", int64(n))
		if err != nil {
			t.Fatalf("FetchChunk(%d) failed: %v", n, err)
		}
		if !bytes.Equal(data, w) {
			t.Errorf("chunk %d = %q, want %q", n, data, w)
		}
	}
}

// TestFetchNotFound verifies the not-found sentinels
func TestFetchNotFound(t *testing.T) {
	st := New()
	b := st.OpenReadBinding()
	defer b.Release()

	if _, err := b.FetchFileInfo(context.Background(), "nope"); !errors.Is(err, store.ErrFileNotFound) {
		t.Errorf("FetchFileInfo() = %v, want ErrFileNotFound", err)
	}
	if _, err := b.FetchChunk(context.Background(), "nope", 0); !errors.Is(err, store.ErrChunkNotFound) {
		t.Errorf("FetchChunk() = %v, want ErrChunkNotFound", err)
	}
}

// TestReleasedBinding verifies fetches fail after release
func TestReleasedBinding(t *testing.T) {
	st := New()
	st.PutFileInfo(&models.FileInfo{ID: "f1", Length: 0})

	b := st.OpenReadBinding()
	if err := b.Release(); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if err := b.Release(); err != nil {
		t.Errorf("second Release() failed: %v", err)
	}

	if _, err := b.FetchFileInfo(context.Background(), "f1"); !errors.Is(err, store.ErrBindingReleased) {
		t.Errorf("FetchFileInfo() after release = %v, want ErrBindingReleased", err)
	}
	if _, err := b.FetchChunk(context.Background(), "f1", 0); !errors.Is(err, store.ErrBindingReleased) {
		t.Errorf("FetchChunk() after release = %v, want ErrBindingReleased", err)
	}
}

// TestFetchedDataIsCopied verifies callers cannot mutate stored chunks
func TestFetchedDataIsCopied(t *testing.T) {
	st := New()
	if _, err := st.AddFile("f1", "", []byte("hello"), 8); err != nil {
		t.Fatalf("AddFile() failed: %v", err)
	}

	b := st.OpenReadBinding()
	defer b.Release()

	data, err := b.FetchChunk(context.Background(), "f1", 0)
	if err != nil {
		t.Fatalf("FetchChunk() failed: %v", err)
	}
	data[0] = 'X'

	again, err := b.FetchChunk(context.Background(), "f1", 0)
	if err != nil {
		t.Fatalf("second FetchChunk() failed: %v", err)
	}
	if string(again) != "hello" {
		t.Errorf("stored chunk mutated through returned slice: %q", again)
	}
}

// TestCancelledContext verifies fetches respect context cancellation
func TestCancelledContext(t *testing.T) {
	st := New()
	st.PutFileInfo(&models.FileInfo{ID: "f1", Length: 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := st.OpenReadBinding()
	defer b.Release()

	if _, err := b.FetchFileInfo(ctx, "f1"); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchFileInfo() with cancelled ctx = %v, want context.Canceled", err)
	}
}
