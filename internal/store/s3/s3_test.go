package s3

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// TestKeyLayout verifies the object key layout for metadata and chunks
func TestKeyLayout(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		fileID    string
		wantMeta  string
		wantChunk string
	}{
		{"no prefix", "", "f1", "f1/meta.json", "f1/chunks/7"},
		{"with prefix", "files", "f1", "files/f1/meta.json", "files/f1/chunks/7"},
		{"trailing slash prefix", "files/", "f1", "files/f1/meta.json", "files/f1/chunks/7"},
		{"nested prefix", "env/prod", "abc-123", "env/prod/abc-123/meta.json", "env/prod/abc-123/chunks/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &Store{cfg: Config{Bucket: "b", Prefix: tt.prefix}}
			if got := st.metaKey(tt.fileID); got != tt.wantMeta {
				t.Errorf("metaKey() = %q, want %q", got, tt.wantMeta)
			}
			if got := st.chunkKey(tt.fileID, 7); got != tt.wantChunk {
				t.Errorf("chunkKey() = %q, want %q", got, tt.wantChunk)
			}
		})
	}
}

// TestNewRequiresBucket verifies config validation
func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}, zerolog.Nop()); err == nil {
		t.Error("New() without bucket succeeded, want error")
	}
}

// TestReleasedBinding verifies fetches fail after release
func TestReleasedBinding(t *testing.T) {
	st := &Store{cfg: Config{Bucket: "b"}}
	b := st.OpenReadBinding()

	if err := b.Release(); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if _, err := b.FetchChunk(context.Background(), "f1", 0); err == nil {
		t.Error("FetchChunk() after release succeeded, want error")
	}
	if _, err := b.FetchFileInfo(context.Background(), "f1"); err == nil {
		t.Error("FetchFileInfo() after release succeeded, want error")
	}
}
