package buffers

import (
	"testing"

	"github.com/chunkstore-io/chunkstore/internal/constants"
)

// TestGetCopyBuffer verifies pooled buffers have the expected size
func TestGetCopyBuffer(t *testing.T) {
	b := GetCopyBuffer()
	if b == nil {
		t.Fatal("GetCopyBuffer() returned nil")
	}
	if len(*b) != constants.CopyBufferSize {
		t.Errorf("buffer size = %d, want %d", len(*b), constants.CopyBufferSize)
	}
	PutCopyBuffer(b)
}

// TestPutCopyBufferRejectsWrongSize verifies resized buffers are dropped
func TestPutCopyBufferRejectsWrongSize(t *testing.T) {
	small := make([]byte, 16)
	PutCopyBuffer(&small)
	PutCopyBuffer(nil)

	// Pool must still hand out full-size buffers afterwards
	b := GetCopyBuffer()
	if len(*b) != constants.CopyBufferSize {
		t.Errorf("buffer size after bad Put = %d, want %d", len(*b), constants.CopyBufferSize)
	}
	PutCopyBuffer(b)
}
