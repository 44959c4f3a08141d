package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// TestSeekReadEquivalence verifies that seeking to p then reading k bytes
// matches slicing the full content, at chunk boundaries and mid-chunk
func TestSeekReadEquivalence(t *testing.T) {
	size := int64(3*testChunkSize + testChunkSize/2)
	st, info, content := makeFile(t, size)
	s := openSeekable(t, st, info)
	defer s.Close()

	offsets := []int64{
		0,
		1,
		testChunkSize - 1,
		testChunkSize,
		testChunkSize + 1,
		2 * testChunkSize,
		size - 10,
		size - 1,
	}

	for _, p := range offsets {
		if _, err := s.Seek(p, io.SeekStart); err != nil {
			t.Fatalf("Seek(%d) failed: %v", p, err)
		}

		k := int64(100)
		if p+k > size {
			k = size - p
		}
		buf := make([]byte, k)
		if _, err := io.ReadFull(s, buf); err != nil {
			t.Fatalf("ReadFull() at %d failed: %v", p, err)
		}
		if !bytes.Equal(buf, content[p:p+k]) {
			t.Errorf("bytes at [%d, %d) mismatch", p, p+k)
		}
	}
}

// TestSeekWhence verifies all three seek origins
func TestSeekWhence(t *testing.T) {
	st, info, _ := makeFile(t, 1000)
	s := openSeekable(t, st, info)
	defer s.Close()

	pos, err := s.Seek(100, io.SeekStart)
	if err != nil || pos != 100 {
		t.Errorf("Seek(100, SeekStart) = (%d, %v), want (100, nil)", pos, err)
	}

	pos, err = s.Seek(50, io.SeekCurrent)
	if err != nil || pos != 150 {
		t.Errorf("Seek(50, SeekCurrent) = (%d, %v), want (150, nil)", pos, err)
	}

	pos, err = s.Seek(-200, io.SeekEnd)
	if err != nil || pos != 800 {
		t.Errorf("Seek(-200, SeekEnd) = (%d, %v), want (800, nil)", pos, err)
	}

	if _, err = s.Seek(0, 42); err == nil {
		t.Error("Seek() with invalid whence succeeded, want error")
	}
}

// TestSeekNegative verifies a negative resulting position is rejected
// without moving the stream
func TestSeekNegative(t *testing.T) {
	st, info, _ := makeFile(t, 1000)
	s := openSeekable(t, st, info)
	defer s.Close()

	if _, err := s.Seek(500, io.SeekStart); err != nil {
		t.Fatalf("Seek() failed: %v", err)
	}

	if _, err := s.Seek(-1, io.SeekStart); !errors.Is(err, ErrNegativePosition) {
		t.Errorf("Seek(-1, SeekStart) = %v, want ErrNegativePosition", err)
	}
	if _, err := s.Seek(-600, io.SeekCurrent); !errors.Is(err, ErrNegativePosition) {
		t.Errorf("Seek(-600, SeekCurrent) = %v, want ErrNegativePosition", err)
	}
	if _, err := s.Seek(-1001, io.SeekEnd); !errors.Is(err, ErrNegativePosition) {
		t.Errorf("Seek(-1001, SeekEnd) = %v, want ErrNegativePosition", err)
	}

	if s.Position() != 500 {
		t.Errorf("Position() after rejected seeks = %d, want 500", s.Position())
	}
}

// TestSeekPastEnd verifies overshoot is accepted and reads yield EOF
func TestSeekPastEnd(t *testing.T) {
	st, info, _ := makeFile(t, 1000)
	s := openSeekable(t, st, info)
	defer s.Close()

	pos, err := s.Seek(5000, io.SeekStart)
	if err != nil || pos != 5000 {
		t.Fatalf("Seek(5000) = (%d, %v), want (5000, nil)", pos, err)
	}

	n, err := s.Read(make([]byte, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("Read() past end = (%d, %v), want (0, io.EOF)", n, err)
	}

	// Seeking back makes the stream readable again
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek(0) failed: %v", err)
	}
	if _, err := s.Read(make([]byte, 8)); err != nil {
		t.Errorf("Read() after seeking back failed: %v", err)
	}
}

// TestSetPosition verifies SetPosition behaves like Seek from start
func TestSetPosition(t *testing.T) {
	st, info, content := makeFile(t, 2*testChunkSize)
	s := openSeekable(t, st, info)
	defer s.Close()

	if err := s.SetPosition(testChunkSize + 5); err != nil {
		t.Fatalf("SetPosition() failed: %v", err)
	}
	if s.Position() != testChunkSize+5 {
		t.Errorf("Position() = %d, want %d", s.Position(), testChunkSize+5)
	}

	buf := make([]byte, 10)
	if _, err := io.ReadFull(s, buf); err != nil {
		t.Fatalf("ReadFull() failed: %v", err)
	}
	if !bytes.Equal(buf, content[testChunkSize+5:testChunkSize+15]) {
		t.Error("content after SetPosition mismatch")
	}

	if err := s.SetPosition(-1); !errors.Is(err, ErrNegativePosition) {
		t.Errorf("SetPosition(-1) = %v, want ErrNegativePosition", err)
	}
}

// TestSeekAcrossChunksRefetches verifies a seek to another chunk refetches
// while a seek within the buffered chunk does not
func TestSeekAcrossChunksRefetches(t *testing.T) {
	st, info, content := makeFile(t, 3*testChunkSize)
	binding := &countingBinding{inner: st.OpenReadBinding()}

	s, err := NewSeekable(binding, info, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSeekable() failed: %v", err)
	}
	defer s.Close()

	buf := make([]byte, 10)

	// Read inside chunk 0, twice: one fetch
	s.Seek(0, io.SeekStart)
	io.ReadFull(s, buf)
	s.Seek(20, io.SeekStart)
	io.ReadFull(s, buf)
	if binding.chunkFetches != 1 {
		t.Errorf("fetches after reads within chunk 0 = %d, want 1", binding.chunkFetches)
	}

	// Jump to chunk 2: second fetch
	s.Seek(2*testChunkSize+7, io.SeekStart)
	if _, err := io.ReadFull(s, buf); err != nil {
		t.Fatalf("ReadFull() in chunk 2 failed: %v", err)
	}
	if !bytes.Equal(buf, content[2*testChunkSize+7:2*testChunkSize+17]) {
		t.Error("content in chunk 2 mismatch")
	}
	if binding.chunkFetches != 2 {
		t.Errorf("fetches after jump to chunk 2 = %d, want 2", binding.chunkFetches)
	}

	// Back to chunk 0: third fetch (single-chunk cache, no multi-chunk memory)
	s.Seek(0, io.SeekStart)
	io.ReadFull(s, buf)
	if binding.chunkFetches != 3 {
		t.Errorf("fetches after return to chunk 0 = %d, want 3", binding.chunkFetches)
	}
}
