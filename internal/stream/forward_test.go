package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// TestForwardSeekUnsupported verifies seek and reposition always fail
func TestForwardSeekUnsupported(t *testing.T) {
	st, info, _ := makeFile(t, 2*testChunkSize)
	s := openForward(t, st, info)
	defer s.Close()

	if _, err := s.Seek(0, io.SeekStart); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Seek() = %v, want ErrNotSupported", err)
	}
	if err := s.SetPosition(10); !errors.Is(err, ErrNotSupported) {
		t.Errorf("SetPosition() = %v, want ErrNotSupported", err)
	}

	// A rejected seek must not disturb the read sequence
	buf := make([]byte, 8)
	n, err := s.Read(buf)
	if err != nil || n != 8 {
		t.Fatalf("Read() after rejected seek = (%d, %v)", n, err)
	}
	if s.Position() != 8 {
		t.Errorf("Position() = %d, want 8", s.Position())
	}
}

// TestForwardSequentialReads verifies monotonic position and content order
func TestForwardSequentialReads(t *testing.T) {
	st, info, content := makeFile(t, 2*testChunkSize+testChunkSize/2)
	s := openForward(t, st, info)
	defer s.Close()

	var got bytes.Buffer
	buf := make([]byte, 100)
	lastPos := int64(0)
	for {
		n, err := s.Read(buf)
		got.Write(buf[:n])
		if s.Position() < lastPos {
			t.Fatalf("position moved backwards: %d -> %d", lastPos, s.Position())
		}
		lastPos = s.Position()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() failed: %v", err)
		}
	}

	if !bytes.Equal(got.Bytes(), content) {
		t.Error("sequential read content mismatch")
	}
	if lastPos != info.Length {
		t.Errorf("final position = %d, want %d", lastPos, info.Length)
	}
}

// TestForwardEOF verifies reads at end of file yield io.EOF without error
func TestForwardEOF(t *testing.T) {
	st, info, _ := makeFile(t, testChunkSize/2)
	s := openForward(t, st, info)
	defer s.Close()

	if _, err := io.ReadAll(s); err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}

	buf := make([]byte, 8)
	for i := 0; i < 2; i++ {
		n, err := s.Read(buf)
		if n != 0 || err != io.EOF {
			t.Errorf("Read() at EOF = (%d, %v), want (0, io.EOF)", n, err)
		}
	}
}

// TestForwardEmptyFile verifies a zero-length file reads as immediate EOF
func TestForwardEmptyFile(t *testing.T) {
	st, info, _ := makeFile(t, 0)
	s := openForward(t, st, info)
	defer s.Close()

	n, err := s.Read(make([]byte, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("Read() on empty file = (%d, %v), want (0, io.EOF)", n, err)
	}
}
