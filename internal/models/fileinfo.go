// Package models defines the metadata types shared by the store backends
// and the streaming engine.
package models

import (
	"errors"
	"fmt"
	"time"
)

// FileInfo is the immutable metadata snapshot for one logical file, captured
// when a download stream is opened. Length and ChunkSize never change for the
// lifetime of a stream reading the file.
type FileInfo struct {
	// ID is the unique identifier of the file in the store
	ID string `json:"id"`

	// Length is the total size of the file content in bytes
	Length int64 `json:"length"`

	// ChunkSize is the size of each chunk in bytes (the terminal chunk may be smaller)
	ChunkSize int64 `json:"chunkSize"`

	// UploadDate is when the file was written to the store
	UploadDate time.Time `json:"uploadDate"`

	// Checksum is the hex-encoded SHA-512 hash of the full file content, if recorded
	Checksum string `json:"checksum,omitempty"`

	// Name is the original filename, if recorded
	Name string `json:"name,omitempty"`

	// Metadata holds caller-supplied key/value pairs
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validation errors
var (
	ErrMissingFileID    = errors.New("file id is required")
	ErrNegativeLength   = errors.New("file length must not be negative")
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

// Validate checks that the metadata describes a readable file.
// A zero-length file is valid with any chunk size, including zero,
// because it has no chunks to interpret.
func (f *FileInfo) Validate() error {
	if f.ID == "" {
		return ErrMissingFileID
	}
	if f.Length < 0 {
		return fmt.Errorf("file %s: %w (got %d)", f.ID, ErrNegativeLength, f.Length)
	}
	if f.Length > 0 && f.ChunkSize <= 0 {
		return fmt.Errorf("file %s: %w (got %d)", f.ID, ErrInvalidChunkSize, f.ChunkSize)
	}
	return nil
}

// ChunkCount returns the number of chunk records for the file.
// Zero-length files have zero chunks.
func (f *FileInfo) ChunkCount() int64 {
	if f.Length == 0 {
		return 0
	}
	return (f.Length + f.ChunkSize - 1) / f.ChunkSize
}

// ExpectedChunkSize returns the byte length chunk n must have.
// Non-terminal chunks are exactly ChunkSize; the terminal chunk carries
// the remainder.
func (f *FileInfo) ExpectedChunkSize(n int64) int64 {
	if n < f.ChunkCount()-1 {
		return f.ChunkSize
	}
	return f.Length - n*f.ChunkSize
}
