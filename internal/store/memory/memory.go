// Package memory provides an in-memory chunk store. It backs the engine's
// tests and is the reference implementation of the binding contract.
package memory

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

type chunkKey struct {
	fileID string
	n      int64
}

// Store holds file metadata and chunk records in maps.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	files  map[string]*models.FileInfo
	chunks map[chunkKey][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		files:  make(map[string]*models.FileInfo),
		chunks: make(map[chunkKey][]byte),
	}
}

// AddFile splits content into chunkSize-sized records and stores them along
// with the computed metadata. Returns the stored FileInfo.
func (s *Store) AddFile(fileID, name string, content []byte, chunkSize int64) (*models.FileInfo, error) {
	if len(content) > 0 && chunkSize <= 0 {
		return nil, fmt.Errorf("file %s: %w", fileID, models.ErrInvalidChunkSize)
	}

	sum := sha512.Sum512(content)
	info := &models.FileInfo{
		ID:         fileID,
		Length:     int64(len(content)),
		ChunkSize:  chunkSize,
		UploadDate: time.Now().UTC(),
		Checksum:   hex.EncodeToString(sum[:]),
		Name:       name,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[fileID] = info
	for n := int64(0); n < info.ChunkCount(); n++ {
		start := n * chunkSize
		end := start + chunkSize
		if end > info.Length {
			end = info.Length
		}
		chunk := make([]byte, end-start)
		copy(chunk, content[start:end])
		s.chunks[chunkKey{fileID, n}] = chunk
	}

	return info, nil
}

// PutChunk stores raw chunk bytes directly, bypassing AddFile's slicing.
// Used by tests to stage malformed chunk records.
func (s *Store) PutChunk(fileID string, n int64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunkKey{fileID, n}] = data
}

// PutFileInfo stores a metadata record directly.
func (s *Store) PutFileInfo(info *models.FileInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[info.ID] = info
}

// OpenReadBinding opens a scoped read session over the store.
func (s *Store) OpenReadBinding() store.ReadBinding {
	return &binding{store: s}
}

// Close releases the store. In-memory stores hold no external resources.
func (s *Store) Close() error {
	return nil
}

// binding is a lightweight session view over the store.
type binding struct {
	store    *Store
	released bool
}

func (b *binding) FetchFileInfo(ctx context.Context, fileID string) (*models.FileInfo, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.store.mu.RLock()
	defer b.store.mu.RUnlock()

	info, ok := b.store.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, store.ErrFileNotFound)
	}
	cp := *info
	return &cp, nil
}

func (b *binding) FetchChunk(ctx context.Context, fileID string, n int64) ([]byte, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.store.mu.RLock()
	defer b.store.mu.RUnlock()

	data, ok := b.store.chunks[chunkKey{fileID, n}]
	if !ok {
		return nil, fmt.Errorf("chunk %d of file %s: %w", n, fileID, store.ErrChunkNotFound)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (b *binding) Release() error {
	b.released = true
	return nil
}
